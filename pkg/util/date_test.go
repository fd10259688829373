package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

	from, to, err := DateRange("", "", now, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if to.Format(DateLayout) != "2024-06-15" || from.Format(DateLayout) != "2024-05-16" {
		t.Fatalf("unexpected default range %v..%v", from, to)
	}

	from, to, err = DateRange("2024-01-02", "2024-03-01", now, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format(DateLayout) != "2024-01-02" || to.Format(DateLayout) != "2024-03-01" {
		t.Fatalf("unexpected explicit range %v..%v", from, to)
	}

	if _, _, err := DateRange("2024-03-01", "2024-03-01", now, 30); err == nil {
		t.Fatalf("expected error for empty range")
	}
	if _, _, err := DateRange("01/02/2024", "", now, 30); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestSymbols(t *testing.T) {
	got := Symbols(" ry.to, td.to", "RY.TO", "", "shop.to")
	want := []string{"RY.TO", "TD.TO", "SHOP.TO"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if FileSafe("^GSPTSE") != "GSPTSE" || FileSafe("RY.TO") != "RY_TO" {
		t.Fatalf("unexpected file safe names")
	}
}
