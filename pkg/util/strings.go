package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Symbols upper-cases, trims and de-duplicates ticker symbols, keeping the
// first occurrence order. Entries may themselves be comma separated.
func Symbols(in ...string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// FileSafe replaces characters that are awkward in file names, e.g.
// "RY.TO" becomes "RY_TO" and "^GSPTSE" becomes "GSPTSE".
func FileSafe(symbol string) string {
	r := strings.NewReplacer(".", "_", "^", "", "/", "_", " ", "_")
	return r.Replace(symbol)
}
