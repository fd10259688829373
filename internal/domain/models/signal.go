package models

import (
	"encoding/json"
	"fmt"
)

// Signal is a directional call.
type Signal int8

const (
	Sell Signal = iota - 1
	Neutral
	Buy
)

func (s Signal) String() string {
	switch s {
	case Sell:
		return "sell"
	case Buy:
		return "buy"
	default:
		return "neutral"
	}
}

// Int returns the wire encoding: -1, 0 or 1.
func (s Signal) Int() int { return int(s) }

// SignalFromSign maps the sign of x to a Signal; zero is Neutral.
func SignalFromSign(x float64) Signal {
	switch {
	case x > 0:
		return Buy
	case x < 0:
		return Sell
	default:
		return Neutral
	}
}

func (s Signal) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Int())
}

func (s *Signal) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case -1:
		*s = Sell
	case 0:
		*s = Neutral
	case 1:
		*s = Buy
	default:
		return fmt.Errorf("signal out of range: %d", v)
	}
	return nil
}
