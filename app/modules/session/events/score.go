package sessionevents

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// ScoreValue holds a submitted score as sent. Decoding never fails, so a
// malformed score is answered with INVALID_SCORE instead of being dropped
// by the router.
type ScoreValue json.RawMessage

// Score wraps a whole-number score.
func Score(n int) ScoreValue {
	return ScoreValue(strconv.Itoa(n))
}

// MarshalJSON implements json.Marshaler.
func (s ScoreValue) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ScoreValue) UnmarshalJSON(b []byte) error {
	*s = append((*s)[:0], b...)
	return nil
}

// Int returns the score as an integer. Missing, non-numeric and fractional
// values are ErrInvalidScore; the sign is left to the engine.
func (s ScoreValue) Int() (int, error) {
	if len(s) == 0 || string(s) == "null" {
		return 0, fmt.Errorf("%w: score is missing", scheduler.ErrInvalidScore)
	}
	var f float64
	if err := json.Unmarshal(s, &f); err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", scheduler.ErrInvalidScore, string(s))
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is not a whole number", scheduler.ErrInvalidScore, string(s))
	}
	return int(f), nil
}
