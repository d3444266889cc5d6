package parsers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	sessionutil "github.com/courtside-club/courtside/app/modules/session/utils"
)

// ErrUnrecognizedTime is returned when input matches no known time format.
var ErrUnrecognizedTime = errors.New("unrecognized time")

// ArrivalParser converts client time input into an absolute UTC time.
type ArrivalParser interface {
	Parse(input string, clock sessionutil.Clock, loc *time.Location) (time.Time, error)
}

// TimeParser accepts RFC3339 timestamps, "now" and natural language such
// as "in 20 minutes" or "7:30pm".
type TimeParser struct {
	w *when.Parser
}

var compactClock = regexp.MustCompile(`\b(\d{1,2})(\d{2})\s?(am|pm)\b`)

// NewTimeParser creates a TimeParser with the English rule set.
func NewTimeParser() *TimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{w: w}
}

// Parse resolves input against clock.Now() in loc. A nil loc means UTC.
func (p *TimeParser) Parse(input string, clock sessionutil.Clock, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return clock.Now().UTC().Truncate(time.Minute), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	normalized := compactClock.ReplaceAllString(strings.ToLower(input), "$1:$2 $3")
	r, err := p.w.Parse(normalized, clock.Now().In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, input)
	}
	return r.Time.UTC().Truncate(time.Minute), nil
}
