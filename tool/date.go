package tool

import (
	"context"
	"fmt"
	"time"
)

type dateInput struct {
	Format string `json:"format,omitempty" description:"Output format: 'date', 'time', 'datetime', 'iso', or a Go reference layout"`
}

// dateTool reports the current date and time. It keeps its own clock so tests
// can pin time.
type dateTool struct {
	now func() time.Time
}

// NewDate returns a tool that reports the current date and time. The optional
// "format" input selects the representation; without it the tool returns a
// human-readable summary.
func NewDate(optFns ...func(t *dateTool)) Tool {
	d := &dateTool{now: time.Now}
	for _, fn := range optFns {
		fn(d)
	}

	inner := NewFunc("date", "Returns the current date and time.",
		func(ctx context.Context, in dateInput) (string, error) {
			now := d.now()
			switch in.Format {
			case "", "datetime":
				return fmt.Sprintf("Today's date is %s. Today's day is %s. The current time is %s.",
					now.Format("2006-01-02"), now.Weekday(), now.Format("15:04:05")), nil
			case "date":
				return now.Format("2006-01-02"), nil
			case "time":
				return now.Format("15:04:05"), nil
			case "iso":
				return now.Format(time.RFC3339), nil
			default:
				return now.Format(in.Format), nil
			}
		})
	return inner
}

// WithClock overrides the tool's time source.
func WithClock(now func() time.Time) func(t *dateTool) {
	return func(t *dateTool) { t.now = now }
}
