package coerce

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISO layouts written by the spreadsheet reader, then the day-first layouts
// used by the registered bank exports. Anything else goes through dateparse.
var dayFirstLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006 15:04",
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
}

// TimestampParser parses date/time cells permissively.
type TimestampParser struct {
	loc *time.Location
}

// NewTimestampParser returns a parser that reads zone-less values in loc,
// or UTC when loc is nil.
func NewTimestampParser(loc *time.Location) *TimestampParser {
	if loc == nil {
		loc = time.UTC
	}
	return &TimestampParser{loc: loc}
}

// Parse returns nil for null, empty or unparseable cells.
func (p *TimestampParser) Parse(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return &t
		}
	}
	t, err := dateparse.ParseIn(s, p.loc)
	if err != nil {
		return nil
	}
	return &t
}
