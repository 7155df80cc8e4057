package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"alarmboard/internal/model"
)

// DateLayout is one of the date spellings seen in alarm files.
type DateLayout int

const (
	// DashMonthName is DD-Month-YYYY. The month may be a full or
	// abbreviated English name, or a number (29-June-2025, 29-Jun-2025, 29-06-2025).
	DashMonthName DateLayout = iota + 1
	// SlashNumeric is DD/MM/YYYY.
	SlashNumeric
)

// dateLayouts is tried in order; the first layout whose separator occurs in
// the raw value decides the outcome.
var dateLayouts = []DateLayout{DashMonthName, SlashNumeric}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseDateLayout maps a name such as "dash" or "slash" to a layout.
func ParseDateLayout(name string) (DateLayout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dash", "dash-month-name", "dashmonthname":
		return DashMonthName, nil
	case "slash", "slash-numeric", "slashnumeric":
		return SlashNumeric, nil
	}
	return 0, fmt.Errorf("unknown date layout %q", name)
}

func (l DateLayout) String() string {
	switch l {
	case DashMonthName:
		return "dash-month-name"
	case SlashNumeric:
		return "slash-numeric"
	default:
		return "unknown"
	}
}

func (l DateLayout) separator() string {
	switch l {
	case DashMonthName:
		return "-"
	case SlashNumeric:
		return "/"
	default:
		return ""
	}
}

// Parse reads raw as (day, month, year) split on the layout's separator.
func (l DateLayout) Parse(raw string) (model.Date, error) {
	sep := l.separator()
	if sep == "" {
		return model.Date{}, ErrUnsupportedDateFormat
	}
	parts := strings.Split(strings.TrimSpace(raw), sep)
	if len(parts) != 3 {
		return model.Date{}, fmt.Errorf("%w: %q is not day%smonth%syear", ErrUnsupportedDateFormat, raw, sep, sep)
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: day in %q", ErrUnsupportedDateFormat, raw)
	}
	month, ok := l.month(strings.TrimSpace(parts[1]))
	if !ok {
		return model.Date{}, fmt.Errorf("%w: month in %q", ErrUnsupportedDateFormat, raw)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: year in %q", ErrUnsupportedDateFormat, raw)
	}

	d := model.Date{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return model.Date{}, fmt.Errorf("%w: %q is not a calendar date", ErrUnsupportedDateFormat, raw)
	}
	return d, nil
}

func (l DateLayout) month(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	if l != DashMonthName {
		return 0, false
	}
	m, ok := monthNames[strings.ToLower(s)]
	return m, ok
}

// Format writes d in this layout. DashMonthName uses the full month name.
func (l DateLayout) Format(d model.Date) string {
	switch l {
	case SlashNumeric:
		return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
	default:
		return fmt.Sprintf("%02d-%s-%04d", d.Day, d.Month.String(), d.Year)
	}
}

// ParseDate detects the layout of raw and parses it. On failure the returned
// date is the zero Date, which never matches a real day.
func ParseDate(raw string) (model.Date, DateLayout, error) {
	for _, l := range dateLayouts {
		if !strings.Contains(raw, l.separator()) {
			continue
		}
		d, err := l.Parse(raw)
		return d, l, err
	}
	return model.Date{}, 0, fmt.Errorf("%w: %q", ErrUnsupportedDateFormat, raw)
}
