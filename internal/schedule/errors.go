package schedule

import "errors"

// ErrMalformedInput is returned when the CSV text has no data row after the header.
var ErrMalformedInput = errors.New("schedule: need a header and at least one data row")

// ErrUnsupportedDateFormat marks a date cell no DateLayout understands.
var ErrUnsupportedDateFormat = errors.New("schedule: unsupported date format")

// ErrInvalidAlarmTime marks an alarm cell that is not a 24-hour HH:MM time.
var ErrInvalidAlarmTime = errors.New("schedule: invalid alarm time")
