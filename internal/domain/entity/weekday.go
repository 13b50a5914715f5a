package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayOfWeek is one of the seven fixed weekdays a doctor can configure.
// The zero value is Sunday, matching time.Weekday.
type DayOfWeek int8

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var ErrInvalidDayOfWeek = errors.New("invalid day of week")

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AllDays returns the weekdays in canonical display order (Sunday first).
func AllDays() []DayOfWeek {
	return []DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// DayOfWeekOf returns the weekday of the given calendar date.
func DayOfWeekOf(date time.Time) DayOfWeek {
	return DayOfWeek(date.Weekday())
}

// ParseDayOfWeek accepts the English weekday name in any letter case.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i, name := range dayNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return DayOfWeek(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDayOfWeek, s)
}

func (d DayOfWeek) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int8(d))
	}
	return dayNames[d]
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalidDayOfWeek
	}
	return json.Marshal(d.String())
}

func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the weekday by name so rows stay readable in SQL.
func (d DayOfWeek) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, ErrInvalidDayOfWeek
	}
	return d.String(), nil
}

func (d *DayOfWeek) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseDayOfWeek(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseDayOfWeek(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("cannot scan %T into DayOfWeek", value)
	}
	return nil
}
