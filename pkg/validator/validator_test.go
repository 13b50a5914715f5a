package validator

import "testing"

type slotInput struct {
	Date     string `validate:"required,datetime=2006-01-02"`
	TimeFrom string `validate:"required,clock"`
	Mode     string `validate:"required,oneof=online offline"`
}

type contactInput struct {
	Email       string `validate:"required_without=PhoneNumber,omitempty,email"`
	PhoneNumber string `validate:"required_without=Email,omitempty,min=10"`
}

func TestValidator_ClockTag(t *testing.T) {
	v := NewValidator()

	for _, tc := range []struct {
		timeFrom string
		ok       bool
	}{
		{"09:00", true},
		{"24:00", true},
		{"9:00", false},
		{"25:00", false},
		{"09:61", false},
		{"24:30", false},
		{"23:59", true},
		{"09:00:00", false},
	} {
		err := v.Validate(&slotInput{Date: "2026-03-02", TimeFrom: tc.timeFrom, Mode: "online"})
		if (err == nil) != tc.ok {
			t.Errorf("time_from %q: err = %v, want ok=%v", tc.timeFrom, err, tc.ok)
		}
	}
}

func TestValidator_FormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&slotInput{Date: "02-03-2026", TimeFrom: "late", Mode: "phone"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msgs := v.FormatValidationErrors(err)
	want := map[string]string{
		"Date":     "Date must be a date in YYYY-MM-DD format",
		"TimeFrom": "TimeFrom must be a time in HH:MM format",
		"Mode":     "Mode must be one of: online offline",
	}
	for field, msg := range want {
		if msgs[field] != msg {
			t.Errorf("%s: got %q, want %q", field, msgs[field], msg)
		}
	}
}

func TestValidator_EitherContact(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&contactInput{}); err == nil {
		t.Error("missing both contacts should fail")
	}
	if err := v.Validate(&contactInput{Email: "p@example.com"}); err != nil {
		t.Errorf("email only: %v", err)
	}
	if err := v.Validate(&contactInput{PhoneNumber: "081234567890"}); err != nil {
		t.Errorf("phone only: %v", err)
	}
}
