package validator

import (
	"errors"
	"testing"

	apperrors "pocketledger/internal/errors"
)

type sampleInput struct {
	Email    string `json:"email" validate:"required,email"`
	Color    string `json:"color" validate:"omitempty,hex_color"`
	Type     string `json:"type" validate:"category_type"`
	Period   string `json:"period" validate:"omitempty,budget_period"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

func validSample() sampleInput {
	return sampleInput{Email: "a@b.com", Color: "#808080", Type: "expense", Period: "weekly", Currency: "CNY"}
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := Struct(validSample()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*sampleInput)
		field  string
	}{
		{"bad_email", func(s *sampleInput) { s.Email = "nope" }, "email"},
		{"bad_color", func(s *sampleInput) { s.Color = "gray" }, "color"},
		{"bad_type", func(s *sampleInput) { s.Type = "transfer" }, "type"},
		{"bad_period", func(s *sampleInput) { s.Period = "hourly" }, "period"},
		{"bad_currency", func(s *sampleInput) { s.Currency = "XXX1" }, "currency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSample()
			tc.mutate(&in)

			err := Struct(in)
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != "VALIDATION_FAILED" {
				t.Errorf("expected VALIDATION_FAILED, got %s", appErr.Code)
			}
			if len(appErr.Message) < len(tc.field) || appErr.Message[:len(tc.field)] != tc.field {
				t.Errorf("expected message to start with %q, got %q", tc.field, appErr.Message)
			}
		})
	}
}
