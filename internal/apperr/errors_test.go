package apperr

import (
	"errors"
	"fmt"
	"testing"
)

type sample struct {
	Name  string  `json:"name" validate:"required"`
	Score float64 `json:"score" validate:"gte=0,lte=1"`
	Items []item  `json:"items" validate:"required,min=1,dive"`
}

type item struct {
	ID string `yaml:"item_id" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(sample{Score: 2, Items: []item{{}}})
	var ves ValidationErrors
	if !errors.As(err, &ves) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	want := map[string]string{
		"name":             "required",
		"score":            "lte",
		"items[0].item_id": "required",
	}
	if len(ves) != len(want) {
		t.Fatalf("got %d errors (%v), want %d", len(ves), ves, len(want))
	}
	for _, ve := range ves {
		rule, ok := want[ve.Field]
		if !ok {
			t.Errorf("unexpected field %q", ve.Field)
			continue
		}
		if ve.Rule != rule {
			t.Errorf("field %s rule = %q, want %q", ve.Field, ve.Rule, rule)
		}
		if ve.Message == "" {
			t.Errorf("field %s has no message", ve.Field)
		}
	}
}

func TestValidateStructOK(t *testing.T) {
	if err := ValidateStruct(sample{Name: "a", Score: 0.5, Items: []item{{ID: "x"}}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name                      string
		err                       error
		validation, notFound, cfl bool
	}{
		{"single validation", fmt.Errorf("wrap: %w", Invalid("x", "bad")), true, false, false},
		{"validation list", fmt.Errorf("wrap: %w", ValidationErrors{{Field: "x"}}), true, false, false},
		{"not found", fmt.Errorf("wrap: %w", NotFound("student", "s1")), false, true, false},
		{"conflict", fmt.Errorf("wrap: %w", &ConflictError{StudentID: "s1"}), false, false, true},
		{"plain", errors.New("boom"), false, false, false},
	}
	for _, tt := range tests {
		if got := IsValidation(tt.err); got != tt.validation {
			t.Errorf("%s: IsValidation = %v", tt.name, got)
		}
		if got := IsNotFound(tt.err); got != tt.notFound {
			t.Errorf("%s: IsNotFound = %v", tt.name, got)
		}
		if got := IsConflict(tt.err); got != tt.cfl {
			t.Errorf("%s: IsConflict = %v", tt.name, got)
		}
	}
}

func TestConflictUnwrap(t *testing.T) {
	base := errors.New("version moved")
	err := &ConflictError{StudentID: "s1", Err: base}
	if !errors.Is(err, base) {
		t.Error("ConflictError should unwrap to its cause")
	}
}
