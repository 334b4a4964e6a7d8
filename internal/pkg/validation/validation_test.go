package validation

import (
	"strings"
	"testing"
)

type sample struct {
	UserID   string `json:"userId"   validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=student shopkeeper"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&sample{UserType: "admin", Email: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"userId is required", "userType must be one of: student shopkeeper", "email must be a valid email"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidate_Passes(t *testing.T) {
	if err := New().Validate(&sample{UserID: "s1", UserType: "student"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
