package utils

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type enumRequest struct {
	Status   string  `validate:"required,taskstatus"`
	Priority *string `validate:"omitempty,taskpriority"`
	Project  string  `validate:"omitempty,projectstatus"`
	Role     string  `validate:"omitempty,role"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := registerOn(v); err != nil {
		t.Fatalf("registerOn() error = %v", err)
	}
	return v
}

func TestEnumValidators(t *testing.T) {
	v := newValidator(t)
	high := "high"
	urgent := "urgent"

	tests := []struct {
		name  string
		req   enumRequest
		valid bool
	}{
		{"all valid", enumRequest{Status: "in-progress", Priority: &high, Project: "archived", Role: "designer"}, true},
		{"optional fields empty", enumRequest{Status: "todo"}, true},
		{"bad status", enumRequest{Status: "blocked"}, false},
		{"bad priority", enumRequest{Status: "done", Priority: &urgent}, false},
		{"bad project status", enumRequest{Status: "done", Project: "paused"}, false},
		{"bad role", enumRequest{Status: "done", Role: "root"}, false},
		{"missing status", enumRequest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if (err == nil) != tt.valid {
				t.Errorf("Struct() error = %v, expected valid=%v", err, tt.valid)
			}
		})
	}
}

func TestFormatBindError(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(enumRequest{Role: "root"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := FormatBindError(err)
	if !strings.Contains(msg, "status is required") {
		t.Errorf("message %q should mention the missing status", msg)
	}
	if !strings.Contains(msg, "role must be one of admin, manager, developer, designer") {
		t.Errorf("message %q should list the allowed roles", msg)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"dev@example.com", true},
		{"  padded@example.com ", true},
		{"no-at-sign", false},
		{"", false},
		{"two@@example.com", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateEmail(%q) error = %v, expected valid=%v", tt.email, err, tt.valid)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Dev@Example.COM "); got != "dev@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
