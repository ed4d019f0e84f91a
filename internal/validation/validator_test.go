package validation

import (
	"errors"
	"testing"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	URL   string `json:"url" validate:"required,url"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		wantField string
	}{
		{"valid", sample{Title: "go", URL: "https://go.dev"}, ""},
		{"missing title", sample{URL: "https://go.dev"}, "added[0].title"},
		{"title too long", sample{Title: "golang", URL: "https://go.dev"}, "added[0].title"},
		{"bad url", sample{Title: "go", URL: "not a url"}, "added[0].url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct("added[0]", tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
