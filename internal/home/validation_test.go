package home

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "Living Room", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("x", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error should wrap ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestValidateHomeID(t *testing.T) {
	if err := ValidateHomeID(1); err != nil {
		t.Errorf("ValidateHomeID(1) error = %v", err)
	}
	if err := ValidateHomeID(0); !errors.Is(err, ErrInvalidHomeID) {
		t.Errorf("ValidateHomeID(0) should wrap ErrInvalidHomeID, got %v", err)
	}
	if err := ValidateHomeID(-5); !errors.Is(err, ErrInvalidHomeID) {
		t.Errorf("ValidateHomeID(-5) should wrap ErrInvalidHomeID, got %v", err)
	}
}
