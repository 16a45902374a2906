package validator

import (
	"testing"

	"github.com/ncobase/recruit/ecode"
)

type candidate struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"required,email"`
	Years int    `json:"years_experience" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name   string
		in     *candidate
		fields []string
	}{
		{"valid", &candidate{Name: "Ada", Email: "ada@example.com"}, nil},
		{"missing name", &candidate{Email: "ada@example.com"}, []string{"name"}},
		{"bad email and years", &candidate{Name: "Ada", Email: "nope", Years: -1}, []string{"email", "years_experience"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStruct(tt.in)
			if len(got) != len(tt.fields) {
				t.Fatalf("ValidateStruct() = %v, want fields %v", got, tt.fields)
			}
			for _, f := range tt.fields {
				if got[f] == "" {
					t.Errorf("missing message for %q in %v", f, got)
				}
			}
		})
	}
}

func TestValidateReturnsValidationError(t *testing.T) {
	if err := Validate(&candidate{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	err := Validate(candidate{})
	if !ecode.IsCode(err, ecode.ParamErr) {
		t.Fatalf("Validate() error = %v, want ParamErr", err)
	}
	if err.Error() != "The field 'email' is required." {
		t.Errorf("Validate() message = %q", err.Error())
	}
}
