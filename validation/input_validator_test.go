package validation

import (
	"strings"
	"testing"
)

func TestNewInputValidator(t *testing.T) {
	validator := NewInputValidator()

	if validator == nil {
		t.Fatal("NewInputValidator returned nil")
	}
	if _, ok := validator.(*InputValidatorImpl); !ok {
		t.Error("NewInputValidator should return *InputValidatorImpl")
	}
}

func TestValidateMedicineName_Valid(t *testing.T) {
	validator := NewInputValidator()

	validInputs := []string{
		"Aspirin",
		"advil",
		"Tylenol PM",
		`Tylenol "PM"`,
		"5% Dextrose",
		"Advil (ibuprofen)",
		"acetaminophen/codeine",
		"Children's Motrin",
		"Méthadone",
		"Me\u0301thadone",
		"ibuprofène 200 mg",
		"vitamin B-12",
		"",
		"   ",
	}

	for _, input := range validInputs {
		t.Run(input, func(t *testing.T) {
			if err := validator.ValidateMedicineName(input); err != nil {
				t.Errorf("Expected no error for %q, got: %v", input, err)
			}
		})
	}
}

func TestValidateMedicineName_Invalid(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{"too long", strings.Repeat("ab", 51), "too long"},
		{"too many words", "a b c d e f g h i j k", "too complex"},
		{"control character", "aspirin\x00", "control characters"},
		{"newline", "aspirin\nadvil", "control characters"},
		{"script tag", "<script>alert(1)</script>", "dangerous"},
		{"javascript url", "javascript:alert(1)", "dangerous"},
		{"sql", "x union select password", "dangerous"},
		{"command substitution", "$(rm -rf)", "dangerous"},
		{"path traversal", "../etc/passwd", "dangerous"},
		{"nosql", `{$ne: null}`, "dangerous"},
		{"semicolon", "aspirin;advil", "invalid characters"},
		{"angle bracket", "a<b", "invalid characters"},
		{"asterisk", "aspi*", "invalid characters"},
		{"repetition", "a" + strings.Repeat("z", 11), "excessive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMedicineName(tt.input)
			if err == nil {
				t.Fatalf("Expected error for %q", tt.input)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestValidateMedicineName_LengthCountsRunes(t *testing.T) {
	validator := NewInputValidator()

	// 100 two-byte runes
	name := strings.Repeat("éa", 50)
	if err := validator.ValidateMedicineName(name); err != nil {
		t.Errorf("100 characters should be accepted, got %v", err)
	}
}

func TestHasExcessiveRepetition(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"aspirin", false},
		{strings.Repeat("a", 10), false},
		{strings.Repeat("a", 11), true},
		{"x" + strings.Repeat("é", 11) + "y", true},
		{strings.Repeat("ab", 20), false},
	}

	for _, tt := range tests {
		if got := hasExcessiveRepetition(tt.input); got != tt.expected {
			t.Errorf("hasExcessiveRepetition(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"jane@example.com", "jane@example.com", false},
		{"  Jane.Doe@Example.COM ", "jane.doe@example.com", false},
		{"first+tag@sub.example.org", "first+tag@sub.example.org", false},
		{"", "", true},
		{"   ", "", true},
		{"not-an-email", "", true},
		{"Jane <jane@example.com>", "", true},
		{"jane@localhost", "", true},
		{"jane@", "", true},
		{strings.Repeat("a", 250) + "@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validator.ValidateEmail(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"minimum length", "12345678", false},
		{"maximum length", strings.Repeat("p", 72), false},
		{"too short", "1234567", true},
		{"empty", "", true},
		{"too long", strings.Repeat("p", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAccountName(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Jane Doe", false},
		{"accents", "Zoë Müller", false},
		{"empty", "  ", true},
		{"control", "Jane\x07", true},
		{"too long", strings.Repeat("n", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateAccountName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"+33 6 12 34 56 78", false},
		{"(555) 123-4567", false},
		{"555.123.4567", false},
		{"12345", true},
		{"call me", true},
		{strings.Repeat("1", 21), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validator.ValidatePhone(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePhone(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAccountID(t *testing.T) {
	validator := NewInputValidator()

	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"", -1, true},
		{"0", -1, true},
		{"-5", -1, true},
		{" 42", -1, true},
		{"42a", -1, true},
		{"9223372036854775808", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validator.ValidateAccountID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAccountID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ValidateAccountID(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}
