// Package validation checks user input at the HTTP boundary before it
// reaches the lookup service or the account store.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/pharmainsight-api/interfaces"
)

const (
	maxMedicineNameLength = 100
	maxMedicineNameWords  = 10
	maxAccountNameLength  = 100
	maxEmailLength        = 254
	minPasswordLength     = 8
	maxPasswordLength     = 72 // bcrypt ignores bytes past 72
	maxRepeatedRunes      = 10
)

// Pre-compiled patterns, reused for all validations
var (
	// Letters in any script, combining marks, digits and the punctuation found
	// in label names ("Tylenol PM", "5% Dextrose", "Advil (ibuprofen)")
	medicineNameRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+'",/()%]+$`)

	phoneRegex = regexp.MustCompile(`^\+?[0-9 ().\-]{6,20}$`)

	// Substring checks are cheaper than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"union select", "drop table", "delete from", "insert into",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// Compile-time check to ensure InputValidatorImpl implements InputValidator
var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

type InputValidatorImpl struct{}

func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateMedicineName rejects names that cannot be a product name. Blank
// input is accepted here: the lookup service reports it as empty input.
func (v *InputValidatorImpl) ValidateMedicineName(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	if utf8.RuneCountInString(trimmed) > maxMedicineNameLength {
		return fmt.Errorf("medicine name too long: maximum %d characters", maxMedicineNameLength)
	}

	if len(strings.Fields(trimmed)) > maxMedicineNameWords {
		return fmt.Errorf("medicine name too complex: maximum %d words allowed", maxMedicineNameWords)
	}

	if hasControlCharacters(trimmed) {
		return fmt.Errorf("medicine name contains control characters")
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("medicine name contains potentially dangerous content")
		}
	}

	if !medicineNameRegex.MatchString(trimmed) {
		return fmt.Errorf("medicine name contains invalid characters. Only letters, numbers, spaces and common punctuation are allowed")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("medicine name contains excessive character repetition")
	}

	return nil
}

// ValidateEmail accepts a bare address ("jane@example.com") and returns it
// lower-cased. Display names ("Jane <jane@example.com>") are rejected.
func (v *InputValidatorImpl) ValidateEmail(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("email cannot be empty")
	}

	if len(trimmed) > maxEmailLength {
		return "", fmt.Errorf("email too long: maximum %d characters", maxEmailLength)
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || addr.Name != "" {
		return "", fmt.Errorf("email is not a valid address")
	}

	if !strings.Contains(trimmed[strings.LastIndex(trimmed, "@")+1:], ".") {
		return "", fmt.Errorf("email domain must contain a dot")
	}

	return strings.ToLower(trimmed), nil
}

func (v *InputValidatorImpl) ValidatePassword(input string) error {
	if len(input) < minPasswordLength {
		return fmt.Errorf("password too short: minimum %d characters", minPasswordLength)
	}
	if len(input) > maxPasswordLength {
		return fmt.Errorf("password too long: maximum %d bytes", maxPasswordLength)
	}
	return nil
}

func (v *InputValidatorImpl) ValidateAccountName(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxAccountNameLength {
		return fmt.Errorf("name too long: maximum %d characters", maxAccountNameLength)
	}
	if hasControlCharacters(trimmed) {
		return fmt.Errorf("name contains control characters")
	}
	return nil
}

// ValidatePhone accepts an empty value; the phone number is optional.
func (v *InputValidatorImpl) ValidatePhone(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if !phoneRegex.MatchString(trimmed) {
		return fmt.Errorf("phone must contain 6 to 20 digits, spaces or separators")
	}
	return nil
}

// ValidateAccountID parses a positive numeric account id
func (v *InputValidatorImpl) ValidateAccountID(input string) (int64, error) {
	if input == "" {
		return -1, fmt.Errorf("input cannot be empty")
	}

	// ParseInt rejects surrounding whitespace and non-digits
	id, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}
	if id <= 0 {
		return -1, fmt.Errorf("account id must be positive")
	}

	return id, nil
}

func hasControlCharacters(input string) bool {
	for _, r := range input {
		if unicode.IsControl(r) && r != ' ' && r != '\t' {
			return true
		}
	}
	return false
}

// hasExcessiveRepetition reports the same rune repeated more than
// maxRepeatedRunes times in a row
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for i, r := range input {
		if i > 0 && r == prev {
			run++
			if run > maxRepeatedRunes {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
