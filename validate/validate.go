// Package validate holds the input rules for registration fields.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// IsValidEmail reports whether s is a local@domain.tld address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidPlayerID reports whether s is exactly digits ASCII decimal digits.
func IsValidPlayerID(s string, digits int) bool {
	return s != "" && isDigits(s) && len(s) == digits
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Rule names the check a reply failed.
type Rule int

const (
	RuleFormat Rule = iota + 1
	RuleEmail
	RuleDigits
	RuleLength
)

func (r Rule) String() string {
	switch r {
	case RuleFormat:
		return "format"
	case RuleEmail:
		return "email"
	case RuleDigits:
		return "digits"
	case RuleLength:
		return "length"
	default:
		return "unknown"
	}
}

// Violation is returned when input breaks a Rule.
type Violation struct {
	Rule   Rule
	Digits int
}

func (v *Violation) Error() string {
	switch v.Rule {
	case RuleFormat:
		return "expected an email and a player id separated by a space"
	case RuleEmail:
		return "invalid email format"
	case RuleDigits:
		return "player id must contain only digits"
	case RuleLength:
		return fmt.Sprintf("player id must be exactly %d digits", v.Digits)
	default:
		return "invalid input"
	}
}

// ParseReply splits a "<email> <player_id>" reply and checks both tokens.
// Checks run in order: token count, email, digits, length.
func ParseReply(content string, digits int) (email, playerID string, err error) {
	content = strings.ReplaceAll(strings.TrimSpace(content), "\n", " ")
	parts := strings.Fields(content)
	if len(parts) != 2 {
		return "", "", &Violation{Rule: RuleFormat, Digits: digits}
	}
	email, playerID = parts[0], parts[1]
	if err := CheckEmail(email); err != nil {
		return "", "", err
	}
	if err := CheckPlayerID(playerID, digits); err != nil {
		return "", "", err
	}
	return email, playerID, nil
}

// CheckEmail returns a *Violation when s is not a valid email.
func CheckEmail(s string) error {
	if !IsValidEmail(s) {
		return &Violation{Rule: RuleEmail}
	}
	return nil
}

// CheckPlayerID returns a *Violation naming the first failed player id rule.
func CheckPlayerID(s string, digits int) error {
	if s == "" || !isDigits(s) {
		return &Violation{Rule: RuleDigits, Digits: digits}
	}
	if len(s) != digits {
		return &Violation{Rule: RuleLength, Digits: digits}
	}
	return nil
}
