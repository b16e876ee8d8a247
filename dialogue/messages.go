package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"regbot/validate"
)

// Texts shown to users. Interaction handlers reuse the public ones.
const (
	MsgAlreadySubmitted = "You have already submitted. Updates are disabled."
	MsgInProgress       = "Your registration is already open in DM. Please reply there."
	MsgDMSent           = "DM sent. Please check your inbox."
	MsgDMUnavailable    = "I couldn’t DM you. Enable **Direct Messages** from server members (Privacy) and click **REGISTER** again."
	MsgShuttingDown     = "Registration is temporarily unavailable. Please try again in a moment."
	MsgSaved            = "Saved ✅"
	MsgCancelled        = "Cancelled. Click **REGISTER** again if you want to start over."
	MsgNotOwner         = "This confirmation belongs to someone else."
	MsgExpired          = "This confirmation has expired. Click **REGISTER** again to restart."

	msgTooManyAttempts = "Too many invalid attempts. Click REGISTER again to restart."
	msgReplyTimeout    = "Timed out waiting for your reply. Click REGISTER again to restart."
	msgConfirmTimeout  = "Timed out waiting for your confirmation. Click REGISTER again to restart."
	msgSuccess         = "✅ Saved. Your code will be sent by email."
)

// exampleID returns a sample player id of the given length.
func exampleID(digits int) string {
	const seq = "1234567890"
	var b strings.Builder
	for i := 0; i < digits; i++ {
		b.WriteByte(seq[i%len(seq)])
	}
	return b.String()
}

func hint(digits int) string {
	return fmt.Sprintf("Please use: `email@example.com %s`", exampleID(digits))
}

func greeting(digits int) string {
	return "Hi! Let's complete your registration.\n\n" +
		"Please send your **email and Player ID** in one message separated by space.\n" +
		fmt.Sprintf("Example: `email@example.com %s`", exampleID(digits))
}

// correction names the violated rule and the attempts left.
func correction(err error, digits, remaining int) string {
	var v *validate.Violation
	text := "Invalid input."
	if errors.As(err, &v) {
		switch v.Rule {
		case validate.RuleFormat:
			text = "Send exactly two values: your email and your Player ID."
		case validate.RuleEmail:
			text = "Invalid email format."
		case validate.RuleDigits:
			text = "Player ID must contain only digits."
		case validate.RuleLength:
			text = fmt.Sprintf("Player ID must be exactly %d digits.", digits)
		}
	}
	if remaining <= 0 {
		return text + "\n" + msgTooManyAttempts
	}
	return fmt.Sprintf("%s %s\nAttempts left: %d.", text, hint(digits), remaining)
}
