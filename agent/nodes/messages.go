package enginenode

import (
	"fmt"
	"strings"

	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
	validatex "github.com/sirinut/regibot/agent/validate"
)

// FallbackReply is the guaranteed answer when no node produced one.
const FallbackReply = "I'm not sure how to help with that. Type 'help' to see what I can do."

const (
	msgCreateIntro = "I'll help you create a new registration. Let's start!\n\nWhat is your full name?"

	msgReadAskEmail   = "I can look up your registration. What email address is it registered under?"
	msgUpdateAskEmail = "I can update your registration. What email address is it registered under?"
	msgDeleteAskEmail = "I can delete your registration. What email address is it registered under?"

	msgHelp = "Here's what I can do for you:\n\n" +
		"📝 **Create** a new registration - just say \"register\" or \"sign up\"\n" +
		"🔍 **View** your registration - say \"show my info\" or \"view registration\"\n" +
		"✏️  **Update** your details - say \"update\" or \"change my info\"\n" +
		"🗑️  **Delete** your registration - say \"delete\" or \"remove my account\"\n\n" +
		"What would you like to do?"

	msgExit = "Thank you for using the registration assistant. Goodbye! 👋"

	msgGenericError = "❌ An error occurred. Please try again."
	msgStoreError   = "❌ An error occurred while checking your email. Please try again:"
)

func msgNotFound(email string) string {
	return fmt.Sprintf("❌ No registration found for %s.\n\nWould you like to create a new registration instead?", email)
}

func msgDuplicateEmail(email string) string {
	return fmt.Sprintf("❌ The email %s is already registered.\n\nPlease provide a different email address:", email)
}

func msgNextField(f statex.Field) string {
	return fmt.Sprintf("Great! ✓\n\nNow, please provide your %s:", f.PromptLabel())
}

func msgValidationRetry(f statex.Field, err error) string {
	return fmt.Sprintf("❌ %s\n\nPlease provide a valid %s:", validatex.Reason(err), f.PromptLabel())
}

func msgUpdateSelection() string {
	var b strings.Builder
	b.WriteString("Which field would you like to update?\n\n")
	for i, f := range statex.UpdateableFields() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Label())
	}
	b.WriteString("\nJust tell me the field name or number:")
	return b.String()
}

func msgUnknownSelection(input string) string {
	return fmt.Sprintf("❌ I didn't recognise %q as a field.\n\n%s", input, msgUpdateSelection())
}

func recordDetails(rec *record.Record) string {
	return fmt.Sprintf("👤 Name: %s\n📧 Email: %s\n📱 Phone: %s\n🎂 Date of Birth: %s\n🏠 Address: %s",
		rec.FullName, rec.Email, rec.PhoneNumber,
		rec.DateOfBirth.Format(validatex.DateLayout), rec.Address)
}
