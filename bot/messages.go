package bot

import (
	"fmt"
	"strings"
)

func msgWelcome(names []string, hours int) string {
	return "Hi! I restyle photos.\n\n" +
		"1. Pick a style by sending its name:\n" + bulletList(names) + "\n" +
		"2. Send me a photo and I'll send back the stylized version.\n\n" +
		fmt.Sprintf("The first transform per selected style is free. /pay unlocks %d hours of unlimited transforms.", hours)
}

func msgStyleSelected(name string) string {
	return fmt.Sprintf("Style %q selected. Now send me a photo.", name)
}

func msgUnknownStyle(names []string) string {
	return "I don't know that style. Available styles:\n" + bulletList(names)
}

const msgSelectStyleFirst = "Select a style first: send me one of the style names, then a photo."

func msgPayPrompt(link string) string {
	return "To keep transforming, pay here and send me a photo of the receipt:\n" + link
}

func msgFreeUseSpent(link string, hours int) string {
	return "That was your free transform for this style.\n\n" +
		fmt.Sprintf("Pay here and send a photo of the receipt to unlock %d hours of unlimited transforms:\n%s", hours, link)
}

const msgProofReceived = "Thanks! Your receipt was forwarded for review. You'll get a confirmation here once it's approved."

func msgApprovedUser(hours int) string {
	return fmt.Sprintf("Payment confirmed. You have unlimited transforms for the next %d hours. Enjoy!", hours)
}

func msgApprovedAdmin(userID int64, hours int) string {
	return fmt.Sprintf("Approved: user %d is entitled for %d hours.", userID, hours)
}

const msgTransformFailed = "Sorry, I couldn't process that photo right now. Your style selection is kept, please resend the photo."

const msgFetchFailed = "Sorry, I couldn't download that photo. Please resend it."

func proofCaption(userID int64) string {
	return fmt.Sprintf("approve_%d", userID)
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("  • ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
