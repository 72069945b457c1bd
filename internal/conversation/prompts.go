package conversation

import (
	"fmt"
	"strings"
)

// Canned replies used when the LLM cannot produce text. The first message must
// never block on a completion failure.
const (
	defaultIntroMessage    = "Hi! I'd love to introduce you to a new product."
	defaultFollowUpMessage = "Thanks for your reply! Would you be open to a quick chat with the founder?"
)

func buildIntroPrompt(productSummary, targetDescription string) string {
	return fmt.Sprintf(
		"You are an outreach agent. Write a friendly, concise intro message describing: %s. "+
			"Target: %s. Goal: get them interested in chatting with the founder.",
		productSummary, targetDescription,
	)
}

func buildFollowUpPrompt(productSummary, targetDescription string, history []Turn, reply string) string {
	return fmt.Sprintf(
		"You are an outreach agent. You introduced the product: %s to a person described as: %s.\n"+
			"Conversation history:\n%s\n"+
			"They replied: '%s'. Keep the conversation going and close it if the person agrees or "+
			"disagrees to meet the founder. If they agree, thank them and end the conversation. "+
			"If they disagree, politely thank them and end the conversation.",
		productSummary, targetDescription, renderHistory(history), reply,
	)
}

func buildStatusPrompt(productSummary, targetDescription string, history []Turn) string {
	return fmt.Sprintf(
		"You are an outreach agent. Here is the conversation history with a user about the product: %s. "+
			"The target person is: %s.\n"+
			"Conversation history:\n%s\n"+
			"Has the user agreed to meet the founder? Reply with exactly one of AGREED, DISAGREED, or CONTINUE.",
		productSummary, targetDescription, renderHistory(history),
	)
}

func renderHistory(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	}
	return strings.Join(lines, "\n")
}
