package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
)

// Quick manual check of the configured LLM provider against the outreach
// prompts. Not wired into any build pipeline.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := conversation.LLMRequest{
		Messages: []conversation.ChatMessage{{
			Role: conversation.ChatRoleUser,
			Content: "You are an outreach agent. Write a friendly, concise intro message describing: " +
				"a scheduling tool for dental clinics. Target: clinic owners frustrated with no-shows. " +
				"Goal: get them interested in chatting with the founder.",
		}},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	divider := strings.Repeat("=", 60)
	fmt.Println(divider)
	fmt.Println("LLM Provider Test")
	fmt.Println(divider)

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		fmt.Println("\nGEMINI_API_KEY not set, nothing to test")
		return
	}

	modelID := os.Getenv("GEMINI_MODEL_ID")
	if modelID == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := conversation.NewGeminiLLMClient(ctx, geminiKey, modelID)
	if err != nil {
		log.Fatalf("create gemini client: %v", err)
	}
	defer client.Close()

	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("gemini error: %v", err)
	}

	fmt.Printf("\nResponse (%v):\n%s\n", elapsed.Round(time.Millisecond), resp.Text)
	fmt.Printf("Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)

	fmt.Println("\nStatus classification check...")
	statusReq := conversation.LLMRequest{
		Messages: []conversation.ChatMessage{{
			Role: conversation.ChatRoleUser,
			Content: "You are an outreach agent. Here is the conversation history with a user about the product: " +
				"a scheduling tool. The target person is: a clinic owner.\n" +
				"Conversation history:\nAGENT: Would you like to chat with the founder?\nLEAD: Sure, set it up!\n" +
				"Has the user agreed to meet the founder? Reply with exactly one of AGREED, DISAGREED, or CONTINUE.",
		}},
		MaxTokens: 10,
	}
	statusResp, err := client.Complete(ctx, statusReq)
	if err != nil {
		log.Fatalf("status check error: %v", err)
	}
	fmt.Printf("Raw: %q  Parsed: %s\n", statusResp.Text, conversation.ParseOutcome(statusResp.Text))
}
