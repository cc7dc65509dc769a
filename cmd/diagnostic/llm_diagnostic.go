// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/iyunix/kairos/internal/config"
	"github.com/iyunix/kairos/internal/services/ai"
	chatservice "github.com/iyunix/kairos/internal/services/chat"
)

// Sends one tutor turn through the configured provider and prints the reply.
func main() {
	text := flag.String("text", "Hola, ¿cómo estás?", "learner utterance")
	language := flag.String("language", "Spanish", "target language")
	level := flag.String("level", "Beginner", "fluency level")
	topic := flag.String("topic", "General Conversation", "conversation topic")
	showPrompt := flag.Bool("prompt", false, "print the system prompt")
	flag.Parse()

	cfg := config.Load()
	fmt.Printf("Testing %s provider with deployment %q...\n", cfg.AIProvider, cfg.DeploymentName)

	ctx := context.Background()
	provider, err := ai.NewProvider(ctx, ai.ConfigFrom(cfg))
	if err != nil {
		log.Fatalf("Provider setup failed: %v", err)
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	profile := chatservice.Profile{TargetLanguage: *language, FluencyLevel: *level, Topic: *topic}
	transcript := chatservice.BuildTranscript(profile, []ai.Message{{Role: ai.RoleUser, Content: *text}})
	if *showPrompt {
		fmt.Println(transcript[0].Content)
	}

	reply, err := provider.GetCompletion(ctx, cfg.DeploymentName, transcript)
	if err != nil {
		log.Fatalf("Chat completion failed: %v", err)
	}
	fmt.Printf("Response: %s\n", reply)
}
