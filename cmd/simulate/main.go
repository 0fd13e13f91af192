// Command simulate runs the reservation dialogue on the terminal: type what
// the caller would say, see what the agent answers. Digits 1 and 2 answer
// the confirmation prompt.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
	"github.com/tablevox/tablevox/dialog"
	"github.com/tablevox/tablevox/extract"
	"github.com/tablevox/tablevox/store"
)

func main() {
	log.SetFlags(0)

	profile := config.DefaultProfile()
	st, err := store.Open(":memory:")
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	registry := call.NewRegistry(nil, 0)
	defer registry.Shutdown()

	var extractor extract.Extractor = extract.RuleExtractor{}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		if ge, err := extract.NewGeminiExtractor(context.Background(), apiKey, extract.RuleExtractor{}); err == nil {
			log.Println("✅ Gemini extraction enabled")
			extractor = ge
		}
	}

	controller := dialog.NewController(
		registry,
		dialog.NewResponder(profile),
		extractor,
		st,
		"/voice/gather",
		"/voice/confirm",
	)

	callID := uuid.NewString()
	directive := controller.HandleIncoming(callID, "+440000000000")
	fmt.Printf("🤖 %s\n", directive.Text)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("📞 ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "quit" || input == "exit" {
			break
		}

		if directive.Mode == dialog.GatherDigits && (input == "1" || input == "2") {
			directive = controller.HandleConfirmation(ctx, callID, input, "")
		} else if directive.Mode == dialog.GatherDigits {
			directive = controller.HandleConfirmation(ctx, callID, "", input)
		} else {
			directive = controller.HandleSpeech(ctx, callID, input)
		}

		fmt.Printf("🤖 %s\n", directive.Text)
		if directive.Kind == dialog.DirectiveHangup {
			st, _ := registry.Get(callID)
			fmt.Printf("📴 Call ended (%s)\n", call.Describe(st))
			return
		}
	}
}
