package extract

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"
)

const extractionModel = "gemini-2.5-flash"

const extractionPrompt = `Please extract the name, date, and time from the customer's message.
For relative dates like "tomorrow", "next week", "this weekend", etc., convert them to specific dates.
For times mentioned in natural language like "3 o'clock", "in the afternoon", "evening", etc., convert them to 24-hour format.
Today's date is %s. Use this as a reference for relative dates.
Return the result in the following JSON format only. Do not include any other text.

Example:
{
  "name": "John Doe",
  "date": "2024-03-15",
  "time": "15:00"
}

Customer message:
"%s"
`

// GeminiExtractor asks Gemini to do the whole-utterance extraction. Every
// failure path, including malformed model output, falls back to the
// deterministic extractor, so callers never see an error.
type GeminiExtractor struct {
	client   *genai.Client
	fallback Extractor
}

// NewGeminiExtractor connects to the Gemini API.
func NewGeminiExtractor(ctx context.Context, apiKey string, fallback Extractor) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiExtractor{client: client, fallback: fallback}, nil
}

func (ge *GeminiExtractor) Extract(ctx context.Context, text string, now time.Time) Info {
	prompt := fmt.Sprintf(extractionPrompt, now.Format("2006-01-02"), text)

	resp, err := ge.client.Models.GenerateContent(ctx, extractionModel, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("⚠️ Gemini extraction failed, using fallback: %v", err)
		return ge.fallback.Extract(ctx, text, now)
	}

	raw := strings.TrimSpace(resp.Text())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var info Info
	if err := sonic.Unmarshal([]byte(raw), &info); err != nil {
		log.Printf("⚠️ Gemini returned unparseable extraction, using fallback: %v", err)
		return ge.fallback.Extract(ctx, text, now)
	}
	return info
}
