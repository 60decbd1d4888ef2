// internal/generation/hint.go
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"support-chatbot/internal/models"
)

const (
	hintTemperature = 0.1
	hintMaxTokens   = 200
)

// IntentHint is the model's own reading of a message. It is advisory only.
type IntentHint struct {
	Intent                models.Intent          `json:"intent"`
	Entities              map[string]interface{} `json:"entities"`
	RequiresClarification bool                   `json:"requires_clarification"`
}

// ClassifyIntentHint asks the model to classify message and parses the JSON
// object out of its reply.
func (c *Client) ClassifyIntentHint(ctx context.Context, message string) (*IntentHint, error) {
	text, err := c.complete(ctx, intentSystemPrompt, buildIntentPrompt(message), hintTemperature, hintMaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseIntentHint(text)
}

// ParseIntentHint reads {intent, entities, requires_clarification} from text,
// tolerating prose or code fences around the object.
func ParseIntentHint(text string) (*IntentHint, error) {
	raw := extractJSONObject(text)
	if raw == "" || !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: hint is not a JSON object", ErrGenerationFailed)
	}

	parsed := gjson.Parse(raw)
	hint := &IntentHint{
		Intent:                models.Intent(strings.ToLower(strings.TrimSpace(parsed.Get("intent").String()))),
		Entities:              map[string]interface{}{},
		RequiresClarification: parsed.Get("requires_clarification").Bool(),
	}
	if !hint.Intent.Valid() {
		return nil, fmt.Errorf("%w: unknown intent %q", ErrGenerationFailed, hint.Intent)
	}
	if entities, ok := parsed.Get("entities").Value().(map[string]interface{}); ok {
		hint.Entities = entities
	}
	return hint, nil
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
