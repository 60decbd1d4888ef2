// internal/generation/prompt.go
package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"

	"support-chatbot/internal/models"
)

const SystemPrompt = `You are a helpful customer support chatbot for an e-commerce clothing website.
You can help customers with:
- Product information and availability
- Order status and tracking
- Stock levels
- General customer service questions

Always be polite, helpful, and provide accurate information based on the available data.
If you don't have enough information to answer a question, ask for clarification.`

const intentSystemPrompt = "You are an intent classification system. Return only valid JSON."

const intentPromptTemplate = `Analyze the following customer message and extract the intent and relevant information:

Message: %q

Return a JSON object with:
- intent: "product_query", "order_status", "stock_check", "general_help"
- entities: relevant information like product names, order IDs, etc.
- requires_clarification: boolean indicating if more info is needed`

// charsPerToken approximates token counts when the encoder cannot load.
const charsPerToken = 4

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

func loadCodec() tokenizer.Codec {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	return codec
}

// BuildUserPrompt renders the message and, when the bundle is non-empty, one
// "key: value" line per entry in bundle order. The context block is cut to
// maxContextTokens tokens; zero disables the cut.
func BuildUserPrompt(message string, bundle models.ContextBundle, maxContextTokens int) string {
	prompt := "User message: " + message
	if bundle.Len() == 0 {
		return prompt
	}

	lines := make([]string, 0, bundle.Len())
	for _, e := range bundle.Entries() {
		lines = append(lines, e.Key+": "+formatValue(e.Value))
	}
	contextText := TruncateTokens(strings.Join(lines, "\n"), maxContextTokens)

	return prompt + "\n\nAvailable context:\n" + contextText
}

func buildIntentPrompt(message string) string {
	return fmt.Sprintf(intentPromptTemplate, message)
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// TruncateTokens returns text cut to at most limit cl100k tokens.
func TruncateTokens(text string, limit int) string {
	if limit <= 0 || text == "" {
		return text
	}

	enc := loadCodec()
	if enc == nil {
		return truncateBytes(text, limit*charsPerToken)
	}

	ids, _, err := enc.Encode(text)
	if err != nil || len(ids) <= limit {
		return text
	}
	cut, err := enc.Decode(ids[:limit])
	if err != nil {
		return text
	}
	return cut
}

// truncateBytes cuts text to at most maxBytes without splitting a rune.
func truncateBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	for maxBytes > 0 && !utf8.RuneStart(text[maxBytes]) {
		maxBytes--
	}
	return text[:maxBytes]
}

// CountTokens reports the cl100k token count of text, or an estimate.
func CountTokens(text string) int {
	if enc := loadCodec(); enc != nil {
		if ids, _, err := enc.Encode(text); err == nil {
			return len(ids)
		}
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
