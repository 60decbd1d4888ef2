package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MaxMessageLength bounds a customer message.
const MaxMessageLength = 2000

// ChatRequestSchema validates the POST /api/chat body.
var ChatRequestSchema = mustCompile(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "message":         {"type": "string", "minLength": 1, "maxLength": %d},
    "conversation_id": {"type": "string", "maxLength": 128}
  },
  "required": ["message"]
}`, MaxMessageLength))

// AnswerMessageJobSchema validates answer-customer-message job variables.
var AnswerMessageJobSchema = mustCompile(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "message":        {"type": "string", "maxLength": %d},
    "conversationId": {"type": "string", "maxLength": 128}
  },
  "required": ["message"]
}`, MaxMessageLength))

// LowStockAlertJobSchema validates low-stock-alert job variables.
var LowStockAlertJobSchema = mustCompile(`{
  "type": "object",
  "properties": {
    "threshold": {"type": "integer", "minimum": 0, "maximum": 100000}
  }
}`)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the messages of every failed field.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// ValidateDocument checks doc (a Go value) against schema.
func ValidateDocument(schema *gojsonschema.Schema, doc interface{}) *ValidationResult {
	return toResult(schema.Validate(gojsonschema.NewGoLoader(doc)))
}

// ValidateJSON checks a raw JSON document against schema.
func ValidateJSON(schema *gojsonschema.Schema, raw []byte) *ValidationResult {
	return toResult(schema.Validate(gojsonschema.NewBytesLoader(raw)))
}

func toResult(result *gojsonschema.Result, err error) *ValidationResult {
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if prop, ok := desc.Details()["property"].(string); ok && desc.Type() == "required" {
			field = prop
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}
