// internal/workers/chatbot/answer-customer-message/models.go
package answercustomermessage

import "time"

type Input struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

type Output struct {
	Reply          string    `json:"reply"`
	ConversationID string    `json:"conversationId"`
	Intent         string    `json:"intent"`
	Timestamp      time.Time `json:"timestamp"`
}
