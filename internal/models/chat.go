// internal/models/chat.go
package models

import "time"

// Intent is the coarse category of a customer message.
type Intent string

const (
	IntentOrderStatus  Intent = "order_status"
	IntentStockCheck   Intent = "stock_check"
	IntentProductQuery Intent = "product_query"
	IntentGeneralHelp  Intent = "general_help"
)

// Intents lists every intent in router precedence order.
var Intents = []Intent{IntentOrderStatus, IntentStockCheck, IntentProductQuery, IntentGeneralHelp}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// EntityExtraction holds what the router pulled out of a message.
type EntityExtraction struct {
	OrderID     string `json:"order_id,omitempty"`
	ProductTerm string `json:"product_term,omitempty"`
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
	Intent         Intent    `json:"-"`
}

// ConversationRecord is one persisted message/reply exchange.
type ConversationRecord struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserMessage    string    `json:"user_message"`
	AIResponse     string    `json:"ai_response"`
	CreatedAt      time.Time `json:"created_at"`
}
