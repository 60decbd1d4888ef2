package intent

import (
	"testing"

	"support-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    models.Intent
	}{
		{"order keyword", "Where is my order?", models.IntentOrderStatus},
		{"tracking keyword", "Do you have a TRACKING number", models.IntentOrderStatus},
		{"status keyword", "status please", models.IntentOrderStatus},
		{"stock keyword", "Is this in stock", models.IntentStockCheck},
		{"available keyword", "Are hoodies available?", models.IntentStockCheck},
		{"quantity keyword", "what quantity is left", models.IntentStockCheck},
		{"product keyword", "Tell me about this product", models.IntentProductQuery},
		{"clothing keyword", "What clothing do you sell", models.IntentProductQuery},
		{"no keyword", "hello there", models.IntentGeneralHelp},
		{"empty", "", models.IntentGeneralHelp},
		{"order beats stock", "is the item in my order in stock", models.IntentOrderStatus},
		{"stock beats product", "is that product available", models.IntentStockCheck},
		{"substring match", "I'm reordering", models.IntentOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassify_OrderPrecedenceOverEveryStockKeyword(t *testing.T) {
	for _, orderKW := range rules[0].keywords {
		for _, stockKW := range rules[1].keywords {
			msg := stockKW + " and " + orderKW
			assert.Equal(t, models.IntentOrderStatus, Classify(msg), msg)
		}
	}
}

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		message string
		want    string
		found   bool
	}{
		{"order 12345", "12345", true},
		{"order #987", "987", true},
		{"my ref is 54321", "54321", true},
		{"hi there", "", false},
		{"Order ID 42 please", "42", true},
		{"ORDER   7", "7", true},
		{"order 12 and also 99999", "12", true},
		{"ref 1234", "", false},
		{"order #12 ref 55555", "12", true},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := ExtractOrderID(tt.message)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractProductTerm(t *testing.T) {
	tests := []struct {
		message string
		want    string
		found   bool
	}{
		{"I love my hoodie", "hoodie", true},
		{"Any JEANS left?", "jeans", true},
		{"t-shirt in blue", "t-shirt", true},
		{"jacket or dress", "dress", true},
		{"new sweatshirt", "tshirt", true},
		{"plain shirt", "shirt", true},
		{"fresh sneakers", "sneakers", true},
		{"nothing relevant", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := ExtractProductTerm(tt.message)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract(t *testing.T) {
	e := Extract("order 12345 had the wrong hoodie")
	assert.Equal(t, "12345", e.OrderID)
	assert.Equal(t, "hoodie", e.ProductTerm)

	assert.Equal(t, models.EntityExtraction{}, Extract("hello"))
}

func BenchmarkClassify(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Classify("Can you check whether the blue hoodie is available in medium?")
	}
}
