// Package intent classifies customer messages with keyword heuristics and
// pulls order ids and garment terms out of the text.
package intent

import (
	"regexp"
	"strings"

	"support-chatbot/internal/models"
)

// keywordRule maps a keyword set to an intent. Rules are checked in order and
// the first rule with any keyword present in the message wins.
type keywordRule struct {
	intent   models.Intent
	keywords []string
}

var rules = []keywordRule{
	{models.IntentOrderStatus, []string{"order", "status", "tracking"}},
	{models.IntentStockCheck, []string{"stock", "available", "quantity"}},
	{models.IntentProductQuery, []string{"product", "item", "clothing"}},
}

// orderIDPatterns are tried in order; the first that matches supplies the id.
var orderIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`order\s+(?:id\s+)?(\d+)`),
	regexp.MustCompile(`order\s+#(\d+)`),
	regexp.MustCompile(`(\d{5,})`),
}

// ProductTerms is the garment vocabulary, in match priority order.
// "t-shirt" and "tshirt" precede "shirt" so the longer term is reported.
var ProductTerms = []string{
	"t-shirt", "tshirt", "shirt", "pants", "jeans", "dress", "skirt",
	"jacket", "hoodie", "sweater", "sweatshirt", "shorts", "blouse",
	"sneakers",
}

// Classify returns the intent of message. It never fails; messages without
// any keyword are general_help.
func Classify(message string) models.Intent {
	lower := strings.ToLower(message)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return models.IntentGeneralHelp
}

// ExtractOrderID returns the first order identifier found in message.
func ExtractOrderID(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, re := range orderIDPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractProductTerm returns the first vocabulary term contained in message.
func ExtractProductTerm(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, term := range ProductTerms {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}

// Extract runs both entity extractors.
func Extract(message string) models.EntityExtraction {
	var e models.EntityExtraction
	e.OrderID, _ = ExtractOrderID(message)
	e.ProductTerm, _ = ExtractProductTerm(message)
	return e
}
