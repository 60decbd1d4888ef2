// internal/workers/inventory/low-stock-alert/models.go
package lowstockalert

type Input struct {
	Threshold *int `json:"threshold,omitempty"`
}

type Output struct {
	Threshold    int    `json:"threshold"`
	ProductCount int    `json:"productCount"`
	Published    bool   `json:"published"`
	MessageID    string `json:"messageId,omitempty"`
}
