package model

// Action is the recommended trade direction.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// FactorScore represents a single scoring rule's contribution.
type FactorScore struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Commentary string `json:"commentary"`
}

// Recommendation is the final output of the strategy engine.
type Recommendation struct {
	Action  Action        `json:"action"`
	Reason  string        `json:"reason"`
	Score   int           `json:"score"`
	Factors []FactorScore `json:"factors"`
}
