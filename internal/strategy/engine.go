package strategy

import "StockScreener/internal/model"

// Inputs are the latest indicator readings the scorer looks at.
// Any unavailable input contributes zero.
type Inputs struct {
	RSI     model.Metric
	MACD    model.Metric
	Signal  model.Metric
	PERatio model.Metric
}

const (
	reasonBuy  = "Favorable technical and fundamental indicators"
	reasonSell = "Unfavorable technical and fundamental indicators"
	reasonHold = "Neutral indicators"
)

// mapAction maps an integer score to an action and its reason.
func mapAction(score int) (model.Action, string) {
	switch {
	case score > 0:
		return model.ActionBuy, reasonBuy
	case score < 0:
		return model.ActionSell, reasonSell
	default:
		return model.ActionHold, reasonHold
	}
}

// Evaluate scores the inputs and returns the recommendation.
func Evaluate(in Inputs) model.Recommendation {
	factors := []model.FactorScore{
		scoreRSI(in.RSI),
		scoreMACD(in.MACD, in.Signal),
		scorePERatio(in.PERatio),
	}

	total := 0
	for _, f := range factors {
		total += f.Score
	}

	action, reason := mapAction(total)
	return model.Recommendation{
		Action:  action,
		Reason:  reason,
		Score:   total,
		Factors: factors,
	}
}
