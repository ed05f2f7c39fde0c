package inventory

import "github.com/shopspring/decimal"

// costScale decimales del costo unitario persistido (NUMERIC(14,4)).
const costScale = 4

// WeightedAverageCost costo unitario después de recibir received unidades a receivedCost:
//
//	(onHand*unitCost + received*receivedCost) / (onHand + received)
//
// Un stock negativo cuenta como cero, de modo que la entrada fija el costo.
func WeightedAverageCost(onHand, unitCost, received, receivedCost decimal.Decimal) decimal.Decimal {
	onHand = decimal.Max(onHand, decimal.Zero)
	total := onHand.Add(received)
	if !total.IsPositive() {
		return decimal.Zero
	}
	value := onHand.Mul(unitCost).Add(received.Mul(receivedCost))
	return value.DivRound(total, costScale)
}
