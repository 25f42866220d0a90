package domain

import "github.com/shopspring/decimal"

// Piso de odd: nenhuma opção paga menos que 1.10
var MinOdds = decimal.New(110, -2)

// Margem da casa embutida no recálculo pari-mutuel (10%)
var houseEdge = decimal.New(90, -2)

// ComputeOdds deriva a odd de uma opção a partir da distribuição de stake do mercado:
// odds = max(1.10, (marketTotal/optionStake) × 0.9), arredondado em 2 casas.
// Retorna ok=false quando o mercado ou a opção ainda não têm stake — a odd
// vigente permanece inalterada nesses casos.
func ComputeOdds(optionStake, marketTotal decimal.Decimal) (odds decimal.Decimal, ok bool) {
	if marketTotal.IsZero() || optionStake.IsZero() {
		return decimal.Zero, false
	}
	odds = marketTotal.Div(optionStake).Mul(houseEdge).Round(2)
	if odds.LessThan(MinOdds) {
		odds = MinOdds
	}
	return odds, true
}
