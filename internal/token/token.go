package token

// Token defines how much currency a draw costs.
type Token struct {
	Name       string // e.g. "Orundum"
	PerDraw    int    // tokens per single draw, e.g. 600
	PerTenDraw int    // optional; if 0 -> equal to 10 * PerDraw
}

// Orundum is the default headhunting currency: 600 per draw, 6000 per ten.
var Orundum = Token{Name: "Orundum", PerDraw: 600, PerTenDraw: 6000}

// TokensForDraws returns how many tokens are required for n draws.
// Full tens are charged at PerTenDraw when it is set.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 && n >= 10 {
		tens := n / 10
		rem := n % 10
		return tens*t.PerTenDraw + rem*t.PerDraw
	}
	return n * t.PerDraw
}

// Cost is the currency spent by one draw request.
type Cost struct {
	Token  string `json:"token"`
	Amount int    `json:"amount"`
}

// CostOf returns the cost of n draws.
func (t Token) CostOf(n int) Cost {
	return Cost{Token: t.Name, Amount: t.TokensForDraws(n)}
}
