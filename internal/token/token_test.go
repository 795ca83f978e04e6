package token

import "testing"

func TestTokensForDraws(t *testing.T) {
	discounted := Token{Name: "Jade", PerDraw: 160, PerTenDraw: 1500}
	cases := []struct {
		tok  Token
		n    int
		want int
	}{
		{Orundum, 0, 0},
		{Orundum, -3, 0},
		{Orundum, 1, 600},
		{Orundum, 10, 6000},
		{Orundum, 25, 15000},
		{discounted, 9, 1440},
		{discounted, 10, 1500},
		{discounted, 23, 3480},
		{Token{PerDraw: 250}, 20, 5000},
	}
	for _, c := range cases {
		if got := c.tok.TokensForDraws(c.n); got != c.want {
			t.Fatalf("%s x%d = %d, want %d", c.tok.Name, c.n, got, c.want)
		}
	}
}

func TestCostOf(t *testing.T) {
	c := Orundum.CostOf(11)
	if c.Token != "Orundum" || c.Amount != 6600 {
		t.Fatalf("cost = %+v", c)
	}
}
