package market

import (
	"strings"

	"github.com/shopspring/decimal"

	"odds-arb-calculator/internal/odds"
)

// Side is one side of a binary market: the price to buy a contract paying
// $1 and the quantity available at that price.
type Side struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Book holds both sides of a binary market.
type Book struct {
	Yes Side `json:"yes"`
	No  Side `json:"no"`
}

// Overround is how far YES + NO prices exceed $1.
func (b Book) Overround() float64 {
	return b.Yes.Price + b.No.Price - 1
}

// Fair returns vig-free YES/NO probabilities implied by the book.
func (b Book) Fair(method odds.VigMethod) (yes, no float64, err error) {
	return odds.RemoveVig(method, b.Yes.Price, b.No.Price)
}

// Level is one price level of an ask ladder.
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// BestLevel returns the capacity at the best (lowest) ask price: equal-priced
// levels are aggregated, and levels with no price or no quantity are ignored.
// ok is false when no level is usable.
func BestLevel(levels []Level) (side Side, ok bool) {
	for _, l := range levels {
		if !(l.Price > 0) || !(l.Quantity > 0) {
			continue
		}
		switch {
		case !ok || l.Price < side.Price:
			side = Side{Price: l.Price, Quantity: l.Quantity}
			ok = true
		case l.Price == side.Price:
			side.Quantity += l.Quantity
		}
	}
	return side, ok
}

// Complement returns the other side's price for a binary market given one
// side's price text, 1 - x, keeping the number of decimal places the user
// typed ("0.52" → "0.48", "0.5" → "0.5", "0.515" → "0.485"). ok is false
// when raw is not a price in [0,1].
func Complement(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return "", false
	}

	places := int32(0)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		places = int32(len(s) - i - 1)
	}
	return decimal.NewFromInt(1).Sub(d).StringFixed(places), true
}
