package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultVariant stands in for an absent color or size in identity keys.
const DefaultVariant = "default"

// CartLine is one purchasable configuration of a product in the cart.
// Color and Size are optional, the empty string means absent.
type CartLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Image     string
	Color     string
	Size      string

	Quantity int
	MaxStock int
}

func (l CartLine) Key() Key {
	return KeyOf(l.ProductID, l.Color, l.Size)
}

// Key identifies a cart line. Two lines with equal keys are merged.
type Key struct {
	ProductID int64
	Color     string
	Size      string
}

func KeyOf(productID int64, color, size string) Key {
	if color == "" {
		color = DefaultVariant
	}
	if size == "" {
		size = DefaultVariant
	}

	return Key{ProductID: productID, Color: color, Size: size}
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%s-%s", k.ProductID, k.Color, k.Size)
}

// Snapshot is the cart state at one point in time. Total and ItemCount
// are always the fold of Lines.
type Snapshot struct {
	Lines     []CartLine
	Total     Money
	ItemCount int
}

func NewSnapshot(lines []CartLine, unit currency.Unit) Snapshot {
	total := decimal.Zero
	count := 0

	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		count += line.Quantity
	}

	return Snapshot{
		Lines:     slices.Clone(lines),
		Total:     Money{Amount: total, Currency: unit},
		ItemCount: count,
	}
}

func (s Snapshot) Line(key Key) (CartLine, bool) {
	for _, line := range s.Lines {
		if line.Key() == key {
			return line, true
		}
	}

	return CartLine{}, false
}
