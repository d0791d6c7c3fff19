package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is what the catalogue hands to the cart when a customer adds an item.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// CartLine is a single product entry in the cart. There is at most one line
// per ProductID.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// UnmarshalJSON decodes a persisted line leniently: a price or quantity that
// cannot be parsed becomes zero instead of failing the whole cart.
func (l *CartLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"productId"`
		Name      string          `json:"name"`
		UnitPrice json.RawMessage `json:"unitPrice"`
		Quantity  json.RawMessage `json:"quantity"`
		AddedAt   string          `json:"addedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ProductID = rawText(raw.ProductID)
	l.Name = raw.Name
	l.UnitPrice = lenientDecimal(raw.UnitPrice)
	l.Quantity = lenientInt(raw.Quantity)
	l.AddedAt = time.Time{}
	if ts, err := time.Parse(time.RFC3339Nano, raw.AddedAt); err == nil {
		l.AddedAt = ts
	}
	return nil
}

func rawText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return text
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	d, err := decimal.NewFromString(rawText(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func lenientInt(raw json.RawMessage) int {
	text := rawText(raw)
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	d, err := decimal.NewFromString(text)
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(int64(math.MaxInt))) {
		return 0
	}
	return int(d.IntPart())
}

// AddQuantity returns a+b for non-negative quantities, or false when the sum
// does not fit in an int.
func AddQuantity(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// PricingPolicy controls automatic discount tiering.
type PricingPolicy struct {
	// Threshold is the subtotal that must be exceeded for the automatic discount.
	Threshold decimal.Decimal
	// Rate is the fraction of the subtotal taken off, in [0,1).
	Rate decimal.Decimal
}

// DefaultPricing takes 10% off subtotals above 2000.
func DefaultPricing() PricingPolicy {
	return PricingPolicy{
		Threshold: decimal.NewFromInt(2000),
		Rate:      decimal.NewFromFloat(0.10),
	}
}

// AutoDiscount returns the automatic discount for subtotal.
func (p PricingPolicy) AutoDiscount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.Threshold) {
		return subtotal.Mul(p.Rate)
	}
	return decimal.Zero
}

// Cart holds the lines and the pricing derived from them.
//
// Invariants after Recalculate: Total = Subtotal - Discount, 0 <= Discount <= Subtotal.
type Cart struct {
	Lines    []CartLine
	Voucher  string
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal is the sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IndexOf returns the position of the line for productID, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Recalculate re-derives Discount and Total. An active voucher is re-evaluated
// against the current subtotal; without one, automatic tiering applies.
func (c *Cart) Recalculate(policy PricingPolicy) {
	subtotal := c.Subtotal()

	if v, ok := LookupVoucher(c.Voucher); ok {
		c.Voucher = v.Code
		c.Discount = v.DiscountOn(subtotal)
	} else {
		c.Voucher = ""
		c.Discount = policy.AutoDiscount(subtotal)
	}
	c.Total = subtotal.Sub(c.Discount)
}

// View returns an immutable snapshot of the cart.
func (c *Cart) View() CartView {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return CartView{
		Items:     lines,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
		Discount:  c.Discount,
		Total:     c.Total,
		Voucher:   c.Voucher,
	}
}

// CartView is a read-only snapshot handed to callers.
type CartView struct {
	Items     []CartLine
	ItemCount int
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Voucher   string
}

func (v CartView) SubtotalText() string { return v.Subtotal.StringFixed(2) }
func (v CartView) DiscountText() string { return v.Discount.StringFixed(2) }
func (v CartView) TotalText() string    { return v.Total.StringFixed(2) }
