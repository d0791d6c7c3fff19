package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VoucherKind distinguishes percentage vouchers from fixed-amount ones.
type VoucherKind string

const (
	VoucherPercent VoucherKind = "percent"
	VoucherFixed   VoucherKind = "fixed"
)

// Voucher is a named discount rule.
type Voucher struct {
	Code  string
	Kind  VoucherKind
	Value decimal.Decimal
}

var vouchers = map[string]Voucher{
	"SAVE10":  {Code: "SAVE10", Kind: VoucherPercent, Value: decimal.NewFromFloat(0.10)},
	"SAVE15":  {Code: "SAVE15", Kind: VoucherPercent, Value: decimal.NewFromFloat(0.15)},
	"SAVE50":  {Code: "SAVE50", Kind: VoucherFixed, Value: decimal.NewFromInt(50)},
	"SAVE100": {Code: "SAVE100", Kind: VoucherFixed, Value: decimal.NewFromInt(100)},
}

// LookupVoucher finds a voucher by code, ignoring case and surrounding space.
func LookupVoucher(code string) (Voucher, bool) {
	v, ok := vouchers[strings.ToUpper(strings.TrimSpace(code))]
	return v, ok
}

// DiscountOn returns the discount this voucher grants on subtotal. Fixed
// amounts never exceed the subtotal.
func (v Voucher) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsNegative() {
		return decimal.Zero
	}
	switch v.Kind {
	case VoucherPercent:
		return subtotal.Mul(v.Value)
	case VoucherFixed:
		return decimal.Min(v.Value, subtotal)
	default:
		return decimal.Zero
	}
}
