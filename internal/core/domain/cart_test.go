package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCartLine_UnmarshalJSON_Lenient(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantPrice string
		wantQty   int
	}{
		{"numbers", `{"productId":"a","unitPrice":12.5,"quantity":2}`, "12.5", 2},
		{"strings", `{"productId":"a","unitPrice":"12.5","quantity":"2"}`, "12.5", 2},
		{"garbage price", `{"productId":"a","unitPrice":"abc","quantity":2}`, "0", 2},
		{"null values", `{"productId":"a","unitPrice":null,"quantity":null}`, "0", 0},
		{"negative values", `{"productId":"a","unitPrice":-3,"quantity":-1}`, "0", 0},
		{"wrong types", `{"productId":"a","unitPrice":{"x":1},"quantity":[1]}`, "0", 0},
		{"fractional quantity", `{"productId":"a","unitPrice":1,"quantity":2.7}`, "1", 2},
		{"oversized quantity", `{"productId":"a","unitPrice":1,"quantity":1e30}`, "1", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var l CartLine
			if err := json.Unmarshal([]byte(tc.raw), &l); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !l.UnitPrice.Equal(dec(tc.wantPrice)) {
				t.Fatalf("price = %s, want %s", l.UnitPrice, tc.wantPrice)
			}
			if l.Quantity != tc.wantQty {
				t.Fatalf("quantity = %d, want %d", l.Quantity, tc.wantQty)
			}
		})
	}
}

func TestCartLine_NumericProductID(t *testing.T) {
	var l CartLine
	if err := json.Unmarshal([]byte(`{"productId":17,"unitPrice":1,"quantity":1}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.ProductID != "17" {
		t.Fatalf("product id = %q", l.ProductID)
	}
}

func TestCart_Recalculate(t *testing.T) {
	policy := DefaultPricing()

	c := &Cart{Lines: []CartLine{{ProductID: "a", UnitPrice: dec("1000"), Quantity: 3}}}
	c.Recalculate(policy)
	if !c.Discount.Equal(dec("300")) || !c.Total.Equal(dec("2700")) {
		t.Fatalf("auto tier: discount=%s total=%s", c.Discount, c.Total)
	}

	c.Voucher = "save100"
	c.Recalculate(policy)
	if c.Voucher != "SAVE100" || !c.Discount.Equal(dec("100")) {
		t.Fatalf("voucher: code=%s discount=%s", c.Voucher, c.Discount)
	}

	c.Voucher = "EXPIRED"
	c.Recalculate(policy)
	if c.Voucher != "" || !c.Discount.Equal(dec("300")) {
		t.Fatalf("unknown stored voucher should fall back to tiering: %+v", c)
	}

	empty := &Cart{}
	empty.Recalculate(policy)
	if !empty.Total.IsZero() || !empty.Discount.IsZero() {
		t.Fatalf("empty cart should be zero: %+v", empty)
	}
}

func TestCartView_Text(t *testing.T) {
	c := &Cart{Lines: []CartLine{{ProductID: "a", UnitPrice: dec("33.333"), Quantity: 1}}}
	c.Recalculate(DefaultPricing())
	v := c.View()

	if v.SubtotalText() != "33.33" || v.DiscountText() != "0.00" || v.TotalText() != "33.33" {
		t.Fatalf("unexpected text: %s %s %s", v.SubtotalText(), v.DiscountText(), v.TotalText())
	}

	v.Items[0].Quantity = 99
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("view shares lines with cart")
	}
}

func TestVoucher_DiscountOn(t *testing.T) {
	tests := []struct {
		code     string
		subtotal string
		want     string
	}{
		{"SAVE10", "300", "30"},
		{" save15 ", "200", "30"},
		{"SAVE50", "300", "50"},
		{"SAVE50", "30", "30"},
		{"SAVE100", "100", "100"},
		{"SAVE100", "0", "0"},
	}

	for _, tc := range tests {
		v, ok := LookupVoucher(tc.code)
		if !ok {
			t.Fatalf("voucher %q not found", tc.code)
		}
		if got := v.DiscountOn(dec(tc.subtotal)); !got.Equal(dec(tc.want)) {
			t.Fatalf("%s on %s = %s, want %s", tc.code, tc.subtotal, got, tc.want)
		}
	}

	if _, ok := LookupVoucher("BOGUS"); ok {
		t.Fatalf("BOGUS should not be a voucher")
	}
}

func TestAddQuantity(t *testing.T) {
	if got, ok := AddQuantity(2, 3); !ok || got != 5 {
		t.Fatalf("AddQuantity(2, 3) = %d, %v", got, ok)
	}
	if _, ok := AddQuantity(math.MaxInt, 1); ok {
		t.Fatalf("overflow not detected")
	}
	if got, ok := AddQuantity(math.MaxInt-1, 1); !ok || got != math.MaxInt {
		t.Fatalf("AddQuantity at the limit = %d, %v", got, ok)
	}
	if _, ok := AddQuantity(-1, 1); ok {
		t.Fatalf("negative quantity accepted")
	}
}
