package domain

import "strings"

// Coupon is a percentage discount applied to the cart's aggregate total.
// At most one coupon is active per cart.
type Coupon struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}

// The promotion is a single fixed code. Unknown codes are rejected and, per
// current storefront behavior, clear any previously applied coupon.
const couponCode = "DISCOUNT20"

const couponPercent = 20

// LookupCoupon resolves a code to its coupon. Matching is case-insensitive
// with surrounding whitespace ignored.
func LookupCoupon(code string) (*Coupon, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized != couponCode {
		return nil, false
	}
	return &Coupon{Code: couponCode, Percent: couponPercent}, true
}
