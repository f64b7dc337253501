package account

import (
	"crypto/rand"
	"math/big"
)

const (
	CouponCodeLength   = 8
	CouponCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Account is a user's loyalty record. Points never go negative.
type Account struct {
	Points  int      `json:"points"`
	Coupons []Coupon `json:"coupons"`
}

type Coupon struct {
	Type       string `json:"type"`
	Code       string `json:"code"`
	PointsCost int    `json:"points_cost"`
}

// Snapshot is the persisted form of the whole store, keyed by user id.
type Snapshot map[string]Account

func (a Account) clone() Account {
	out := Account{Points: a.Points, Coupons: make([]Coupon, len(a.Coupons))}
	copy(out.Coupons, a.Coupons)
	return out
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, acc := range s {
		out[id] = acc.clone()
	}
	return out
}

// NewCouponCode draws CouponCodeLength characters uniformly from
// CouponCodeAlphabet. Codes are not checked against existing coupons.
func NewCouponCode() string {
	limit := big.NewInt(int64(len(CouponCodeAlphabet)))
	buf := make([]byte, CouponCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		buf[i] = CouponCodeAlphabet[n.Int64()]
	}
	return string(buf)
}

// ValidCouponCode reports whether code has the generated format.
func ValidCouponCode(code string) bool {
	if len(code) != CouponCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
