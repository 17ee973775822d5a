package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is an order-level percentage discount with usage constraints
type Coupon struct {
	gorm.Model
	Code        string    `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountPct float64   `json:"discount_pct" gorm:"not null"`
	MaxDiscount float64   `json:"max_discount" gorm:"not null"`
	MinPurchase float64   `json:"min_purchase" gorm:"default:0"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	IsDeleted   bool      `gorm:"default:false"`
}

// CouponRedemption records a user having used a coupon.
// The unique index guarantees a user appears at most once per coupon;
// rows are written only after the order reaches SUCCESS.
type CouponRedemption struct {
	gorm.Model
	CouponID uint `json:"coupon_id" gorm:"not null;uniqueIndex:idx_coupon_user"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_coupon_user"`
	OrderID  uint `json:"order_id" gorm:"index"`
}
