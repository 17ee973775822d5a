package coupon

import (
	"errors"
	"time"

	"lms/models"
	"lms/services/pricing"

	"gorm.io/gorm"
)

var (
	// ErrCouponInvalid covers missing, inactive and expired coupons
	ErrCouponInvalid = errors.New("coupon is invalid or expired")
	// ErrCouponBelowMinimum means the order subtotal is below the coupon's minimum purchase
	ErrCouponBelowMinimum = errors.New("order subtotal is below the coupon minimum purchase")
	// ErrCouponAlreadyUsed means this user has redeemed the coupon before
	ErrCouponAlreadyUsed = errors.New("coupon already used by this user")
)

// Validate checks a coupon against expiry, minimum-purchase and per-user
// single-use constraints and returns the coupon on success.
func Validate(db *gorm.DB, couponID uint, userID uint, subtotal float64) (*models.Coupon, error) {
	var cpn models.Coupon
	if err := db.Where("id = ? AND is_deleted = false", couponID).First(&cpn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, err
	}

	if !cpn.IsActive || time.Now().After(cpn.ExpiresAt) {
		return nil, ErrCouponInvalid
	}
	if subtotal < cpn.MinPurchase {
		return nil, ErrCouponBelowMinimum
	}

	var redemption models.CouponRedemption
	err := db.Where("coupon_id = ? AND user_id = ?", couponID, userID).First(&redemption).Error
	if err == nil {
		return nil, ErrCouponAlreadyUsed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &cpn, nil
}

// Apply computes the absolute discount for a subtotal:
// min(subtotal * pct / 100, maxDiscount), truncated to two decimals.
func Apply(cpn *models.Coupon, subtotal float64) float64 {
	discount := subtotal * cpn.DiscountPct / 100
	if discount > cpn.MaxDiscount {
		discount = cpn.MaxDiscount
	}
	return pricing.Truncate2(discount)
}

// PerItemDeduction splits a discount evenly across the charged items,
// truncated to two decimals per item. Any rounding remainder stays with the
// platform share during revenue splitting, never with the instructors.
func PerItemDeduction(discount float64, itemCount int) float64 {
	if itemCount <= 0 {
		return 0
	}
	return pricing.Truncate2(discount / float64(itemCount))
}

// MarkRedeemed records the redemption. Called only after the order reaches
// SUCCESS, inside the same transaction as the rest of settlement; the unique
// (coupon, user) index backs the single-use guarantee under concurrency.
func MarkRedeemed(tx *gorm.DB, couponID uint, userID uint, orderID uint) error {
	redemption := models.CouponRedemption{
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
	}
	return tx.Create(&redemption).Error
}
