package coupon

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"lms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Coupon{}, &models.CouponRedemption{}))
	return db
}

func newCoupon(t *testing.T, db *gorm.DB, cpn models.Coupon) *models.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&cpn).Error)
	return &cpn
}

func TestValidate(t *testing.T) {
	db := newTestDB(t)

	active := newCoupon(t, db, models.Coupon{
		Code: "SAVE10", DiscountPct: 10, MaxDiscount: 50, MinPurchase: 100,
		ExpiresAt: time.Now().Add(24 * time.Hour), IsActive: true,
	})
	expired := newCoupon(t, db, models.Coupon{
		Code: "OLD", DiscountPct: 10, MaxDiscount: 50,
		ExpiresAt: time.Now().Add(-time.Hour), IsActive: true,
	})
	inactive := newCoupon(t, db, models.Coupon{
		Code: "OFF", DiscountPct: 10, MaxDiscount: 50,
		ExpiresAt: time.Now().Add(24 * time.Hour), IsActive: false,
	})
	// Create skips the zero-value bool because of the default:true tag, so
	// force the column to the intended value
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	t.Run("valid", func(t *testing.T) {
		cpn, err := Validate(db, active.ID, 1, 200)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", cpn.Code)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Validate(db, 9999, 1, 200)
		assert.ErrorIs(t, err, ErrCouponInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := Validate(db, expired.ID, 1, 200)
		assert.ErrorIs(t, err, ErrCouponInvalid)
	})

	t.Run("inactive", func(t *testing.T) {
		_, err := Validate(db, inactive.ID, 1, 200)
		assert.ErrorIs(t, err, ErrCouponInvalid)
	})

	t.Run("below_minimum", func(t *testing.T) {
		_, err := Validate(db, active.ID, 1, 99.99)
		assert.ErrorIs(t, err, ErrCouponBelowMinimum)
	})

	t.Run("already_used", func(t *testing.T) {
		require.NoError(t, MarkRedeemed(db, active.ID, 7, 1))
		_, err := Validate(db, active.ID, 7, 200)
		assert.ErrorIs(t, err, ErrCouponAlreadyUsed)

		// other users are unaffected
		_, err = Validate(db, active.ID, 8, 200)
		assert.NoError(t, err)
	})
}

func TestApply(t *testing.T) {
	t.Run("percentage", func(t *testing.T) {
		cpn := &models.Coupon{DiscountPct: 10, MaxDiscount: 100}
		assert.Equal(t, 20.0, Apply(cpn, 200))
	})

	t.Run("capped_by_max_discount", func(t *testing.T) {
		cpn := &models.Coupon{DiscountPct: 10, MaxDiscount: 15}
		assert.Equal(t, 15.0, Apply(cpn, 200))
	})

	t.Run("truncated", func(t *testing.T) {
		cpn := &models.Coupon{DiscountPct: 33, MaxDiscount: 100}
		// 99.99 * 0.33 = 32.9967
		assert.Equal(t, 32.99, Apply(cpn, 99.99))
	})
}

func TestPerItemDeduction(t *testing.T) {
	assert.Equal(t, 5.0, PerItemDeduction(15, 3))
	// 10 / 3 = 3.333... -> truncated per item, remainder absorbed elsewhere
	assert.Equal(t, 3.33, PerItemDeduction(10, 3))
	assert.Equal(t, 0.0, PerItemDeduction(10, 0))
}
