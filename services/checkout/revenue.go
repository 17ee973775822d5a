package checkout

import (
	"fmt"
	"log"

	"lms/models"
	"lms/services/coupon"
	"lms/services/pricing"
	"lms/services/wallet"

	"gorm.io/gorm"
)

// instructorShareRate is the instructor's cut of every charged line-item
const instructorShareRate = 0.90

// ShareRevenue credits the instructor and platform wallets for every charged
// line-item of a successful order. It runs after the settlement transaction
// commits: the buyer has already paid, so a single unreachable instructor
// wallet must not roll the order back. Each item is credited in its own
// transaction; failures are logged individually (at-least-once delivery).
func (e *Engine) ShareRevenue(order *models.Order) {
	charged := 0
	for _, item := range order.CourseItems {
		if item.EffectivePrice > 0 && !item.IsAlreadyEnrolled {
			charged++
		}
	}
	if charged == 0 {
		return
	}

	// The flat per-item coupon deduction; the truncation remainder stays in
	// the platform share, never the instructor's.
	perItem := coupon.PerItemDeduction(order.CouponDiscount, charged)
	txnID := orderTxnID(order.ID)

	for _, item := range order.CourseItems {
		if item.EffectivePrice <= 0 || item.IsAlreadyEnrolled {
			continue
		}

		finalPrice := item.EffectivePrice - perItem
		if finalPrice < 0 {
			finalPrice = 0
		}
		instructorShare := pricing.Truncate2(finalPrice * instructorShareRate)
		adminShare := finalPrice - instructorShare

		instructorID := item.InstructorID
		courseID := item.CourseID
		err := e.db.Transaction(func(tx *gorm.DB) error {
			memo := fmt.Sprintf("Revenue share for course %d, order #%d", courseID, order.ID)
			if err := wallet.Credit(tx, instructorID, models.OwnerInstructor, instructorShare, memo, txnID); err != nil {
				return err
			}
			memo = fmt.Sprintf("Platform share for course %d, order #%d", courseID, order.ID)
			return wallet.Credit(tx, e.platformAdminID, models.OwnerAdmin, adminShare, memo, txnID)
		})
		if err != nil {
			log.Printf("[SETTLEMENT] revenue share failed for order #%d course %d: %v", order.ID, courseID, err)
		}
	}
}
