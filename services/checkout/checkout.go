package checkout

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"lms/models"
	"lms/models/course"
	"lms/services/coupon"
	"lms/services/pricing"
	"lms/services/wallet"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// staleAfter is how long a PENDING order blocks its content before it can be
// expired by the next conflicting checkout attempt.
const staleAfter = 15 * time.Minute

// PaymentGateway creates remote payment orders with an external provider.
// Amounts are in minor units (paise/cents).
type PaymentGateway interface {
	CreateRemoteOrder(amountMinorUnits int64, currency string, receipt string) (string, error)
}

// PaymentConfirmation is the gateway's out-of-band payment result
type PaymentConfirmation struct {
	GatewayOrderID string
	PaymentID      string
	Amount         float64
	Method         string
	Payload        []byte
}

// Engine turns a cart of courses and learning paths into a paid order, an
// enrollment set and a revenue split between instructor and platform wallets.
type Engine struct {
	db              *gorm.DB
	gateway         PaymentGateway
	cart            CartStore
	platformAdminID uint
	currency        string
}

// NewEngine wires the settlement engine with its collaborators
func NewEngine(db *gorm.DB, gateway PaymentGateway, cart CartStore, platformAdminID uint, currency string) *Engine {
	return &Engine{
		db:              db,
		gateway:         gateway,
		cart:            cart,
		platformAdminID: platformAdminID,
		currency:        currency,
	}
}

type pathDraft struct {
	item    models.OrderPathItem
	courses []models.OrderCourseItem
}

// InitiateCheckout validates the requested content, prices it, applies the
// coupon and either settles immediately from the student's wallet or creates
// a remote gateway order to be confirmed later via VerifyAndCompleteCheckout.
func (e *Engine) InitiateCheckout(userID uint, courseIDs, pathIDs []uint, declaredTotal float64, method models.PaymentMethod, couponID *uint) (*models.Order, error) {
	courseIDs = dedupe(courseIDs)
	pathIDs = dedupe(pathIDs)

	if len(courseIDs) == 0 && len(pathIDs) == 0 {
		return nil, ErrEmptyCart
	}

	// Load bundle composition up front; overlap and pricing both depend on it
	pathCourses := make(map[uint][]course.LearningPathCourse, len(pathIDs))
	bundled := make(map[uint]bool)
	for _, pid := range pathIDs {
		var pcs []course.LearningPathCourse
		if err := e.db.Where("learning_path_id = ? AND is_deleted = false", pid).
			Order("order_number asc").Find(&pcs).Error; err != nil {
			return nil, err
		}
		if len(pcs) == 0 {
			return nil, ErrContentNotFound
		}
		pathCourses[pid] = pcs
		for _, pc := range pcs {
			bundled[pc.CourseID] = true
		}
	}

	// A course bought standalone must not also arrive inside a bundle
	for _, cid := range courseIDs {
		if bundled[cid] {
			return nil, ErrDuplicateContent
		}
	}

	// Reject content the user already owns
	if len(courseIDs) > 0 {
		var n int64
		if err := e.db.Model(&course.Enrollment{}).
			Where("user_id = ? AND course_id IN ? AND is_deleted = false", userID, courseIDs).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrAlreadyEnrolled
		}
	}
	if len(pathIDs) > 0 {
		var n int64
		if err := e.db.Model(&course.LearningPathEnrollment{}).
			Where("user_id = ? AND learning_path_id IN ? AND is_deleted = false", userID, pathIDs).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrPathAlreadyOwned
		}
	}

	if err := e.guardPendingOrders(userID, courseIDs, bundled, pathIDs); err != nil {
		return nil, err
	}

	// Resolve effective prices fresh; offers are time-boxed
	allCourseIDs := append(append([]uint{}, courseIDs...), keys(bundled)...)
	prices, err := pricing.Resolve(e.db, allCourseIDs)
	if err != nil {
		return nil, err
	}
	for _, cid := range allCourseIDs {
		if _, ok := prices[cid]; !ok {
			return nil, ErrContentNotFound
		}
	}

	// Bundled courses the user already owns individually are granted but not
	// re-charged: zero their contribution and flag them.
	owned := make(map[uint]bool)
	if len(bundled) > 0 {
		var enrollments []course.Enrollment
		if err := e.db.Where("user_id = ? AND course_id IN ? AND is_deleted = false", userID, keys(bundled)).
			Find(&enrollments).Error; err != nil {
			return nil, err
		}
		for _, enr := range enrollments {
			owned[enr.CourseID] = true
		}
	}

	order := models.Order{
		UserID: userID,
		Status: models.PaymentStatusPending,
		Method: method,
	}

	var standalone []models.OrderCourseItem
	var paths []pathDraft
	subtotal := 0.0

	for _, cid := range courseIDs {
		cp := prices[cid]
		standalone = append(standalone, models.OrderCourseItem{
			CourseID:       cid,
			InstructorID:   cp.InstructorID,
			ListPrice:      cp.ListPrice,
			OfferPrice:     cp.OfferPrice,
			EffectivePrice: cp.EffectivePrice,
		})
		subtotal += cp.EffectivePrice
	}

	for _, pid := range pathIDs {
		draft := pathDraft{item: models.OrderPathItem{LearningPathID: pid}}
		bundleTotal := 0.0
		for _, pc := range pathCourses[pid] {
			cp := prices[pc.CourseID]
			ci := models.OrderCourseItem{
				CourseID:     pc.CourseID,
				InstructorID: cp.InstructorID,
				ListPrice:    cp.ListPrice,
				OfferPrice:   cp.OfferPrice,
			}
			if owned[pc.CourseID] {
				ci.IsAlreadyEnrolled = true
			} else {
				ci.EffectivePrice = cp.EffectivePrice
				bundleTotal += cp.EffectivePrice
			}
			draft.courses = append(draft.courses, ci)
		}
		draft.item.BundlePrice = pricing.Truncate2(bundleTotal)
		subtotal += draft.item.BundlePrice
		paths = append(paths, draft)
	}

	subtotal = pricing.Truncate2(subtotal)

	// Validate and apply the coupon against the pre-coupon subtotal
	discount := 0.0
	if couponID != nil {
		cpn, err := coupon.Validate(e.db, *couponID, userID, subtotal)
		if err != nil {
			return nil, err
		}
		discount = coupon.Apply(cpn, subtotal)
		order.CouponID = &cpn.ID
		order.CouponCode = cpn.Code
		order.CouponPct = cpn.DiscountPct
		order.CouponDiscount = discount
	}

	order.Amount = pricing.Truncate2(subtotal - discount)

	// The server-computed price is authoritative; a disagreeing client total
	// is logged, not failed.
	if math.Abs(declaredTotal-order.Amount) > 0.01 {
		log.Printf("[SETTLEMENT] declared total %.2f differs from computed %.2f for user %d; using computed",
			declaredTotal, order.Amount, userID)
	}

	switch method {
	case models.PaymentMethodWallet:
		return e.settleFromWallet(&order, standalone, paths)
	case models.PaymentMethodGateway:
		return e.createGatewayOrder(&order, standalone, paths)
	default:
		return nil, fmt.Errorf("unsupported payment method %q", method)
	}
}

// settleFromWallet runs the whole wallet purchase in one transaction: order
// create, student debit, SUCCESS flip, enrollment fan-out, path seeding,
// coupon redemption and cart clearing. Revenue credits follow after commit.
func (e *Engine) settleFromWallet(order *models.Order, standalone []models.OrderCourseItem, paths []pathDraft) (*models.Order, error) {
	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := persistOrder(tx, order, standalone, paths); err != nil {
		tx.Rollback()
		return nil, err
	}

	memo := fmt.Sprintf("Purchase order #%d", order.ID)
	if err := wallet.Debit(tx, order.UserID, models.OwnerStudent, order.Amount, memo, orderTxnID(order.ID)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := e.settle(tx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.ShareRevenue(order)
	return order, nil
}

// createGatewayOrder registers the payment intent with the external gateway
// and persists the order PENDING. Nothing is granted until the gateway
// confirmation arrives through VerifyAndCompleteCheckout.
func (e *Engine) createGatewayOrder(order *models.Order, standalone []models.OrderCourseItem, paths []pathDraft) (*models.Order, error) {
	gatewayOrderID, err := e.gateway.CreateRemoteOrder(toMinorUnits(order.Amount), e.currency, uuid.NewString())
	if err != nil {
		return nil, err
	}
	order.GatewayOrderID = gatewayOrderID

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := persistOrder(tx, order, standalone, paths); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyAndCompleteCheckout settles a gateway order once the payment is
// confirmed out-of-band. Re-entrant: a repeated confirmation hits the
// ErrOrderAlreadyProcessed guard and grants nothing twice.
func (e *Engine) VerifyAndCompleteCheckout(orderID uint, conf PaymentConfirmation) (*models.Order, error) {
	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var order models.Order
	query := tx.Preload("CourseItems").Preload("PathItems")
	if tx.Dialector.Name() != "sqlite" {
		// Exclusive row lock so two confirmations cannot settle concurrently
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ? AND is_deleted = false", orderID).First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	switch order.Status {
	case models.PaymentStatusSuccess:
		tx.Rollback()
		return &order, ErrOrderAlreadyProcessed
	case models.PaymentStatusPending:
		// continue
	default:
		tx.Rollback()
		return &order, ErrOrderNotPending
	}

	if conf.GatewayOrderID != "" && conf.GatewayOrderID != order.GatewayOrderID {
		tx.Rollback()
		return &order, ErrGatewayOrderMismatch
	}

	if math.Abs(conf.Amount-order.Amount) > 0.01 {
		tx.Rollback()
		// Amount disagreement is fatal to this order
		if err := e.db.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed).Error; err != nil {
			log.Printf("[SETTLEMENT] failed to mark order #%d FAILED after amount mismatch: %v", order.ID, err)
		}
		order.Status = models.PaymentStatusFailed
		return &order, &AmountMismatchError{OrderID: order.ID, Expected: order.Amount, Confirmed: conf.Amount}
	}

	order.PaymentID = conf.PaymentID
	if len(conf.Payload) > 0 {
		order.GatewayPayload = datatypes.JSON(conf.Payload)
	}

	if err := e.settle(tx, &order); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.ShareRevenue(&order)
	return &order, nil
}

// settle flips the order to SUCCESS and fans out its grants: enrollments,
// learning-path progression seeds, coupon redemption and cart clearing.
// Every step re-checks existing state so a re-entrant call inserts nothing
// twice.
func (e *Engine) settle(tx *gorm.DB, order *models.Order) error {
	updates := map[string]interface{}{
		"status":     models.PaymentStatusSuccess,
		"payment_id": order.PaymentID,
	}
	if len(order.GatewayPayload) > 0 {
		updates["gateway_payload"] = order.GatewayPayload
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return err
	}
	order.Status = models.PaymentStatusSuccess

	pathByItem := make(map[uint]uint, len(order.PathItems))
	for _, pi := range order.PathItems {
		pathByItem[pi.ID] = pi.LearningPathID
	}

	for i := range order.CourseItems {
		item := &order.CourseItems[i]
		var pathID *uint
		if item.OrderPathItemID != nil {
			pid := pathByItem[*item.OrderPathItemID]
			pathID = &pid
		}
		if err := ensureEnrollment(tx, order.UserID, item.CourseID, pathID); err != nil {
			return err
		}
	}

	for _, pi := range order.PathItems {
		if err := seedPathEnrollment(tx, order.UserID, pi.LearningPathID); err != nil {
			return err
		}
	}

	if order.CouponID != nil {
		if err := coupon.MarkRedeemed(tx, *order.CouponID, order.UserID, order.ID); err != nil {
			return err
		}
	}

	return e.cart.Clear(tx, order.UserID)
}

// guardPendingOrders expires stale PENDING orders touching the requested
// content, then rejects if a fresh one still blocks it. The conflict error
// carries the blocking order id so the client can resume instead of
// double-paying.
func (e *Engine) guardPendingOrders(userID uint, courseIDs []uint, bundled map[uint]bool, pathIDs []uint) error {
	var pending []models.Order
	if err := e.db.Preload("CourseItems").Preload("PathItems").
		Where("user_id = ? AND status = ? AND is_deleted = false", userID, models.PaymentStatusPending).
		Find(&pending).Error; err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	wantedCourses := make(map[uint]bool, len(courseIDs)+len(bundled))
	for _, cid := range courseIDs {
		wantedCourses[cid] = true
	}
	for cid := range bundled {
		wantedCourses[cid] = true
	}
	wantedPaths := make(map[uint]bool, len(pathIDs))
	for _, pid := range pathIDs {
		wantedPaths[pid] = true
	}

	cutoff := time.Now().Add(-staleAfter)
	for i := range pending {
		o := &pending[i]
		if !ordersOverlap(o, wantedCourses, wantedPaths) {
			continue
		}
		if o.CreatedAt.Before(cutoff) {
			if err := e.db.Model(&models.Order{}).
				Where("id = ? AND status = ?", o.ID, models.PaymentStatusPending).
				Update("status", models.PaymentStatusFailed).Error; err != nil {
				return err
			}
			log.Printf("[SETTLEMENT] expired stale pending order #%d for user %d", o.ID, userID)
			continue
		}
		return &ConflictError{OrderID: o.ID}
	}
	return nil
}

func ordersOverlap(o *models.Order, wantedCourses, wantedPaths map[uint]bool) bool {
	for _, item := range o.CourseItems {
		if wantedCourses[item.CourseID] {
			return true
		}
	}
	for _, pi := range o.PathItems {
		if wantedPaths[pi.LearningPathID] {
			return true
		}
	}
	return false
}

// persistOrder writes the order, its path items and all course line-items,
// wiring bundled items to their path item. The order struct ends up with both
// item lists populated for the settlement steps that follow.
func persistOrder(tx *gorm.DB, order *models.Order, standalone []models.OrderCourseItem, paths []pathDraft) error {
	if err := tx.Create(order).Error; err != nil {
		return err
	}

	for i := range standalone {
		standalone[i].OrderID = order.ID
		if err := tx.Create(&standalone[i]).Error; err != nil {
			return err
		}
	}
	order.CourseItems = append(order.CourseItems, standalone...)

	for i := range paths {
		draft := &paths[i]
		draft.item.OrderID = order.ID
		if err := tx.Create(&draft.item).Error; err != nil {
			return err
		}
		order.PathItems = append(order.PathItems, draft.item)

		for j := range draft.courses {
			draft.courses[j].OrderID = order.ID
			itemID := draft.item.ID
			draft.courses[j].OrderPathItemID = &itemID
			if err := tx.Create(&draft.courses[j]).Error; err != nil {
				return err
			}
		}
		order.CourseItems = append(order.CourseItems, draft.courses...)
	}

	return nil
}

// ensureEnrollment creates the (user, course) enrollment exactly once. A
// purchase through a learning path attaches the path backlink to an existing
// record instead of duplicating it.
func ensureEnrollment(tx *gorm.DB, userID, courseID uint, pathID *uint) error {
	var enr course.Enrollment
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&enr).Error
	if err == nil {
		if pathID != nil && enr.LearningPathID == nil {
			return tx.Model(&course.Enrollment{}).Where("id = ?", enr.ID).
				Update("learning_path_id", *pathID).Error
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	chapters, quizzes, err := contentTotals(tx, courseID)
	if err != nil {
		return err
	}
	enr = course.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		LearningPathID: pathID,
		Status:         course.EnrollmentNotStarted,
		TotalChapters:  chapters,
		TotalQuizzes:   quizzes,
	}
	return tx.Create(&enr).Error
}

// seedPathEnrollment creates the learning-path progression record with the
// first bundled course unlocked and any already-finished courses pre-marked.
// No-op when the record exists (re-entrant confirmations).
func seedPathEnrollment(tx *gorm.DB, userID, pathID uint) error {
	var existing course.LearningPathEnrollment
	err := tx.Where("user_id = ? AND learning_path_id = ? AND is_deleted = false", userID, pathID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var pcs []course.LearningPathCourse
	if err := tx.Where("learning_path_id = ? AND is_deleted = false", pathID).
		Order("order_number asc").Find(&pcs).Error; err != nil {
		return err
	}
	if len(pcs) == 0 {
		return ErrContentNotFound
	}

	courseIDs := make([]uint, 0, len(pcs))
	for _, pc := range pcs {
		courseIDs = append(courseIDs, pc.CourseID)
	}

	var enrollments []course.Enrollment
	if err := tx.Where("user_id = ? AND course_id IN ? AND is_deleted = false", userID, courseIDs).
		Find(&enrollments).Error; err != nil {
		return err
	}
	var completed []uint
	for _, enr := range enrollments {
		if enr.IsComplete() {
			completed = append(completed, enr.CourseID)
		}
	}

	pe := course.LearningPathEnrollment{
		UserID:          userID,
		LearningPathID:  pathID,
		UnlockWatermark: pcs[0].OrderNumber,
		Status:          course.EnrollmentNotStarted,
	}
	pe.SetUnlocked([]uint{pcs[0].CourseID})
	pe.SetCompleted(completed)
	if len(completed) > 0 {
		pe.Status = course.EnrollmentInProgress
	}
	return tx.Create(&pe).Error
}

func contentTotals(tx *gorm.DB, courseID uint) (int, int, error) {
	var chapters, quizzes int64
	if err := tx.Model(&course.Chapter{}).
		Where("course_id = ? AND is_deleted = false", courseID).Count(&chapters).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&course.Quiz{}).
		Where("course_id = ? AND is_deleted = false", courseID).Count(&quizzes).Error; err != nil {
		return 0, 0, err
	}
	return int(chapters), int(quizzes), nil
}

func orderTxnID(orderID uint) string {
	return fmt.Sprintf("order-%d", orderID)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// dedupe returns the unique ids in order, leaving the input slice untouched
func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func keys(m map[uint]bool) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
