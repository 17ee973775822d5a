package checkout

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lms/models"
	"lms/models/course"
	"lms/services/coupon"
	"lms/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	platformAdminID = uint(500)
	instructorID    = uint(10)
	studentID       = uint(1)
)

type fakeGateway struct {
	orders  int
	lastAmt int64
	err     error
}

func (g *fakeGateway) CreateRemoteOrder(amountMinorUnits int64, currency, receipt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.orders++
	g.lastAmt = amountMinorUnits
	return fmt.Sprintf("gw-%d", g.orders), nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.WalletTransaction{},
		&models.Coupon{}, &models.CouponRedemption{},
		&models.Order{}, &models.OrderPathItem{}, &models.OrderCourseItem{},
		&models.CartItem{},
		&course.Course{}, &course.CourseOffer{}, &course.Chapter{}, &course.Quiz{},
		&course.Enrollment{},
		&course.LearningPath{}, &course.LearningPathCourse{}, &course.LearningPathEnrollment{},
	))
	return db
}

func newEngine(db *gorm.DB, gw *fakeGateway) *Engine {
	return NewEngine(db, gw, GormCartStore{}, platformAdminID, "INR")
}

func createCourse(t *testing.T, db *gorm.DB, title string, price float64) *course.Course {
	t.Helper()
	crs := course.Course{Title: title, InstructorID: instructorID, Price: price, IsPublished: true, Status: "ACTIVE"}
	require.NoError(t, db.Create(&crs).Error)
	return &crs
}

func createPath(t *testing.T, db *gorm.DB, title string, courses ...*course.Course) *course.LearningPath {
	t.Helper()
	path := course.LearningPath{Title: title, IsPublished: true}
	require.NoError(t, db.Create(&path).Error)
	for i, crs := range courses {
		pc := course.LearningPathCourse{LearningPathID: path.ID, CourseID: crs.ID, OrderNumber: i + 1}
		require.NoError(t, db.Create(&pc).Error)
	}
	return &path
}

func fundWallet(t *testing.T, db *gorm.DB, ownerID uint, amount float64) {
	t.Helper()
	require.NoError(t, wallet.Credit(db, ownerID, models.OwnerStudent, amount, "Test deposit", "test-deposit"))
}

func balanceOf(t *testing.T, db *gorm.DB, ownerID uint, kind models.OwnerKind) float64 {
	t.Helper()
	b, err := wallet.Balance(db, ownerID, kind)
	require.NoError(t, err)
	return b
}

func TestWalletCheckoutSplitsRevenue(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)
	fundWallet(t, db, studentID, 150)

	order, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodWallet, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusSuccess, order.Status)
	assert.Equal(t, 100.0, order.Amount)

	assert.Equal(t, 50.0, balanceOf(t, db, studentID, models.OwnerStudent))
	assert.Equal(t, 90.0, balanceOf(t, db, instructorID, models.OwnerInstructor))
	assert.Equal(t, 10.0, balanceOf(t, db, platformAdminID, models.OwnerAdmin))

	var enr course.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", studentID, crs.ID).First(&enr).Error)
	assert.Equal(t, course.EnrollmentNotStarted, enr.Status)
	assert.Nil(t, enr.LearningPathID)

	// the debit and both credits carry the order's txn id
	var ledgerRows int64
	db.Model(&models.WalletTransaction{}).Where("txn_id = ?", orderTxnID(order.ID)).Count(&ledgerRows)
	assert.Equal(t, int64(3), ledgerRows)
}

func TestWalletCheckoutInsufficientFundsRollsBack(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)
	fundWallet(t, db, studentID, 99.99)

	_, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodWallet, nil)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	// nothing persisted: no order, no enrollment, balance untouched
	var orders, enrollments int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&course.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(0), enrollments)
	assert.Equal(t, 99.99, balanceOf(t, db, studentID, models.OwnerStudent))
}

func TestPathCheckoutSkipsOwnedCourse(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	c1 := createCourse(t, db, "Course 1", 100)
	c2 := createCourse(t, db, "Course 2", 100)
	c3 := createCourse(t, db, "Course 3", 100)
	path := createPath(t, db, "Backend Track", c1, c2, c3)

	// student already owns course 2 individually
	require.NoError(t, db.Create(&course.Enrollment{UserID: studentID, CourseID: c2.ID, Status: course.EnrollmentNotStarted}).Error)

	fundWallet(t, db, studentID, 300)

	order, err := e.InitiateCheckout(studentID, nil, []uint{path.ID}, 200, models.PaymentMethodWallet, nil)
	require.NoError(t, err)

	// only courses 1 and 3 are charged
	assert.Equal(t, 200.0, order.Amount)
	require.Len(t, order.PathItems, 1)
	assert.Equal(t, 200.0, order.PathItems[0].BundlePrice)

	var ownedItem models.OrderCourseItem
	require.NoError(t, db.Where("order_id = ? AND course_id = ?", order.ID, c2.ID).First(&ownedItem).Error)
	assert.True(t, ownedItem.IsAlreadyEnrolled)
	assert.Equal(t, 0.0, ownedItem.EffectivePrice)

	// exactly one enrollment per course; the pre-existing one gained the path backlink
	var enrollments []course.Enrollment
	require.NoError(t, db.Where("user_id = ?", studentID).Find(&enrollments).Error)
	assert.Len(t, enrollments, 3)
	for _, enr := range enrollments {
		require.NotNil(t, enr.LearningPathID, "course %d missing path backlink", enr.CourseID)
		assert.Equal(t, path.ID, *enr.LearningPathID)
	}

	// progression seeded: first course unlocked, watermark at 1, third locked
	var pe course.LearningPathEnrollment
	require.NoError(t, db.Where("user_id = ? AND learning_path_id = ?", studentID, path.ID).First(&pe).Error)
	assert.Equal(t, 1, pe.UnlockWatermark)
	assert.Equal(t, []uint{c1.ID}, pe.UnlockedSet())
	assert.NotContains(t, pe.UnlockedSet(), c3.ID)

	// instructor gets 90 per charged course, platform 10
	assert.Equal(t, 180.0, balanceOf(t, db, instructorID, models.OwnerInstructor))
	assert.Equal(t, 20.0, balanceOf(t, db, platformAdminID, models.OwnerAdmin))
}

func TestPathCheckoutSeedsCompletedOwnedCourse(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	c1 := createCourse(t, db, "Course 1", 100)
	c2 := createCourse(t, db, "Course 2", 100)
	c3 := createCourse(t, db, "Course 3", 100)
	path := createPath(t, db, "Backend Track", c1, c2, c3)

	// student already finished course 2 before buying the bundle
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: studentID, CourseID: c2.ID,
		Status:        course.EnrollmentCompleted,
		TotalChapters: 1, CompletedChapters: 1,
	}).Error)

	fundWallet(t, db, studentID, 200)

	order, err := e.InitiateCheckout(studentID, nil, []uint{path.ID}, 200, models.PaymentMethodWallet, nil)
	require.NoError(t, err)
	assert.Equal(t, 200.0, order.Amount)

	// the finished course arrives pre-marked in the progression record
	var pe course.LearningPathEnrollment
	require.NoError(t, db.Where("user_id = ? AND learning_path_id = ?", studentID, path.ID).First(&pe).Error)
	assert.Equal(t, []uint{c2.ID}, pe.CompletedSet())
	assert.Equal(t, course.EnrollmentInProgress, pe.Status)

	// unlocking still starts from the first course
	assert.Equal(t, 1, pe.UnlockWatermark)
	assert.Equal(t, []uint{c1.ID}, pe.UnlockedSet())
}

func TestCheckoutWithCappedCoupon(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	c1 := createCourse(t, db, "Course 1", 100)
	c2 := createCourse(t, db, "Course 2", 100)

	cpn := models.Coupon{
		Code: "SAVE10", DiscountPct: 10, MaxDiscount: 15,
		ExpiresAt: time.Now().Add(24 * time.Hour), IsActive: true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	fundWallet(t, db, studentID, 185)

	order, err := e.InitiateCheckout(studentID, []uint{c1.ID, c2.ID}, nil, 185, models.PaymentMethodWallet, &cpn.ID)
	require.NoError(t, err)

	// 10% of 200 is 20, capped at 15
	assert.Equal(t, 185.0, order.Amount)
	assert.Equal(t, 15.0, order.CouponDiscount)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, 0.0, balanceOf(t, db, studentID, models.OwnerStudent))

	// per item deduction 7.50; each course settles at 92.50 -> 83.25 / 9.25
	assert.Equal(t, 166.5, balanceOf(t, db, instructorID, models.OwnerInstructor))
	assert.Equal(t, 18.5, balanceOf(t, db, platformAdminID, models.OwnerAdmin))

	var redemptions int64
	db.Model(&models.CouponRedemption{}).Where("coupon_id = ? AND user_id = ?", cpn.ID, studentID).Count(&redemptions)
	assert.Equal(t, int64(1), redemptions)

	// the coupon is single-use per user
	c3 := createCourse(t, db, "Course 3", 100)
	fundWallet(t, db, studentID, 100)
	_, err = e.InitiateCheckout(studentID, []uint{c3.ID}, nil, 100, models.PaymentMethodWallet, &cpn.ID)
	assert.ErrorIs(t, err, coupon.ErrCouponAlreadyUsed)
}

func TestCheckoutValidation(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)
	path := createPath(t, db, "Track", crs)

	t.Run("empty_cart", func(t *testing.T) {
		_, err := e.InitiateCheckout(studentID, nil, nil, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("unknown_course", func(t *testing.T) {
		_, err := e.InitiateCheckout(studentID, []uint{9999}, nil, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("unknown_path", func(t *testing.T) {
		_, err := e.InitiateCheckout(studentID, nil, []uint{9999}, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("course_overlaps_bundle", func(t *testing.T) {
		_, err := e.InitiateCheckout(studentID, []uint{crs.ID}, []uint{path.ID}, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrDuplicateContent)
	})

	t.Run("already_enrolled", func(t *testing.T) {
		require.NoError(t, db.Create(&course.Enrollment{UserID: 77, CourseID: crs.ID}).Error)
		_, err := e.InitiateCheckout(77, []uint{crs.ID}, nil, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	})

	t.Run("path_already_owned", func(t *testing.T) {
		pe := course.LearningPathEnrollment{UserID: 78, LearningPathID: path.ID}
		require.NoError(t, db.Create(&pe).Error)
		_, err := e.InitiateCheckout(78, nil, []uint{path.ID}, 0, models.PaymentMethodWallet, nil)
		assert.ErrorIs(t, err, ErrPathAlreadyOwned)
	})
}

func TestGatewayCheckoutAndVerify(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	e := newEngine(db, gw)

	crs := createCourse(t, db, "Go Basics", 149.99)

	order, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 149.99, models.PaymentMethodGateway, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, order.Status)
	assert.Equal(t, "gw-1", order.GatewayOrderID)
	assert.Equal(t, int64(14999), gw.lastAmt)

	// nothing granted until the confirmation arrives
	var enrollments int64
	db.Model(&course.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(0), enrollments)

	conf := PaymentConfirmation{
		GatewayOrderID: "gw-1",
		PaymentID:      "pay-1",
		Amount:         149.99,
		Payload:        []byte(`{"id":"pay-1"}`),
	}
	settled, err := e.VerifyAndCompleteCheckout(order.ID, conf)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, settled.Status)
	assert.Equal(t, "pay-1", settled.PaymentID)

	db.Model(&course.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	// instructor paid from the gateway settlement
	assert.Equal(t, 134.99, balanceOf(t, db, instructorID, models.OwnerInstructor))

	t.Run("repeat_confirmation_is_benign", func(t *testing.T) {
		again, err := e.VerifyAndCompleteCheckout(order.ID, conf)
		assert.ErrorIs(t, err, ErrOrderAlreadyProcessed)
		assert.Equal(t, models.PaymentStatusSuccess, again.Status)

		db.Model(&course.Enrollment{}).Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)
		assert.Equal(t, 134.99, balanceOf(t, db, instructorID, models.OwnerInstructor))
	})

	t.Run("gateway_order_mismatch", func(t *testing.T) {
		order2, err := e.InitiateCheckout(2, []uint{crs.ID}, nil, 149.99, models.PaymentMethodGateway, nil)
		require.NoError(t, err)

		_, err = e.VerifyAndCompleteCheckout(order2.ID, PaymentConfirmation{
			GatewayOrderID: "gw-somebody-else", PaymentID: "pay-2", Amount: 149.99,
		})
		assert.ErrorIs(t, err, ErrGatewayOrderMismatch)
	})
}

func TestVerifyAmountMismatchFailsOrder(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)

	order, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodGateway, nil)
	require.NoError(t, err)

	_, err = e.VerifyAndCompleteCheckout(order.ID, PaymentConfirmation{
		GatewayOrderID: order.GatewayOrderID, PaymentID: "pay-1", Amount: 90,
	})

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, order.ID, mismatch.OrderID)
	assert.Equal(t, 100.0, mismatch.Expected)
	assert.Equal(t, 90.0, mismatch.Confirmed)

	var failed models.Order
	require.NoError(t, db.First(&failed, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, failed.Status)

	var enrollments int64
	db.Model(&course.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(0), enrollments)

	// a late correct confirmation cannot resurrect a failed order
	_, err = e.VerifyAndCompleteCheckout(order.ID, PaymentConfirmation{
		GatewayOrderID: order.GatewayOrderID, PaymentID: "pay-1", Amount: 100,
	})
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestPendingOrderConflictAndStaleExpiry(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)

	pending, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodGateway, nil)
	require.NoError(t, err)

	// a fresh pending order for the same course blocks a second attempt
	_, err = e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodWallet, nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, pending.ID, conflict.OrderID)

	// unrelated content is not blocked
	other := createCourse(t, db, "Other", 50)
	fundWallet(t, db, studentID, 200)
	_, err = e.InitiateCheckout(studentID, []uint{other.ID}, nil, 50, models.PaymentMethodWallet, nil)
	require.NoError(t, err)

	// age the pending order past the stale window; the retry expires it and succeeds
	stale := time.Now().Add(-staleAfter - time.Minute)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", pending.ID).
		Update("created_at", stale).Error)

	order, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodWallet, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, order.Status)

	var expired models.Order
	require.NoError(t, db.First(&expired, pending.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, expired.Status)
}

func TestSettleClearsCart(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)
	require.NoError(t, db.Create(&models.CartItem{UserID: studentID, CourseID: &crs.ID}).Error)
	fundWallet(t, db, studentID, 100)

	_, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 100, models.PaymentMethodWallet, nil)
	require.NoError(t, err)

	var live int64
	db.Model(&models.CartItem{}).Where("user_id = ? AND is_deleted = false", studentID).Count(&live)
	assert.Equal(t, int64(0), live)
}

func TestCheckoutUsesOfferPrice(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db, &fakeGateway{})

	crs := createCourse(t, db, "Go Basics", 100)
	offer := course.CourseOffer{
		CourseID: crs.ID, DiscountPct: 30,
		StartsAt: time.Now().Add(-time.Hour), EndsAt: time.Now().Add(time.Hour),
		Status: "APPROVED", IsActive: true,
	}
	require.NoError(t, db.Create(&offer).Error)
	fundWallet(t, db, studentID, 70)

	order, err := e.InitiateCheckout(studentID, []uint{crs.ID}, nil, 70, models.PaymentMethodWallet, nil)
	require.NoError(t, err)
	assert.Equal(t, 70.0, order.Amount)

	require.Len(t, order.CourseItems, 1)
	assert.Equal(t, 100.0, order.CourseItems[0].ListPrice)
	assert.Equal(t, 70.0, order.CourseItems[0].OfferPrice)
	assert.Equal(t, 70.0, order.CourseItems[0].EffectivePrice)
}

func TestDedupe(t *testing.T) {
	ids := []uint{3, 3, 2, 3, 2}
	assert.Equal(t, []uint{3, 2}, dedupe(ids))

	// the caller's slice is not written through
	assert.Equal(t, []uint{3, 3, 2, 3, 2}, ids)
}

func TestErrorsAreTyped(t *testing.T) {
	conflict := &ConflictError{OrderID: 42}
	assert.Contains(t, conflict.Error(), "42")

	var target *ConflictError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", conflict), &target))
}
