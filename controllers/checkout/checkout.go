package checkoutController

import (
	"encoding/json"
	"errors"

	"lms/config"
	"lms/database"
	"lms/gateway"
	"lms/middleware"
	"lms/models"
	"lms/services/checkout"
	"lms/services/coupon"
	"lms/services/wallet"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

var engine *checkout.Engine

// Engine lazily builds the settlement engine with its live collaborators
func Engine() *checkout.Engine {
	if engine == nil {
		engine = checkout.NewEngine(
			database.Database.Db,
			gateway.NewClient(),
			checkout.GormCartStore{},
			config.AppConfig.PlatformAdminID,
			config.AppConfig.Currency,
		)
	}
	return engine
}

// Checkout initiates a purchase: wallet orders settle immediately, gateway
// orders come back PENDING with the gateway order id for the client to pay.
func Checkout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedCheckout").(*struct {
		CourseIDs       []uint  `json:"courseIds"`
		LearningPathIDs []uint  `json:"learningPathIds"`
		Total           float64 `json:"total"`
		PaymentMethod   string  `json:"paymentMethod" validate:"required,oneof=WALLET GATEWAY"`
		CouponID        *uint   `json:"couponId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	order, err := Engine().InitiateCheckout(
		userID,
		reqData.CourseIDs,
		reqData.LearningPathIDs,
		reqData.Total,
		models.PaymentMethod(reqData.PaymentMethod),
		reqData.CouponID,
	)
	if err != nil {
		return mapCheckoutError(c, err)
	}

	if order.Status == models.PaymentStatusSuccess {
		utils.SendPurchaseReceipt(user.Email, user.Name, order.ID, order.Amount)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase successful!", order)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order created. Complete the payment to finish checkout.", fiber.Map{
		"order":          order,
		"gatewayOrderId": order.GatewayOrderID,
	})
}

// VerifyPayment settles a gateway order once the client reports the payment.
// Safe to call more than once; a repeat confirmation is a benign no-op.
func VerifyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedVerifyPayment").(*struct {
		OrderID        uint    `json:"orderId" validate:"required"`
		GatewayOrderID string  `json:"gatewayOrderId" validate:"required"`
		PaymentID      string  `json:"paymentId" validate:"required"`
		Signature      string  `json:"signature" validate:"required"`
		Amount         float64 `json:"amount" validate:"required"`
		Method         string  `json:"method"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !gateway.NewClient().VerifySignature(reqData.GatewayOrderID, reqData.PaymentID, reqData.Signature) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment signature verification failed!", nil)
	}

	payload, _ := json.Marshal(reqData)
	order, err := Engine().VerifyAndCompleteCheckout(reqData.OrderID, checkout.PaymentConfirmation{
		GatewayOrderID: reqData.GatewayOrderID,
		PaymentID:      reqData.PaymentID,
		Amount:         reqData.Amount,
		Method:         reqData.Method,
		Payload:        payload,
	})
	if err != nil {
		if errors.Is(err, checkout.ErrOrderAlreadyProcessed) {
			// Benign: the confirmation arrived twice
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Order already processed.", order)
		}
		return mapCheckoutError(c, err)
	}

	utils.SendPurchaseReceipt(user.Email, user.Name, order.ID, order.Amount)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified, purchase complete!", order)
}

// GetMyOrders lists the user's orders newest first
func GetMyOrders(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var orders []models.Order
	if err := database.Database.Db.
		Preload("CourseItems").Preload("PathItems").
		Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at desc").Find(&orders).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch orders!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched!", orders)
}

// mapCheckoutError translates settlement errors into HTTP responses with
// enough context for the client to resolve and retry
func mapCheckoutError(c *fiber.Ctx, err error) error {
	var conflict *checkout.ConflictError
	if errors.As(err, &conflict) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), fiber.Map{
			"conflictingOrderId": conflict.OrderID,
		})
	}

	var mismatch *checkout.AmountMismatchError
	if errors.As(err, &mismatch) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), fiber.Map{
			"orderId": mismatch.OrderID,
		})
	}

	switch {
	case errors.Is(err, checkout.ErrContentNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, checkout.ErrAlreadyEnrolled),
		errors.Is(err, checkout.ErrPathAlreadyOwned),
		errors.Is(err, checkout.ErrOrderNotPending):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrDuplicateContent),
		errors.Is(err, checkout.ErrGatewayOrderMismatch),
		errors.Is(err, coupon.ErrCouponInvalid),
		errors.Is(err, coupon.ErrCouponBelowMinimum),
		errors.Is(err, coupon.ErrCouponAlreadyUsed),
		errors.Is(err, wallet.ErrInsufficientFunds):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Checkout failed!", nil)
}
