package walletController

import (
	"fmt"

	"lms/database"
	"lms/gateway"
	"lms/middleware"
	"lms/models"
	"lms/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ownerKindForRole(role string) models.OwnerKind {
	switch role {
	case models.RoleInstructor:
		return models.OwnerInstructor
	case models.RoleAdmin:
		return models.OwnerAdmin
	}
	return models.OwnerStudent
}

// CheckBalance returns the caller's wallet balance
func CheckBalance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)

	balance, err := wallet.Balance(database.Database.Db, userID, ownerKindForRole(role))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch balance!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance fetched!", fiber.Map{
		"balance": balance,
	})
}

// Deposit tops up the caller's wallet from a completed gateway payment.
// The same payment id cannot be credited twice.
func Deposit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)

	reqData, ok := c.Locals("validatedDeposit").(*struct {
		Amount         float64 `json:"amount" validate:"required,gt=0"`
		GatewayOrderID string  `json:"gatewayOrderId" validate:"required"`
		PaymentID      string  `json:"paymentId" validate:"required"`
		Signature      string  `json:"signature" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !gateway.NewClient().VerifySignature(reqData.GatewayOrderID, reqData.PaymentID, reqData.Signature) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment signature verification failed!", nil)
	}

	txnID := fmt.Sprintf("deposit-%s", reqData.PaymentID)

	var existing models.WalletTransaction
	if err := database.Database.Db.Where("txn_id = ?", txnID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already credited!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		return wallet.Credit(tx, userID, ownerKindForRole(role), reqData.Amount, "Wallet deposit", txnID)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to credit wallet!", nil)
	}

	balance, _ := wallet.Balance(database.Database.Db, userID, ownerKindForRole(role))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet credited!", fiber.Map{
		"balance": balance,
	})
}

// TransactionHistory lists the caller's wallet transactions newest first
func TransactionHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	txns, total, err := wallet.History(database.Database.Db, userID, ownerKindForRole(role), limit, offset)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch transactions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched!", fiber.Map{
		"transactions": txns,
		"total":        total,
	})
}

// AdminCredit lets an admin credit any user's wallet, e.g. for refunds
func AdminCredit(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAdminCredit").(*struct {
		UserID uint    `json:"userId" validate:"required"`
		Amount float64 `json:"amount" validate:"required,gt=0"`
		Memo   string  `json:"memo" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	txnID := fmt.Sprintf("admin-%d-user-%d-%s", adminID, reqData.UserID, c.Context().Time().Format("20060102150405"))
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		return wallet.Credit(tx, reqData.UserID, ownerKindForRole(user.Role), reqData.Amount, reqData.Memo, txnID)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to credit wallet!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet credited!", nil)
}
