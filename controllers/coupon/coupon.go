package couponController

import (
	"strings"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCoupon lets an admin add a discount coupon
func CreateCoupon(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateCoupon").(*struct {
		Code        string    `json:"code" validate:"required,min=3"`
		DiscountPct float64   `json:"discountPct" validate:"required,gt=0,lte=100"`
		MaxDiscount float64   `json:"maxDiscount" validate:"required,gt=0"`
		MinPurchase float64   `json:"minPurchase" validate:"gte=0"`
		ExpiresAt   time.Time `json:"expiresAt" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	code := strings.ToUpper(strings.TrimSpace(reqData.Code))

	var existing models.Coupon
	if err := database.Database.Db.Where("code = ?", code).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Coupon code already exists!", nil)
	}

	cpn := models.Coupon{
		Code:        code,
		DiscountPct: reqData.DiscountPct,
		MaxDiscount: reqData.MaxDiscount,
		MinPurchase: reqData.MinPurchase,
		ExpiresAt:   reqData.ExpiresAt,
		IsActive:    true,
	}
	if err := database.Database.Db.Create(&cpn).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create coupon!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Coupon created!", cpn)
}

// DeactivateCoupon turns a coupon off without deleting its redemption history
func DeactivateCoupon(c *fiber.Ctx) error {
	couponID, err := c.ParamsInt("id")
	if err != nil || couponID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid coupon id!", nil)
	}

	db := database.Database.Db

	var cpn models.Coupon
	if err := db.Where("id = ? AND is_deleted = false", couponID).First(&cpn).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Coupon not found!", nil)
	}

	if err := db.Model(&cpn).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate coupon!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon deactivated!", nil)
}

// ListCoupons returns all coupons for admin review
func ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := database.Database.Db.Where("is_deleted = false").
		Order("created_at desc").Find(&coupons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch coupons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupons fetched!", coupons)
}

// GetCouponByCode resolves an active coupon for checkout preview
func GetCouponByCode(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid coupon code!", nil)
	}

	var cpn models.Coupon
	if err := database.Database.Db.
		Where("code = ? AND is_active = true AND is_deleted = false AND expires_at > ?", code, time.Now()).
		First(&cpn).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Coupon not found or expired!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon fetched!", cpn)
}
