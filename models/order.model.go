package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle state of an order
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentMethod selects how an order is settled
type PaymentMethod string

const (
	PaymentMethodWallet  PaymentMethod = "WALLET"
	PaymentMethodGateway PaymentMethod = "GATEWAY"
)

// Order is the transactional record of a purchase attempt and its outcome.
// Amount always equals the sum of line-item effective prices minus the
// coupon discount. Once an order reaches a terminal state it is never mutated.
type Order struct {
	gorm.Model
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	Amount         float64       `json:"amount" gorm:"not null"`
	Status         PaymentStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	Method         PaymentMethod `json:"method" gorm:"type:varchar(20);not null"`
	GatewayOrderID string        `json:"gateway_order_id" gorm:"type:varchar(100);index"`
	PaymentID      string        `json:"payment_id" gorm:"type:varchar(100)"`

	// Coupon snapshot taken at order creation
	CouponID       *uint   `json:"coupon_id"`
	CouponCode     string  `json:"coupon_code" gorm:"type:varchar(50)"`
	CouponPct      float64 `json:"coupon_pct"`
	CouponDiscount float64 `json:"coupon_discount"`

	// Raw gateway confirmation payload, stored for audit
	GatewayPayload datatypes.JSON `json:"gateway_payload"`

	CourseItems []OrderCourseItem `json:"course_items" gorm:"foreignKey:OrderID"`
	PathItems   []OrderPathItem   `json:"path_items" gorm:"foreignKey:OrderID"`

	IsDeleted bool `gorm:"default:false"`
}

// OrderPathItem is a learning-path bundle inside an order
type OrderPathItem struct {
	gorm.Model
	OrderID        uint    `json:"order_id" gorm:"not null;index"`
	LearningPathID uint    `json:"learning_path_id" gorm:"not null;index"`
	BundlePrice    float64 `json:"bundle_price" gorm:"not null"`
}

// OrderCourseItem is a single course line-item. Standalone items have a nil
// OrderPathItemID; bundled items point at their OrderPathItem. Items the buyer
// already owned are flagged IsAlreadyEnrolled and carry a zero effective price.
type OrderCourseItem struct {
	gorm.Model
	OrderID           uint    `json:"order_id" gorm:"not null;index"`
	OrderPathItemID   *uint   `json:"order_path_item_id" gorm:"index"`
	CourseID          uint    `json:"course_id" gorm:"not null;index"`
	InstructorID      uint    `json:"instructor_id" gorm:"not null"`
	ListPrice         float64 `json:"list_price" gorm:"not null"`
	OfferPrice        float64 `json:"offer_price"`
	EffectivePrice    float64 `json:"effective_price" gorm:"not null"`
	IsAlreadyEnrolled bool    `json:"is_already_enrolled" gorm:"default:false"`
}
