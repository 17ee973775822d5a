package checkout

import (
	"lms/models"

	"gorm.io/gorm"
)

// CartStore clears a user's cart once settlement succeeds
type CartStore interface {
	Clear(tx *gorm.DB, userID uint) error
}

// GormCartStore is the default cart collaborator backed by the cart_items table
type GormCartStore struct{}

// Clear soft-deletes every cart item of the user
func (GormCartStore) Clear(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.CartItem{}).
		Where("user_id = ? AND is_deleted = false", userID).
		Update("is_deleted", true).Error
}
