package models

import "gorm.io/gorm"

// OwnerKind identifies which side of the marketplace a wallet belongs to
type OwnerKind string

const (
	OwnerStudent    OwnerKind = "STUDENT"
	OwnerInstructor OwnerKind = "INSTRUCTOR"
	OwnerAdmin      OwnerKind = "ADMIN"
)

// Wallet holds the balance for a single marketplace entity.
// Balance never goes negative; mutations go through the wallet service only.
type Wallet struct {
	gorm.Model
	OwnerID   uint      `json:"owner_id" gorm:"not null;uniqueIndex:idx_wallet_owner"`
	OwnerKind OwnerKind `json:"owner_kind" gorm:"type:varchar(20);not null;uniqueIndex:idx_wallet_owner"`
	Balance   float64   `json:"balance" gorm:"not null;default:0"`
	IsDeleted bool      `gorm:"default:false"`
}
