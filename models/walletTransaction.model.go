package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType defines the direction of a wallet mutation
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// WalletTransaction is the audit row written for every wallet mutation.
// TxnID ties the row back to the business operation (order id, deposit id)
// so a credit/debit pair of one settlement can be traced together.
type WalletTransaction struct {
	gorm.Model
	WalletID        uint            `gorm:"not null;index" json:"walletId"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null" json:"transactionType"`
	Amount          float64         `gorm:"not null" json:"amount"`
	BalanceBefore   float64         `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    float64         `gorm:"not null" json:"balanceAfter"`
	TxnID           string          `gorm:"type:varchar(100);index;not null" json:"txnId"`
	Memo            string          `gorm:"type:text" json:"memo"`
	TransactionDate time.Time       `gorm:"not null" json:"transactionDate"`
	IsDeleted       bool            `gorm:"default:false" json:"isDeleted"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
