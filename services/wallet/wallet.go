package wallet

import (
	"errors"
	"time"

	"lms/models"

	"gorm.io/gorm"
)

// ErrInsufficientFunds means a debit was requested for more than the balance.
// The debit has no partial effect.
var ErrInsufficientFunds = errors.New("insufficient wallet balance")

// GetOrCreate returns the wallet for an owner, lazily initializing a
// zero-balance wallet the first time the owner touches money.
func GetOrCreate(tx *gorm.DB, ownerID uint, kind models.OwnerKind) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Where("owner_id = ? AND owner_kind = ? AND is_deleted = false", ownerID, kind).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	w = models.Wallet{OwnerID: ownerID, OwnerKind: kind, Balance: 0}
	if err := tx.Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds amount to the owner's wallet and writes a ledger row.
// TxnID ties the mutation to its business operation (order id, deposit id);
// the ledger does not deduplicate on it — idempotency is the caller's
// transaction boundary.
func Credit(tx *gorm.DB, ownerID uint, kind models.OwnerKind, amount float64, memo string, txnID string) error {
	w, err := GetOrCreate(tx, ownerID, kind)
	if err != nil {
		return err
	}

	// The balance moves inside SQL; a writer that slipped in after the read
	// above is added to, not overwritten
	if err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return err
	}
	if err := tx.Where("id = ?", w.ID).First(w).Error; err != nil {
		return err
	}

	entry := models.WalletTransaction{
		WalletID:        w.ID,
		TransactionType: models.TransactionTypeCredit,
		Amount:          amount,
		BalanceBefore:   w.Balance - amount,
		BalanceAfter:    w.Balance,
		TxnID:           txnID,
		Memo:            memo,
		TransactionDate: time.Now(),
	}
	return tx.Create(&entry).Error
}

// Debit removes amount from the owner's wallet and writes a ledger row.
// Fails with ErrInsufficientFunds when amount exceeds the balance.
func Debit(tx *gorm.DB, ownerID uint, kind models.OwnerKind, amount float64, memo string, txnID string) error {
	w, err := GetOrCreate(tx, ownerID, kind)
	if err != nil {
		return err
	}

	// The floor is enforced in the UPDATE itself; a stale in-memory balance
	// cannot overdraw the wallet
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", w.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	if err := tx.Where("id = ?", w.ID).First(w).Error; err != nil {
		return err
	}

	entry := models.WalletTransaction{
		WalletID:        w.ID,
		TransactionType: models.TransactionTypeDebit,
		Amount:          amount,
		BalanceBefore:   w.Balance + amount,
		BalanceAfter:    w.Balance,
		TxnID:           txnID,
		Memo:            memo,
		TransactionDate: time.Now(),
	}
	return tx.Create(&entry).Error
}

// Balance returns the current balance, zero for owners without a wallet yet
func Balance(db *gorm.DB, ownerID uint, kind models.OwnerKind) (float64, error) {
	var w models.Wallet
	err := db.Where("owner_id = ? AND owner_kind = ? AND is_deleted = false", ownerID, kind).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// History returns the ledger rows for an owner's wallet, newest first
func History(db *gorm.DB, ownerID uint, kind models.OwnerKind, limit, offset int) ([]models.WalletTransaction, int64, error) {
	var w models.Wallet
	if err := db.Where("owner_id = ? AND owner_kind = ? AND is_deleted = false", ownerID, kind).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	query := db.Model(&models.WalletTransaction{}).Where("wallet_id = ? AND is_deleted = false", w.ID)

	var total int64
	query.Count(&total)

	var entries []models.WalletTransaction
	if err := query.Order("transaction_date DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
