package wallet

import (
	"fmt"
	"strings"
	"testing"

	"lms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Wallet{}, &models.WalletTransaction{}))
	return db
}

func TestGetOrCreateLazyInit(t *testing.T) {
	db := newTestDB(t)

	w, err := GetOrCreate(db, 1, models.OwnerStudent)
	require.NoError(t, err)
	assert.Equal(t, 0.0, w.Balance)

	again, err := GetOrCreate(db, 1, models.OwnerStudent)
	require.NoError(t, err)
	assert.Equal(t, w.ID, again.ID)

	// same owner id under a different kind is a separate wallet
	other, err := GetOrCreate(db, 1, models.OwnerInstructor)
	require.NoError(t, err)
	assert.NotEqual(t, w.ID, other.ID)
}

func TestCreditWritesLedger(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Credit(db, 1, models.OwnerStudent, 150, "Deposit", "deposit-1"))

	balance, err := Balance(db, 1, models.OwnerStudent)
	require.NoError(t, err)
	assert.Equal(t, 150.0, balance)

	entries, total, err := History(db, 1, models.OwnerStudent, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionTypeCredit, entries[0].TransactionType)
	assert.Equal(t, 0.0, entries[0].BalanceBefore)
	assert.Equal(t, 150.0, entries[0].BalanceAfter)
	assert.Equal(t, "deposit-1", entries[0].TxnID)
}

func TestDebit(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Credit(db, 1, models.OwnerStudent, 150, "Deposit", "deposit-1"))

	t.Run("success", func(t *testing.T) {
		require.NoError(t, Debit(db, 1, models.OwnerStudent, 100, "Purchase", "order-1"))

		balance, err := Balance(db, 1, models.OwnerStudent)
		require.NoError(t, err)
		assert.Equal(t, 50.0, balance)

		entries, _, err := History(db, 1, models.OwnerStudent, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("insufficient_funds_no_partial_effect", func(t *testing.T) {
		err := Debit(db, 1, models.OwnerStudent, 51, "Purchase", "order-2")
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		balance, err := Balance(db, 1, models.OwnerStudent)
		require.NoError(t, err)
		assert.Equal(t, 50.0, balance)

		var ledgerRows int64
		db.Model(&models.WalletTransaction{}).Where("txn_id = ?", "order-2").Count(&ledgerRows)
		assert.Equal(t, int64(0), ledgerRows)
	})

	t.Run("empty_wallet", func(t *testing.T) {
		err := Debit(db, 42, models.OwnerStudent, 1, "Purchase", "order-3")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

// interleaveWalletWrite runs one raw balance mutation right before the next
// wallets UPDATE executes, standing in for a concurrent writer that got in
// between the wallet read and its balance update.
func interleaveWalletWrite(t *testing.T, db *gorm.DB, delta float64) {
	t.Helper()
	fired := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("interleaved_writer", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "wallets" {
			return
		}
		fired = true
		db.Exec("UPDATE wallets SET balance = balance + ?", delta)
	}))
}

func TestInterleavedWalletWrites(t *testing.T) {
	t.Run("credit_adds_on_top", func(t *testing.T) {
		db := newTestDB(t)
		_, err := GetOrCreate(db, 1, models.OwnerStudent)
		require.NoError(t, err)

		interleaveWalletWrite(t, db, 5)
		require.NoError(t, Credit(db, 1, models.OwnerStudent, 10, "Deposit", "deposit-1"))

		balance, err := Balance(db, 1, models.OwnerStudent)
		require.NoError(t, err)
		assert.Equal(t, 15.0, balance)

		entries, _, err := History(db, 1, models.OwnerStudent, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 5.0, entries[0].BalanceBefore)
		assert.Equal(t, 15.0, entries[0].BalanceAfter)
	})

	t.Run("debit_floor_holds", func(t *testing.T) {
		db := newTestDB(t)
		require.NoError(t, Credit(db, 1, models.OwnerStudent, 10, "Deposit", "deposit-1"))

		// the wallet is drained to 2 just before a debit of 5 lands
		interleaveWalletWrite(t, db, -8)
		err := Debit(db, 1, models.OwnerStudent, 5, "Purchase", "order-1")
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		balance, err := Balance(db, 1, models.OwnerStudent)
		require.NoError(t, err)
		assert.Equal(t, 2.0, balance)

		var ledgerRows int64
		db.Model(&models.WalletTransaction{}).Where("txn_id = ?", "order-1").Count(&ledgerRows)
		assert.Equal(t, int64(0), ledgerRows)
	})
}

func TestBalanceWithoutWallet(t *testing.T) {
	db := newTestDB(t)

	balance, err := Balance(db, 99, models.OwnerStudent)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)

	entries, total, err := History(db, 99, models.OwnerStudent, 10, 0)
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, int64(0), total)
}
