package service

import (
	"context"
	"testing"

	"taka/internal/domain"
	"taka/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWithdrawal(f *fakeStore, userID uint, amount string) string {
	id := uuid.NewString()
	f.seed("withdrawal_requests", ledger.Row{
		"id":      id,
		"user_id": userID,
		"amount":  amount,
		"status":  domain.WithdrawalStatusPending,
	})
	return id
}

func seedWallet(f *fakeStore, userID uint, balance string) {
	f.seed("wallets", ledger.Row{"user_id": userID, "balance": balance})
}

func TestSetStatusRequiresStatus(t *testing.T) {
	svc := NewWithdrawalApprovalService(newFakeStore())
	_, _, err := svc.SetStatus(context.Background(), uuid.NewString(), "", "", "")
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func TestSetStatusUpdateFailure(t *testing.T) {
	f := newFakeStore()
	svc := NewWithdrawalApprovalService(f)

	// No withdrawal seeded: the update matches nothing.
	_, _, err := svc.SetStatus(context.Background(), uuid.NewString(), domain.WithdrawalStatusRejected, "", "")
	assert.ErrorIs(t, err, ErrUpdateFailed)
}

func TestSetStatusRejectedTouchesNoWallet(t *testing.T) {
	f := newFakeStore()
	id := seedWithdrawal(f, 7, "200.00")
	seedWallet(f, 7, "500.00")
	svc := NewWithdrawalApprovalService(f)

	row, warning, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusRejected, "ineligible", "")
	require.NoError(t, err)
	assert.Empty(t, warning)
	status, _ := row.String("status")
	assert.Equal(t, domain.WithdrawalStatusRejected, status)
	notes, _ := row.String("admin_notes")
	assert.Equal(t, "ineligible", notes)
	assert.Nil(t, row["processed_at"])

	wallet, err := f.GetRow(context.Background(), "wallets", ledger.Filter{"user_id": uint(7)})
	require.NoError(t, err)
	balance, _ := wallet.Decimal("balance")
	assert.True(t, balance.Equal(decimal.RequireFromString("500.00")))
	assert.Empty(t, f.inserts)
}

func TestSetStatusApprovalDebitsWallet(t *testing.T) {
	f := newFakeStore()
	id := seedWithdrawal(f, 3, "150.00")
	seedWallet(f, 3, "500.00")
	svc := NewWithdrawalApprovalService(f)

	row, warning, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusApproved, "", "mpesa")
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.NotNil(t, row["processed_at"])
	method, _ := row.String("payout_method")
	assert.Equal(t, "mpesa", method)

	wallet, err := f.GetRow(context.Background(), "wallets", ledger.Filter{"user_id": uint(3)})
	require.NoError(t, err)
	balance, _ := wallet.Decimal("balance")
	assert.True(t, balance.Equal(decimal.RequireFromString("350")), "balance should be 500-150, got %s", balance)

	// Every successful debit appends exactly one paired transaction.
	require.Len(t, f.inserts, 1)
	tx := f.inserts[0]
	delta, _ := tx.Decimal("amount")
	assert.True(t, delta.Equal(decimal.RequireFromString("-150")))
	after, _ := tx.Decimal("balance_after")
	assert.True(t, after.Equal(decimal.RequireFromString("350")))
	ref, _ := tx.String("reference")
	assert.Equal(t, id, ref)
	typ, _ := tx.String("type")
	assert.Equal(t, domain.TxTypeWithdrawal, typ)
}

func TestSetStatusApprovalClampsBalanceAtZero(t *testing.T) {
	f := newFakeStore()
	id := seedWithdrawal(f, 9, "150.00")
	seedWallet(f, 9, "100.00")
	svc := NewWithdrawalApprovalService(f)

	_, warning, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusApproved, "", "")
	require.NoError(t, err)
	assert.Empty(t, warning)

	wallet, err := f.GetRow(context.Background(), "wallets", ledger.Filter{"user_id": uint(9)})
	require.NoError(t, err)
	balance, _ := wallet.Decimal("balance")
	assert.True(t, balance.IsZero(), "balance must clamp at zero, got %s", balance)

	require.Len(t, f.inserts, 1)
	delta, _ := f.inserts[0].Decimal("amount")
	assert.True(t, delta.Equal(decimal.RequireFromString("-150")), "delta records the full requested amount")
	after, _ := f.inserts[0].Decimal("balance_after")
	assert.True(t, after.IsZero())
}

func TestSetStatusApprovalWalletFetchFailureIsWarning(t *testing.T) {
	f := newFakeStore()
	id := seedWithdrawal(f, 4, "50.00")
	// No wallet row: the debit cannot proceed.
	svc := NewWithdrawalApprovalService(f)

	row, warning, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusApproved, "", "")
	require.NoError(t, err, "status change must stand even when the debit fails")
	require.NotNil(t, row)
	status, _ := row.String("status")
	assert.Equal(t, domain.WithdrawalStatusApproved, status)
	assert.Contains(t, warning, "wallet reconciliation incomplete")
	assert.Empty(t, f.inserts)
}

func TestSetStatusApprovalTransactionInsertFailureIsWarning(t *testing.T) {
	f := newFakeStore()
	id := seedWithdrawal(f, 5, "50.00")
	seedWallet(f, 5, "80.00")
	f.insertErr = &ledger.StoreError{Kind: ledger.KindQueryFailed, Table: "wallet_transactions", Message: "insert denied"}
	svc := NewWithdrawalApprovalService(f)

	_, warning, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusApproved, "", "")
	require.NoError(t, err)
	assert.Contains(t, warning, "append transaction")
}

func TestSetStatusPermissiveTransitions(t *testing.T) {
	// The state machine does not police transition legality; moving a
	// completed request back to pending is accepted.
	f := newFakeStore()
	id := seedWithdrawal(f, 6, "10.00")
	svc := NewWithdrawalApprovalService(f)

	_, _, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusCompleted, "", "")
	require.NoError(t, err)
	row, _, err := svc.SetStatus(context.Background(), id, domain.WithdrawalStatusPending, "", "")
	require.NoError(t, err)
	status, _ := row.String("status")
	assert.Equal(t, domain.WithdrawalStatusPending, status)
}
