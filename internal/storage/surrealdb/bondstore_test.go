package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/models"
)

func newTestBond(id string) *models.Bond {
	now := time.Now().Truncate(time.Second)
	return &models.Bond{
		ID:       id,
		UserID:   "alice",
		WalletID: "w1",
		Name:     "CDB 2028",
		Type:     "CDB",
		BuyDate:  date("2024-01-01"),
		Transactions: []models.Transaction{{
			ID:               id + "-t1",
			BondID:           id,
			UserID:           "alice",
			Date:             date("2024-01-01"),
			Type:             models.TxInvestment,
			TransactionValue: decimal.NewFromInt(1000),
			CurrentValue:     decimal.NewFromInt(1000),
			CreatedAt:        now,
		}},
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func TestBondCreateAndGet(t *testing.T) {
	m := testManager(t)
	store := m.BondStore()
	ctx := context.Background()

	require.NoError(t, store.CreateBond(ctx, newTestBond("b1")))

	got, err := store.GetBond(ctx, "alice", "b1")
	require.NoError(t, err)
	assert.Equal(t, "CDB 2028", got.Name)
	require.Len(t, got.Transactions, 1)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Transactions[0].TransactionValue))
	assert.Equal(t, models.TxInvestment, got.Transactions[0].Type)

	_, err = store.GetBond(ctx, "bob", "b1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestBondTransactions(t *testing.T) {
	m := testManager(t)
	store := m.BondStore()
	ctx := context.Background()

	require.NoError(t, store.CreateBond(ctx, newTestBond("b1")))

	rescue := &models.Transaction{
		ID:               "b1-t2",
		BondID:           "b1",
		UserID:           "alice",
		Date:             date("2024-07-01"),
		Type:             models.TxRescue,
		TransactionValue: decimal.RequireFromString("200.55"),
		CurrentValue:     decimal.RequireFromString("900.10"),
		CreatedAt:        time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.AddTransaction(ctx, rescue))

	got, err := store.GetBond(ctx, "alice", "b1")
	require.NoError(t, err)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "b1-t2", got.Transactions[1].ID)
	assert.Equal(t, "200.55", got.Transactions[1].TransactionValue.String())

	require.NoError(t, store.DeleteTransaction(ctx, "alice", "b1", "b1-t2"))
	err = store.DeleteTransaction(ctx, "alice", "b1", "b1-t2")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestBondListAndDelete(t *testing.T) {
	m := testManager(t)
	store := m.BondStore()
	ctx := context.Background()

	b2 := newTestBond("b2")
	b2.BuyDate = date("2023-06-01")
	require.NoError(t, store.CreateBond(ctx, newTestBond("b1")))
	require.NoError(t, store.CreateBond(ctx, b2))

	list, err := store.ListBonds(ctx, "alice", "w1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b2", list[0].ID)
	assert.Len(t, list[1].Transactions, 1)

	require.NoError(t, store.DeleteBond(ctx, "alice", "b1"))
	_, err = store.GetBond(ctx, "alice", "b1")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	// Transactions of the deleted bond are gone too.
	txs, err := m.bondStore.listTransactions(ctx, "alice", []string{"b1"})
	require.NoError(t, err)
	assert.Empty(t, txs["b1"])
}
