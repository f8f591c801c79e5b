package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
)

// BondStore persists bonds in the bond table and their history in bond_transaction.
type BondStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewBondStore(db *surrealdb.DB, logger *common.Logger) *BondStore {
	return &BondStore{db: db, logger: logger}
}

// CreateBond writes the bond and its initial transactions in one transaction.
func (s *BondStore) CreateBond(ctx context.Context, bond *models.Bond) error {
	tx := newTx()
	tx.upsert(tableBond, bond.ID, toBondRecord(bond))
	for i := range bond.Transactions {
		t := &bond.Transactions[i]
		tx.upsert(tableTransaction, t.ID, toTransactionRecord(t))
	}
	if err := tx.commit(ctx, s.db); err != nil {
		return fmt.Errorf("failed to create bond: %w", err)
	}
	return nil
}

// GetBond loads the bond with its transactions in insertion order per date.
func (s *BondStore) GetBond(ctx context.Context, userID, bondID string) (*models.Bond, error) {
	rec, err := surrealdb.Select[bondRecord](ctx, s.db, surrealmodels.NewRecordID(tableBond, bondID))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select bond: %w", err)
	}
	if rec == nil || rec.BondID == "" || rec.UserID != userID {
		return nil, fmt.Errorf("bond %s: %w", bondID, models.ErrNotFound)
	}

	bond := rec.toModel()
	txs, err := s.listTransactions(ctx, userID, []string{bondID})
	if err != nil {
		return nil, err
	}
	bond.Transactions = txs[bondID]
	return bond, nil
}

// ListBonds returns the wallet's bonds ordered by buy date, each with its transactions.
func (s *BondStore) ListBonds(ctx context.Context, userID, walletID string) ([]*models.Bond, error) {
	sql := "SELECT * FROM bond WHERE user_id = $user_id AND wallet_id = $wallet_id ORDER BY buy_date ASC, created_at ASC"
	vars := map[string]any{"user_id": userID, "wallet_id": walletID}

	results, err := surrealdb.Query[[]bondRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return []*models.Bond{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.BondID)
	}
	txs, err := s.listTransactions(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	bonds := make([]*models.Bond, 0, len(rows))
	for _, r := range rows {
		b := r.toModel()
		b.Transactions = txs[r.BondID]
		bonds = append(bonds, b)
	}
	return bonds, nil
}

func (s *BondStore) listTransactions(ctx context.Context, userID string, bondIDs []string) (map[string][]models.Transaction, error) {
	sql := "SELECT * FROM bond_transaction WHERE user_id = $user_id AND bond_id IN $bond_ids ORDER BY date ASC, created_at ASC"
	vars := map[string]any{"user_id": userID, "bond_ids": bondIDs}

	results, err := surrealdb.Query[[]transactionRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list bond transactions: %w", err)
	}

	out := make(map[string][]models.Transaction, len(bondIDs))
	for _, r := range firstResult(results) {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out[r.BondID] = append(out[r.BondID], t)
	}
	return out, nil
}

// UpdateBond rewrites the bond's own fields. Transactions are untouched.
func (s *BondStore) UpdateBond(ctx context.Context, bond *models.Bond) error {
	existing, err := surrealdb.Select[bondRecord](ctx, s.db, surrealmodels.NewRecordID(tableBond, bond.ID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to select bond: %w", err)
	}
	if existing == nil || existing.BondID == "" || existing.UserID != bond.UserID {
		return fmt.Errorf("bond %s: %w", bond.ID, models.ErrNotFound)
	}

	sql := "UPSERT $rid CONTENT $bond"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID(tableBond, bond.ID),
		"bond": toBondRecord(bond),
	}
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]bondRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to update bond after retries: %w", err)
		}
	}
	return nil
}

// DeleteBond removes the bond and all of its transactions in one transaction.
func (s *BondStore) DeleteBond(ctx context.Context, userID, bondID string) error {
	if _, err := s.GetBond(ctx, userID, bondID); err != nil {
		return err
	}

	tx := newTx()
	tx.stmt("DELETE bond_transaction WHERE bond_id = $del_bond_id AND user_id = $del_user_id", map[string]any{
		"del_bond_id": bondID,
		"del_user_id": userID,
	})
	tx.stmt("DELETE $del_rid", map[string]any{"del_rid": surrealmodels.NewRecordID(tableBond, bondID)})
	if err := tx.commit(ctx, s.db); err != nil {
		return fmt.Errorf("failed to delete bond: %w", err)
	}
	return nil
}

// AddTransaction appends a transaction and touches the bond's modified_at in one transaction.
func (s *BondStore) AddTransaction(ctx context.Context, t *models.Transaction) error {
	if _, err := s.GetBond(ctx, t.UserID, t.BondID); err != nil {
		return err
	}

	tx := newTx()
	tx.upsert(tableTransaction, t.ID, toTransactionRecord(t))
	tx.stmt("UPDATE $bond_rid SET modified_at = $modified_at", map[string]any{
		"bond_rid":    surrealmodels.NewRecordID(tableBond, t.BondID),
		"modified_at": t.CreatedAt,
	})
	if err := tx.commit(ctx, s.db); err != nil {
		return fmt.Errorf("failed to add bond transaction: %w", err)
	}
	return nil
}

func (s *BondStore) DeleteTransaction(ctx context.Context, userID, bondID, txID string) error {
	sql := "DELETE bond_transaction WHERE tx_id = $tx_id AND bond_id = $bond_id AND user_id = $user_id RETURN BEFORE"
	vars := map[string]any{"tx_id": txID, "bond_id": bondID, "user_id": userID}

	results, err := surrealdb.Query[[]transactionRecord](ctx, s.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to delete bond transaction: %w", err)
	}
	if len(firstResult(results)) == 0 {
		return fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	return nil
}
