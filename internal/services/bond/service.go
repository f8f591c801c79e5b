// Package bond manages fixed-income holdings and their lifecycle transactions
package bond

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/ledger"
	"github.com/bobmcallan/holdings/internal/models"
)

// Compile-time interface check
var _ interfaces.BondService = (*Service)(nil)

// Service implements BondService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new bond service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) view(b *models.Bond) *models.BondView {
	return &models.BondView{Bond: *b, Totals: ledger.CalculateBondTotalsAt(b, s.now())}
}

func validateCreate(in interfaces.CreateBondInput) error {
	if strings.TrimSpace(in.WalletID) == "" {
		return models.NewValidationError("wallet_id", "wallet_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.NewValidationError("name", "name is required")
	}
	if in.BuyDate.IsZero() {
		return models.NewValidationError("buy_date", "buy_date is required")
	}
	if !in.InitialValue.IsPositive() {
		return models.NewValidationError("initial_value", "initial value must be greater than zero")
	}
	if in.ExpirationDate != nil && !in.ExpirationDate.After(in.BuyDate) {
		return models.NewValidationError("expiration_date", "expiration date must be after the buy date")
	}
	return nil
}

// CreateBond creates a bond with its initial INVESTMENT transaction dated at the buy date.
func (s *Service) CreateBond(ctx context.Context, in interfaces.CreateBondInput) (*models.BondView, error) {
	userID := common.ResolveUserID(ctx)

	if err := validateCreate(in); err != nil {
		return nil, err
	}
	exists, err := s.storage.WalletStore().WalletExists(ctx, userID, in.WalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to check wallet: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("wallet %s: %w", in.WalletID, models.ErrNotFound)
	}

	now := s.now()
	b := &models.Bond{
		ID:             uuid.New().String(),
		UserID:         userID,
		WalletID:       in.WalletID,
		Name:           strings.TrimSpace(in.Name),
		Type:           strings.TrimSpace(in.Type),
		Description:    strings.TrimSpace(in.Description),
		BuyDate:        in.BuyDate,
		ExpirationDate: in.ExpirationDate,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	b.Transactions = []models.Transaction{{
		ID:               uuid.New().String(),
		BondID:           b.ID,
		UserID:           userID,
		Date:             in.BuyDate,
		Type:             models.TxInvestment,
		TransactionValue: in.InitialValue,
		CurrentValue:     in.InitialValue,
		CreatedAt:        now,
	}}

	if err := s.storage.BondStore().CreateBond(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create bond: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("bond_id", b.ID).
		Str("wallet_id", b.WalletID).
		Str("initial_value", in.InitialValue.String()).
		Msg("Bond created")

	return s.view(b), nil
}

// GetBond returns the bond with its computed totals.
func (s *Service) GetBond(ctx context.Context, bondID string) (*models.BondView, error) {
	b, err := s.storage.BondStore().GetBond(ctx, common.ResolveUserID(ctx), bondID)
	if err != nil {
		return nil, err
	}
	return s.view(b), nil
}

// ListBonds returns every bond in the wallet with its computed totals.
func (s *Service) ListBonds(ctx context.Context, walletID string) ([]*models.BondView, error) {
	userID := common.ResolveUserID(ctx)
	if _, err := s.storage.WalletStore().GetWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}

	bonds, err := s.storage.BondStore().ListBonds(ctx, userID, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}

	views := make([]*models.BondView, 0, len(bonds))
	for _, b := range bonds {
		views = append(views, s.view(b))
	}
	return views, nil
}

// UpdateBond edits bond metadata. Transactions and the buy date are fixed.
func (s *Service) UpdateBond(ctx context.Context, bondID string, in interfaces.UpdateBondInput) (*models.BondView, error) {
	userID := common.ResolveUserID(ctx)

	b, err := s.storage.BondStore().GetBond(ctx, userID, bondID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("name", "name is required")
		}
		b.Name = name
	}
	if in.Type != nil {
		b.Type = strings.TrimSpace(*in.Type)
	}
	if in.Description != nil {
		b.Description = strings.TrimSpace(*in.Description)
	}
	if in.ExpirationDate != nil {
		if !in.ExpirationDate.After(b.BuyDate) {
			return nil, models.NewValidationError("expiration_date", "expiration date must be after the buy date")
		}
		b.ExpirationDate = in.ExpirationDate
	}
	b.ModifiedAt = s.now()

	if err := s.storage.BondStore().UpdateBond(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update bond: %w", err)
	}
	return s.view(b), nil
}

// DeleteBond removes the bond and every transaction it holds.
func (s *Service) DeleteBond(ctx context.Context, bondID string) error {
	userID := common.ResolveUserID(ctx)
	if err := s.storage.BondStore().DeleteBond(ctx, userID, bondID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("bond_id", bondID).Msg("Bond deleted")
	return nil
}

func validateTransaction(b *models.Bond, in interfaces.TransactionInput) error {
	if !models.ValidTransactionType(in.Type) {
		return models.NewValidationError("type", fmt.Sprintf("invalid transaction type %q", in.Type))
	}
	if in.Date.IsZero() {
		return models.NewValidationError("date", "date is required")
	}
	if in.Date.Before(b.BuyDate) {
		return models.NewValidationError("date", "transaction date precedes the bond buy date")
	}

	switch in.Type {
	case models.TxInvestment, models.TxRescue:
		if !in.TransactionValue.IsPositive() {
			return models.NewValidationError("transaction_value", fmt.Sprintf("%s value must be greater than zero", in.Type))
		}
	case models.TxCorrection:
		if in.TransactionValue.IsZero() {
			return models.NewValidationError("transaction_value", "correction value must not be zero")
		}
	case models.TxLiquidation:
		if in.CurrentValue.IsNegative() {
			return models.NewValidationError("current_value", "liquidation value must not be negative")
		}
	}
	return nil
}

// AddTransaction records a lifecycle event on a bond. For everything but
// LIQUIDATION a zero CurrentValue is filled with the bond's value once the
// transaction is applied.
func (s *Service) AddTransaction(ctx context.Context, bondID string, in interfaces.TransactionInput) (*models.BondView, error) {
	userID := common.ResolveUserID(ctx)

	b, err := s.storage.BondStore().GetBond(ctx, userID, bondID)
	if err != nil {
		return nil, err
	}
	if err := validateTransaction(b, in); err != nil {
		return nil, err
	}

	now := s.now()
	tx := models.Transaction{
		ID:               uuid.New().String(),
		BondID:           b.ID,
		UserID:           userID,
		Date:             in.Date,
		Type:             in.Type,
		TransactionValue: in.TransactionValue,
		CurrentValue:     in.CurrentValue,
		CreatedAt:        now,
	}

	b.Transactions = append(b.Transactions, tx)
	totals := ledger.CalculateBondTotalsAt(b, now)
	if tx.Type != models.TxLiquidation && tx.CurrentValue.IsZero() {
		tx.CurrentValue = totals.CurrentValue
		b.Transactions[len(b.Transactions)-1] = tx
	}

	if err := s.storage.BondStore().AddTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}
	b.ModifiedAt = now

	s.logger.Info().
		Str("bond_id", b.ID).
		Str("tx_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("value", tx.TransactionValue.String()).
		Msg("Bond transaction recorded")

	return &models.BondView{Bond: *b, Totals: totals}, nil
}

// DeleteTransaction removes a transaction. The last INVESTMENT of a bond
// cannot be removed.
func (s *Service) DeleteTransaction(ctx context.Context, bondID, txID string) (*models.BondView, error) {
	userID := common.ResolveUserID(ctx)

	b, err := s.storage.BondStore().GetBond(ctx, userID, bondID)
	if err != nil {
		return nil, err
	}

	idx := -1
	investments := 0
	for i, t := range b.Transactions {
		if t.ID == txID {
			idx = i
		}
		if t.Type == models.TxInvestment {
			investments++
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	if b.Transactions[idx].Type == models.TxInvestment && investments == 1 {
		return nil, models.NewValidationError("transaction", "cannot delete the only INVESTMENT of a bond")
	}

	if err := s.storage.BondStore().DeleteTransaction(ctx, userID, bondID, txID); err != nil {
		return nil, err
	}

	b.Transactions = append(b.Transactions[:idx:idx], b.Transactions[idx+1:]...)
	return s.view(b), nil
}
