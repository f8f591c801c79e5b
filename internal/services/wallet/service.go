// Package wallet manages the wallets that group a user's holdings
package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/models"
)

// Compile-time interface check
var _ interfaces.WalletService = (*Service)(nil)

const maxNameLength = 100

// Service implements WalletService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new wallet service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("name", "name is required")
	}
	if len(name) > maxNameLength {
		return "", models.NewValidationError("name", fmt.Sprintf("name exceeds %d characters", maxNameLength))
	}
	return name, nil
}

// ensureUniqueName rejects a name already used by another wallet of the user.
func (s *Service) ensureUniqueName(ctx context.Context, userID, name, exceptID string) error {
	wallets, err := s.storage.WalletStore().ListWallets(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list wallets: %w", err)
	}
	for _, w := range wallets {
		if w.ID != exceptID && strings.EqualFold(w.Name, name) {
			return models.NewValidationError("name", fmt.Sprintf("a wallet named %q already exists", w.Name))
		}
	}
	return nil
}

// CreateWallet creates a wallet for the user in context.
func (s *Service) CreateWallet(ctx context.Context, name, description string) (*models.Wallet, error) {
	userID := common.ResolveUserID(ctx)

	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, userID, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	w := &models.Wallet{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if err := s.storage.WalletStore().CreateWallet(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("wallet_id", w.ID).Str("name", w.Name).Msg("Wallet created")
	return w, nil
}

// GetWallet returns one wallet of the user in context.
func (s *Service) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	return s.storage.WalletStore().GetWallet(ctx, common.ResolveUserID(ctx), walletID)
}

// ListWallets returns the wallets of the user in context.
func (s *Service) ListWallets(ctx context.Context) ([]*models.Wallet, error) {
	return s.storage.WalletStore().ListWallets(ctx, common.ResolveUserID(ctx))
}

// UpdateWallet renames and redescribes a wallet. An empty name keeps the current one.
func (s *Service) UpdateWallet(ctx context.Context, walletID, name, description string) (*models.Wallet, error) {
	userID := common.ResolveUserID(ctx)

	w, err := s.storage.WalletStore().GetWallet(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) != "" {
		name, err = validateName(name)
		if err != nil {
			return nil, err
		}
		if err := s.ensureUniqueName(ctx, userID, name, w.ID); err != nil {
			return nil, err
		}
		w.Name = name
	}
	w.Description = strings.TrimSpace(description)
	w.ModifiedAt = s.now()

	if err := s.storage.WalletStore().UpdateWallet(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}
	return w, nil
}

// DeleteWallet removes an empty wallet. Wallets still holding bonds or
// open lots are refused.
func (s *Service) DeleteWallet(ctx context.Context, walletID string) error {
	userID := common.ResolveUserID(ctx)

	if _, err := s.storage.WalletStore().GetWallet(ctx, userID, walletID); err != nil {
		return err
	}

	bonds, err := s.storage.BondStore().ListBonds(ctx, userID, walletID)
	if err != nil {
		return fmt.Errorf("failed to list bonds: %w", err)
	}
	if len(bonds) > 0 {
		return models.NewValidationError("wallet", fmt.Sprintf("wallet still holds %d bond(s)", len(bonds)))
	}

	lots, err := s.storage.StockStore().ListLots(ctx, userID, walletID, "")
	if err != nil {
		return fmt.Errorf("failed to list lots: %w", err)
	}
	for _, l := range lots {
		if l.IsOpen() {
			return models.NewValidationError("wallet", "wallet still holds open stock lots")
		}
	}

	if err := s.storage.WalletStore().DeleteWallet(ctx, userID, walletID); err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("wallet_id", walletID).Msg("Wallet deleted")
	return nil
}
