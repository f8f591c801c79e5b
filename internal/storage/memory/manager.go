// Package memory is an in-process StorageManager. It backs the
// "memory" storage backend and the service tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/lots"
	"github.com/bobmcallan/holdings/internal/models"
)

// Manager keeps every record in maps guarded by a single lock, so each
// method call is atomic.
type Manager struct {
	mu sync.RWMutex

	users     map[string]models.InternalUser
	kv        map[string]models.UserKeyValue
	wallets   map[string]models.Wallet
	bonds     map[string]models.Bond
	txs       map[string][]models.Transaction // by bond ID, insertion order
	lots      map[string]models.StockLot
	lotOrder  []string
	dividends []models.Dividend
}

// NewManager returns an empty store.
func NewManager() *Manager {
	return &Manager{
		users:   make(map[string]models.InternalUser),
		kv:      make(map[string]models.UserKeyValue),
		wallets: make(map[string]models.Wallet),
		bonds:   make(map[string]models.Bond),
		txs:     make(map[string][]models.Transaction),
		lots:    make(map[string]models.StockLot),
	}
}

func (m *Manager) InternalStore() interfaces.InternalStore { return (*internalStore)(m) }
func (m *Manager) WalletStore() interfaces.WalletStore     { return (*walletStore)(m) }
func (m *Manager) BondStore() interfaces.BondStore         { return (*bondStore)(m) }
func (m *Manager) StockStore() interfaces.StockStore       { return (*stockStore)(m) }
func (m *Manager) Close() error                            { return nil }

var _ interfaces.StorageManager = (*Manager)(nil)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
}

func normTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// --- users ---

type internalStore Manager

func (s *internalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

func (s *internalStore) GetUserByEmail(_ context.Context, email string) (*models.InternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, notFound("user with email", email)
}

func (s *internalStore) SaveUser(_ context.Context, user *models.InternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = *user
	return nil
}

func (s *internalStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *internalStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *internalStore) GetUserKV(_ context.Context, userID, key string) (*models.UserKeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kv, ok := s.kv[userID+"_"+key]
	if !ok {
		return nil, notFound("user KV", key)
	}
	return &kv, nil
}

func (s *internalStore) SetUserKV(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := userID + "_" + key
	kv := s.kv[id]
	s.kv[id] = models.UserKeyValue{UserID: userID, Key: key, Value: value, Version: kv.Version + 1, DateTime: time.Now()}
	return nil
}

func (s *internalStore) ListUserKV(_ context.Context, userID string) ([]*models.UserKeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.UserKeyValue
	for _, kv := range s.kv {
		if kv.UserID == userID {
			kv := kv
			out = append(out, &kv)
		}
	}
	slices.SortFunc(out, func(a, b *models.UserKeyValue) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// --- wallets ---

type walletStore Manager

func (s *walletStore) CreateWallet(_ context.Context, w *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = *w
	return nil
}

func (s *walletStore) GetWallet(_ context.Context, userID, walletID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok || w.UserID != userID {
		return nil, notFound("wallet", walletID)
	}
	return &w, nil
}

func (s *walletStore) ListWallets(_ context.Context, userID string) ([]*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Wallet{}
	for _, w := range s.wallets {
		if w.UserID == userID {
			w := w
			out = append(out, &w)
		}
	}
	slices.SortFunc(out, func(a, b *models.Wallet) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (s *walletStore) UpdateWallet(_ context.Context, w *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.wallets[w.ID]
	if !ok || old.UserID != w.UserID {
		return notFound("wallet", w.ID)
	}
	s.wallets[w.ID] = *w
	return nil
}

func (s *walletStore) DeleteWallet(_ context.Context, userID, walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok || w.UserID != userID {
		return notFound("wallet", walletID)
	}
	delete(s.wallets, walletID)
	return nil
}

func (s *walletStore) WalletExists(_ context.Context, userID, walletID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	return ok && w.UserID == userID, nil
}

// --- bonds ---

type bondStore Manager

func (s *bondStore) load(userID, bondID string) (*models.Bond, error) {
	b, ok := s.bonds[bondID]
	if !ok || b.UserID != userID {
		return nil, notFound("bond", bondID)
	}
	b.Transactions = slices.Clone(s.txs[bondID])
	slices.SortStableFunc(b.Transactions, func(x, y models.Transaction) int { return x.Date.Compare(y.Date) })
	return &b, nil
}

func (s *bondStore) CreateBond(_ context.Context, bond *models.Bond) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := *bond
	b.Transactions = nil
	s.bonds[b.ID] = b
	s.txs[b.ID] = slices.Clone(bond.Transactions)
	return nil
}

func (s *bondStore) GetBond(_ context.Context, userID, bondID string) (*models.Bond, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(userID, bondID)
}

func (s *bondStore) ListBonds(_ context.Context, userID, walletID string) ([]*models.Bond, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Bond{}
	for id, b := range s.bonds {
		if b.UserID == userID && b.WalletID == walletID {
			loaded, _ := s.load(userID, id)
			out = append(out, loaded)
		}
	}
	slices.SortFunc(out, func(a, b *models.Bond) int {
		if c := a.BuyDate.Compare(b.BuyDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *bondStore) UpdateBond(_ context.Context, bond *models.Bond) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(bond.UserID, bond.ID); err != nil {
		return err
	}
	b := *bond
	b.Transactions = nil
	s.bonds[b.ID] = b
	return nil
}

func (s *bondStore) DeleteBond(_ context.Context, userID, bondID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(userID, bondID); err != nil {
		return err
	}
	delete(s.bonds, bondID)
	delete(s.txs, bondID)
	return nil
}

func (s *bondStore) AddTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(tx.UserID, tx.BondID); err != nil {
		return err
	}
	s.txs[tx.BondID] = append(s.txs[tx.BondID], *tx)
	b := s.bonds[tx.BondID]
	b.ModifiedAt = tx.CreatedAt
	s.bonds[tx.BondID] = b
	return nil
}

func (s *bondStore) DeleteTransaction(_ context.Context, userID, bondID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(userID, bondID); err != nil {
		return err
	}
	txs := s.txs[bondID]
	i := slices.IndexFunc(txs, func(t models.Transaction) bool { return t.ID == txID })
	if i < 0 {
		return notFound("transaction", txID)
	}
	s.txs[bondID] = slices.Delete(slices.Clone(txs), i, i+1)
	return nil
}

// --- stocks ---

type stockStore Manager

func (s *stockStore) CreateLot(_ context.Context, lot *models.StockLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*lot)
	return nil
}

func (s *stockStore) put(lot models.StockLot) {
	lot.Ticker = normTicker(lot.Ticker)
	if _, ok := s.lots[lot.ID]; !ok {
		s.lotOrder = append(s.lotOrder, lot.ID)
	}
	s.lots[lot.ID] = lot
}

func (s *stockStore) GetLot(_ context.Context, userID, lotID string) (*models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[lotID]
	if !ok || l.UserID != userID {
		return nil, notFound("lot", lotID)
	}
	return &l, nil
}

func (s *stockStore) filter(keep func(models.StockLot) bool) []*models.StockLot {
	out := []*models.StockLot{}
	for _, id := range s.lotOrder {
		l := s.lots[id]
		if keep(l) {
			out = append(out, &l)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.StockLot) int {
		if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		return a.BuyDate.Compare(b.BuyDate)
	})
	return out
}

func (s *stockStore) ListLots(_ context.Context, userID, walletID, ticker string) ([]*models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := normTicker(ticker)
	return s.filter(func(l models.StockLot) bool {
		return l.UserID == userID && l.WalletID == walletID && (t == "" || l.Ticker == t)
	}), nil
}

func (s *stockStore) ListOpenLots(_ context.Context, userID, walletID, ticker string) ([]*models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := normTicker(ticker)
	return s.filter(func(l models.StockLot) bool {
		return l.UserID == userID && l.WalletID == walletID && l.Ticker == t && l.IsOpen()
	}), nil
}

func (s *stockStore) ListLotsByTicker(_ context.Context, userID, ticker string) ([]*models.StockLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := normTicker(ticker)
	return s.filter(func(l models.StockLot) bool {
		return l.UserID == userID && l.Ticker == t
	}), nil
}

func (s *stockStore) ApplySale(_ context.Context, userID string, result *models.SaleResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range [][]models.StockLot{result.UpdatedLots, result.NewLots} {
		for _, l := range group {
			if l.UserID != userID {
				return notFound("lot", l.ID)
			}
		}
	}
	for _, l := range result.UpdatedLots {
		s.put(l)
	}
	for _, l := range result.NewLots {
		s.put(l)
	}
	return nil
}

func (s *stockStore) CreateDividends(_ context.Context, dividends []models.Dividend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range dividends {
		d.Ticker = normTicker(d.Ticker)
		s.dividends = append(s.dividends, d)
	}
	return nil
}

func (s *stockStore) ListDividends(_ context.Context, userID, ticker string) ([]*models.Dividend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := normTicker(ticker)
	out := []*models.Dividend{}
	for _, d := range s.dividends {
		if d.UserID == userID && (t == "" || d.Ticker == t) {
			d := d
			out = append(out, &d)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Dividend) int { return b.Date.Compare(a.Date) })
	return out, nil
}

func (s *stockStore) DeleteDividendBatch(_ context.Context, userID, day, description string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.dividends[:0:0]
	n := 0
	for _, d := range s.dividends {
		if d.UserID == userID && lots.SameBatch(d, day, description) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	s.dividends = kept
	return n, nil
}
