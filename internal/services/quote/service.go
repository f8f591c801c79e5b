// Package quote turns a market-data client into a cached price source
package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/models"
)

// DefaultTTL is used when the configured cache TTL is not positive.
const DefaultTTL = 15 * time.Minute

type cacheEntry struct {
	quote     *models.RealTimeQuote
	fetchedAt time.Time
}

// Service caches real-time quotes per ticker.
// A nil client makes every lookup miss, so prices fall back to zero.
type Service struct {
	client interfaces.QuoteClient
	ttl    time.Duration
	logger *common.Logger
	now    func() time.Time // injectable clock for testing

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewService creates a new quote service.
func NewService(client interfaces.QuoteClient, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// GetRealTimeQuote returns a cached quote when fresh, otherwise fetches a new one.
func (s *Service) GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if s.client == nil {
		return nil, models.ErrNotFound
	}

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && s.now().Sub(entry.fetchedAt) < s.ttl {
		return entry.quote, nil
	}

	q, err := s.client.GetRealTimeQuote(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{quote: q, fetchedAt: s.now()}
	s.mu.Unlock()
	return q, nil
}

// Price has the interfaces.PriceFunc signature. Lookup failures are logged and
// reported as a zero price.
func (s *Service) Price(ctx context.Context, ticker string) decimal.Decimal {
	q, err := s.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		if s.client != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote lookup failed")
		}
		return decimal.Zero
	}
	return q.Close
}

// Ensure Service implements QuoteClient
var _ interfaces.QuoteClient = (*Service)(nil)
