package surrealdb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
)

// Stored records carry their own <entity>_id field and no "id" field, so
// SurrealDB's RecordID never has to be decoded into a string. Decimals are
// persisted as strings to keep exact precision.

type walletRecord struct {
	WalletID    string    `json:"wallet_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	NameKey     string    `json:"name_key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

type bondRecord struct {
	BondID         string     `json:"bond_id"`
	UserID         string     `json:"user_id"`
	WalletID       string     `json:"wallet_id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Description    string     `json:"description"`
	BuyDate        time.Time  `json:"buy_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
}

type transactionRecord struct {
	TxID             string    `json:"tx_id"`
	BondID           string    `json:"bond_id"`
	UserID           string    `json:"user_id"`
	Date             time.Time `json:"date"`
	Type             string    `json:"type"`
	TransactionValue string    `json:"transaction_value"`
	CurrentValue     string    `json:"current_value"`
	CreatedAt        time.Time `json:"created_at"`
}

type lotRecord struct {
	LotID      string     `json:"lot_id"`
	UserID     string     `json:"user_id"`
	WalletID   string     `json:"wallet_id"`
	Ticker     string     `json:"ticker"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Quantity   string     `json:"quantity"`
	BuyPrice   string     `json:"buy_price"`
	BuyDate    time.Time  `json:"buy_date"`
	Open       bool       `json:"open"`
	SellDate   *time.Time `json:"sell_date,omitempty"`
	SellPrice  string     `json:"sell_price,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}

type dividendRecord struct {
	DividendID  string    `json:"dividend_id"`
	UserID      string    `json:"user_id"`
	StockID     string    `json:"stock_id"`
	Ticker      string    `json:"ticker"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	Day         string    `json:"day"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toWalletRecord(w *models.Wallet) walletRecord {
	return walletRecord{
		WalletID:    w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		NameKey:     nameKey(w.Name),
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		ModifiedAt:  w.ModifiedAt,
	}
}

func (r walletRecord) toModel() *models.Wallet {
	return &models.Wallet{
		ID:          r.WalletID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		ModifiedAt:  r.ModifiedAt,
	}
}

func toBondRecord(b *models.Bond) bondRecord {
	return bondRecord{
		BondID:         b.ID,
		UserID:         b.UserID,
		WalletID:       b.WalletID,
		Name:           b.Name,
		Type:           b.Type,
		Description:    b.Description,
		BuyDate:        b.BuyDate,
		ExpirationDate: b.ExpirationDate,
		CreatedAt:      b.CreatedAt,
		ModifiedAt:     b.ModifiedAt,
	}
}

func (r bondRecord) toModel() *models.Bond {
	return &models.Bond{
		ID:             r.BondID,
		UserID:         r.UserID,
		WalletID:       r.WalletID,
		Name:           r.Name,
		Type:           r.Type,
		Description:    r.Description,
		BuyDate:        r.BuyDate,
		ExpirationDate: r.ExpirationDate,
		CreatedAt:      r.CreatedAt,
		ModifiedAt:     r.ModifiedAt,
	}
}

func toTransactionRecord(t *models.Transaction) transactionRecord {
	return transactionRecord{
		TxID:             t.ID,
		BondID:           t.BondID,
		UserID:           t.UserID,
		Date:             t.Date,
		Type:             string(t.Type),
		TransactionValue: t.TransactionValue.String(),
		CurrentValue:     t.CurrentValue.String(),
		CreatedAt:        t.CreatedAt,
	}
}

func (r transactionRecord) toModel() (models.Transaction, error) {
	value, err := parseDecimal("transaction_value", r.TransactionValue)
	if err != nil {
		return models.Transaction{}, err
	}
	current, err := parseDecimal("current_value", r.CurrentValue)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:               r.TxID,
		BondID:           r.BondID,
		UserID:           r.UserID,
		Date:             r.Date,
		Type:             models.TransactionType(r.Type),
		TransactionValue: value,
		CurrentValue:     current,
		CreatedAt:        r.CreatedAt,
	}, nil
}

func toLotRecord(l *models.StockLot) lotRecord {
	r := lotRecord{
		LotID:      l.ID,
		UserID:     l.UserID,
		WalletID:   l.WalletID,
		Ticker:     l.Ticker,
		Name:       l.Name,
		Type:       l.Type,
		Quantity:   l.Quantity.String(),
		BuyPrice:   l.BuyPrice.String(),
		BuyDate:    l.BuyDate,
		Open:       l.IsOpen(),
		SellDate:   l.SellDate,
		CreatedAt:  l.CreatedAt,
		ModifiedAt: l.ModifiedAt,
	}
	if l.SellPrice != nil {
		r.SellPrice = l.SellPrice.String()
	}
	return r
}

func (r lotRecord) toModel() (*models.StockLot, error) {
	qty, err := parseDecimal("quantity", r.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal("buy_price", r.BuyPrice)
	if err != nil {
		return nil, err
	}
	lot := &models.StockLot{
		ID:         r.LotID,
		UserID:     r.UserID,
		WalletID:   r.WalletID,
		Ticker:     r.Ticker,
		Name:       r.Name,
		Type:       r.Type,
		Quantity:   qty,
		BuyPrice:   price,
		BuyDate:    r.BuyDate,
		SellDate:   r.SellDate,
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
	}
	if r.SellPrice != "" {
		sell, err := parseDecimal("sell_price", r.SellPrice)
		if err != nil {
			return nil, err
		}
		lot.SellPrice = &sell
	}
	return lot, nil
}

func toDividendRecord(d *models.Dividend) dividendRecord {
	return dividendRecord{
		DividendID:  d.ID,
		UserID:      d.UserID,
		StockID:     d.StockID,
		Ticker:      d.Ticker,
		Amount:      d.Amount.String(),
		Date:        d.Date,
		Day:         common.DayKey(d.Date),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func (r dividendRecord) toModel() (*models.Dividend, error) {
	amount, err := parseDecimal("amount", r.Amount)
	if err != nil {
		return nil, err
	}
	return &models.Dividend{
		ID:          r.DividendID,
		UserID:      r.UserID,
		StockID:     r.StockID,
		Ticker:      r.Ticker,
		Amount:      amount,
		Date:        r.Date,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s %q: %w", field, s, err)
	}
	return d, nil
}
