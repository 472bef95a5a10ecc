// Package store is the single Record Store the ledger services share.
// It keeps one JSON array per collection in a Backend and decodes every
// element into the canonical record schema, migrating legacy shapes on read.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/tx"
	"ricemill/internal/domain/ledger"
)

// Collection names a stored array of records.
type Collection string

const (
	RiceStocks  Collection = "rice_stocks"
	PaddyStocks Collection = "paddy_stocks"
	RiceSales   Collection = "rice_sales"
	PaddySales  Collection = "paddy_sales"
	Threshings  Collection = "threshing_records"
	AuditLog    Collection = "audit_log"
)

// Collections lists every collection the store manages.
func Collections() []Collection {
	return []Collection{RiceStocks, PaddyStocks, RiceSales, PaddySales, Threshings, AuditLog}
}

// StocksOf returns the stock collection of a family.
func StocksOf(f ledger.Family) Collection {
	if f == ledger.FamilyPaddy {
		return PaddyStocks
	}
	return RiceStocks
}

// SalesOf returns the sales collection of a family.
func SalesOf(f ledger.Family) Collection {
	if f == ledger.FamilyPaddy {
		return PaddySales
	}
	return RiceSales
}

// Backend persists raw JSON arrays by collection name.
// Get returns nil when the collection was never written.
type Backend interface {
	Get(ctx context.Context, c Collection) ([]byte, error)
	Set(ctx context.Context, c Collection, data []byte) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the typed view over a Backend.
type Store struct {
	backend Backend
	txm     tx.Manager
}

// New creates a store. txm may be nil, in which case transactions run
// the function directly against the backend.
func New(backend Backend, txm tx.Manager) *Store {
	return &Store{backend: backend, txm: txm}
}

// RunInTransaction executes fn so that all its writes commit or none do.
// Failures that are not already AppErrors, such as a failed commit, are
// reported as StorageError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	if s.txm == nil {
		err = fn(ctx)
	} else {
		err = s.txm.RunInTransaction(ctx, fn)
	}
	if err != nil && !apperror.IsAppError(err) {
		return apperror.NewStorage("transaction", err)
	}
	return err
}

// Ping checks the backend when it supports health checks.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return apperror.NewStorage("ping", err)
		}
	}
	return nil
}

// --- stocks ---

// Stocks returns the stock lots of a family in insertion order.
func (s *Store) Stocks(ctx context.Context, f ledger.Family) ([]ledger.StockRecord, error) {
	return load(ctx, s, StocksOf(f), func(raw json.RawMessage) (ledger.StockRecord, error) {
		return decodeStock(raw, f)
	})
}

// AllStocks returns rice lots followed by paddy lots.
func (s *Store) AllStocks(ctx context.Context) ([]ledger.StockRecord, error) {
	var all []ledger.StockRecord
	for _, f := range ledger.Families() {
		items, err := s.Stocks(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// SaveStocks replaces the stock collection of a family.
func (s *Store) SaveStocks(ctx context.Context, f ledger.Family, items []ledger.StockRecord) error {
	return save(ctx, s, StocksOf(f), items)
}

// FindStock resolves a stock id across both families.
func (s *Store) FindStock(ctx context.Context, stockID string) (ledger.StockRecord, error) {
	for _, f := range ledger.Families() {
		items, err := s.Stocks(ctx, f)
		if err != nil {
			return ledger.StockRecord{}, err
		}
		for _, item := range items {
			if item.ID == stockID {
				return item, nil
			}
		}
	}
	return ledger.StockRecord{}, apperror.NewNotFound("stock", stockID)
}

// --- sales ---

// Sales returns the sales of a family in insertion order.
func (s *Store) Sales(ctx context.Context, f ledger.Family) ([]ledger.SaleRecord, error) {
	return load(ctx, s, SalesOf(f), func(raw json.RawMessage) (ledger.SaleRecord, error) {
		return decodeSale(raw, f)
	})
}

// AllSales returns rice sales followed by paddy sales.
func (s *Store) AllSales(ctx context.Context) ([]ledger.SaleRecord, error) {
	var all []ledger.SaleRecord
	for _, f := range ledger.Families() {
		items, err := s.Sales(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// SaveSales replaces the sales collection of a family.
func (s *Store) SaveSales(ctx context.Context, f ledger.Family, items []ledger.SaleRecord) error {
	return save(ctx, s, SalesOf(f), items)
}

// --- threshing ---

// Threshings returns the threshing records in insertion order.
func (s *Store) Threshings(ctx context.Context) ([]ledger.ThreshingRecord, error) {
	return load(ctx, s, Threshings, decodeThreshing)
}

// SaveThreshings replaces the threshing collection.
func (s *Store) SaveThreshings(ctx context.Context, items []ledger.ThreshingRecord) error {
	return save(ctx, s, Threshings, items)
}

// --- audit ---

// AuditEntries returns the audit log in insertion order.
func (s *Store) AuditEntries(ctx context.Context) ([]ledger.AuditEntry, error) {
	return load(ctx, s, AuditLog, func(raw json.RawMessage) (ledger.AuditEntry, error) {
		var e ledger.AuditEntry
		err := json.Unmarshal(raw, &e)
		return e, err
	})
}

// AppendAudit adds one entry to the audit log.
func (s *Store) AppendAudit(ctx context.Context, entry ledger.AuditEntry) error {
	entries, err := s.AuditEntries(ctx)
	if err != nil {
		return err
	}
	return save(ctx, s, AuditLog, append(entries, entry))
}

// --- generic plumbing ---

func load[T any](ctx context.Context, s *Store, c Collection, decode func(json.RawMessage) (T, error)) ([]T, error) {
	data, err := s.backend.Get(ctx, c)
	if err != nil {
		return nil, apperror.NewStorage("get "+string(c), err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []T{}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, apperror.NewStorage("decode "+string(c), err)
	}

	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		item, err := decode(raw)
		if err != nil {
			return nil, apperror.NewStorage("decode "+string(c), fmt.Errorf("element %d: %w", i, err))
		}
		out = append(out, item)
	}
	return out, nil
}

func save[T any](ctx context.Context, s *Store, c Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("encode %s: %w", c, err))
	}
	if err := s.backend.Set(ctx, c, data); err != nil {
		return apperror.NewStorage("set "+string(c), err)
	}
	return nil
}
