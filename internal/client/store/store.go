package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/logging"
)

const (
	keyItems         = "items"
	keyCategories    = "categories"
	keySyncCode      = "sync_code"
	keyKnownProducts = "known_products"
)

// Store is the Item Store: it owns the canonical record collection, the
// category list, the sync-code setting and the known-products cache, all
// persisted through a KV primitive as JSON values.
//
// Reads degrade rather than fail: a missing or corrupt value yields the
// empty collection (or default categories) so a damaged local store never
// blocks the user.
//
// The record collection is written by UI mutations and by the sync worker
// from different goroutines. Every read-modify-write of it must go through
// UpdateItems, which holds the store's write lock for the whole cycle.
type Store struct {
	kv     KV
	logger logging.Logger

	mu sync.Mutex // guards the items key across read-modify-write cycles
}

func New(kv KV, logger logging.Logger) *Store {
	return &Store{kv: kv, logger: logger.With("module", "store")}
}

// getJSON decodes the value under key into out. Returns false if the key is
// absent or the value cannot be decoded; decode failures are logged.
func (s *Store) getJSON(ctx context.Context, key string, out any) bool {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "read failed, using defaults", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn(ctx, "corrupt value, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// Items returns the full record collection. Never errors: unreadable state
// degrades to an empty collection.
func (s *Store) Items(ctx context.Context) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked(ctx)
}

func (s *Store) itemsLocked(ctx context.Context) []models.Item {
	var items []models.Item
	s.getJSON(ctx, keyItems, &items)
	return items
}

// SaveItems replaces the persisted record collection wholesale.
func (s *Store) SaveItems(ctx context.Context, items []models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveItemsLocked(ctx, items)
}

func (s *Store) saveItemsLocked(ctx context.Context, items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	return s.setJSON(ctx, keyItems, items)
}

// UpdateItems applies fn to the current record collection and persists the
// result, all under the store's write lock, so a concurrent writer can
// neither observe nor clobber a half-done read-modify-write. fn returns the
// new collection and whether it should be persisted; when it returns false
// nothing is written. The returned slice is fn's result.
func (s *Store) UpdateItems(ctx context.Context, fn func(items []models.Item) ([]models.Item, bool)) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, persist := fn(s.itemsLocked(ctx))
	if !persist {
		return updated, nil
	}
	if err := s.saveItemsLocked(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Categories returns the category list, falling back to the defaults when
// the list was never customized or is unreadable.
func (s *Store) Categories(ctx context.Context) []string {
	var categories []string
	if !s.getJSON(ctx, keyCategories, &categories) {
		return slices.Clone(models.DefaultCategories)
	}
	return categories
}

func (s *Store) SaveCategories(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return s.setJSON(ctx, keyCategories, categories)
}

// SyncCode returns the configured sync code, or "" when the installation is
// local-only.
func (s *Store) SyncCode(ctx context.Context) string {
	data, ok, err := s.kv.Get(ctx, keySyncCode)
	if err != nil {
		s.logger.Warn(ctx, "read failed", "key", keySyncCode, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

// SetSyncCode stores (or, with an empty code, clears) the sync code.
// Non-empty codes must be lowercase alphanumerics and hyphens.
func (s *Store) SetSyncCode(ctx context.Context, code string) error {
	if code == "" {
		return s.kv.Delete(ctx, keySyncCode)
	}
	if !common.ValidSyncCode(code) {
		return common.ErrInvalidSyncCode
	}
	return s.kv.Set(ctx, keySyncCode, []byte(code))
}

// KnownProduct returns the cached identification result for a barcode,
// or false if the barcode was never resolved.
func (s *Store) KnownProduct(ctx context.Context, barcode string) (models.ScanResult, bool) {
	products := map[string]models.ScanResult{}
	s.getJSON(ctx, keyKnownProducts, &products)
	result, ok := products[barcode]
	return result, ok
}

// SaveKnownProduct records an identification result in the known-products
// cache. Results without a barcode are ignored; the cache only grows.
func (s *Store) SaveKnownProduct(ctx context.Context, result models.ScanResult) error {
	if result.Barcode == "" {
		return nil
	}
	products := map[string]models.ScanResult{}
	s.getJSON(ctx, keyKnownProducts, &products)
	products[result.Barcode] = result
	return s.setJSON(ctx, keyKnownProducts, products)
}
