// Package services implements the UI-facing mutation operations over the
// Item Store: every add/restock/edit/delete rewrites the persisted
// collection wholesale and then nudges the sync orchestrator.
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pantrysync/restock/internal/client/maintenance"
	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/client/store"
	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/logging"
)

// Notifier is how the service signals that the local collection changed.
// *sync.Orchestrator implements it.
type Notifier interface {
	Notify()
}

// Identifier is the external barcode identification collaborator. The
// lookup against a product catalog happens outside this module; the service
// only consumes its result.
type Identifier interface {
	Identify(ctx context.Context, barcode string) (models.ScanResult, error)
}

// AddParams carries the confirmed fields for a new or re-added item.
type AddParams struct {
	Name        string
	Description string
	Category    string
	Quantity    float64
	Unit        string
	Barcode     string
	ImageURL    string
}

// ItemChanges carries the editable fields of an item. Nil pointers leave
// the field unchanged.
type ItemChanges struct {
	Name        *string
	Description *string
	Category    *string
	Quantity    *float64
	Unit        *string
	ImageURL    *string
}

// ItemService owns all mutations of the local record collection.
type ItemService struct {
	store      *store.Store
	notifier   Notifier
	identifier Identifier
	logger     logging.Logger
	now        func() time.Time
}

func NewItemService(s *store.Store, n Notifier, id Identifier, logger logging.Logger) *ItemService {
	return &ItemService{
		store:      s,
		notifier:   n,
		identifier: id,
		logger:     logger.With("module", "items"),
		now:        time.Now,
	}
}

// Load reads the local collection and runs the maintenance sweep against
// the current time. The swept collection is persisted only when the sweep
// changed something. Runs once at startup, before the first listing.
func (s *ItemService) Load(ctx context.Context) []models.Item {
	items, err := s.store.UpdateItems(ctx, func(items []models.Item) ([]models.Item, bool) {
		swept, res := maintenance.Sweep(items, s.now())
		if res.Changed() {
			s.logger.Info(ctx, "maintenance complete", "deleted", res.Deleted, "pruned", res.Pruned)
		}
		return swept, res.Changed()
	})
	if err != nil {
		s.logger.Error(ctx, "persisting swept collection", "error", err)
		return s.store.Items(ctx)
	}
	return items
}

// List returns items with the given status whose name contains term
// (case-insensitive). An empty term matches everything.
func (s *ItemService) List(ctx context.Context, status models.Status, term string) []models.Item {
	term = strings.ToLower(term)
	var result []models.Item
	for _, item := range s.store.Items(ctx) {
		if item.Status != status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(item.Name), term) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// Add creates a record from confirmed fields. When the barcode matches an
// existing record, that record is re-used: fields are overwritten, the
// quantity accumulates if the match is still active, status flips back to
// active, the timestamp refreshes, and the record moves to the front of
// the collection.
func (s *ItemService) Add(ctx context.Context, p AddParams) (models.Item, error) {
	var added models.Item
	err := s.saveAndSync(ctx, func(items []models.Item) ([]models.Item, bool) {
		var existing *models.Item
		if p.Barcode != "" {
			for i := range items {
				if items[i].Barcode == p.Barcode {
					existing = &items[i]
					break
				}
			}
		}

		if existing != nil {
			quantity := p.Quantity
			if existing.Status == models.StatusActive {
				quantity += existing.Quantity
			}
			added = models.Item{
				ID:          existing.ID,
				Name:        p.Name,
				Description: p.Description,
				Category:    p.Category,
				AddedDate:   s.now().UnixMilli(),
				Status:      models.StatusActive,
				Quantity:    quantity,
				Unit:        p.Unit,
				Barcode:     p.Barcode,
				ImageURL:    p.ImageURL,
			}
			rest := slices.DeleteFunc(slices.Clone(items), func(i models.Item) bool { return i.ID == added.ID })
			return append([]models.Item{added}, rest...), true
		}

		added = models.Item{
			ID:          uuid.NewString(),
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			AddedDate:   s.now().UnixMilli(),
			Status:      models.StatusActive,
			Quantity:    p.Quantity,
			Unit:        p.Unit,
			Barcode:     p.Barcode,
			ImageURL:    p.ImageURL,
		}
		return append([]models.Item{added}, items...), true
	})
	if err != nil {
		return models.Item{}, err
	}
	return added, nil
}

// Restock flips an active item into history with a fresh timestamp.
func (s *ItemService) Restock(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusHistory)
}

// Unrestock puts a history item back on the restock list.
func (s *ItemService) Unrestock(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusActive)
}

func (s *ItemService) setStatus(ctx context.Context, id string, status models.Status) error {
	found := false
	err := s.saveAndSync(ctx, func(items []models.Item) ([]models.Item, bool) {
		idx := slices.IndexFunc(items, func(i models.Item) bool { return i.ID == id })
		if idx < 0 {
			return items, false
		}
		found = true
		items[idx].Status = status
		items[idx].AddedDate = s.now().UnixMilli()
		return items, true
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

// Edit applies changes to an item and refreshes its timestamp.
func (s *ItemService) Edit(ctx context.Context, id string, changes ItemChanges) error {
	found := false
	err := s.saveAndSync(ctx, func(items []models.Item) ([]models.Item, bool) {
		idx := slices.IndexFunc(items, func(i models.Item) bool { return i.ID == id })
		if idx < 0 {
			return items, false
		}
		found = true

		item := &items[idx]
		if changes.Name != nil {
			item.Name = *changes.Name
		}
		if changes.Description != nil {
			item.Description = *changes.Description
		}
		if changes.Category != nil {
			item.Category = *changes.Category
		}
		if changes.Quantity != nil {
			item.Quantity = *changes.Quantity
		}
		if changes.Unit != nil {
			item.Unit = *changes.Unit
		}
		if changes.ImageURL != nil {
			item.ImageURL = *changes.ImageURL
		}
		item.AddedDate = s.now().UnixMilli()
		return items, true
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

// Delete removes an item outright.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	found := false
	err := s.saveAndSync(ctx, func(items []models.Item) ([]models.Item, bool) {
		rest := slices.DeleteFunc(items, func(i models.Item) bool { return i.ID == id })
		if len(rest) == len(items) {
			return items, false
		}
		found = true
		return rest, true
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

// Categories returns the current category list.
func (s *ItemService) Categories(ctx context.Context) []string {
	return s.store.Categories(ctx)
}

// AddCategory appends a category. Duplicates are rejected as meaningless.
func (s *ItemService) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty category: %w", common.ErrInvalidPayload)
	}
	categories := s.store.Categories(ctx)
	if slices.Contains(categories, name) {
		return nil
	}
	return s.store.SaveCategories(ctx, append(categories, name))
}

// RemoveCategory drops a category from the list. Records already tagged
// with it keep their tag.
func (s *ItemService) RemoveCategory(ctx context.Context, name string) error {
	categories := s.store.Categories(ctx)
	rest := slices.DeleteFunc(categories, func(c string) bool { return c == name })
	return s.store.SaveCategories(ctx, rest)
}

// Scan resolves a barcode to product metadata: first from the local
// known-products cache, then via the identification collaborator, caching
// its answer for next time.
func (s *ItemService) Scan(ctx context.Context, barcode string) (models.ScanResult, error) {
	if cached, ok := s.store.KnownProduct(ctx, barcode); ok {
		return cached, nil
	}
	if s.identifier == nil {
		return models.ScanResult{}, fmt.Errorf("barcode %s: %w", barcode, common.ErrorNotFound)
	}

	result, err := s.identifier.Identify(ctx, barcode)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("identifying barcode %s: %w", barcode, err)
	}
	if err := s.store.SaveKnownProduct(ctx, result); err != nil {
		s.logger.Warn(ctx, "caching known product", "error", err)
	}
	return result, nil
}

// SetSyncCode stores or clears the sync code and wakes the orchestrator so
// a freshly paired device syncs immediately.
func (s *ItemService) SetSyncCode(ctx context.Context, code string) error {
	if err := s.store.SetSyncCode(ctx, code); err != nil {
		return err
	}
	if code != "" {
		s.notifier.Notify()
	}
	return nil
}

// saveAndSync runs fn as one atomic read-modify-write of the record
// collection and, if fn persisted a change, nudges the orchestrator. The
// whole cycle happens under the store's write lock, so a sync attempt's
// merge-persist can never slip between a mutation's read and its save.
func (s *ItemService) saveAndSync(ctx context.Context, fn func(items []models.Item) ([]models.Item, bool)) error {
	persisted := false
	_, err := s.store.UpdateItems(ctx, func(items []models.Item) ([]models.Item, bool) {
		updated, ok := fn(items)
		persisted = ok
		return updated, ok
	})
	if err != nil {
		return fmt.Errorf("saving items: %w", err)
	}
	if persisted {
		s.notifier.Notify()
	}
	return nil
}
