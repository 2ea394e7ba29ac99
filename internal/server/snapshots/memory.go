package snapshots

import (
	"context"
	"sync"

	"github.com/pantrysync/restock/internal/common"
)

// MemoryRepository keeps snapshots in a map. Contents are lost on restart,
// which is fine for tests and local runs.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, code string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payload, ok := r.data[code]
	if !ok {
		return nil, common.ErrorNotFound
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (r *MemoryRepository) Set(_ context.Context, code string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	r.data[code] = stored
	return nil
}
