// Package maintenance implements the startup sweep that keeps the local
// collection bounded: it deletes records past the retention threshold and
// strips stale photos from history records.
package maintenance

import (
	"time"

	"github.com/pantrysync/restock/internal/client/models"
)

const (
	// RecordRetention is how long any record is kept before hard deletion
	// (1.5 years).
	RecordRetention = 547 * 24 * time.Hour

	// PhotoRetention is how long history records keep their image
	// (6 months).
	PhotoRetention = 180 * 24 * time.Hour
)

// Result reports what a sweep changed.
type Result struct {
	Deleted int
	Pruned  int
}

// Changed reports whether the swept collection differs from the input,
// i.e. whether the caller needs to persist it.
func (r Result) Changed() bool {
	return r.Deleted > 0 || r.Pruned > 0
}

// Sweep filters and transforms items against now. It never mutates the
// input slice.
//
// Deletion is evaluated first: a record older than RecordRetention is
// dropped outright, regardless of status, and never considered for image
// pruning. Surviving history records older than PhotoRetention lose their
// image but keep every other field.
func Sweep(items []models.Item, now time.Time) ([]models.Item, Result) {
	var res Result
	nowMs := now.UnixMilli()

	kept := make([]models.Item, 0, len(items))
	for _, item := range items {
		age := nowMs - item.AddedDate

		if age > RecordRetention.Milliseconds() {
			res.Deleted++
			continue
		}

		if item.Status == models.StatusHistory && item.ImageURL != "" && age > PhotoRetention.Milliseconds() {
			item.ImageURL = ""
			res.Pruned++
		}
		kept = append(kept, item)
	}

	return kept, res
}
