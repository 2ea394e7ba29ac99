// Package merge reconciles a local and a remote item collection into one
// canonical set. It is a pure decision layer with no I/O.
package merge

import "github.com/pantrysync/restock/internal/client/models"

// Merge combines local and remote under last-write-wins by AddedDate.
//
// Records are keyed by id; a candidate replaces the kept record only when
// its AddedDate is strictly greater. Local is iterated first, so on equal
// timestamps the local variant wins. Output order is deterministic: local
// items in their original relative order, then remote-only items in theirs.
//
// Neither input is mutated. Wall-clock timestamps mean a skewed device
// clock can make an older edit win; that is an accepted property of the
// scheme, not something this function tries to detect.
func Merge(local, remote []models.Item) []models.Item {
	index := make(map[string]int, len(local)+len(remote))
	merged := make([]models.Item, 0, len(local)+len(remote))

	for _, item := range local {
		if _, ok := index[item.ID]; !ok {
			index[item.ID] = len(merged)
			merged = append(merged, item)
		} else if item.AddedDate > merged[index[item.ID]].AddedDate {
			merged[index[item.ID]] = item
		}
	}
	for _, item := range remote {
		at, ok := index[item.ID]
		if !ok {
			index[item.ID] = len(merged)
			merged = append(merged, item)
			continue
		}
		if item.AddedDate > merged[at].AddedDate {
			merged[at] = item
		}
	}

	return merged
}
