// Package journal defines the Entry entity shared by client and server and
// its mapping to the document record stored in the "entries" collection.
package journal

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Collection is the logical name of the collection holding entries.
const Collection = "entries"

// Record keys. They are part of the stored document format and must not change.
const (
	KeyTitle     = "title"
	KeyContent   = "content"
	KeyTimestamp = "timestamp"
	KeyOwner     = "userId"
)

// Entry is one journal entry. An empty ID means the entry has not been
// persisted yet. CreatedAt is milliseconds since the Unix epoch.
type Entry struct {
	ID        string
	Title     string
	Body      string
	OwnerID   string
	CreatedAt int64
}

// NowMillis returns the current time in milliseconds since the epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ToRecord returns the stored document for e. The id is not part of it.
func (e Entry) ToRecord() map[string]any {
	return map[string]any{
		KeyTitle:     e.Title,
		KeyContent:   e.Body,
		KeyTimestamp: e.CreatedAt,
		KeyOwner:     e.OwnerID,
	}
}

// FromRecord decodes a stored document. Missing or wrongly typed fields fall
// back to their zero value.
func FromRecord(id string, rec map[string]any) Entry {
	return Entry{
		ID:        id,
		Title:     stringField(rec, KeyTitle),
		Body:      stringField(rec, KeyContent),
		OwnerID:   stringField(rec, KeyOwner),
		CreatedAt: int64Field(rec, KeyTimestamp),
	}
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}

func int64Field(rec map[string]any, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	}
	return 0
}

// SortNewestFirst orders entries by CreatedAt descending. Ties are broken by
// ID so the order is stable across snapshots.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt != entries[j].CreatedAt {
			return entries[i].CreatedAt > entries[j].CreatedAt
		}
		return entries[i].ID < entries[j].ID
	})
}
