package realtime

import (
	"sync"

	"github.com/yeremiapane/restaurant-storefront/models"
)

// Reconcile merges one change into list: prepend on insert, replace by id on
// update, filter by id on delete. The input slice is not modified. There is no
// conflict resolution; the last event applied wins.
func Reconcile[T any](list []T, idOf func(T) uint, action string, id uint, record *T) []T {
	switch action {
	case models.ActionInsert:
		if record == nil {
			return list
		}
		out := make([]T, 0, len(list)+1)
		out = append(out, *record)
		for _, item := range list {
			if idOf(item) != id {
				out = append(out, item)
			}
		}
		return out
	case models.ActionUpdate:
		if record == nil {
			return list
		}
		out := make([]T, len(list))
		copy(out, list)
		for i := range out {
			if idOf(out[i]) == id {
				out[i] = *record
			}
		}
		return out
	case models.ActionDelete:
		out := make([]T, 0, len(list))
		for _, item := range list {
			if idOf(item) != id {
				out = append(out, item)
			}
		}
		return out
	}
	return list
}

// LiveList is a list kept in sync with change events of one table.
type LiveList[T any] struct {
	mu    sync.RWMutex
	table string
	idOf  func(T) uint
	limit int
	items []T
}

// NewLiveList tracks table; limit > 0 caps the list length after inserts.
func NewLiveList[T any](table string, idOf func(T) uint, limit int) *LiveList[T] {
	return &LiveList[T]{table: table, idOf: idOf, limit: limit}
}

// Reset replaces the list contents.
func (l *LiveList[T]) Reset(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T(nil), items...)
	l.trim()
}

// Apply merges ev if it belongs to the tracked table. Records of another type
// are ignored.
func (l *LiveList[T]) Apply(ev Event) {
	if ev.Table != l.table {
		return
	}
	var record *T
	switch r := ev.Record.(type) {
	case T:
		record = &r
	case *T:
		record = r
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = Reconcile(l.items, l.idOf, ev.Action, uint(ev.RecordID), record)
	l.trim()
}

func (l *LiveList[T]) trim() {
	if l.limit > 0 && len(l.items) > l.limit {
		l.items = l.items[:l.limit]
	}
}

// Items returns a copy of the current list.
func (l *LiveList[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}
