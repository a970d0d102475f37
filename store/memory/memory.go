// Package memory provides an in-memory widget.Store.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/widget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	widgets map[string]widget.Widget
}

func New() *Memory {
	return &Memory{widgets: make(map[string]widget.Widget)}
}

// Save creates or replaces a widget. CreatedAt of an existing widget is kept.
func (m *Memory) Save(_ context.Context, w widget.Widget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.widgets[w.ID]; ok {
		w.CreatedAt = existing.CreatedAt
	} else if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	m.widgets[w.ID] = clone(w)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*widget.Widget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.widgets[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, widget.ErrWidgetNotFound)
	}
	out := clone(w)
	return &out, nil
}

func (m *Memory) List(_ context.Context) ([]widget.Widget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]widget.Widget, 0, len(m.widgets))
	for _, w := range m.widgets {
		result = append(result, clone(w))
	}
	slices.SortFunc(result, func(a, b widget.Widget) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.widgets[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, widget.ErrWidgetNotFound)
	}
	delete(m.widgets, id)
	return nil
}

// Reset clears all data (for testing). It never fails.
func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.widgets = make(map[string]widget.Widget)
	return nil
}

// clone copies the map and slice fields so callers cannot mutate stored state.
func clone(w widget.Widget) widget.Widget {
	w.Settings = maps.Clone(w.Settings)
	if w.Encodings != nil {
		enc := make(kpi.EncodingMap, len(w.Encodings))
		for i, e := range w.Encodings {
			if e.Field != nil {
				f := *e.Field
				e.Field = &f
			}
			enc[i] = e
		}
		w.Encodings = enc
	}
	return w
}

var _ widget.Store = (*Memory)(nil)
