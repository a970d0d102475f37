/*
Package widget defines the persisted KPI widget and its storage interface.

PURPOSE:
  A widget is the host-side configuration of one KPI tile: the ordered
  role -> field encoding map and the raw "kpi_"-keyed settings map, exactly
  as the host settings store keeps them. The engine itself is stateless;
  widgets let the API recompute a KPI from stored configuration.

SETTINGS STORAGE:
  Settings are stored raw (string -> string), not as a parsed struct.
  Unknown keys survive a round trip and defaults are applied at compute
  time, so a default change reaches every widget.

IMPLEMENTATIONS:
  - store/sqlite: SQLite (widgets + widget_settings tables)
  - store/memory: in-memory, for tests and dev

SEE ALSO:
  - settings/: parses the raw map
  - api/handlers.go: widget endpoints
*/
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/settings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrWidgetNotFound is returned when no widget has the requested id.
	ErrWidgetNotFound = errors.New("widget not found")

	// ErrInvalidWidget is returned when a widget fails validation.
	ErrInvalidWidget = errors.New("invalid widget")
)

// =============================================================================
// WIDGET
// =============================================================================

// Widget is one stored KPI configuration.
type Widget struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Encodings kpi.EncodingMap   `json:"encodings"`
	Settings  map[string]string `json:"settings"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewID returns a fresh widget id.
func NewID() string {
	return uuid.NewString()
}

// New builds a widget with a fresh id.
func New(name string, enc kpi.EncodingMap, raw map[string]string) Widget {
	now := time.Now().UTC()
	return Widget{
		ID:        NewID(),
		Name:      name,
		Encodings: enc,
		Settings:  raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParsedSettings parses the stored settings map.
func (w Widget) ParsedSettings() (settings.Settings, error) {
	return settings.Parse(w.Settings)
}

// Validate checks the fields the store cannot repair on its own.
// Invalid settings are reported with their ValidationError attached.
func (w Widget) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidWidget)
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidWidget)
	}
	if _, err := w.ParsedSettings(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWidget, err)
	}
	return nil
}

// MergeSettings returns a copy of the widget's settings with values
// applied on top. An empty value removes the key, which restores the
// default.
func (w Widget) MergeSettings(values map[string]string) map[string]string {
	out := make(map[string]string, len(w.Settings)+len(values))
	for k, v := range w.Settings {
		out[k] = v
	}
	for k, v := range values {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Compute runs the engine with the widget's stored configuration.
func (w Widget) Compute(e *kpi.Engine, t kpi.Table) (*kpi.Result, error) {
	s, err := w.ParsedSettings()
	if err != nil {
		return nil, err
	}
	return e.Explain(t, w.Encodings, s)
}

// =============================================================================
// STORE
// =============================================================================

// Store persists widgets.
type Store interface {
	// Save creates or fully replaces a widget, settings included.
	Save(ctx context.Context, w Widget) error

	// Get returns the widget or an error wrapping ErrWidgetNotFound.
	Get(ctx context.Context, id string) (*Widget, error)

	// List returns every widget ordered by name.
	List(ctx context.Context) ([]Widget, error)

	// Delete removes the widget and its settings.
	Delete(ctx context.Context, id string) error
}
