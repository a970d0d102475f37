/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The engine works in
  decimal.Decimal / decimal.NullDecimal; the wire carries JSON numbers or
  null, plus every display string already formatted with the widget's
  formatter so clients never re-implement formatting.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

NULLS:
  A nullable engine value becomes a pointer: nil marshals to null.

DISPLAY SETTINGS:
  Numbers (delta, ptdDelta, goals) are always sent. The rendered pieces
  follow the widget settings:
  - label:          valueLabel, else the engine label
  - goal2Label:     goal2Label, else the engine label
  - deltaBadge:     only with showDelta
  - ptdDeltaBadge:  only with ptdEnabled and a non-empty ptdLabel
  - sparkData:      only with showSparkline
  - ptdSparkData:   only with showSparkline and ptdEnabled
  - periodLabel:    only with showDateRange
  - display:        title, badge and goal captions, goal bar visibility

SEE ALSO:
  - handlers.go: Uses these types
  - kpi/types.go: Result
*/
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/format"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/settings"
	"github.com/warp/kpi-engine/widget"
)

// =============================================================================
// COMPUTE
// =============================================================================

// ComputeRequest is one stateless KPI computation. Settings values may be
// strings, booleans or numbers; keys are bare or "kpi_"-prefixed.
type ComputeRequest struct {
	Table     kpi.Table       `json:"table"`
	Encodings kpi.EncodingMap `json:"encodings"`
	Settings  map[string]any  `json:"settings,omitempty"`
}

// KPIResponse wraps a result. KPI is null when nothing can be shown;
// Reason then says why. Error is set only in batch responses, for an
// item whose request was invalid.
type KPIResponse struct {
	KPI        *KPIDTO `json:"kpi"`
	Reason     string  `json:"reason,omitempty"`
	Actionable bool    `json:"actionable,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// KPIDTO is the wire form of kpi.Result.
type KPIDTO struct {
	Label          string  `json:"label"`
	CurrentValue   float64 `json:"currentValue"`
	FormattedValue string  `json:"formattedValue"`

	PreviousValue     *float64 `json:"previousValue"`
	FormattedPrevious *string  `json:"formattedPrevious"`

	Delta         *float64  `json:"delta"`
	DeltaBadge    *BadgeDTO `json:"deltaBadge"`
	PTDDelta      *float64  `json:"ptdDelta"`
	PTDDeltaBadge *BadgeDTO `json:"ptdDeltaBadge"`

	GoalValue     *float64 `json:"goalValue"`
	GoalPct       *float64 `json:"goalPct"`
	FormattedGoal *string  `json:"formattedGoal"`
	GoalFill      float64  `json:"goalFill"`

	Goal2Value     *float64 `json:"goal2Value"`
	Goal2Pct       *float64 `json:"goal2Pct"`
	FormattedGoal2 *string  `json:"formattedGoal2"`
	Goal2Label     string   `json:"goal2Label"`
	Goal2Fill      float64  `json:"goal2Fill"`

	SparkData    []SeriesPointDTO `json:"sparkData"`
	PTDSparkData []SeriesPointDTO `json:"ptdSparkData"`
	PeriodLabel  *string          `json:"periodLabel"`

	Display DisplayDTO `json:"display"`
}

// DisplayDTO carries the captions and visibility a card renders with.
// ShowGoal and ShowGoal2 are false when the goal has no percentage.
type DisplayDTO struct {
	Title      string `json:"title"`
	DeltaLabel string `json:"deltaLabel"`
	PTDLabel   string `json:"ptdLabel"`
	GoalLabel  string `json:"goalLabel"`
	ShowGoal   bool   `json:"showGoal"`
	ShowGoal2  bool   `json:"showGoal2"`
}

// defaultGoalLabel captions the primary goal bar.
const defaultGoalLabel = "Goal"

// BadgeDTO is a rendered delta.
type BadgeDTO struct {
	Text      string `json:"text"`
	Arrow     string `json:"arrow"`
	Up        bool   `json:"up"`
	Sentiment string `json:"sentiment"`
}

// SeriesPointDTO is one sparkline point.
type SeriesPointDTO struct {
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
}

// toKPIDTO converts a result and applies the display settings in s.
func toKPIDTO(res *kpi.Result, s settings.Settings) *KPIDTO {
	if res == nil {
		return nil
	}
	f := res.Formatter

	dto := &KPIDTO{
		Label:          firstNonEmpty(s.ValueLabel, res.Label),
		CurrentValue:   res.CurrentValue.InexactFloat64(),
		FormattedValue: res.FormattedValue,
		PreviousValue:  nullFloat(res.PreviousValue),
		Delta:          nullFloat(res.Delta),
		PTDDelta:       nullFloat(res.PTDDelta),
		GoalValue:      nullFloat(res.GoalValue),
		GoalPct:        nullFloat(res.GoalPct),
		FormattedGoal:  optString(res.FormattedGoal),
		GoalFill:       format.GaugeFill(res.GoalPct),
		Goal2Value:     nullFloat(res.Goal2Value),
		Goal2Pct:       nullFloat(res.Goal2Pct),
		FormattedGoal2: optString(res.FormattedGoal2),
		Goal2Label:     firstNonEmpty(s.Goal2Label, res.Goal2Label),
		Goal2Fill:      format.GaugeFill(res.Goal2Pct),
	}
	if res.PreviousValue.Valid {
		dto.FormattedPrevious = optString(f.FormatDecimal(res.PreviousValue.Decimal))
	}

	if s.ShowDelta {
		dto.DeltaBadge = toBadgeDTO(res.Delta, s)
	}
	if s.PTDEnabled && s.PTDLabel != "" {
		dto.PTDDeltaBadge = toBadgeDTO(res.PTDDelta, s)
	}
	if s.ShowSparkline {
		dto.SparkData = toSeriesDTOs(res.SparkData, f)
		if s.PTDEnabled {
			dto.PTDSparkData = toSeriesDTOs(res.PTDSparkData, f)
		}
	}
	if s.ShowDateRange {
		dto.PeriodLabel = optString(res.PeriodLabel)
	}

	dto.Display = DisplayDTO{
		Title:      firstNonEmpty(s.TitleText, dto.Label),
		DeltaLabel: firstNonEmpty(s.DeltaLabel, settings.Defaults().DeltaLabel),
		PTDLabel:   s.PTDLabel,
		GoalLabel:  firstNonEmpty(s.GoalLabel, defaultGoalLabel),
		ShowGoal:   s.ShowGoal && res.GoalPct.Valid,
		ShowGoal2:  s.ShowGoal2 && res.Goal2Pct.Valid && dto.Goal2Label != "",
	}
	return dto
}

func toBadgeDTO(delta decimal.NullDecimal, s settings.Settings) *BadgeDTO {
	b, ok := format.DeltaBadge(delta, s.FmtDeltaDecimals, s.ReverseDelta)
	if !ok {
		return nil
	}
	return &BadgeDTO{Text: b.Text, Arrow: b.Arrow, Up: b.Up, Sentiment: string(b.Sentiment)}
}

func toSeriesDTOs(points []kpi.SeriesPoint, f format.Formatter) []SeriesPointDTO {
	if points == nil {
		return nil
	}
	out := make([]SeriesPointDTO, len(points))
	for i, p := range points {
		out[i] = SeriesPointDTO{
			Label:          p.Label,
			Value:          p.Value.InexactFloat64(),
			FormattedValue: f.FormatDecimal(p.Value),
		}
	}
	return out
}

func nullFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// =============================================================================
// WIDGETS
// =============================================================================

// WidgetDTO represents a stored widget.
type WidgetDTO struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Encodings kpi.EncodingMap   `json:"encodings"`
	Settings  map[string]string `json:"settings"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CreateWidgetRequest is the body of POST /api/widgets.
type CreateWidgetRequest struct {
	Name      string            `json:"name"`
	Encodings kpi.EncodingMap   `json:"encodings"`
	Settings  map[string]string `json:"settings"`
}

func toWidgetDTO(w widget.Widget) WidgetDTO {
	s := w.Settings
	if s == nil {
		s = map[string]string{}
	}
	enc := w.Encodings
	if enc == nil {
		enc = kpi.EncodingMap{}
	}
	return WidgetDTO{
		ID:        w.ID,
		Name:      w.Name,
		Encodings: enc,
		Settings:  s,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
