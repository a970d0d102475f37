package format

import "github.com/shopspring/decimal"

// Arrows shown next to a delta percentage.
const (
	ArrowUp   = "▲"
	ArrowDown = "▼"
	ArrowFlat = "–"
)

// DefaultDeltaDecimals is used when no delta precision is configured.
const DefaultDeltaDecimals = 1

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Badge is a rendered period-over-period change.
type Badge struct {
	Text      string // absolute percentage, no sign: "12.5"
	Arrow     string
	Up        bool
	Sentiment Sentiment
}

// DeltaBadge renders a delta percentage. The text is the absolute value
// with the configured fraction digits. A delta that displays as zero is
// neutral. reverse flips sentiment for metrics where lower is better.
// ok is false for a null delta.
func DeltaBadge(delta decimal.NullDecimal, decimals int, reverse bool) (b Badge, ok bool) {
	if !delta.Valid {
		return Badge{}, false
	}
	if decimals < 0 {
		decimals = DefaultDeltaDecimals
	}

	b.Text = delta.Decimal.Abs().StringFixed(int32(decimals))
	b.Up = delta.Decimal.IsPositive()

	display, _ := decimal.NewFromString(b.Text)
	switch {
	case display.IsZero():
		b.Arrow, b.Sentiment = ArrowFlat, SentimentNeutral
	case b.Up != reverse:
		b.Sentiment = SentimentPositive
	default:
		b.Sentiment = SentimentNegative
	}
	if b.Arrow == "" {
		b.Arrow = ArrowDown
		if b.Up {
			b.Arrow = ArrowUp
		}
	}
	return b, true
}

// GaugeFill converts a goal percentage to the filled fraction of a gauge,
// clamped to [0, 1]. A null percentage gives an empty gauge.
func GaugeFill(goalPct decimal.NullDecimal) float64 {
	if !goalPct.Valid {
		return 0
	}
	pct := decimal.Max(decimal.Zero, decimal.Min(goalPct.Decimal, decimal.NewFromInt(100)))
	return pct.Div(decimal.NewFromInt(100)).InexactFloat64()
}
