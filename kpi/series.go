package kpi

import (
	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/period"
)

// BuildSeries returns the value trend and, when every bucket has a PTD
// value, the PTD trend. A single bucket gets a synthetic zero point in
// front, labelled with the inferred previous period.
func BuildSeries(buckets []*Bucket) (spark, ptdSpark []SeriesPoint) {
	if len(buckets) == 0 {
		return nil, nil
	}

	spark = make([]SeriesPoint, 0, len(buckets)+1)
	for _, b := range buckets {
		spark = append(spark, SeriesPoint{Label: b.Label, Value: b.Value})
	}
	spark = padSingle(spark)

	for _, b := range buckets {
		if !b.PTD.Valid {
			return spark, nil
		}
	}
	ptdSpark = make([]SeriesPoint, 0, len(buckets)+1)
	for _, b := range buckets {
		ptdSpark = append(ptdSpark, SeriesPoint{Label: b.Label, Value: b.PTD.Decimal})
	}
	return spark, padSingle(ptdSpark)
}

func padSingle(points []SeriesPoint) []SeriesPoint {
	if len(points) != 1 {
		return points
	}
	prev := SeriesPoint{Label: period.Previous(points[0].Label), Value: decimal.Zero}
	return append([]SeriesPoint{prev}, points...)
}
