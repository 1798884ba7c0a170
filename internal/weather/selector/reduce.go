package selector

import (
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

type reducer func(values []float64) float64

// reduceDaily collapses time-ordered points into one point per calendar day,
// stamped at that day's midnight. Every sample of the day contributes.
func reduceDaily(pts []types.Point, fn reducer) []types.Point {
	if len(pts) == 0 {
		return nil
	}
	var out []types.Point
	var bucket []float64
	day := types.Midnight(pts[0].Time)
	for _, p := range pts {
		d := types.Midnight(p.Time)
		if !d.Equal(day) {
			out = append(out, types.Point{Time: day, Value: fn(bucket)})
			bucket = bucket[:0]
			day = d
		}
		bucket = append(bucket, p.Value)
	}
	out = append(out, types.Point{Time: day, Value: fn(bucket)})
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minimum(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maximum(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
