package generator

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/telhawk-systems/apilog-generator/internal/config"
)

// drawTimestamps scatters n timestamps across the window starting at start.
// Each offset is a whole number of days in [0,days] plus a random time of day,
// so the last day of the window may run past start+days.
func drawTimestamps(f *gofakeit.Faker, start time.Time, days, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		offset := time.Duration(f.Number(0, days))*24*time.Hour +
			time.Duration(f.Number(0, 23))*time.Hour +
			time.Duration(f.Number(0, 59))*time.Minute +
			time.Duration(f.Number(0, 59))*time.Second
		out[i] = start.Add(offset)
	}
	return out
}

// drawLabels performs n weighted categorical draws over values.
func drawLabels(f *gofakeit.Faker, values []config.WeightedValue, n int) ([]string, error) {
	options := make([]any, len(values))
	weights := make([]float32, len(values))
	for i, v := range values {
		options[i] = v.Name
		weights[i] = float32(v.Weight)
	}

	out := make([]string, n)
	for i := range out {
		picked, err := f.Weighted(options, weights)
		if err != nil {
			return nil, fmt.Errorf("weighted draw: %w", err)
		}
		out[i] = picked.(string)
	}
	return out, nil
}

// drawResponseTime draws |N(mean, stddev)| rounded to two decimals.
func drawResponseTime(f *gofakeit.Faker, dist config.Distribution) float64 {
	v := math.Abs(dist.Mean + dist.StdDev*f.Rand.NormFloat64())
	return roundTo(v, 2)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
