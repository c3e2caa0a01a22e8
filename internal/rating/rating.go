// Package rating maintains the average star rating of a recipe.
package rating

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Bounds of a single review rating
const (
	MinStars = 1
	MaxStars = 5
)

// ErrOutOfRange is returned for a rating outside MinStars..MaxStars
var ErrOutOfRange = errors.New("rating must be between 1 and 5")

// Aggregate is the rounded average and count of a recipe's reviews
type Aggregate struct {
	Average float64
	Count   int
}

// Valid reports whether stars is an accepted rating
func Valid(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// Apply folds one new rating into agg, the incremental form of FromRatings.
// The result is (Average*Count + stars) / (Count+1), rounded half away
// from zero to one decimal place. Apply works from the already rounded
// average, so repeated application may drift from FromRatings.
func Apply(agg Aggregate, stars int) (Aggregate, error) {
	if !Valid(stars) {
		return agg, ErrOutOfRange
	}

	total := decimal.NewFromFloat(agg.Average).
		Mul(decimal.NewFromInt(int64(agg.Count))).
		Add(decimal.NewFromInt(int64(stars)))
	count := agg.Count + 1

	return Aggregate{
		Average: round1(total.Div(decimal.NewFromInt(int64(count)))),
		Count:   count,
	}, nil
}

// FromRatings computes the aggregate of a full list of ratings.
// An empty list yields the zero Aggregate.
func FromRatings(stars []int) Aggregate {
	if len(stars) == 0 {
		return Aggregate{}
	}

	sum := decimal.Zero
	for _, s := range stars {
		sum = sum.Add(decimal.NewFromInt(int64(s)))
	}

	return Aggregate{
		Average: round1(sum.Div(decimal.NewFromInt(int64(len(stars))))),
		Count:   len(stars),
	}
}

// round1 rounds half away from zero to one decimal place
func round1(d decimal.Decimal) float64 {
	f, _ := d.Round(1).Float64()
	return f
}
