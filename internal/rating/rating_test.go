package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		agg   Aggregate
		stars int
		want  Aggregate
	}{
		{"first review", Aggregate{}, 4, Aggregate{Average: 4, Count: 1}},
		{"second review lowers average", Aggregate{Average: 4, Count: 1}, 2, Aggregate{Average: 3, Count: 2}},
		{"rounds to one decimal", Aggregate{Average: 4.5, Count: 2}, 3, Aggregate{Average: 4, Count: 3}},
		{"rounds half away from zero", Aggregate{Average: 4, Count: 1}, 5, Aggregate{Average: 4.5, Count: 2}},
		{"third of three", Aggregate{Average: 5, Count: 2}, 4, Aggregate{Average: 4.7, Count: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.agg, tt.stars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_OutOfRange(t *testing.T) {
	agg := Aggregate{Average: 3.5, Count: 2}

	for _, stars := range []int{0, 6, -1} {
		got, err := Apply(agg, stars)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, agg, got)
	}
}

func TestFromRatings(t *testing.T) {
	tests := []struct {
		name  string
		stars []int
		want  Aggregate
	}{
		{"empty", nil, Aggregate{}},
		{"single", []int{3}, Aggregate{Average: 3, Count: 1}},
		{"four five three", []int{4, 5, 3}, Aggregate{Average: 4, Count: 3}},
		{"five five four", []int{5, 5, 4}, Aggregate{Average: 4.7, Count: 3}},
		{"one two", []int{1, 2}, Aggregate{Average: 1.5, Count: 2}},
		{"half rounds up", []int{5, 5, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5}, Aggregate{Average: 4.3, Count: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRatings(tt.stars))
		})
	}
}

func TestApplyMatchesFromRatingsForShortSequences(t *testing.T) {
	stars := []int{4, 5, 3}

	agg := Aggregate{}
	for _, s := range stars {
		var err error
		agg, err = Apply(agg, s)
		require.NoError(t, err)
	}

	assert.Equal(t, FromRatings(stars), agg)
}
