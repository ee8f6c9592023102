package split

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		n     int
		ratio float64
		want  int
	}{
		{name: "empty", n: 0, ratio: 0.2, want: 0},
		{name: "singleton", n: 1, ratio: 0.9, want: 0},
		{name: "pair floor", n: 2, ratio: 0.1, want: 1},
		{name: "pair ceiling", n: 2, ratio: 0.9, want: 1},
		{name: "eleven", n: 11, ratio: 0.2, want: 2},
		{name: "nine", n: 9, ratio: 0.2, want: 2},
		{name: "half to even", n: 5, ratio: 0.5, want: 2},
		{name: "clamped to n-1", n: 3, ratio: 0.95, want: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ValidationCount(tt.n, tt.ratio))
		})
	}
}

func TestStratified_Preconditions(t *testing.T) {
	t.Parallel()

	strata := []string{"a", "b"}
	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		_, err := Stratified(strata, ratio, 1)
		require.ErrorIs(t, err, ErrInvalidRatio, "ratio %v", ratio)
	}
	_, err := Stratified(strata, 0.2, -1)
	require.ErrorIs(t, err, ErrInvalidSeed)
}

func TestStratified_Empty(t *testing.T) {
	t.Parallel()

	res, err := Stratified(nil, 0.2, 42)
	require.NoError(t, err)
	require.Empty(t, res.Train)
	require.Empty(t, res.Val)
}

func TestStratified_ExhaustiveAndDisjoint(t *testing.T) {
	t.Parallel()

	for _, seed := range []int64{0, 1, 7, 42, 1234} {
		strata := makeStrata(map[string]int{"0__Reddit": 7, "1__Reddit": 4, "0__Google": 5, "1__Google": 1, "1__YouTube": 2})
		res, err := Stratified(strata, 0.25, seed)
		require.NoError(t, err)
		require.Equal(t, len(strata), res.Len())

		seen := make(map[int]bool, len(strata))
		for _, idx := range append(append([]int{}, res.Train...), res.Val...) {
			require.False(t, seen[idx], "index %d assigned twice", idx)
			require.True(t, idx >= 0 && idx < len(strata))
			seen[idx] = true
		}
	}
}

func TestStratified_Deterministic(t *testing.T) {
	t.Parallel()

	strata := makeStrata(map[string]int{"0": 30, "1": 17})
	first, err := Stratified(strata, 0.2, 42)
	require.NoError(t, err)
	second, err := Stratified(strata, 0.2, 42)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestStratified_NonStarvation(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"a": 2, "b": 3, "c": 1, "d": 40}
	strata := makeStrata(counts)
	res, err := Stratified(strata, 0.05, 3)
	require.NoError(t, err)

	trainBy := countBy(strata, res.Train)
	valBy := countBy(strata, res.Val)
	for key, n := range counts {
		if n < 2 {
			require.Equal(t, 0, valBy[key], "singleton stratum %s must stay in train", key)
			continue
		}
		require.Positive(t, trainBy[key], "stratum %s starved from train", key)
		require.Equal(t, ValidationCount(n, 0.05), valBy[key], "stratum %s", key)
	}
}

func TestStratified_SingleStratumUsesCeil(t *testing.T) {
	t.Parallel()

	strata := makeStrata(map[string]int{"0": 11})
	res, err := Stratified(strata, 0.2, 42)
	require.NoError(t, err)
	require.Len(t, res.Val, 3)
	require.Len(t, res.Train, 8)
}

func TestStratified_SeedChangesMembershipNotSizes(t *testing.T) {
	t.Parallel()

	strata := makeStrata(map[string]int{"0__Reddit": 7, "1__Reddit": 4, "0__Google": 5, "1__Google": 4})
	a, err := Stratified(strata, 0.2, 42)
	require.NoError(t, err)
	b, err := Stratified(strata, 0.2, 7)
	require.NoError(t, err)
	require.Len(t, b.Val, len(a.Val))
	require.Len(t, b.Train, len(a.Train))
	require.Equal(t, countBy(strata, a.Val), countBy(strata, b.Val))
}

func makeStrata(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var strata []string
	for round := 0; ; round++ {
		added := false
		for _, key := range keys {
			if round < counts[key] {
				strata = append(strata, key)
				added = true
			}
		}
		if !added {
			return strata
		}
	}
}

func countBy(strata []string, idx []int) map[string]int {
	out := make(map[string]int)
	for _, i := range idx {
		out[strata[i]]++
	}
	return out
}

func ExampleStratified() {
	strata := []string{"0", "0", "0", "0", "1", "1", "1", "1", "1", "1"}
	res, _ := Stratified(strata, 0.2, 42)
	fmt.Println(len(res.Train), len(res.Val))
	// Output: 8 2
}
