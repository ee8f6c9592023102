// Package split partitions index ranges into train and validation sets
// that preserve per-stratum proportions under a fixed seed.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var (
	// ErrInvalidRatio is returned when the validation ratio is outside (0, 1).
	ErrInvalidRatio = errors.New("validation ratio must be in (0, 1)")
	// ErrInvalidSeed is returned for negative seeds.
	ErrInvalidSeed = errors.New("seed must be a non-negative integer")
)

// Result holds disjoint train and validation indices into the input.
type Result struct {
	Train []int
	Val   []int
}

// Len returns the number of indices covered by the result.
func (r Result) Len() int {
	return len(r.Train) + len(r.Val)
}

// Stratified splits the indices [0, len(strata)) into train and validation
// sets. Every stratum with at least two members contributes to both sides.
// Each call opens its own generator from seed, so results never depend on
// earlier calls.
func Stratified(strata []string, valRatio float64, seed int64) (Result, error) {
	if err := CheckParams(valRatio, seed); err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	groups, keys := groupByStratum(strata)
	if len(keys) < 2 {
		return shuffleSplit(len(strata), valRatio, rng), nil
	}

	train := make([]int, 0, len(strata))
	val := make([]int, 0, len(strata))
	for _, key := range keys {
		group := groups[key]
		shuffleInts(group, rng)
		nVal := ValidationCount(len(group), valRatio)
		val = append(val, group[:nVal]...)
		train = append(train, group[nVal:]...)
	}

	shuffleInts(train, rng)
	shuffleInts(val, rng)
	return Result{Train: train, Val: val}, nil
}

// ValidationCount returns how many members of a stratum of size n go to
// validation: round(n*ratio) clamped to [1, n-1] when n >= 2, else 0.
func ValidationCount(n int, valRatio float64) int {
	if n < 2 {
		return 0
	}
	nVal := int(math.RoundToEven(float64(n) * valRatio))
	if nVal < 1 {
		nVal = 1
	}
	if nVal > n-1 {
		nVal = n - 1
	}
	return nVal
}

// shuffleSplit handles inputs with fewer than two strata. The validation
// size uses ceil here, unlike the per-stratum path.
func shuffleSplit(n int, valRatio float64, rng *rand.Rand) Result {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	shuffleInts(idx, rng)
	nVal := int(math.Ceil(float64(n) * valRatio))
	if nVal > n {
		nVal = n
	}
	return Result{
		Train: append([]int{}, idx[nVal:]...),
		Val:   append([]int{}, idx[:nVal]...),
	}
}

func groupByStratum(strata []string) (map[string][]int, []string) {
	groups := make(map[string][]int)
	for i, key := range strata {
		groups[key] = append(groups[key], i)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return groups, keys
}

func shuffleInts(a []int, rng *rand.Rand) {
	rng.Shuffle(len(a), func(i int, j int) {
		a[i], a[j] = a[j], a[i]
	})
}

// CheckParams validates a validation ratio and seed.
func CheckParams(valRatio float64, seed int64) error {
	if math.IsNaN(valRatio) || valRatio <= 0 || valRatio >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRatio, valRatio)
	}
	if seed < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSeed, seed)
	}
	return nil
}
