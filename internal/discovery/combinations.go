package discovery

import "gonum.org/v1/gonum/stat/combin"

// forEachCombination calls fn with every size-k subset of items in
// lexicographic index order. fn returns false to stop early. The slice
// passed to fn is reused between calls.
func forEachCombination(items []int, k int, fn func(subset []int) (bool, error)) error {
	if k < 0 || k > len(items) {
		return nil
	}

	gen := combin.NewCombinationGenerator(len(items), k)
	idx := make([]int, k)
	subset := make([]int, k)
	for gen.Next() {
		gen.Combination(idx)
		for i, pos := range idx {
			subset[i] = items[pos]
		}
		more, err := fn(subset)
		if err != nil || !more {
			return err
		}
	}
	return nil
}
