package irt

// ClosestIndex returns the index into sortedDifficulties (ascending)
// whose value is nearest target, breaking ties toward the lower index.
// sortedDifficulties must be sorted ascending and non-empty.
//
// Runs in O(log n) via bisection and is clamped at both ends: it
// returns 0 for target <= first value and len-1 for target >= last.
func ClosestIndex(sortedDifficulties []float64, target float64) int {
	n := len(sortedDifficulties)
	if n == 0 {
		return -1
	}
	if target <= sortedDifficulties[0] {
		return 0
	}
	if target >= sortedDifficulties[n-1] {
		return n - 1
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if sortedDifficulties[mid] < target {
			lo = mid
		} else {
			hi = mid
		}
	}

	// target now lies between sortedDifficulties[lo] and [hi].
	if target-sortedDifficulties[lo] <= sortedDifficulties[hi]-target {
		return lo
	}
	return hi
}
