package questions

import "math/rand/v2"

// distinctIndices draws count distinct integers from [0, n) by rejection
// sampling. Returns fewer than count only if n < count.
func distinctIndices(count, n int) []int {
	if count > n {
		count = n
	}
	seen := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for len(out) < count {
		candidate := rand.IntN(n)
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// sampleDistinct picks k distinct elements from items without replacement.
func sampleDistinct(items []string, k int) []string {
	if k >= len(items) {
		cp := make([]string, len(items))
		copy(cp, items)
		return cp
	}
	idx := distinctIndices(k, len(items))
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

func shuffle(items []string) {
	rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

func rollCoin() bool {
	return rand.IntN(2) == 0
}

func rollIndex(n int) int {
	return rand.IntN(n)
}
