package typecheck

// levenshtein computes the edit distance between a and b, used to build
// "did you mean?" suggestions for method-lookup misses (§4.1, threshold 2).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i

		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost

			m := del
			if ins < m {
				m = ins
			}

			if sub < m {
				m = sub
			}

			cur[j] = m
		}

		prev, cur = cur, prev
	}

	return prev[lb]
}

// suggestMethod returns the closest candidate name within the Levenshtein
// threshold of 2, or "" if none qualifies.
func suggestMethod(name string, candidates []string) string {
	best := ""
	bestDist := 3 // threshold 2 means distances of 0..2 qualify.

	for _, c := range candidates {
		d := levenshtein(name, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}

	return best
}
