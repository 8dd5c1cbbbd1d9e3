// SPDX-License-Identifier: GPL-2.0-or-later

package searcher

import (
	"sort"
)

// Result is one candidate's score against a compiled query.
type Result struct {
	// Index is the candidate's position in the slice passed to Search.
	Index int
	// MatchIndices are the character offsets the query matched, sorted.
	MatchIndices []int

	spread int
	first  int
}

// Search compiles query and scores every candidate against it. Candidates
// that do not match are omitted from the result. An empty query matches
// every candidate with an empty match set, preserving input order.
func Search(query string, candidates []string) ([]Result, error) {
	if query == "" {
		return searchEmpty(candidates), nil
	}

	re, err := compileSwiper(query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for i, c := range candidates {
		locs := re.FindStringSubmatchIndex(c)
		if locs == nil {
			continue
		}

		byteToChar := charIndexTable(c)

		var indices []int
		// Group 0 is the whole match; skip it per spec.
		for g := 1; g*2+1 < len(locs); g++ {
			start, end := locs[g*2], locs[g*2+1]
			if start < 0 {
				continue
			}
			for cIdx := byteToChar[start]; cIdx < byteToChar[end]; cIdx++ {
				indices = append(indices, cIdx)
			}
		}

		m := newMatch(indices)
		results = append(results, Result{
			Index:        i,
			MatchIndices: m.indices,
			spread:       m.spread(),
			first:        m.first(),
		})
	}

	return results, nil
}

func searchEmpty(candidates []string) []Result {
	results := make([]Result, len(candidates))
	for i := range candidates {
		results[i] = Result{Index: i}
	}
	return results
}

// charIndexTable maps each valid byte offset in s (0..len(s)) to the
// number of runes preceding it, so capture-group byte ranges can be
// translated to character indices.
func charIndexTable(s string) []int {
	table := make([]int, len(s)+1)
	charIdx := 0
	for byteIdx, r := range s {
		table[byteIdx] = charIdx
		charIdx++
		_ = r
	}
	table[len(s)] = charIdx
	return table
}

// SortedTake returns the k results with the smallest (spread, first, Index)
// key, in that order. Stable on ties by original input order. If k is
// greater than len(results), all results are returned.
func SortedTake(results []Result, k int) []Result {
	sorted := make([]Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.spread != b.spread {
			return a.spread < b.spread
		}
		if a.first != b.first {
			return a.first < b.first
		}
		return a.Index < b.Index
	})

	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
