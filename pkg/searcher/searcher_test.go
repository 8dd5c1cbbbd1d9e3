// SPDX-License-Identifier: GPL-2.0-or-later

package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchScenario1(t *testing.T) {
	candidates := []string{"xabc", "bax", "a b", "AB"}
	results, err := Search("ab", candidates)
	require.NoError(t, err)
	require.Len(t, results, 4)

	top2 := SortedTake(results, 2)
	require.Len(t, top2, 2)
	require.Equal(t, "AB", candidates[top2[0].Index])
	require.Equal(t, "xabc", candidates[top2[1].Index])
}

func TestSearchScenario2CaseSensitive(t *testing.T) {
	candidates := []string{"abc", "aBc"}
	results, err := Search("aB", candidates)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].Index)
	require.Equal(t, []int{0, 1}, results[0].MatchIndices)
}

func TestSearchEmptyQueryPreservesOrder(t *testing.T) {
	candidates := []string{"c", "a", "b"}
	results, err := Search("", candidates)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.Empty(t, r.MatchIndices)
	}
}

func TestSearchLeadingSpaceIsCompileError(t *testing.T) {
	_, err := Search(" ab", []string{"ab"})
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
}

func TestSearchOnlySpacesIsCompileError(t *testing.T) {
	_, err := Search("   ", []string{"ab"})
	require.Error(t, err)
}

func TestSearchTrailingSpacesTrimmed(t *testing.T) {
	results, err := Search("ab   ", []string{"ab"})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchMultiSpaceGap(t *testing.T) {
	// Two internal spaces require exactly one literal space.
	results, err := Search("a  b", []string{"a  b", "a b", "a   b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].Index)
}

func TestSearchSingleSpaceIsLazyGap(t *testing.T) {
	// The lazy gap may also be empty, so "ab" matches too.
	results, err := Search("a b", []string{"axxxb", "ab"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 0, results[0].Index)
}

func TestSortedTakeStableOnTies(t *testing.T) {
	results, err := Search("", []string{"x", "y", "z"})
	require.NoError(t, err)
	top := SortedTake(results, 3)
	require.Equal(t, []int{0, 1, 2}, []int{top[0].Index, top[1].Index, top[2].Index})
}

func TestSearchNoMatchExcluded(t *testing.T) {
	results, err := Search("zzz", []string{"abc"})
	require.NoError(t, err)
	require.Empty(t, results)
}
