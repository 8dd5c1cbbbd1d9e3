// SPDX-License-Identifier: GPL-2.0-or-later

package fileindex

import (
	"strings"

	"gcast/pkg/front"
	"gcast/pkg/searcher"
)

// MaxSearchResults is the number of ranked results the Filer search
// substate returns per query.
const MaxSearchResults = 30

// Search reruns the fuzzy searcher over idx's files and returns the top
// MaxSearchResults ranked matches as a Results view. An invalid query
// yields a view with QueryValid=false and no results, never an error.
func Search(idx *CacheIndex, query string) front.FsView {
	candidates := make([]string, len(idx.Files))
	for i, f := range idx.Files {
		candidates[i] = f.PathRelativeRoot
	}

	results, err := searcher.Search(query, candidates)
	if err != nil {
		return front.FsView{Kind: front.FsResults, Query: query, QueryValid: false}
	}

	top := searcher.SortedTake(results, MaxSearchResults)

	out := make([]front.SearchResult, len(top))
	for i, r := range top {
		f := idx.Files[r.Index]
		out[i] = front.SearchResult{
			RootIndex:          f.RootIndex,
			PathRelativeRoot:   f.PathRelativeRoot,
			BasenameCharOffset: basenameCharOffset(f.PathRelativeRoot),
			MatchIndices:       r.MatchIndices,
		}
	}

	return front.FsView{
		Kind:       front.FsResults,
		Query:      query,
		QueryValid: true,
		Results:    out,
	}
}

// basenameCharOffset is the character index where the final path
// component begins.
func basenameCharOffset(relPath string) int {
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return 0
	}
	return len([]rune(relPath[:idx+1]))
}
