// levenshtein.go: edit-distance primitives backing the fuzzy matcher
//
// rollingLevenshtein is a single-row rolling-buffer distance with an
// early return on the length gap, used by the chunked word-based
// fallback where most candidates are rejected before any scan. The
// bounded-content envelope pass uses it as an envelope check and then
// scores candidates with github.com/agext/levenshtein's Distance,
// normalized into the [0,1] similarity space the acceptance cutoff is
// compared against.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"math"

	"github.com/agext/levenshtein"
)

// rollingLevenshtein computes the Levenshtein edit distance between a
// and b using a single-row rolling buffer. If maxDistance is
// non-negative and |len(a)-len(b)| exceeds maxDistance, it returns
// maxDistance+1 immediately without scanning either string.
func rollingLevenshtein(a, b string, maxDistance int) int {
	if maxDistance >= 0 {
		lenGap := len(a) - len(b)
		if lenGap < 0 {
			lenGap = -lenGap
		}
		if lenGap > maxDistance {
			return maxDistance + 1
		}
	}

	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prevRow := make([]int, len(b)+1)
	for j := range prevRow {
		prevRow[j] = j
	}

	curRow := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curRow[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := prevRow[j] + 1
			insertion := curRow[j-1] + 1
			substitution := prevRow[j-1] + cost
			curRow[j] = minInt3(deletion, insertion, substitution)
		}
		prevRow, curRow = curRow, prevRow
	}
	return prevRow[len(b)]
}

func minInt3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// normalizedEditScore returns the edit distance between a and b,
// computed via agext/levenshtein, normalized to [0,1] by dividing by
// the longer string's length. A score of 0 means identical; 1 means
// completely disjoint. fuzzyAcceptanceScore is compared against this
// value.
func normalizedEditScore(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.Distance(a, b, nil)
	return math.Min(1, float64(dist)/float64(maxLen))
}
