// wordindex.go: the word boundary index
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"regexp"
	"sort"
	"strings"
)

// wordSpanPattern matches a "word": letters, digits, and underscore,
// at a word boundary on each side.
var wordSpanPattern = regexp.MustCompile(`\b\w+\b`)

// NoWordIndex is returned by wordIndexOf when an offset cannot be
// resolved to any span.
const NoWordIndex = -1

// Span is one word occurrence in content: inclusive character offsets
// start..end and the matched text.
type Span struct {
	Word  string
	Start int
	End   int
}

// wordBoundaryIndexer produces and memoizes the sorted span list for a
// content blob, and resolves character offsets to word indices.
type wordBoundaryIndexer struct {
	fp    *fingerprinter
	cache *TTLCache[any]
}

func newWordBoundaryIndexer(fp *fingerprinter, cache *TTLCache[any]) *wordBoundaryIndexer {
	return &wordBoundaryIndexer{fp: fp, cache: cache}
}

// boundaries returns content's word spans, in strictly increasing
// start order, cached by fingerprint.
func (w *wordBoundaryIndexer) boundaries(content string) []Span {
	key := "boundaries:" + w.fp.fingerprint(content)
	if w.cache != nil {
		if v, ok := w.cache.Get(key); ok {
			return v.([]Span)
		}
	}

	spans := computeSpans(content)

	if w.cache != nil {
		w.cache.Set(key, spans, 0)
	}
	return spans
}

// computeSpans extracts every \b\w+\b span from content in order of
// occurrence, which for this pattern is already strictly increasing in
// start and non-overlapping.
func computeSpans(content string) []Span {
	matches := wordSpanPattern.FindAllStringIndex(content, -1)
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		spans = append(spans, Span{
			Word:  content[start:end],
			Start: start,
			End:   end - 1, // spans are inclusive on both ends
		})
	}
	return spans
}

// wordIndexOf resolves a character offset to the index of the span
// that "owns" it, in three steps:
//  1. the offset lies within [start,end] of some span: return its index.
//  2. else, the largest-index span whose end < offset such that the
//     substring between end+1 and offset+1 is only whitespace: return
//     that index (anchors whitespace-adjacent offsets to the preceding
//     word).
//  3. else: NoWordIndex.
func (w *wordBoundaryIndexer) wordIndexOf(offset int, content string) int {
	spans := w.boundaries(content)
	if len(spans) == 0 {
		return NoWordIndex
	}

	// Step 1: binary search for a span containing offset.
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End >= offset })
	if i < len(spans) && spans[i].Start <= offset && offset <= spans[i].End {
		return i
	}

	// Step 2: find the largest-index span whose end < offset with only
	// whitespace between it and offset.
	candidate := i - 1
	if candidate >= 0 {
		span := spans[candidate]
		gapStart := span.End + 1
		gapEnd := offset + 1
		if gapStart <= gapEnd && gapEnd <= len(content) {
			gap := content[gapStart:gapEnd]
			if gap == "" || strings.TrimSpace(gap) == "" {
				return candidate
			}
		}
	}

	return NoWordIndex
}
