// near.go: the NEAR proximity evaluator
//
// This is the orchestration component: it fingerprints content,
// consults the proximity cache, resolves both terms' offsets through
// the cache-first exact path with a fuzzy fallback, maps offsets to
// word indices, and runs the two-pointer proximity algorithm backed by
// pooled arrays, all under an execution-time budget and a circuit
// breaker.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"fmt"
	"regexp"
	"sort"
)

// NearOptions controls one EvaluateNear call.
type NearOptions struct {
	CaseSensitive bool
	FuzzyEnabled  bool
	WholeWord     bool
}

// minProximityContentLength is the content-length floor below which
// evaluateNear always returns false without consulting any cache.
const minProximityContentLength = 10

// prefilterCharDistanceFactor approximates average word length in
// characters, used by the cheap character-distance prefilter.
const prefilterCharDistanceFactor = 6

// prefilterListSizeFloor is the list-size threshold above which the
// character-distance prefilter runs.
const prefilterListSizeFloor = 5

// nearEvaluator orchestrates one proximity evaluation end to end.
type nearEvaluator struct {
	cfg       EngineConfig
	tuning    *tuningState
	fp        *fingerprinter
	wordIndex *wordBoundaryIndexer
	fuzzy     *fuzzyMatcher
	pool      *arrayPool
	breaker   *circuitBreaker

	termIndicesCache *TTLCache[any]
	proximityCache   *TTLCache[any]

	clock        TimeProvider
	logger       Logger
	metrics      MetricsCollector
	phaseMetrics *PhaseMetrics
}

func newNearEvaluator(
	cfg EngineConfig,
	tuning *tuningState,
	fp *fingerprinter,
	wordIndex *wordBoundaryIndexer,
	fuzzy *fuzzyMatcher,
	pool *arrayPool,
	breaker *circuitBreaker,
	termIndicesCache, proximityCache *TTLCache[any],
	phaseMetrics *PhaseMetrics,
) *nearEvaluator {
	if tuning == nil {
		tuning = newTuningState(Tuning{
			MatchThreshold:          cfg.MatchThreshold,
			MaxExecutionTime:        cfg.MaxExecutionTime,
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		})
	}
	return &nearEvaluator{
		cfg:              cfg,
		tuning:           tuning,
		fp:               fp,
		wordIndex:        wordIndex,
		fuzzy:            fuzzy,
		pool:             pool,
		breaker:          breaker,
		termIndicesCache: termIndicesCache,
		proximityCache:   proximityCache,
		clock:            cfg.TimeProvider,
		logger:           cfg.Logger,
		metrics:          cfg.MetricsCollector,
		phaseMetrics:     phaseMetrics,
	}
}

// evaluateNear reports whether term1 and term2 co-occur within
// distance words of each other anywhere in content.
func (e *nearEvaluator) evaluateNear(content string, term1, term2 Term, distance int, opts NearOptions, path string) bool {
	// Step 1: reject invalids.
	if content == "" || distance < 0 || len(content) < minProximityContentLength {
		e.phaseMetrics.recordEarlyTermination()
		return false
	}

	start := e.clock.Now()
	deadline := start + e.tuning.load().MaxExecutionTime.Nanoseconds()

	fingerprint := e.fp.fingerprint(content)

	// Step 2: consult the proximity cache.
	proximityKey := proximityCacheKey(fingerprint, term1, term2, distance, opts)
	if e.proximityCache != nil {
		if v, ok := e.proximityCache.Get(proximityKey); ok {
			result := v.(bool)
			e.phaseMetrics.recordEvaluation(true, result)
			e.metrics.RecordNearEvaluation(e.clock.Now()-start, result)
			return result
		}
	}

	if e.deadlineExceeded(deadline, path) {
		return false
	}

	// Step 3: resolve both terms' offsets via the cache-first exact path.
	offsets1 := e.termOffsets(content, fingerprint, term1, opts)
	offsets2 := e.termOffsets(content, fingerprint, term2, opts)

	if e.deadlineExceeded(deadline, path) {
		return false
	}

	// Step 4: fuzzy fill, with the economizing pruning rule for term2.
	if opts.FuzzyEnabled {
		if len(offsets1) == 0 && !term1.IsRegex() && term1.Len() >= e.cfg.MinTermLength {
			offsets1 = e.fuzzyFill(content, term1, opts)
		}
		if len(offsets2) == 0 && !term2.IsRegex() && term2.Len() >= e.cfg.MinTermLength {
			if len(offsets1) > 0 || term1.IsRegex() {
				offsets2 = e.fuzzyFill(content, term2, opts)
			}
		}
	}

	// Step 5: either list empty → cache false and return.
	if len(offsets1) == 0 || len(offsets2) == 0 {
		return e.storeAndReturn(proximityKey, false, start)
	}

	// Step 6: ensure sorted.
	offsets1 = ensureSorted(offsets1)
	offsets2 = ensureSorted(offsets2)

	// Step 7: cheap character-distance prefilter.
	if len(offsets1) > prefilterListSizeFloor && len(offsets2) > prefilterListSizeFloor {
		charBudget := distance * prefilterCharDistanceFactor * 2
		if !twoPointerWithinDistance(offsets1, offsets2, charBudget) {
			return e.storeAndReturn(proximityKey, false, start)
		}
	}

	if e.deadlineExceeded(deadline, path) {
		return false
	}

	var result bool
	// Step 8/9: chunked evaluation for very large content, otherwise
	// the direct two-pointer algorithm.
	if len(content) > e.cfg.MaxFullContentSize {
		result = e.evaluateChunked(content, offsets1, offsets2, distance, deadline, path)
	} else {
		result = e.evaluateDirect(content, offsets1, offsets2, distance)
	}

	// Step 11: cache the final boolean and return.
	return e.storeAndReturn(proximityKey, result, start)
}

func (e *nearEvaluator) storeAndReturn(key string, result bool, start int64) bool {
	if e.proximityCache != nil {
		e.proximityCache.Set(key, result, 0)
	}
	e.phaseMetrics.recordEvaluation(false, result)
	e.metrics.RecordNearEvaluation(e.clock.Now()-start, result)
	return result
}

// deadlineExceeded checks the execution-time budget; on overrun it
// records a timeout against path (if given) and bumps the circuit
// breaker and the early-termination counter. Timeout outcomes are
// never cached: the wall-clock budget, not the query's logical
// result, determined the answer.
func (e *nearEvaluator) deadlineExceeded(deadline int64, path string) bool {
	if e.clock.Now() < deadline {
		return false
	}
	e.breaker.recordTimeout(path)
	e.phaseMetrics.recordTimeout()
	e.phaseMetrics.recordEarlyTermination()
	e.logger.Warn("evaluateNear exceeded execution budget", "path", path)
	return true
}

// termOffsets resolves term's character offsets via the exact-match
// path (word-edge-anchored substring, \bterm\b, or regex iteration),
// memoized in the
// term-indices cache keyed on (fingerprint, term-repr, caseSensitive,
// isRegex, wholeWord).
func (e *nearEvaluator) termOffsets(content, fingerprint string, term Term, opts NearOptions) []int {
	key := termIndicesCacheKey(fingerprint, term, opts)
	if e.termIndicesCache != nil {
		if v, ok := e.termIndicesCache.Get(key); ok {
			return v.([]int)
		}
	}

	var offsets []int
	switch {
	case term.IsRegex():
		offsets = regexOffsets(term.regex, content)
	case opts.WholeWord:
		offsets = wholeWordPositions(content, term.Text(), opts.CaseSensitive)
	default:
		offsets = wordEdgePositions(content, term.Text(), opts.CaseSensitive)
	}

	if e.termIndicesCache != nil {
		e.termIndicesCache.Set(key, offsets, 0)
	}
	return offsets
}

// regexOffsets collects match-start offsets for a compiled pattern.
// Go's regexp package already advances by one rune on a zero-width
// match, so iteration cannot loop forever on patterns that match the
// empty string.
func regexOffsets(re *regexp.Regexp, content string) []int {
	matches := re.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}
	offsets := make([]int, len(matches))
	for i, m := range matches {
		offsets[i] = m[0]
	}
	return offsets
}

// wordEdgePositions collects needle's substring occurrences whose
// final character also ends a word. Proximity distances are measured
// in word indices, so an occurrence that stops mid-word ("alph" inside
// "alpha") must not claim that word's index; an occurrence reaching
// the tail of a longer run ("a" against the last character of "aaaa")
// still counts.
func wordEdgePositions(content, needle string, caseSensitive bool) []int {
	positions := exactSubstringPositions(content, needle, caseSensitive)
	if len(positions) == 0 || !isWordChar(needle[len(needle)-1]) {
		return positions
	}
	kept := positions[:0]
	for _, p := range positions {
		end := p + len(needle)
		if end >= len(content) || !isWordChar(content[end]) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// fuzzyFill obtains fuzzy match positions for term via the matcher.
func (e *nearEvaluator) fuzzyFill(content string, term Term, opts NearOptions) []int {
	result := e.fuzzy.search(content, term, FuzzyOptions{
		Threshold:     e.tuning.load().MatchThreshold,
		CaseSensitive: opts.CaseSensitive,
		WholeWord:     opts.WholeWord,
		IncludeScore:  true,
	})
	if !result.IsMatch {
		return nil
	}
	return result.MatchPositions
}

func ensureSorted(offsets []int) []int {
	if sort.IntsAreSorted(offsets) {
		return offsets
	}
	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)
	return sorted
}

// twoPointerWithinDistance walks two sorted offset lists, returning
// true as soon as some pair is within maxDist of each other. O(n+m).
func twoPointerWithinDistance(a, b []int, maxDist int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		d := a[i] - b[j]
		if d < 0 {
			d = -d
		}
		if d <= maxDist {
			return true
		}
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return false
}

// evaluateDirect runs the non-chunked two-pointer proximity algorithm
// over word indices derived from the full content, using pooled
// arrays for the word-index projections.
func (e *nearEvaluator) evaluateDirect(content string, offsets1, offsets2 []int, distance int) bool {
	words1 := e.pool.acquire(len(offsets1))
	words2 := e.pool.acquire(len(offsets2))
	defer e.pool.release(words1)
	defer e.pool.release(words2)

	n1 := e.projectWordIndices(content, offsets1, words1)
	n2 := e.projectWordIndices(content, offsets2, words2)

	return twoPointerWithinDistance(words1[:n1], words2[:n2], distance)
}

// projectWordIndices maps each character offset to its word index via
// the word-boundary index, dropping offsets that resolve to
// NoWordIndex, writing into dst
// (which must have capacity len(offsets)) and returning the count
// written.
func (e *nearEvaluator) projectWordIndices(content string, offsets []int, dst []int) int {
	n := 0
	for _, off := range offsets {
		idx := e.wordIndex.wordIndexOf(off, content)
		if idx == NoWordIndex {
			continue
		}
		dst[n] = idx
		n++
	}
	return n
}

// evaluateChunked handles content larger than MaxFullContentSize:
// slide an overlapping window across content, remap both offset lists
// to window-local offsets, and run the two-pointer check per window;
// any window match terminates with true.
func (e *nearEvaluator) evaluateChunked(content string, offsets1, offsets2 []int, distance int, deadline int64, path string) bool {
	chunkSize := e.cfg.ChunkSize
	overlap := e.cfg.ChunkOverlap
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	for chunkStart := 0; chunkStart < len(content); chunkStart += step {
		if e.deadlineExceeded(deadline, path) {
			return false
		}

		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(content) {
			chunkEnd = len(content)
		}
		chunkContent := content[chunkStart:chunkEnd]

		local1 := windowLocalOffsets(offsets1, chunkStart, chunkEnd)
		local2 := windowLocalOffsets(offsets2, chunkStart, chunkEnd)
		if len(local1) > 0 && len(local2) > 0 {
			words1 := e.pool.acquire(len(local1))
			words2 := e.pool.acquire(len(local2))

			n1 := e.projectWordIndices(chunkContent, local1, words1)
			n2 := e.projectWordIndices(chunkContent, local2, words2)

			match := twoPointerWithinDistance(words1[:n1], words2[:n2], distance)
			e.pool.release(words1)
			e.pool.release(words2)
			if match {
				return true
			}
		}

		if chunkEnd == len(content) {
			break
		}
	}
	return false
}

// windowLocalOffsets returns the subset of offsets inside
// [windowStart, windowEnd), remapped relative to windowStart.
func windowLocalOffsets(offsets []int, windowStart, windowEnd int) []int {
	var local []int
	for _, off := range offsets {
		if off >= windowStart && off < windowEnd {
			local = append(local, off-windowStart)
		}
	}
	return local
}

func termIndicesCacheKey(fingerprint string, term Term, opts NearOptions) string {
	return fmt.Sprintf("%s\x00%s\x00%v\x00%v\x00%v", fingerprint, term.Text(), opts.CaseSensitive, term.IsRegex(), opts.WholeWord)
}

func proximityCacheKey(fingerprint string, term1, term2 Term, distance int, opts NearOptions) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%v\x00%v\x00%v",
		fingerprint, term1.Text(), term2.Text(), distance, opts.CaseSensitive, opts.FuzzyEnabled, opts.WholeWord)
}

