// fuzzy.go: the fuzzy matcher
//
// The matcher proper is hidden behind the SearcherHandle interface;
// fuzzyMatcher only owns the two caches (results, and the handle cache
// keyed on fingerprint + configuration-equivalence class) and the
// fingerprinter it consults.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"fmt"
	"regexp"
	"strings"
)

// FuzzyOptions controls one Search call.
type FuzzyOptions struct {
	Threshold     float64
	CaseSensitive bool
	IncludeScore  bool
	WholeWord     bool
}

// FuzzyResult is the outcome of one Search call. Score is 0 for an
// exact match; MatchPositions are character offsets at which matches
// begin (approximate, word-start anchored, for fuzzy hits).
type FuzzyResult struct {
	IsMatch          bool
	Score            float64
	MatchPositions   []int
	ProcessingTimeMs float64
}

// SearcherHandle is the fuzzy backend's opaque search interface.
// Hiding the implementation lets the backend be swapped (an n-gram
// index, a true bitap matcher) without touching the NEAR evaluator.
// wordScanSearcher is the only implementation here.
type SearcherHandle interface {
	Search(term Term, opts FuzzyOptions) FuzzyResult
}

// fuzzyMatcher normalizes options, consults the result and fuse
// caches, and delegates actual matching to a SearcherHandle.
type fuzzyMatcher struct {
	cfg    EngineConfig
	tuning *tuningState
	fp     *fingerprinter

	resultsCache *TTLCache[any]
	fuseCache    *TTLCache[any]

	clock        TimeProvider
	logger       Logger
	metrics      MetricsCollector
	phaseMetrics *PhaseMetrics
}

func newFuzzyMatcher(cfg EngineConfig, tuning *tuningState, fp *fingerprinter, resultsCache, fuseCache *TTLCache[any], phaseMetrics *PhaseMetrics) *fuzzyMatcher {
	if tuning == nil {
		tuning = newTuningState(Tuning{
			MatchThreshold:          cfg.MatchThreshold,
			MaxExecutionTime:        cfg.MaxExecutionTime,
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		})
	}
	if phaseMetrics == nil {
		phaseMetrics = newPhaseMetrics()
	}
	return &fuzzyMatcher{
		cfg:          cfg,
		tuning:       tuning,
		fp:           fp,
		resultsCache: resultsCache,
		fuseCache:    fuseCache,
		clock:        cfg.TimeProvider,
		logger:       cfg.Logger,
		metrics:      cfg.MetricsCollector,
		phaseMetrics: phaseMetrics,
	}
}

// normalizeFuzzyOptions fills in an unset Threshold from the matcher's
// live tuning state, so a reload of MatchThreshold is honored by
// callers that don't specify their own.
func (m *fuzzyMatcher) normalizeFuzzyOptions(opts FuzzyOptions) FuzzyOptions {
	if opts.Threshold <= 0 {
		opts.Threshold = m.tuning.load().MatchThreshold
	}
	return opts
}

func fuzzyConfigKey(opts FuzzyOptions) string {
	return fmt.Sprintf("cs=%v:ww=%v:th=%.4f:score=%v", opts.CaseSensitive, opts.WholeWord, opts.Threshold, opts.IncludeScore)
}

func fuzzyResultCacheKey(fingerprint, termRepr string, opts FuzzyOptions) string {
	return fingerprint + "\x00" + termRepr + "\x00" + fuzzyConfigKey(opts)
}

// search reports whether term approximately occurs in content. Empty
// term or content short-circuits to a negative result without touching
// any cache. A panic inside the matcher is logged and reported as a
// non-match.
func (m *fuzzyMatcher) search(content string, term Term, opts FuzzyOptions) (result FuzzyResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("fuzzy search failed", "error", NewErrInternalMatcherFailed("search", r))
			result = FuzzyResult{IsMatch: false}
		}
	}()

	opts = m.normalizeFuzzyOptions(opts)

	if content == "" || term.Len() == 0 {
		return FuzzyResult{IsMatch: false}
	}

	start := m.clock.Now()

	fingerprint := m.fp.fingerprint(content)
	key := fuzzyResultCacheKey(fingerprint, term.Text(), opts)

	if m.resultsCache != nil {
		if v, ok := m.resultsCache.Get(key); ok {
			// The cached value keeps the timing of the search that
			// produced it; report this call's own (lookup-only) cost.
			result := v.(FuzzyResult)
			lookup := m.clock.Now() - start
			result.ProcessingTimeMs = float64(lookup) / 1e6
			m.phaseMetrics.recordFuzzySearch(result.IsMatch)
			m.metrics.RecordFuzzySearch(lookup, result.IsMatch)
			return result
		}
	}

	handle := m.searcherFor(fingerprint, content, opts)
	result = handle.Search(term, opts)
	elapsed := m.clock.Now() - start
	result.ProcessingTimeMs = float64(elapsed) / 1e6

	if m.resultsCache != nil {
		m.resultsCache.Set(key, result, 0)
	}
	m.phaseMetrics.recordFuzzySearch(result.IsMatch)
	m.metrics.RecordFuzzySearch(elapsed, result.IsMatch)
	return result
}

// searcherFor returns the memoized SearcherHandle for (fingerprint,
// configKey), constructing one over content if absent.
func (m *fuzzyMatcher) searcherFor(fingerprint, content string, opts FuzzyOptions) SearcherHandle {
	key := fingerprint + "\x00" + fuzzyConfigKey(opts)
	if m.fuseCache != nil {
		if v, ok := m.fuseCache.Get(key); ok {
			return v.(SearcherHandle)
		}
	}

	handle := &wordScanSearcher{content: content, cfg: m.cfg}
	if m.fuseCache != nil {
		m.fuseCache.Set(key, SearcherHandle(handle), 0)
	}
	return handle
}

// wordScanSearcher implements SearcherHandle with a three-phase
// algorithm: exact short-circuit, bounded-content envelope pass,
// chunked word-based fallback.
type wordScanSearcher struct {
	content string
	cfg     EngineConfig
}

func (s *wordScanSearcher) Search(term Term, opts FuzzyOptions) FuzzyResult {
	content := s.content
	text := term.Text()

	if term.IsRegex() {
		return s.searchRegex(term, opts)
	}

	// Below the minimum term length, degrade to exact substring search
	// regardless of fuzzy enablement.
	if len(text) < s.cfg.MinTermLength {
		return s.exactResult(text, opts)
	}

	if exact := s.exactResult(text, opts); exact.IsMatch {
		return exact
	}

	var (
		isMatch  bool
		score    float64
		position int
	)
	if len(content) <= s.cfg.MaxFullLength {
		isMatch, score, position = boundedEnvelopeSearch(content, text, opts.CaseSensitive)
	} else {
		isMatch, score, position = chunkedWordFallback(content, text, opts.CaseSensitive, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	}

	if isMatch && opts.WholeWord {
		// A fuzzy candidate under wholeWord is accepted only if the
		// literal term also occurs at a word boundary somewhere in
		// content. The exact pass above already checked and found it
		// absent, so this gate is almost always false for genuinely
		// fuzzy (non-exact) candidates.
		isMatch = len(wholeWordPositions(content, text, opts.CaseSensitive)) > 0
	}

	result := FuzzyResult{IsMatch: isMatch}
	if isMatch {
		result.Score = score
		if opts.IncludeScore {
			result.MatchPositions = []int{position}
		}
	}
	return result
}

func (s *wordScanSearcher) searchRegex(term Term, opts FuzzyOptions) FuzzyResult {
	matches := term.regex.FindAllStringIndex(s.content, -1)
	if len(matches) == 0 {
		return FuzzyResult{IsMatch: false}
	}
	result := FuzzyResult{IsMatch: true, Score: 0}
	if opts.IncludeScore {
		positions := make([]int, len(matches))
		for i, m := range matches {
			positions[i] = m[0]
		}
		result.MatchPositions = positions
	}
	return result
}

// exactResult runs the exact short-circuit pass that precedes any
// fuzzy work: a \bterm\b regex scan under wholeWord, otherwise a plain
// substring scan collecting every non-overlapping occurrence by
// advancing the cursor by len(term).
func (s *wordScanSearcher) exactResult(text string, opts FuzzyOptions) FuzzyResult {
	var positions []int
	if opts.WholeWord {
		positions = wholeWordPositions(s.content, text, opts.CaseSensitive)
	} else {
		positions = exactSubstringPositions(s.content, text, opts.CaseSensitive)
	}

	if len(positions) == 0 {
		return FuzzyResult{IsMatch: false}
	}
	result := FuzzyResult{IsMatch: true, Score: 0}
	if opts.IncludeScore {
		result.MatchPositions = positions
	}
	return result
}

// exactSubstringPositions collects every non-overlapping occurrence of
// needle in haystack, advancing the cursor by len(needle) each time.
func exactSubstringPositions(haystack, needle string, caseSensitive bool) []int {
	if needle == "" {
		return nil
	}
	hay, pat := haystack, needle
	if !caseSensitive {
		hay = strings.ToLower(haystack)
		pat = strings.ToLower(needle)
	}

	var positions []int
	cursor := 0
	for cursor <= len(hay) {
		idx := strings.Index(hay[cursor:], pat)
		if idx < 0 {
			break
		}
		pos := cursor + idx
		positions = append(positions, pos)
		cursor = pos + len(pat)
	}
	return positions
}

// wholeWordPositions finds every \bterm\b occurrence.
func wholeWordPositions(content, term string, caseSensitive bool) []int {
	flags := ""
	if !caseSensitive {
		flags = "(?i)"
	}
	re, err := regexp.Compile(flags + `\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return nil
	}
	matches := re.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}
	positions := make([]int, len(matches))
	for i, m := range matches {
		positions[i] = m[0]
	}
	return positions
}

// boundedEnvelopeSearch is the bounded-content fuzzy pass: a
// position-agnostic scan over content's word spans with a dynamic
// edit-distance envelope and a minimum matched-character length,
// returning on the first acceptable candidate. The reported position
// is the character offset at which the matched word begins.
func boundedEnvelopeSearch(content, term string, caseSensitive bool) (isMatch bool, score float64, position int) {
	envelope := clampInt(int(2*float64(len(term))), 10, 100)
	minMatchLen := maxInt(2, int(0.6*float64(len(term))))

	needle := term
	if !caseSensitive {
		needle = strings.ToLower(term)
	}

	for _, span := range computeSpans(content) {
		word := span.Word
		if len(word) < minMatchLen {
			continue
		}
		candidate := word
		if !caseSensitive {
			candidate = strings.ToLower(word)
		}
		if rollingLevenshtein(candidate, needle, envelope) > envelope {
			continue
		}
		s := normalizedEditScore(candidate, needle)
		if s < fuzzyAcceptanceScore {
			return true, s, span.Start
		}
	}
	return false, 0, -1
}

// chunkedWordFallback handles content too large for the bounded pass:
// split into overlapping chunks, then whitespace-delimited words,
// filtering by length ratio and first/last character before paying for
// an edit distance computation.
func chunkedWordFallback(content, term string, caseSensitive bool, chunkSize, chunkOverlap int) (isMatch bool, score float64, position int) {
	needle := term
	if !caseSensitive {
		needle = strings.ToLower(term)
	}
	minLen := int(0.7 * float64(len(term)))
	maxLen := int(1.3 * float64(len(term)))
	maxDistance := int(0.3 * float64(len(term)))

	for chunkStart := 0; chunkStart < len(content); chunkStart += chunkSize - chunkOverlap {
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(content) {
			chunkEnd = len(content)
		}
		chunk := content[chunkStart:chunkEnd]

		for _, w := range splitWhitespaceWords(chunk, chunkStart) {
			if len(w.Word) < minLen || len(w.Word) > maxLen {
				continue
			}
			candidate := w.Word
			if !caseSensitive {
				candidate = strings.ToLower(candidate)
			}
			if candidate[0] != needle[0] && candidate[len(candidate)-1] != needle[len(needle)-1] {
				continue
			}
			d := rollingLevenshtein(candidate, needle, maxDistance)
			if d <= maxDistance {
				return true, float64(d) / float64(len(needle)), w.Start
			}
		}

		if chunkEnd == len(content) {
			break
		}
	}
	return false, 0, -1
}

// splitWhitespaceWords splits s on whitespace, returning each word
// with its absolute character offset (s's own offset plus baseOffset).
func splitWhitespaceWords(s string, baseOffset int) []Span {
	var spans []Span
	wordStart := -1
	for i := 0; i <= len(s); i++ {
		atEnd := i == len(s)
		isSpace := !atEnd && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r')
		if !atEnd && !isSpace {
			if wordStart < 0 {
				wordStart = i
			}
			continue
		}
		if wordStart >= 0 {
			spans = append(spans, Span{
				Word:  s[wordStart:i],
				Start: baseOffset + wordStart,
				End:   baseOffset + i - 1,
			})
			wordStart = -1
		}
	}
	return spans
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
