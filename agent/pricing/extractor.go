// Package pricing extracts monetary and percentage facts from raw
// retrieved text. Index passages are noisy; extraction turns them into
// structured facts the knowledge agent can template into sentences.
package pricing

import (
	"regexp"
	"sort"
	"strings"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

// DefaultContextWindow is the number of characters kept on each side of
// a match for disambiguation.
const DefaultContextWindow = 40

const (
	number   = `\d{1,3}(?:[.,]\d{3})*(?:[.,]\d+)?|\d+(?:[.,]\d+)?`
	currency = `(?:R\$|US\$|\$|€|£|BRL|USD|EUR)`
)

// Rules are layered and evaluated longest-match-first: a range claims
// its span before the percentage and currency rules see it. Overlapping
// matches are deduplicated by preferring the longest span.
var (
	rangeRe      = regexp.MustCompile(`(?i)` + currency + `?\s?(?:` + number + `)\s?%?(?:\s?[-–]\s?|\s(?:to|a)\s)` + currency + `?\s?(?:` + number + `)\s?%?`)
	percentageRe = regexp.MustCompile(`(?i)(?:` + number + `)\s?%`)
	currencyRe   = regexp.MustCompile(`(?i)` + currency + `\s?(?:` + number + `)`)

	numberRe       = regexp.MustCompile(number)
	currencyLeadRe = regexp.MustCompile(`(?i)^` + currency)
)

// zeroCostTerms backs the ZeroCostKeyword rule. The rule recognizes
// no-charge phrasing but deliberately emits no PricingFact; "free" is
// not a number, and guessing a normalized 0 would invent a fact the
// source never stated.
var zeroCostTerms = []string{
	"free", "no cost", "grátis", "gratis", "gratuito", "gratuita",
	"sem custo", "sem taxa",
}

// Extractor applies the layered pattern rules to raw text.
type Extractor struct {
	contextWindow int
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithContextWindow overrides the default ±40 character context window.
func WithContextWindow(chars int) Option {
	return func(e *Extractor) {
		if chars > 0 {
			e.contextWindow = chars
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{contextWindow: DefaultContextWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type candidate struct {
	start int
	end   int
	kind  contractx.PricingKind
}

// Extract returns every pricing fact found in text, in order of
// appearance. Matching is case-insensitive.
func (e *Extractor) Extract(text string) []contractx.PricingFact {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []candidate
	for _, span := range rangeRe.FindAllStringIndex(text, -1) {
		if isRangeMatch(text[span[0]:span[1]]) {
			candidates = append(candidates, candidate{span[0], span[1], contractx.KindRange})
		}
	}
	for _, span := range percentageRe.FindAllStringIndex(text, -1) {
		candidates = append(candidates, candidate{span[0], span[1], contractx.KindPercentage})
	}
	for _, span := range currencyRe.FindAllStringIndex(text, -1) {
		candidates = append(candidates, candidate{span[0], span[1], contractx.KindCurrency})
	}
	if len(candidates) == 0 {
		return nil
	}

	// Longest span wins; ties resolve to the earlier start, which keeps
	// the layered rule order stable.
	sort.Slice(candidates, func(i, j int) bool {
		li, lj := candidates[i].end-candidates[i].start, candidates[j].end-candidates[j].start
		if li != lj {
			return li > lj
		}
		return candidates[i].start < candidates[j].start
	})

	var accepted []candidate
	for _, c := range candidates {
		overlaps := false
		for _, a := range accepted {
			if c.start < a.end && a.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	facts := make([]contractx.PricingFact, 0, len(accepted))
	for _, c := range accepted {
		raw := strings.TrimSpace(text[c.start:c.end])
		facts = append(facts, contractx.PricingFact{
			RawMatch:        raw,
			Kind:            c.kind,
			NormalizedValue: normalize(raw, c.kind),
			ContextWindow:   e.window(text, c.start, c.end),
		})
	}
	return facts
}

// HasZeroCostKeyword reports whether the ZeroCostKeyword rule matched.
// Callers can mention no-charge phrasing in composed answers without the
// extractor fabricating a zero-valued fact.
func HasZeroCostKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range zeroCostTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (e *Extractor) window(text string, start, end int) string {
	lo := start - e.contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + e.contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}

// isRangeMatch rejects range-rule hits whose joiner "a" glued two
// unrelated numbers: a genuine range keeps numbers on both sides of the
// joiner after whitespace collapse.
func isRangeMatch(raw string) bool {
	return len(numberRe.FindAllString(raw, -1)) >= 2
}

func normalize(raw string, kind contractx.PricingKind) string {
	switch kind {
	case contractx.KindPercentage:
		return normalizeNumber(strings.TrimSpace(strings.TrimSuffix(raw, "%"))) + "%"
	case contractx.KindCurrency:
		symbol := currencySymbol(raw)
		num := strings.TrimSpace(strings.TrimPrefix(raw, symbol))
		return symbol + " " + normalizeNumber(num)
	case contractx.KindRange:
		parts := numberRe.FindAllString(raw, -1)
		if len(parts) >= 2 {
			suffix := ""
			if strings.Contains(raw, "%") {
				suffix = "%"
			}
			return normalizeNumber(parts[0]) + suffix + "-" + normalizeNumber(parts[len(parts)-1]) + suffix
		}
	}
	return strings.TrimSpace(raw)
}

func currencySymbol(raw string) string {
	return currencyLeadRe.FindString(raw)
}

// normalizeNumber converts both 1.250,50 (pt-BR) and 1,250.50 (en)
// figures to a plain 1250.50 form.
func normalizeNumber(num string) string {
	num = strings.TrimSpace(num)
	lastDot := strings.LastIndex(num, ".")
	lastComma := strings.LastIndex(num, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot { // 1.250,50
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else { // 1,250.50
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		digitsAfter := len(num) - lastComma - 1
		if digitsAfter == 3 && lastComma > 0 { // 1,250 thousands
			num = strings.ReplaceAll(num, ",", "")
		} else { // 2,5 decimal
			num = strings.Replace(num, ",", ".", 1)
		}
	case lastDot >= 0:
		digitsAfter := len(num) - lastDot - 1
		if digitsAfter == 3 && strings.Count(num, ".") == 1 && lastDot > 0 && len(num) > 4 && !strings.HasPrefix(num, "0.") {
			// 1.250 reads as thousands in pt-BR sources.
			num = strings.ReplaceAll(num, ".", "")
		}
	}
	return num
}
