package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/siherrmann/kgraph/model"
)

// patternConfidence is the fixed confidence assigned to all pattern matches.
// There is no model-based calibration; a match either fires or it doesn't.
const patternConfidence = 0.9

// contextRadius is the number of characters of surrounding context kept on
// each side of an entity span.
const contextRadius = 30

// entityPattern is one named pattern in the extractor's ordered pattern set
type entityPattern struct {
	name       string
	entityType model.EntityType
	re         *regexp.Regexp
	normalize  func(value string) interface{}
}

// entityPatterns is tried in declared order. Order matters: when two patterns
// match overlapping spans only the first-encountered match is kept, so more
// specific patterns (datetime before date, card before number) come first.
var entityPatterns = []entityPattern{
	{
		name:       "datetime_iso",
		entityType: model.EntityTypeDateTime,
		re:         regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2})?`),
		normalize:  normalizeDateTime,
	},
	{
		name:       "date_iso",
		entityType: model.EntityTypeDate,
		re:         regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		normalize:  normalizeDate,
	},
	{
		name:       "date_slash",
		entityType: model.EntityTypeDate,
		re:         regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		normalize:  normalizeDate,
	},
	{
		name:       "date_written",
		entityType: model.EntityTypeDate,
		re:         regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
		normalize:  normalizeDate,
	},
	{
		name:       "time",
		entityType: model.EntityTypeTime,
		re:         regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\s?(?:(?i:am|pm))?\b`),
		normalize:  nil,
	},
	{
		name:       "card",
		entityType: model.EntityTypeCard,
		re:         regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`),
		normalize:  nil,
	},
	{
		name:       "account",
		entityType: model.EntityTypeAccount,
		re:         regexp.MustCompile(`(?i)\b(?:account|acct)\.?\s*(?:#|no\.?|number)?\s*\d{6,12}\b`),
		normalize:  nil,
	},
	{
		name:       "money_symbol",
		entityType: model.EntityTypeMoney,
		re:         regexp.MustCompile(`[$€£¥]\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`),
		normalize:  normalizeMoney,
	},
	{
		name:       "money_code",
		entityType: model.EntityTypeMoney,
		re:         regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP|dollars?|euros?|pounds?)\b`),
		normalize:  normalizeMoney,
	},
	{
		// Generic decimal pattern. Intentionally over-approximates: any
		// "xxx.xx" number fires as money, currency symbol or not. Callers
		// needing high-precision currency detection must expect false
		// positives here.
		name:       "money_decimal",
		entityType: model.EntityTypeMoney,
		re:         regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`),
		normalize:  normalizeMoney,
	},
	{
		name:       "percentage",
		entityType: model.EntityTypePercentage,
		re:         regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:%|percent\b)`),
		normalize:  normalizePercentage,
	},
	{
		name:       "email",
		entityType: model.EntityTypeEmail,
		re:         regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`),
		normalize:  func(v string) interface{} { return strings.ToLower(v) },
	},
	{
		name:       "url",
		entityType: model.EntityTypeURL,
		re:         regexp.MustCompile(`\bhttps?://[^\s<>"']+|\bwww\.[^\s<>"']+`),
		normalize:  nil,
	},
	{
		name:       "phone",
		entityType: model.EntityTypePhone,
		re:         regexp.MustCompile(`(?:\+?\d{1,2}[-.\s])?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
		normalize:  normalizePhone,
	},
	{
		name:       "duration",
		entityType: model.EntityTypeDuration,
		re:         regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:seconds?|minutes?|hours?|days?|weeks?|months?|years?)\b`),
		normalize:  normalizeDuration,
	},
	{
		name:       "ordinal",
		entityType: model.EntityTypeOrdinal,
		re:         regexp.MustCompile(`\b\d+(?:st|nd|rd|th)\b`),
		normalize:  normalizeOrdinal,
	},
	{
		name:       "number",
		entityType: model.EntityTypeNumber,
		re:         regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b|\b\d+(?:\.\d+)?\b`),
		normalize:  normalizeNumber,
	},
}

// Entities applies the ordered pattern set to text and returns all typed
// spans plus keywords and an aggregate summary. It never fails for its own
// logic: a pattern that matches nothing simply contributes no entities, and
// a value that cannot be normalized keeps Normalized nil.
func Entities(text string) *model.ExtractionResult {
	var entities []model.Entity
	var spans []span

	for _, pattern := range entityPatterns {
		for _, loc := range pattern.re.FindAllStringIndex(text, -1) {
			s := span{start: loc[0], end: loc[1]}
			if overlapsAny(s, spans) {
				continue
			}
			spans = append(spans, s)

			value := text[s.start:s.end]
			var normalized interface{}
			if pattern.normalize != nil {
				normalized = pattern.normalize(value)
			}

			entities = append(entities, model.Entity{
				Type:       pattern.entityType,
				Value:      value,
				Normalized: normalized,
				Confidence: patternConfidence,
				Start:      s.start,
				End:        s.end,
				Context:    surroundingContext(text, s.start, s.end),
			})
		}
	}

	// Sort by position for a stable, reading-order result
	sortEntitiesByPosition(entities)

	return &model.ExtractionResult{
		Entities: entities,
		Keywords: Keywords(text, DefaultMaxKeywords),
		Summary:  summarize(entities),
	}
}

type span struct {
	start int
	end   int
}

func overlapsAny(s span, spans []span) bool {
	for _, other := range spans {
		if s.start < other.end && other.start < s.end {
			return true
		}
	}
	return false
}

func surroundingContext(text string, start, end int) string {
	from := start - contextRadius
	if from < 0 {
		from = 0
	}
	to := end + contextRadius
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}

func sortEntitiesByPosition(entities []model.Entity) {
	// Insertion sort keeps this dependency-free and stable; entity counts
	// per text are small.
	for i := 1; i < len(entities); i++ {
		for j := i; j > 0 && entities[j].Start < entities[j-1].Start; j-- {
			entities[j], entities[j-1] = entities[j-1], entities[j]
		}
	}
}

func summarize(entities []model.Entity) model.ExtractionSummary {
	summary := model.ExtractionSummary{
		Counts: make(map[model.EntityType]int),
	}

	for _, e := range entities {
		summary.Counts[e.Type]++

		switch e.Type {
		case model.EntityTypeDate, model.EntityTypeTime, model.EntityTypeDateTime:
			summary.HasTemporalInfo = true
		case model.EntityTypeMoney, model.EntityTypePercentage:
			summary.HasMonetaryInfo = true
		case model.EntityTypeEmail, model.EntityTypePhone, model.EntityTypeURL:
			summary.HasContactInfo = true
		}
	}

	return summary
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// normalizeDate parses a date string. An unparseable value stays nil, the raw
// value is still useful downstream.
func normalizeDate(value string) interface{} {
	cleaned := strings.ToLower(value)
	if len(cleaned) > 0 {
		cleaned = strings.ToUpper(cleaned[:1]) + cleaned[1:]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t
		}
	}
	return nil
}

func normalizeDateTime(value string) interface{} {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return nil
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

func normalizeMoney(value string) interface{} {
	cleaned := nonNumeric.ReplaceAllString(value, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return f
}

func normalizePercentage(value string) interface{} {
	cleaned := nonNumeric.ReplaceAllString(value, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return f
}

func normalizeNumber(value string) interface{} {
	cleaned := strings.ReplaceAll(value, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return f
}

func normalizePhone(value string) interface{} {
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

var durationUnitSeconds = map[string]float64{
	"second": 1,
	"minute": 60,
	"hour":   3600,
	"day":    86400,
	"week":   604800,
	"month":  2592000,
	"year":   31536000,
}

var durationRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s?([a-z]+)`)

// normalizeDuration converts "3 days", "2.5 hours" etc. to seconds
func normalizeDuration(value string) interface{} {
	m := durationRe.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	unit := strings.TrimSuffix(strings.ToLower(m[2]), "s")
	factor, ok := durationUnitSeconds[unit]
	if !ok {
		return nil
	}
	return amount * factor
}

func normalizeOrdinal(value string) interface{} {
	cleaned := strings.TrimRight(value, "stndrh")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return f
}
