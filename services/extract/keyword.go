package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"verdebot/models"
	"verdebot/services/catalog"
)

// serviceKeywords maps trigger phrases onto catalog services. Scanned in
// slice order so multi-word phrases win over their substrings.
var serviceKeywords = []struct {
	Service models.ServiceType
	Phrases []string
}{
	{models.ServiceRopePrune, []string{"rope", "climbing", "su corda"}},
	{models.ServiceWasteDisposal, []string{"green waste", "disposal", "smaltimento"}},
	{models.ServiceLeafCollect, []string{"leaf", "leaves", "foglie"}},
	{models.ServicePestTreat, []string{"pest", "treatment", "spray", "antiparassitari"}},
	{models.ServiceCleanup, []string{"cleanup", "clean up", "tidy", "pulizia"}},
	{models.ServiceHedgeTrim, []string{"hedge", "siepi", "siepe"}},
	{models.ServiceTreePrune, []string{"tree", "prune", "pruning", "alberi"}},
	{models.ServiceLawnMow, []string{"lawn", "mow", "grass", "prato"}},
}

var (
	bookingWords     = []string{"book", "schedule", "appointment", "come over", "come by", "when can you", "prenota", "prenotare"}
	affirmativeWords = []string{"yes", "yep", "yeah", "sure", "ok", "okay", "confirm", "confirmed", "si", "sì", "va bene", "perfect", "great"}
	negativeWords    = []string{"no", "nope", "nah", "not now", "another", "different"}
	cancelWords      = []string{"cancel", "never mind", "nevermind", "forget it", "stop", "annulla"}

	timePattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	datePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)

	areaPattern   = regexp.MustCompile(`(\d+)\s*(?:m2|m²|sqm|square)`)
	heightPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:m|meter|metre)s?\s*(?:high|tall)`)
	countPattern  = regexp.MustCompile(`(\d+)\s*(?:trees|plants|units|shrubs)`)
	lengthPattern = regexp.MustCompile(`(\d+)\s*(?:m|meter|metre)s?\s*(?:of|long)`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// KeywordExtractor is the deterministic fallback extractor: plain
// keyword and regex heuristics, no model calls.
type KeywordExtractor struct {
	Catalog catalog.Catalog
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Extract never returns an error; unrecognizable input yields the
// zero-value "no signal" extraction.
func (k *KeywordExtractor) Extract(_ context.Context, text string, _ *models.Session) (models.Extraction, error) {
	low := strings.ToLower(strings.TrimSpace(text))
	var ext models.Extraction

	for _, entry := range serviceKeywords {
		for _, phrase := range entry.Phrases {
			if strings.Contains(low, phrase) && k.Catalog.Known(entry.Service) {
				ext.ServiceCandidates = appendUnique(ext.ServiceCandidates, entry.Service)
				break
			}
		}
	}
	// Rope work is tree work: "rope pruning 3 trees" is one job, not two.
	if hasService(ext.ServiceCandidates, models.ServiceRopePrune) {
		ext.ServiceCandidates = dropService(ext.ServiceCandidates, models.ServiceTreePrune)
	}

	ext.BookingSignal = containsAny(low, bookingWords)
	ext.Affirmative = matchesToken(low, affirmativeWords)
	ext.Negative = matchesToken(low, negativeWords)
	ext.CancelSignal = containsAny(low, cancelWords)

	ext.DayPreference = k.parseDay(low)
	switch {
	case strings.Contains(low, "morning"), strings.Contains(low, "mattina"):
		ext.PartOfDay = models.PartOfDayMorning
	case strings.Contains(low, "afternoon"), strings.Contains(low, "pomeriggio"):
		ext.PartOfDay = models.PartOfDayAfternoon
	}
	ext.StartMinute = parseStartMinute(low)

	ext.FieldHints = parseFieldHints(low)
	if ext.DayPreference != nil || ext.PartOfDay != models.PartOfDayAny {
		ext.BookingSignal = true
	}
	return ext, nil
}

func parseFieldHints(low string) map[string]string {
	hints := map[string]string{}
	if m := areaPattern.FindStringSubmatch(low); m != nil {
		hints[models.FieldAreaM2] = m[1]
	}
	if m := heightPattern.FindStringSubmatch(low); m != nil {
		hints[models.FieldHeightM] = strings.ReplaceAll(m[1], ",", ".")
	}
	if m := countPattern.FindStringSubmatch(low); m != nil {
		hints[models.FieldCount] = m[1]
	}
	if m := lengthPattern.FindStringSubmatch(low); m != nil {
		hints[models.FieldLengthM] = m[1]
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

func (k *KeywordExtractor) parseDay(low string) *time.Time {
	now := time.Now()
	if k.Now != nil {
		now = k.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if strings.Contains(low, "today") {
		return &today
	}
	if strings.Contains(low, "tomorrow") {
		d := today.AddDate(0, 0, 1)
		return &d
	}
	for name, wd := range weekdays {
		if strings.Contains(low, name) {
			offset := (int(wd) - int(today.Weekday()) + 7) % 7
			if offset == 0 {
				offset = 7
			}
			d := today.AddDate(0, 0, offset)
			return &d
		}
	}
	if m := datePattern.FindStringSubmatch(low); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			if y, err := strconv.Atoi(m[3]); err == nil {
				if y < 100 {
					y += 2000
				}
				year = y
			}
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
			if d.Before(today) && m[3] == "" {
				d = d.AddDate(1, 0, 0)
			}
			return &d
		}
	}
	return nil
}

func parseStartMinute(low string) *int {
	idx := strings.Index(low, "at ")
	if idx < 0 {
		return nil
	}
	m := timePattern.FindStringSubmatch(low[idx+3:])
	if m == nil {
		return nil
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}
	if hour > 23 || minute > 59 {
		return nil
	}
	v := hour*60 + minute
	return &v
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// matchesToken requires a word-level match so "notes" does not read as
// a negative answer.
func matchesToken(text string, tokens []string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	})
	for _, tok := range tokens {
		if strings.Contains(tok, " ") {
			if strings.Contains(text, tok) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == tok {
				return true
			}
		}
	}
	return false
}

func hasService(list []models.ServiceType, s models.ServiceType) bool {
	for _, existing := range list {
		if existing == s {
			return true
		}
	}
	return false
}

func dropService(list []models.ServiceType, s models.ServiceType) []models.ServiceType {
	out := list[:0]
	for _, existing := range list {
		if existing != s {
			out = append(out, existing)
		}
	}
	return out
}

func appendUnique(list []models.ServiceType, s models.ServiceType) []models.ServiceType {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
