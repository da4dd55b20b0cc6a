package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"verdebot/models"
)

var (
	intPattern     = regexp.MustCompile(`\d+`)
	decimalPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// IsValid reports whether the job's value for a field passes the
// type-specific validity predicate.
func (c Catalog) IsValid(job models.Job, field string) bool {
	raw := job.Get(field)
	if raw == "" {
		return false
	}
	switch fieldKinds[field] {
	case kindInt:
		n, err := strconv.Atoi(raw)
		return err == nil && n > 0
	case kindHeight:
		h, err := strconv.ParseFloat(raw, 64)
		return err == nil && h > 0 && h <= c.HeightCeilingM
	case kindAccess:
		_, ok := c.AccessFactors[raw]
		return ok
	case kindSize:
		return raw == "small" || raw == "medium" || raw == "large"
	case kindTriState:
		return raw == "yes" || raw == "no" || raw == "unknown"
	case kindText:
		return len(strings.TrimSpace(raw)) >= 2
	}
	return false
}

// ApplyAnswer parses a free-text answer for the given field and commits
// the normalized value on success. An unparsable answer leaves the job
// untouched so the same question gets asked again.
func (c Catalog) ApplyAnswer(job *models.Job, field, raw string) bool {
	value, ok := c.parseAnswer(field, raw)
	if !ok {
		return false
	}
	job.Set(field, value)
	return true
}

// NextMissingField returns the first required field, in checklist
// order, that is absent or invalid. ok is false when the job is complete.
func (c Catalog) NextMissingField(job models.Job) (string, bool) {
	for _, f := range RequiredFields(job.Service) {
		if !c.IsValid(job, f) {
			return f, true
		}
	}
	return "", false
}

// Complete reports whether every required field of the job is valid.
func (c Catalog) Complete(job models.Job) bool {
	_, missing := c.NextMissingField(job)
	return !missing
}

func (c Catalog) parseAnswer(field, raw string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return "", false
	}
	switch fieldKinds[field] {
	case kindInt:
		m := intPattern.FindString(text)
		if m == "" {
			return "", false
		}
		n, err := strconv.Atoi(m)
		if err != nil || n <= 0 {
			return "", false
		}
		return strconv.Itoa(n), true
	case kindHeight:
		m := decimalPattern.FindString(text)
		if m == "" {
			return "", false
		}
		h, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		if err != nil || h <= 0 || h > c.HeightCeilingM {
			return "", false
		}
		return strconv.FormatFloat(h, 'f', -1, 64), true
	case kindAccess:
		return matchKeyword(text, map[string][]string{
			"easy":   {"easy", "simple", "flat", "direct"},
			"medium": {"medium", "average", "ok", "moderate"},
			"hard":   {"hard", "difficult", "tight", "narrow", "tricky"},
		})
	case kindSize:
		return matchKeyword(text, map[string][]string{
			"small":  {"small", "little"},
			"medium": {"medium", "mid"},
			"large":  {"large", "big", "tall", "huge"},
		})
	case kindTriState:
		return matchKeyword(text, map[string][]string{
			"yes":     {"yes", "yep", "yeah", "sure", "si", "sì", "please"},
			"no":      {"no", "nope", "none", "nah"},
			"unknown": {"unknown", "not sure", "maybe", "don't know", "dont know"},
		})
	case kindText:
		if len(text) < 2 {
			return "", false
		}
		return strings.TrimSpace(raw), true
	}
	return "", false
}

// matchKeyword maps an answer onto a closed enum by keyword containment.
// Longer keywords are not prioritized; the first enum whose keyword
// appears wins, scanning values in a stable order.
func matchKeyword(text string, choices map[string][]string) (string, bool) {
	// Stable scan order keeps answers like "not sure" from matching "no".
	for _, value := range []string{"unknown", "easy", "medium", "hard", "small", "large", "yes", "no"} {
		kws, ok := choices[value]
		if !ok {
			continue
		}
		for _, kw := range kws {
			if containsWord(text, kw) {
				return value, true
			}
		}
	}
	return "", false
}

func containsWord(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if w == kw {
			return true
		}
	}
	return false
}
