// Package extract turns raw OCR text into structured billing fields with
// per-field confidence scores. It is pure and deterministic: no I/O, no
// side effects, and a failure to match one field never blocks the others.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Fields is the structured output of Extract. Every member is independently
// optional; Confidence holds a score in [0,1] for exactly the set members.
type Fields struct {
	Amount     *float64           `json:"amount,omitempty"`
	Date       *string            `json:"date,omitempty"`
	Vendor     *string            `json:"vendor,omitempty"`
	DocNumber  *string            `json:"docNumber,omitempty"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (f Fields) IsEmpty() bool {
	return f.Amount == nil && f.Date == nil && f.Vendor == nil && f.DocNumber == nil
}

// Extract runs the four field heuristics over recognized text.
func Extract(rawText string) Fields {
	fields := Fields{Confidence: map[string]float64{}}

	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(rawText, " "))
	lines := splitLines(rawText)

	if amount, conf, ok := extractAmount(normalized); ok {
		fields.Amount = &amount
		fields.Confidence["amount"] = conf
	}
	if date, conf, ok := extractDate(normalized); ok {
		fields.Date = &date
		fields.Confidence["date"] = conf
	}
	if vendor, conf, ok := extractVendor(lines); ok {
		fields.Vendor = &vendor
		fields.Confidence["vendor"] = conf
	}
	if docNumber, conf, ok := extractDocNumber(normalized); ok {
		fields.DocNumber = &docNumber
		fields.Confidence["docNumber"] = conf
	}

	return fields
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Amount pattern families, highest confidence first: shekel symbol prefix,
// Hebrew currency-word suffix, total keyword, bare two-decimal number.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`₪\s*([\d,]+(?:\.\d{2})?)`),
	regexp.MustCompile(`([\d,]+(?:\.\d{2})?)\s*(?:ש"ח|ש״ח|שח|שקל)`),
	regexp.MustCompile(`(?i)(?:סה"כ|סה״כ|סהכ|סכום|לתשלום|total)\s*:?\s*([\d,]+(?:\.\d{2})?)`),
	regexp.MustCompile(`\b([\d,]+\.\d{2})\b`),
}

// extractAmount takes the largest positive value found by any family, not the
// first match: receipts list line items before the grand total, and the total
// is what we want even when a line item matched a stronger pattern.
func extractAmount(text string) (float64, float64, bool) {
	var (
		best     float64
		bestConf float64
		found    bool
	)
	for i, pattern := range amountPatterns {
		conf := 0.9 - float64(i)*0.15
		if conf < 0.3 {
			conf = 0.3
		}
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			numStr := strings.ReplaceAll(match[1], ",", "")
			value, err := strconv.ParseFloat(numStr, 64)
			if err != nil || value <= 0 {
				continue
			}
			if !found || value > best {
				best = value
				bestConf = conf
				found = true
			}
		}
	}
	return best, bestConf, found
}

var (
	dateFourDigitRe = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	dateTwoDigitRe  = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})`)
	dateHebrewRe    = regexp.MustCompile(`(\d{1,2})\s+ב?(ינואר|פברואר|מרץ|אפריל|מאי|יוני|יולי|אוגוסט|ספטמבר|אוקטובר|נובמבר|דצמבר)\s+(\d{4})`)
)

var hebrewMonths = map[string]int{
	"ינואר": 1, "פברואר": 2, "מרץ": 3, "אפריל": 4, "מאי": 5, "יוני": 6,
	"יולי": 7, "אוגוסט": 8, "ספטמבר": 9, "אוקטובר": 10, "נובמבר": 11, "דצמבר": 12,
}

// extractDate returns on the first pattern family with a valid match and
// normalizes the result to YYYY-MM-DD.
func extractDate(text string) (string, float64, bool) {
	for _, match := range dateFourDigitRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 2000 && year <= 2100 {
			return formatDate(year, month, day), 0.85, true
		}
	}

	for _, match := range dateTwoDigitRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if year < 100 {
			year += 2000
		}
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			return formatDate(year, month, day), 0.75, true
		}
	}

	for _, match := range dateHebrewRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(match[1])
		month := hebrewMonths[match[2]]
		year, _ := strconv.Atoi(match[3])
		if month > 0 && day >= 1 && day <= 31 {
			return formatDate(year, month, day), 0.8, true
		}
	}

	return "", 0, false
}

func formatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

var vendorKeywords = []string{"ספק", "עסק", "חברה", "vendor", "supplier", "from"}

// Lines that open a receipt but are never the business name.
var vendorSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(תאריך|date|מספר|number|סכום|amount|total|סה"כ|חשבונית|קבלה|invoice|receipt)`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[\d.\-/\s]+$`),
}

// extractVendor first looks for an introducing keyword anywhere in the text,
// preferring same-line text after a colon over the following line. Failing
// that, it falls back to the first plausible business-name line near the top.
func extractVendor(lines []string) (string, float64, bool) {
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range vendorKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			if colon := strings.Index(line, ":"); colon != -1 {
				vendor := strings.TrimSpace(line[colon+1:])
				if utf8.RuneCountInString(vendor) > 2 {
					return vendor, 0.8, true
				}
			}
			if i+1 < len(lines) && utf8.RuneCountInString(lines[i+1]) > 2 {
				return lines[i+1], 0.7, true
			}
		}
	}

	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if matchesAny(vendorSkipPatterns, line) {
			continue
		}
		if n := utf8.RuneCountInString(line); n > 3 && n < 50 {
			return line, 0.5, true
		}
	}

	return "", 0, false
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Document number pattern families: Hebrew "מס' חשבונית" style, English
// "Invoice #"/"Receipt No." style, and a bare # followed by digits.
var docNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:מס['׳]?\s*|מספר\s*)(?:חשבונית|קבלה|מסמך|הזמנה|invoice|receipt)\s*:?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)(?:invoice|receipt|doc)\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`#\s*(\d+)`),
}

// extractDocNumber returns the first family with a match.
func extractDocNumber(text string) (string, float64, bool) {
	for i, pattern := range docNumberPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil || match[1] == "" {
			continue
		}
		conf := 0.85 - float64(i)*0.15
		if conf < 0.4 {
			conf = 0.4
		}
		return match[1], conf, true
	}
	return "", 0, false
}
