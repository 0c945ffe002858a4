package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Patterns shared by the detectors. Dates on Nordic statements are day.month
// with an optional year; the year is never needed for matching.
var (
	// "20.08", "20.08.", "20.08.2024"
	dateOnlyPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(?:\d{2}|\d{4}))?\.?$`)
	// "20.08 <rest>"
	leadingDatePattern = regexp.MustCompile(`^(\d{1,2}\.\d{1,2}(?:\.(?:\d{2}|\d{4}))?)\.?\s+(.+)$`)

	// Masked or plain account numbers: 1234 56 78901, 1234.56.78901, ****.**.12345
	accountNumberPattern = regexp.MustCompile(`^[\d*xX•]{4}[ .]?[\d*xX•]{2}[ .]?[\d*xX•]{5}$`)
	// Card-style groups: 1234 5678 9012 3456, **** **** **** 1234
	cardNumberPattern = regexp.MustCompile(`^(?:[\d*xX•]{4}[ .]){3}[\d*xX•]{4}$`)

	// Currency suffixes OCR leaves after an amount: "4 500,00 kr", "599,- NOK".
	currencySuffixPattern = regexp.MustCompile(`(?i)\s*(?:kr\.?|nok|sek|dkk|eur|usd|gbp|€|\$|£|,-)$`)

	// Pure amount lines.
	groupedAmountPattern = regexp.MustCompile(`^[-+]?\s?\d{1,3}(?:[ .]\d{3})+,\d{1,2}$`)
	commaAmountPattern   = regexp.MustCompile(`^[-+]?\s?\d+,\d{1,2}$`)
	pointAmountPattern   = regexp.MustCompile(`^[-+]?\s?\d+\.\d{1,2}$`)

	// English statements group with commas: 1,250.00
	commaGroupedAmountPattern = regexp.MustCompile(`^[-+]?\s?\d{1,3}(?:,\d{3})+\.\d{1,2}$`)

	// Trailing amount on a merchant line: "20.08 Til: Rema 1000 -287,50"
	trailingAmountPattern = regexp.MustCompile(`(?:^|\s)([-+]?\d{1,3}(?:[ .]\d{3})*,\d{1,2}|[-+]?\d+[.,]\d{1,2})(?:\s*(?:kr\.?|nok|sek|dkk|eur|,-))?$`)
)

// minusReplacer folds the dash variants OCR produces into an ASCII minus.
var minusReplacer = strings.NewReplacer("\u2212", "-", "\u2013", "-", "\u2014", "-", "\u00a0", " ")

// normalizeAmountText prepares a line for amount matching.
func normalizeAmountText(s string) string {
	s = minusReplacer.Replace(strings.TrimSpace(s))
	for {
		stripped := currencySuffixPattern.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	return s
}

// ParseAmount converts "4 349,00", "-599,00" or "120.599,33" to a non-negative
// decimal. The separator nearest the end is the decimal mark only when one or
// two digits follow it; every other '.', ',' or space is grouping. Anything
// unparseable yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = normalizeAmountText(s)
	s = strings.TrimLeft(s, "+- ")
	if s == "" {
		return decimal.Zero
	}

	intPart, frac := s, ""
	if last := strings.LastIndexAny(s, ".,"); last >= 0 {
		tail := s[last+1:]
		if (len(tail) == 1 || len(tail) == 2) && isDigits(tail) {
			intPart, frac = s[:last], tail
		}
	}

	digits := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' || r == ' ' {
			return -1
		}
		return r
	}, intPart)
	if digits == "" {
		digits = "0"
	}
	if !isDigits(digits) {
		return decimal.Zero
	}

	num := digits
	if frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

// isAmountLine reports whether the whole line is a single monetary amount.
func isAmountLine(line string) bool {
	s := normalizeAmountText(line)
	if isDateOnly(s) {
		return false
	}
	return groupedAmountPattern.MatchString(s) ||
		commaAmountPattern.MatchString(s) ||
		pointAmountPattern.MatchString(s) ||
		commaGroupedAmountPattern.MatchString(s)
}

// isDateOnly matches a day.month line with a plausible day and month.
func isDateOnly(line string) bool {
	_, ok := extractDateOnly(line)
	return ok
}

func extractDateOnly(line string) (string, bool) {
	m := dateOnlyPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimSpace(line), "."), true
}

// splitLeadingDate separates "20.08 Til: X" into "20.08" and "Til: X".
func splitLeadingDate(line string) (date, rest string, ok bool) {
	m := leadingDatePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	if _, valid := extractDateOnly(m[1]); !valid {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

func isAccountNumber(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	return accountNumberPattern.MatchString(s) || cardNumberPattern.MatchString(s)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
