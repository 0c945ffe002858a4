package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Profile describes the wording of one statement language.
type Profile struct {
	Locale   models.Locale
	Name     string
	Language language.Tag // casing rules for merchant names
	Outgoing []string // direction words for money leaving the account ("Til")
	Incoming []string // direction words for money arriving ("Fra")
	// Keywords that turn an outgoing transfer into savings.
	SavingsKeywords []string
	// Currency codes used only as a hint by DetectLocale.
	CurrencyHints []string
}

var profiles = map[models.Locale]*Profile{
	models.LocaleNorwegian: {
		Locale:   models.LocaleNorwegian,
		Language: language.Norwegian,
		Name:     "Norwegian",
		Outgoing: []string{"til"},
		Incoming: []string{"fra"},
		SavingsKeywords: []string{
			"sparing", "sparekonto", "spareavtale", "bsu", "fond", "aksje", "investering",
			"pensjon", "savings", "investment", "pension",
		},
		CurrencyHints: []string{"nok"},
	},
	models.LocaleSwedish: {
		Locale:   models.LocaleSwedish,
		Language: language.Swedish,
		Name:     "Swedish",
		Outgoing: []string{"till"},
		Incoming: []string{"från", "fran"},
		SavingsKeywords: []string{
			"sparande", "sparkonto", "fond", "aktie", "investering", "pension",
			"savings", "investment",
		},
		CurrencyHints: []string{"sek"},
	},
	models.LocaleDanish: {
		Locale:   models.LocaleDanish,
		Language: language.Danish,
		Name:     "Danish",
		Outgoing: []string{"til"},
		Incoming: []string{"fra"},
		SavingsKeywords: []string{
			"opsparing", "opsparingskonto", "pension", "investering", "aktie", "fond",
			"savings", "investment",
		},
		CurrencyHints: []string{"dkk"},
	},
	models.LocaleEnglish: {
		Locale:   models.LocaleEnglish,
		Language: language.English,
		Name:     "English",
		Outgoing: []string{"to"},
		Incoming: []string{"from"},
		SavingsKeywords: []string{
			"savings", "saving", "investment", "invest", "pension", "brokerage", "retirement",
		},
		CurrencyHints: []string{"eur", "usd", "gbp"},
	},
}

// detectionOrder breaks ties between profiles sharing direction words.
var detectionOrder = []models.Locale{
	models.LocaleNorwegian,
	models.LocaleSwedish,
	models.LocaleDanish,
	models.LocaleEnglish,
}

// ProfileFor returns the profile registered for a locale.
func ProfileFor(locale models.Locale) (*Profile, bool) {
	p, ok := profiles[locale]
	return p, ok
}

// Locales lists the supported locales in detection order.
func Locales() []models.Locale {
	out := make([]models.Locale, len(detectionOrder))
	copy(out, detectionOrder)
	return out
}

// descriptorPattern builds "<word>: <name>" for every direction word of the profile.
func (p *Profile) descriptorPattern() *regexp.Regexp {
	words := make([]string, 0, len(p.Outgoing)+len(p.Incoming))
	for _, w := range append(append([]string{}, p.Outgoing...), p.Incoming...) {
		words = append(words, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)^(` + strings.Join(words, "|") + `)\s*:\s*(.*)$`)
}

func (p *Profile) direction(word string) models.Direction {
	word = strings.ToLower(word)
	for _, w := range p.Incoming {
		if w == word {
			return models.Incoming
		}
	}
	return models.Outgoing
}

func (p *Profile) isSavings(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range p.SavingsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Direct payments show up as "<date> <service>" with no direction word.
// Payment apps, transit apps, utilities and municipal billers all default to
// outgoing.
var directPaymentPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(` +
	`vipps|mobilepay|swish|paypal|klarna|apple ?pay|google ?pay|bankaxept|` +
	`ruter|entur|atb|skyss|kolumbus|vy|skånetrafiken|` +
	`tibber|fjordkraft|hafslund|elvia|fortum|telenor|telia|` +
	`\p{L}+ kommune|\p{L}+ kommun|kemnerkontoret|skatteetaten` +
	`)(?:$|[^\p{L}])`)

func isDirectPayment(name string) bool {
	return directPaymentPattern.MatchString(name)
}

// DetectLocale picks the profile whose direction words (and currency codes)
// occur most often in the text. The second result is false when nothing
// recognisable was found.
func DetectLocale(text string) (models.Locale, bool) {
	lines := Segment(text)
	lower := strings.ToLower(text)

	best, bestScore := models.LocaleNorwegian, 0
	for _, locale := range detectionOrder {
		p := profiles[locale]
		re := p.descriptorPattern()
		score := 0
		for _, line := range lines {
			candidate := line.Text
			if _, rest, ok := splitLeadingDate(candidate); ok {
				candidate = rest
			}
			if re.MatchString(candidate) {
				score += 2
			}
		}
		for _, hint := range p.CurrencyHints {
			score += strings.Count(lower, hint)
		}
		if score > bestScore {
			best, bestScore = locale, score
		}
	}
	return best, bestScore > 0
}
