package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

func detect(t *testing.T, locale models.Locale, text string) ([]*MerchantCandidate, *ledger) {
	t.Helper()
	lines := Segment(text)
	led := newLedger(lines)
	return mustNew(t, locale).detectMerchants(lines, led), led
}

func TestDetectMerchants(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []MerchantCandidate
	}{
		{
			name:  "full descriptor",
			lines: []string{"20.08 Til: Marco Caronte", "-4 500,00"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "20.08", Direction: models.Outgoing, Name: "Marco Caronte"}},
		},
		{
			name:  "split form anchors at the name line",
			lines: []string{"20.08", "Fra: AAS-JAKOBSEN TRONDHEIM"},
			want:  []MerchantCandidate{{LineIndex: 1, Date: "20.08", Direction: models.Incoming, Name: "AAS-JAKOBSEN TRONDHEIM"}},
		},
		{
			name:  "undated descriptor",
			lines: []string{"fra : Ola Nordmann"},
			want:  []MerchantCandidate{{LineIndex: 0, Direction: models.Incoming, Name: "Ola Nordmann"}},
		},
		{
			name:  "direct payment",
			lines: []string{"22.08 Ruter", "-39,00"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "22.08", Direction: models.Outgoing, Name: "Ruter"}},
		},
		{
			name:  "direct payment takes the name from the next descriptor",
			lines: []string{"21.08 Vipps", "Til: Kari Hansen", "-150,00"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "21.08", Direction: models.Outgoing, Name: "Kari Hansen"}},
		},
		{
			name:  "municipal biller",
			lines: []string{"01.09 Oslo kommune"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "01.09", Direction: models.Outgoing, Name: "Oslo kommune"}},
		},
		{
			name:  "account number repaired from a later descriptor",
			lines: []string{"20.08 Til: 1234 56 78901", "-250,00", "Til: Ola Nordmann"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "20.08", Direction: models.Outgoing, Name: "Ola Nordmann"}},
		},
		{
			name:  "account number repaired from a plain line",
			lines: []string{"20.08 Til: ****.**.12345", "Nordmann Eiendom AS", "-9 000,00"},
			want:  []MerchantCandidate{{LineIndex: 0, Date: "20.08", Direction: models.Outgoing, Name: "Nordmann Eiendom AS"}},
		},
		{
			name: "repair stops at a differently dated record",
			lines: []string{
				"20.08 Til: 1234 56 78901",
				"21.08 Til: Kiwi",
			},
			want: []MerchantCandidate{
				{LineIndex: 0, Date: "20.08", Direction: models.Outgoing, Name: "1234 56 78901"},
				{LineIndex: 1, Date: "21.08", Direction: models.Outgoing, Name: "Kiwi"},
			},
		},
		{
			name: "repair stops at a direct payment",
			lines: []string{
				"20.08 Til: 1234 56 78901",
				"-250,00",
				"20.08 Vipps",
				"-50,00",
			},
			want: []MerchantCandidate{
				{LineIndex: 0, Date: "20.08", Direction: models.Outgoing, Name: "1234 56 78901"},
				{LineIndex: 2, Date: "20.08", Direction: models.Outgoing, Name: "Vipps"},
			},
		},
		{
			name:  "amounts and noise are not merchants",
			lines: []string{"Saldo", "4 500,00", "20.08", "Betalt med kort"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detect(t, models.LocaleNorwegian, strings.Join(tt.lines, "\n"))
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], *got[i])
			}
		})
	}
}

func TestDetectMerchants_ConsumedLinesAreNotAmounts(t *testing.T) {
	lines := Segment("20.08 Til: 1234 56 78901\n-250,00\nTil: Ola Nordmann\n")
	led := newLedger(lines)
	p := mustNew(t, models.LocaleNorwegian)

	merchants := p.detectMerchants(lines, led)
	require.Len(t, merchants, 1)
	assert.True(t, led.consumed(0))
	assert.False(t, led.consumed(1))
	assert.True(t, led.consumed(2))

	amounts := detectAmounts(lines, led)
	require.Len(t, amounts, 1)
	assert.Equal(t, 1, amounts[0].LineIndex)
	assert.Equal(t, Negative, amounts[0].Sign)
}

func TestDetectMerchants_DiscoveryOrder(t *testing.T) {
	got, _ := detect(t, models.LocaleNorwegian, strings.Join(scenarioLines, "\n"))
	require.Len(t, got, 2)
	assert.Equal(t, "AAS-JAKOBSEN TRONDHEIM", got[0].Name)
	assert.Equal(t, "Marco Caronte", got[1].Name)
}

func TestDetectMerchants_Locale(t *testing.T) {
	got, _ := detect(t, models.LocaleSwedish, "20.08 Till: ICA Maxi\nFrån: Försäkringskassan")
	require.Len(t, got, 2)
	assert.Equal(t, models.Outgoing, got[0].Direction)
	assert.Equal(t, models.Incoming, got[1].Direction)

	// Norwegian words mean nothing to the Swedish profile
	got, _ = detect(t, models.LocaleSwedish, "20.08 Til: Kiwi")
	assert.Empty(t, got)
}
