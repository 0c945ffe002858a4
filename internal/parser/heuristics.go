package parser

import "fmt"

// Heuristics holds the empirically tuned windows and score deltas used when
// pairing merchants with amounts. They are locale dependent in practice, so
// they are data rather than literals in the matcher.
type Heuristics struct {
	// Outgoing descriptors only look this many lines away for a negative amount.
	OutgoingWindow int `mapstructure:"outgoing_window" yaml:"outgoing_window"`
	// Incoming descriptors score positive amounts within this many lines.
	IncomingWindow int `mapstructure:"incoming_window" yaml:"incoming_window"`
	// Nearest positive amount fallback when nothing scored high enough.
	FallbackWindow int `mapstructure:"fallback_window" yaml:"fallback_window"`
	// Lines searched after an account-number name for a real one.
	RefineLookahead int `mapstructure:"refine_lookahead" yaml:"refine_lookahead"`

	BaseScore    int `mapstructure:"base_score" yaml:"base_score"`
	MinScore     int `mapstructure:"min_score" yaml:"min_score"`
	NearDistance int `mapstructure:"near_distance" yaml:"near_distance"`
	NearBonus    int `mapstructure:"near_bonus" yaml:"near_bonus"`

	// Balance sequence rejection.
	BalanceDistance      int     `mapstructure:"balance_distance" yaml:"balance_distance"`
	BalanceRelTolerance  float64 `mapstructure:"balance_rel_tolerance" yaml:"balance_rel_tolerance"`
	BalanceAbsTolerance  float64 `mapstructure:"balance_abs_tolerance" yaml:"balance_abs_tolerance"`
	BalanceAbsoluteAbove float64 `mapstructure:"balance_absolute_above" yaml:"balance_absolute_above"`
	BalancePenalty       int     `mapstructure:"balance_penalty" yaml:"balance_penalty"`
	SequenceBonus        int     `mapstructure:"sequence_bonus" yaml:"sequence_bonus"`

	// Magnitude adjustments.
	SmallAmount  float64 `mapstructure:"small_amount" yaml:"small_amount"`
	SmallBonus   int     `mapstructure:"small_bonus" yaml:"small_bonus"`
	MediumAmount float64 `mapstructure:"medium_amount" yaml:"medium_amount"`
	MediumBonus  int     `mapstructure:"medium_bonus" yaml:"medium_bonus"`
	LargeAmount  float64 `mapstructure:"large_amount" yaml:"large_amount"`
	LargePenalty int     `mapstructure:"large_penalty" yaml:"large_penalty"`
	RoundAmount  float64 `mapstructure:"round_amount" yaml:"round_amount"`
	// Amounts above RoundAmount divisible by RoundMultiple look like balances.
	RoundMultiple float64 `mapstructure:"round_multiple" yaml:"round_multiple"`
	RoundPenalty  int     `mapstructure:"round_penalty" yaml:"round_penalty"`
	MaxAmount     float64 `mapstructure:"max_amount" yaml:"max_amount"`

	// Merchant names longer than this keep only their first MerchantWords tokens.
	MaxMerchantLength int `mapstructure:"max_merchant_length" yaml:"max_merchant_length"`
	MerchantWords     int `mapstructure:"merchant_words" yaml:"merchant_words"`
}

// DefaultHeuristics returns the values tuned against Nordic statement photos.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		OutgoingWindow:  6,
		IncomingWindow:  20,
		FallbackWindow:  10,
		RefineLookahead: 3,

		BaseScore:    100,
		MinScore:     50,
		NearDistance: 3,
		NearBonus:    20,

		BalanceDistance:      3,
		BalanceRelTolerance:  0.01,
		BalanceAbsTolerance:  100,
		BalanceAbsoluteAbove: 10000,
		BalancePenalty:       90,
		SequenceBonus:        10,

		SmallAmount:   1000,
		SmallBonus:    30,
		MediumAmount:  5000,
		MediumBonus:   15,
		LargeAmount:   10000,
		LargePenalty:  20,
		RoundAmount:   50000,
		RoundMultiple: 100,
		RoundPenalty:  20,
		MaxAmount:     500000,

		MaxMerchantLength: 25,
		MerchantWords:     3,
	}
}

// Validate rejects settings the matcher cannot work with.
func (h Heuristics) Validate() error {
	if h.OutgoingWindow < 1 || h.IncomingWindow < 1 || h.FallbackWindow < 1 {
		return fmt.Errorf("search windows must be positive (outgoing=%d incoming=%d fallback=%d)",
			h.OutgoingWindow, h.IncomingWindow, h.FallbackWindow)
	}
	if h.RefineLookahead < 0 {
		return fmt.Errorf("refine_lookahead must not be negative, got %d", h.RefineLookahead)
	}
	if h.BalanceRelTolerance < 0 || h.BalanceAbsTolerance < 0 {
		return fmt.Errorf("balance tolerances must not be negative")
	}
	if h.RoundMultiple <= 0 {
		return fmt.Errorf("round_multiple must be positive, got %v", h.RoundMultiple)
	}
	if h.MaxAmount <= 0 {
		return fmt.Errorf("max_amount must be positive, got %v", h.MaxAmount)
	}
	if h.MaxMerchantLength < 1 || h.MerchantWords < 1 {
		return fmt.Errorf("merchant truncation settings must be positive")
	}
	return nil
}
