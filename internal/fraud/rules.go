package fraud

import (
	"math"
	"time"

	"github.com/richxcame/carmarket/pkg/config"
)

// PriceRange returns the inclusive price band considered "the same price"
func PriceRange(price, tolerance float64) (float64, float64) {
	return price * (1 - tolerance), price * (1 + tolerance)
}

// EvaluatePrice classifies price against the market average. ok is false
// when there are too few samples or the price is within the normal band.
func EvaluatePrice(price float64, stats *MarketStats, cfg config.FraudConfig) (IndicatorType, Severity, bool) {
	if stats == nil || stats.Samples < cfg.MarketMinSamples || stats.Average <= 0 {
		return "", "", false
	}
	switch {
	case price < stats.Average*cfg.LowPriceRatio:
		return IndicatorPriceOutlierLow, SeverityHigh, true
	case price > stats.Average*cfg.HighPriceRatio:
		return IndicatorPriceOutlierHigh, SeverityMedium, true
	}
	return "", "", false
}

// ComputeReputation scores an account on a 0-100 scale
func ComputeReputation(in ReputationInputs, now time.Time, cfg config.FraudConfig) (float64, ReputationBreakdown) {
	b := ReputationBreakdown{Base: 50}

	if in.EmailVerified {
		b.Verification += 10
	}
	if in.IdentityVerified {
		b.Verification += 15
	}
	if in.BusinessVerified {
		b.Verification += 10
	}

	if in.AverageRating > 0 {
		b.Rating = math.Min(in.AverageRating, 5) / 5 * 20
	}
	b.Reviews = math.Min(float64(in.ReviewCount)/50, 1) * 15
	b.Listings = math.Min(float64(in.ActiveListings)/10, 1) * 10
	b.ResponseRate = clamp(in.ResponseRate, 0, 1) * 10

	if !in.AccountCreatedAt.IsZero() && now.After(in.AccountCreatedAt) {
		days := now.Sub(in.AccountCreatedAt).Hours() / 24
		b.AccountAge = math.Min(days/365, 1) * 10
	}

	b.FraudPenalty = -float64(in.IndicatorCount) * cfg.ReputationIndicatorHit

	score := b.Base + b.Verification + b.Rating + b.Reviews + b.Listings + b.ResponseRate + b.AccountAge + b.FraudPenalty
	return clamp(score, 0, 100), b
}

// LevelForScore maps a reputation score to its level
func LevelForScore(score float64) ReputationLevel {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 50:
		return LevelAverage
	case score >= 25:
		return LevelPoor
	default:
		return LevelVeryPoor
	}
}

// TrustScore maps a 0-100 score to 0-5
func TrustScore(score float64) float64 {
	return math.Round(score/20*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
