package fraud

import (
	"testing"
	"time"

	"github.com/richxcame/carmarket/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestEvaluatePrice(t *testing.T) {
	cfg := config.DefaultFraudConfig()
	market := &MarketStats{Average: 800000, Samples: 5}

	tests := []struct {
		name     string
		price    float64
		stats    *MarketStats
		wantType IndicatorType
		wantSev  Severity
		wantOK   bool
	}{
		{"far below market", 350000, market, IndicatorPriceOutlierLow, SeverityHigh, true},
		{"near market", 780000, market, "", "", false},
		{"exactly half", 400000, market, "", "", false},
		{"far above market", 2500000, market, IndicatorPriceOutlierHigh, SeverityMedium, true},
		{"too few samples", 100000, &MarketStats{Average: 800000, Samples: 2}, "", "", false},
		{"no market data", 100000, nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotSev, ok := EvaluatePrice(tt.price, tt.stats, cfg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantSev, gotSev)
		})
	}
}

func TestPriceRange(t *testing.T) {
	lo, hi := PriceRange(1000000, 0.02)
	assert.InDelta(t, 980000, lo, 0.001)
	assert.InDelta(t, 1020000, hi, 0.001)
}

func TestComputeReputation(t *testing.T) {
	cfg := config.DefaultFraudConfig()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("new unverified account", func(t *testing.T) {
		score, b := ComputeReputation(ReputationInputs{AccountCreatedAt: now}, now, cfg)
		assert.Equal(t, 50.0, score)
		assert.Equal(t, 50.0, b.Base)
		assert.Zero(t, b.AccountAge)
	})

	t.Run("established dealer", func(t *testing.T) {
		in := ReputationInputs{
			EmailVerified:    true,
			IdentityVerified: true,
			BusinessVerified: true,
			AverageRating:    4.5,
			ReviewCount:      25,
			ActiveListings:   20,
			ResponseRate:     0.8,
			AccountCreatedAt: now.AddDate(-2, 0, 0),
			IndicatorCount:   1,
		}
		score, b := ComputeReputation(in, now, cfg)

		assert.Equal(t, 35.0, b.Verification)
		assert.InDelta(t, 18.0, b.Rating, 0.001)
		assert.InDelta(t, 7.5, b.Reviews, 0.001)
		assert.Equal(t, 10.0, b.Listings)
		assert.InDelta(t, 8.0, b.ResponseRate, 0.001)
		assert.Equal(t, 10.0, b.AccountAge)
		assert.Equal(t, -5.0, b.FraudPenalty)
		// 50 + 35 + 18 + 7.5 + 10 + 8 + 10 - 5 = 133.5, clamped
		assert.Equal(t, 100.0, score)
	})

	t.Run("many indicators floor at zero", func(t *testing.T) {
		score, _ := ComputeReputation(ReputationInputs{IndicatorCount: 30, AccountCreatedAt: now}, now, cfg)
		assert.Equal(t, 0.0, score)
	})

	t.Run("out of range inputs are bounded", func(t *testing.T) {
		_, b := ComputeReputation(ReputationInputs{AverageRating: 9, ResponseRate: 3, AccountCreatedAt: now}, now, cfg)
		assert.Equal(t, 20.0, b.Rating)
		assert.Equal(t, 10.0, b.ResponseRate)
	})
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  ReputationLevel
	}{
		{100, LevelExcellent},
		{90, LevelExcellent},
		{89.9, LevelGood},
		{75, LevelGood},
		{50, LevelAverage},
		{25, LevelPoor},
		{24.9, LevelVeryPoor},
		{0, LevelVeryPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %v", tt.score)
	}
}

func TestTrustScore(t *testing.T) {
	assert.Equal(t, 5.0, TrustScore(100))
	assert.Equal(t, 2.5, TrustScore(50))
	assert.Equal(t, 3.7, TrustScore(74))
	assert.Equal(t, 0.0, TrustScore(0))
}
