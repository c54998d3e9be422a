package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFraudIndicatorsCounter(t *testing.T) {
	before := testutil.ToFloat64(FraudIndicators.WithLabelValues("duplicate_vin", "high"))
	FraudIndicators.WithLabelValues("duplicate_vin", "high").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FraudIndicators.WithLabelValues("duplicate_vin", "high")))
}

func TestCarSearchesCounter(t *testing.T) {
	before := testutil.ToFloat64(CarSearches.WithLabelValues("geo"))
	CarSearches.WithLabelValues("geo").Inc()
	CarSearches.WithLabelValues("standard").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CarSearches.WithLabelValues("geo")))
}
