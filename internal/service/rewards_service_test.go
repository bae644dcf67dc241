package service

import (
	"testing"

	"taka/config"
	"taka/internal/domain"
	"taka/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newRewards(t *testing.T) *RewardsService {
	t.Helper()
	return NewRewardsService(config.RewardsConfig{PointsPerKES: 1})
}

func TestPointsForMaterialBreakdown(t *testing.T) {
	s := newRewards(t)
	materials := []models.CollectionMaterial{
		{Material: domain.MaterialPlastic, WeightKG: decimal.RequireFromString("2.5")}, // 25
		{Material: domain.MaterialMetal, WeightKG: decimal.RequireFromString("1.0")},  // 15
		{Material: domain.MaterialOrganic, WeightKG: decimal.RequireFromString("0.4")}, // 0.8 -> 0
		{Material: "unknown", WeightKG: decimal.RequireFromString("10")},              // 0
	}
	assert.Equal(t, int64(40), s.PointsFor(materials))
}

func TestTierBoundaries(t *testing.T) {
	s := newRewards(t)
	cases := []struct {
		points int64
		want   string
	}{
		{0, domain.TierBronze},
		{999, domain.TierBronze},
		{1000, domain.TierSilver},
		{4999, domain.TierSilver},
		{5000, domain.TierGold},
		{19999, domain.TierGold},
		{20000, domain.TierPlatinum},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, s.TierFor(c.points), "points=%d", c.points)
	}
}

func TestAmountForPoints(t *testing.T) {
	s := NewRewardsService(config.RewardsConfig{PointsPerKES: 2})
	assert.True(t, s.AmountForPoints(100).Equal(decimal.RequireFromString("50")))

	// Zero or negative config falls back to 1:1.
	s = NewRewardsService(config.RewardsConfig{PointsPerKES: 0})
	assert.True(t, s.AmountForPoints(100).Equal(decimal.RequireFromString("100")))
}
