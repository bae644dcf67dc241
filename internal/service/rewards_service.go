package service

import (
	"taka/config"
	"taka/internal/domain"
	"taka/internal/models"

	"github.com/shopspring/decimal"
)

// Points per kilogram by material type.
var materialRates = map[string]int64{
	domain.MaterialPlastic: 10,
	domain.MaterialPaper:   5,
	domain.MaterialGlass:   8,
	domain.MaterialMetal:   15,
	domain.MaterialEwaste:  25,
	domain.MaterialOrganic: 2,
}

// Lifetime-points thresholds for tier upgrades.
var tierThresholds = []struct {
	points int64
	tier   string
}{
	{20000, domain.TierPlatinum},
	{5000, domain.TierGold},
	{1000, domain.TierSilver},
	{0, domain.TierBronze},
}

// RewardsService converts collected material weights into points and
// points into wallet money.
type RewardsService struct {
	pointsPerKES decimal.Decimal
}

func NewRewardsService(cfg config.RewardsConfig) *RewardsService {
	rate := decimal.NewFromFloat(cfg.PointsPerKES)
	if rate.LessThanOrEqual(decimal.Zero) {
		rate = decimal.NewFromInt(1)
	}
	return &RewardsService{pointsPerKES: rate}
}

// RateFor returns the points-per-kg rate for a material; unknown materials
// earn nothing.
func (s *RewardsService) RateFor(material string) int64 {
	return materialRates[material]
}

// PointsFor totals the points for a collection's material breakdown,
// rounding each line down to whole points.
func (s *RewardsService) PointsFor(materials []models.CollectionMaterial) int64 {
	var total int64
	for _, m := range materials {
		rate := decimal.NewFromInt(s.RateFor(m.Material))
		total += m.WeightKG.Mul(rate).IntPart()
	}
	return total
}

// AmountForPoints converts points to wallet currency.
func (s *RewardsService) AmountForPoints(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).DivRound(s.pointsPerKES, 2)
}

// TierFor returns the tier a wallet with the given lifetime points holds.
func (s *RewardsService) TierFor(points int64) string {
	for _, t := range tierThresholds {
		if points >= t.points {
			return t.tier
		}
	}
	return domain.TierBronze
}
