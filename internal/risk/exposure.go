package risk

import (
	"sort"

	"trading-journal/internal/models"
)

// HighExposurePercent is the share of the daily loss limit at which open
// risk is flagged as high.
const HighExposurePercent = 70.0

// ExposureStatus is the band of open risk relative to the daily loss limit.
type ExposureStatus string

const (
	ExposureNoLimit  ExposureStatus = "No Limit"
	ExposureSafe     ExposureStatus = "Safe"
	ExposureHigh     ExposureStatus = "High Exposure"
	ExposureCritical ExposureStatus = "CRITICAL OVERLOAD"
)

// unknownAsset labels open trades recorded without an asset.
const unknownAsset = "Unknown"

// AssetConcentration is an asset held by more than one open position.
type AssetConcentration struct {
	Asset string `json:"asset"`
	Count int    `json:"count"`
}

// Exposure is the risk carried by the open (PENDING) trades.
type Exposure struct {
	OpenRisk       float64              `json:"openRisk"`
	OpenPositions  int                  `json:"openPositions"`
	Limit          float64              `json:"limit"`
	Percentage     float64              `json:"percentage"`
	Status         ExposureStatus       `json:"status"`
	Concentrations []AssetConcentration `json:"concentrations"`
}

// OpenExposure sums the risk of every pending live trade and compares it to
// the daily loss limit. Percentage is not capped at 100.
func OpenExposure(trades []models.Trade, settings models.Settings) Exposure {
	out := Exposure{
		Limit:          settings.DailyLossLimit,
		Status:         ExposureNoLimit,
		Concentrations: []AssetConcentration{},
	}

	counts := make(map[string]int)
	for _, t := range trades {
		if t.IsBacktest || !t.Result.IsPending() {
			continue
		}
		out.OpenRisk += t.Risk
		out.OpenPositions++

		asset := t.Asset
		if asset == "" {
			asset = unknownAsset
		}
		counts[asset]++
	}

	for asset, n := range counts {
		if n > 1 {
			out.Concentrations = append(out.Concentrations, AssetConcentration{Asset: asset, Count: n})
		}
	}
	sort.Slice(out.Concentrations, func(i, j int) bool {
		return out.Concentrations[i].Asset < out.Concentrations[j].Asset
	})

	if settings.DailyLossLimit <= 0 {
		return out
	}

	out.Percentage = out.OpenRisk / settings.DailyLossLimit * 100
	switch {
	case out.Percentage >= 100:
		out.Status = ExposureCritical
	case out.Percentage >= HighExposurePercent:
		out.Status = ExposureHigh
	default:
		out.Status = ExposureSafe
	}
	return out
}
