// Package catalog defines the fixed service catalog: hourly rates,
// estimation formula parameters, and the per-service field checklist a
// job must satisfy before it can be quoted.
package catalog

import "verdebot/models"

// HeightTier maps a maximum height in meters to a tier value. Tiers are
// evaluated in order; the last tier's value applies above all maxima.
type HeightTier struct {
	MaxHeightM float64
	Value      float64
}

// ServiceParams holds the rate and quoting floor for one service.
type ServiceParams struct {
	RatePerHour float64
	MinHours    float64
}

// Catalog is the injected pricing/estimation configuration. No package
// in this repo reads these numbers from globals.
type Catalog struct {
	Services map[models.ServiceType]ServiceParams

	// Hedge trimming throughput in meters of hedge per hour, slower as
	// the hedge grows taller.
	HedgeMetersPerHour []HeightTier
	// Per-tree pruning hours keyed by size enum value.
	TreeUnitHours map[string]float64
	// Per-tree rope-access pruning hours by height tier.
	RopeUnitHours []HeightTier

	// Area throughputs in square meters per hour.
	MowThroughputM2     float64
	CleanupThroughputM2 float64
	LeafThroughputM2    float64

	// Fixed base hours.
	PestBaseHours     float64
	DisposalBaseHours float64

	// Modifiers. Access multiplies the base; the rest add fixed hours
	// when the triggering attribute value is present.
	AccessFactors map[string]float64
	WasteExtra    float64
	ObstacleExtra float64
	ParkingExtra  float64
	EdgesExtra    float64
	SlopeExtra    float64

	// Sanity ceiling for height answers, to avoid mistaking a hedge
	// length for a height.
	HeightCeilingM float64
}

// Default returns the production catalog.
func Default() Catalog {
	return Catalog{
		Services: map[models.ServiceType]ServiceParams{
			models.ServiceLawnMow:       {RatePerHour: 25, MinHours: 1.0},
			models.ServiceHedgeTrim:     {RatePerHour: 30, MinHours: 1.0},
			models.ServiceTreePrune:     {RatePerHour: 35, MinHours: 1.0},
			models.ServiceRopePrune:     {RatePerHour: 60, MinHours: 2.0},
			models.ServicePestTreat:     {RatePerHour: 40, MinHours: 1.0},
			models.ServiceCleanup:       {RatePerHour: 28, MinHours: 1.0},
			models.ServiceLeafCollect:   {RatePerHour: 22, MinHours: 1.0},
			models.ServiceWasteDisposal: {RatePerHour: 30, MinHours: 1.0},
		},
		HedgeMetersPerHour: []HeightTier{
			{MaxHeightM: 1.5, Value: 12},
			{MaxHeightM: 2.5, Value: 9},
			{MaxHeightM: 0, Value: 6},
		},
		TreeUnitHours: map[string]float64{
			"small":  0.6,
			"medium": 1.2,
			"large":  2.0,
		},
		RopeUnitHours: []HeightTier{
			{MaxHeightM: 8, Value: 2.5},
			{MaxHeightM: 15, Value: 4.0},
			{MaxHeightM: 0, Value: 6.0},
		},
		MowThroughputM2:     350,
		CleanupThroughputM2: 100,
		LeafThroughputM2:    250,
		PestBaseHours:       1.5,
		DisposalBaseHours:   1.0,
		AccessFactors: map[string]float64{
			"easy":   1.0,
			"medium": 1.15,
			"hard":   1.35,
		},
		WasteExtra:     0.8,
		ObstacleExtra:  0.5,
		ParkingExtra:   0.3,
		EdgesExtra:     0.4,
		SlopeExtra:     0.3,
		HeightCeilingM: 30,
	}
}

// TierValue resolves a height against ordered tiers. A tier with
// MaxHeightM == 0 is the open-ended top tier.
func TierValue(tiers []HeightTier, height float64) float64 {
	for _, t := range tiers {
		if t.MaxHeightM > 0 && height <= t.MaxHeightM {
			return t.Value
		}
	}
	if len(tiers) == 0 {
		return 0
	}
	return tiers[len(tiers)-1].Value
}

// Known reports whether the service is part of the catalog.
func (c Catalog) Known(service models.ServiceType) bool {
	_, ok := c.Services[service]
	return ok
}
