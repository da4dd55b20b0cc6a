// Package estimate turns fully populated jobs into deterministic
// (hours, rate, price) quotes using the catalog's formula parameters.
package estimate

import (
	"fmt"
	"math"
	"strconv"

	"verdebot/models"
	"verdebot/services/catalog"
)

// Estimator computes quotes. It is pure: no side effects, identical
// output for identical input.
type Estimator struct {
	Catalog catalog.Catalog
}

// EstimateJob computes the quote line for one complete job.
func (e Estimator) EstimateJob(job models.Job) (models.QuoteLine, error) {
	params, ok := e.Catalog.Services[job.Service]
	if !ok {
		return models.QuoteLine{}, fmt.Errorf("unknown service %q", job.Service)
	}
	if field, missing := e.Catalog.NextMissingField(job); missing {
		return models.QuoteLine{}, fmt.Errorf("job %s is incomplete: missing %s", job.Service, field)
	}

	base, err := e.baseHours(job)
	if err != nil {
		return models.QuoteLine{}, err
	}

	hours := base * e.accessFactor(job)
	if job.Get(models.FieldWaste) == "yes" {
		hours += e.Catalog.WasteExtra
	}
	if job.Get(models.FieldObstacles) == "yes" {
		hours += e.Catalog.ObstacleExtra
	}
	if job.Get(models.FieldParking) == "no" {
		hours += e.Catalog.ParkingExtra
	}
	if job.Service == models.ServiceLawnMow {
		if job.Get(models.FieldEdges) == "yes" {
			hours += e.Catalog.EdgesExtra
		}
		if job.Get(models.FieldSlope) == "yes" {
			hours += e.Catalog.SlopeExtra
		}
	}

	if hours < params.MinHours {
		hours = params.MinHours
	}
	hours = round1(hours)
	price := round2(hours * params.RatePerHour)

	return models.QuoteLine{
		Service: job.Service,
		Hours:   hours,
		Rate:    params.RatePerHour,
		Price:   price,
	}, nil
}

// EstimateAll computes per-job lines and the session aggregate.
func (e Estimator) EstimateAll(jobs []models.Job) (models.Quote, error) {
	lines := make([]models.QuoteLine, 0, len(jobs))
	for _, job := range jobs {
		line, err := e.EstimateJob(job)
		if err != nil {
			return models.Quote{}, err
		}
		lines = append(lines, line)
	}
	return Aggregate(lines), nil
}

// Aggregate sums already-rounded per-job values, re-rounding once so
// rounding error stays bounded to a single step per job.
func Aggregate(lines []models.QuoteLine) models.Quote {
	var hours, price float64
	for _, l := range lines {
		hours += l.Hours
		price += l.Price
	}
	return models.Quote{
		Lines:      lines,
		TotalHours: round1(hours),
		TotalPrice: round2(price),
	}
}

func (e Estimator) baseHours(job models.Job) (float64, error) {
	c := e.Catalog
	switch job.Service {
	case models.ServiceHedgeTrim:
		length := intAttr(job, models.FieldLengthM)
		mph := catalog.TierValue(c.HedgeMetersPerHour, floatAttr(job, models.FieldHeightM))
		if mph <= 0 {
			return 0, fmt.Errorf("hedge throughput not configured")
		}
		return length / mph, nil
	case models.ServiceTreePrune:
		unit := c.TreeUnitHours[job.Get(models.FieldSize)]
		return intAttr(job, models.FieldCount) * unit, nil
	case models.ServiceRopePrune:
		unit := catalog.TierValue(c.RopeUnitHours, floatAttr(job, models.FieldHeightM))
		return intAttr(job, models.FieldCount) * unit, nil
	case models.ServiceLawnMow:
		return intAttr(job, models.FieldAreaM2) / c.MowThroughputM2, nil
	case models.ServiceCleanup:
		return intAttr(job, models.FieldAreaM2) / c.CleanupThroughputM2, nil
	case models.ServiceLeafCollect:
		return intAttr(job, models.FieldAreaM2) / c.LeafThroughputM2, nil
	case models.ServicePestTreat:
		return c.PestBaseHours, nil
	case models.ServiceWasteDisposal:
		return c.DisposalBaseHours, nil
	}
	return 0, fmt.Errorf("no estimation formula for service %q", job.Service)
}

func (e Estimator) accessFactor(job models.Job) float64 {
	if f, ok := e.Catalog.AccessFactors[job.Get(models.FieldAccess)]; ok {
		return f
	}
	return 1.0
}

func intAttr(job models.Job, field string) float64 {
	n, _ := strconv.Atoi(job.Get(field))
	return float64(n)
}

func floatAttr(job models.Job, field string) float64 {
	f, _ := strconv.ParseFloat(job.Get(field), 64)
	return f
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
