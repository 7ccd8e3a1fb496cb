package service

import (
	"math"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// DefaultFemaleFloorRatio is the legally mandated minimum share of a pool's
// total capacity reserved for female classified candidates.
const DefaultFemaleFloorRatio = 0.2

// PoolComposition carries the candidate population counts a split is derived
// from. Pending candidates are provisionally ranked into the classified tier.
type PoolComposition struct {
	ClassifiedTotal  int
	ClassifiedFemale int
	QualifiedTotal   int
	QualifiedFemale  int
	// QualifiedGenderKnown is false when the qualified tier's gender split
	// was not observed; the splitter then assumes an even split.
	QualifiedGenderKnown bool
}

// QuotaSplit is the per-category quota vector produced by SplitQuotas. The
// categories always sum to the total capacity handed in.
type QuotaSplit struct {
	ClassifiedMale   int
	ClassifiedFemale int
	QualifiedMale    int
	QualifiedFemale  int
	Reserved         int
}

// Total sums every category of the split.
func (s QuotaSplit) Total() int {
	return s.ClassifiedMale + s.ClassifiedFemale + s.QualifiedMale + s.QualifiedFemale + s.Reserved
}

// Apply overwrites the pool's category quotas with the split.
func (s QuotaSplit) Apply(pool *models.VacancyPool) {
	pool.SetQuota(models.CategoryClassifiedMale, s.ClassifiedMale)
	pool.SetQuota(models.CategoryClassifiedFemale, s.ClassifiedFemale)
	pool.SetQuota(models.CategoryQualifiedMale, s.QualifiedMale)
	pool.SetQuota(models.CategoryQualifiedFemale, s.QualifiedFemale)
	pool.SetQuota(models.CategoryReserved, s.Reserved)
}

// SplitQuotas divides a pool's total capacity across the five categories
// given the composition of the candidate pool.
//
// The female floor is max(configuredFemaleQuota, ceil(total*floorRatio)),
// capped by the number of female classified candidates (a quota can never
// demand candidates that do not exist) and by the total. Capacity left after
// the classified tier is split across the qualified categories proportionally
// to the tier's observed gender mix, and whatever remains becomes the
// reserve/waitlist quota, so the vector always sums to the total.
func SplitQuotas(total, configuredFemaleQuota int, comp PoolComposition, floorRatio float64) QuotaSplit {
	if total <= 0 {
		return QuotaSplit{}
	}
	if floorRatio <= 0 || floorRatio > 1 {
		floorRatio = DefaultFemaleFloorRatio
	}

	femaleFloor := int(math.Ceil(float64(total) * floorRatio))
	if configuredFemaleQuota > femaleFloor {
		femaleFloor = configuredFemaleQuota
	}
	if femaleFloor > comp.ClassifiedTotal {
		femaleFloor = comp.ClassifiedTotal
	}
	if femaleFloor > total {
		femaleFloor = total
	}

	// Partial fill: never invent candidates the tier does not have.
	classifiedFemale := femaleFloor
	if comp.ClassifiedFemale < classifiedFemale {
		classifiedFemale = comp.ClassifiedFemale
	}

	classifiedMaleCandidates := comp.ClassifiedTotal - comp.ClassifiedFemale
	classifiedMale := min(classifiedMaleCandidates, total-classifiedFemale)
	if classifiedMale < 0 {
		classifiedMale = 0
	}

	remaining := total - classifiedFemale - classifiedMale
	if remaining < 0 {
		remaining = 0
	}

	qualifiedFemale, qualifiedMale := 0, 0
	if remaining > 0 && comp.QualifiedTotal > 0 {
		femaleObserved := comp.QualifiedFemale
		if !comp.QualifiedGenderKnown {
			femaleObserved = comp.QualifiedTotal / 2
		}
		maleObserved := comp.QualifiedTotal - femaleObserved

		qualifiedFemale = min(remaining*femaleObserved/comp.QualifiedTotal, femaleObserved)
		qualifiedFemale = min(qualifiedFemale, remaining)
		qualifiedMale = min(remaining-qualifiedFemale, maleObserved)
	}

	reserved := total - classifiedFemale - classifiedMale - qualifiedFemale - qualifiedMale
	if reserved < 0 {
		reserved = 0
	}

	return QuotaSplit{
		ClassifiedMale:   classifiedMale,
		ClassifiedFemale: classifiedFemale,
		QualifiedMale:    qualifiedMale,
		QualifiedFemale:  qualifiedFemale,
		Reserved:         reserved,
	}
}

// CompositionOf counts the tier membership of a candidate list. Eliminated
// candidates do not count; pending candidates are provisionally ranked into
// the classified tier so a bumped candidate keeps competing from the top.
func CompositionOf(candidates []models.Candidate) PoolComposition {
	comp := PoolComposition{QualifiedGenderKnown: true}
	for i := range candidates {
		c := &candidates[i]
		switch c.Status {
		case models.StatusClassified, models.StatusPending:
			comp.ClassifiedTotal++
			if c.Gender == models.GenderFemale {
				comp.ClassifiedFemale++
			}
		case models.StatusQualified:
			comp.QualifiedTotal++
			if c.Gender == models.GenderFemale {
				comp.QualifiedFemale++
			}
		}
	}
	return comp
}
