package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/seletivo-api/internal/models"
)

func TestSplitQuotasTypicalPool(t *testing.T) {
	// 10 seats, 8 classified candidates of which 1 female, 4 qualified split
	// evenly: the female floor of 2 is partially filled by the single female
	// candidate and everything left after the tiers is zero.
	comp := PoolComposition{
		ClassifiedTotal:      8,
		ClassifiedFemale:     1,
		QualifiedTotal:       4,
		QualifiedFemale:      2,
		QualifiedGenderKnown: true,
	}

	split := SplitQuotas(10, 0, comp, 0.2)

	assert.Equal(t, 1, split.ClassifiedFemale)
	assert.Equal(t, 7, split.ClassifiedMale)
	assert.Equal(t, 1, split.QualifiedFemale)
	assert.Equal(t, 1, split.QualifiedMale)
	assert.Equal(t, 0, split.Reserved)
	assert.Equal(t, 10, split.Total())
}

func TestSplitQuotasConfiguredFemaleQuotaWins(t *testing.T) {
	// An explicitly configured female quota above the percentage floor is
	// honoured as long as candidates exist to fill it.
	comp := PoolComposition{
		ClassifiedTotal:      20,
		ClassifiedFemale:     10,
		QualifiedGenderKnown: true,
	}

	split := SplitQuotas(10, 4, comp, 0.2)

	assert.Equal(t, 4, split.ClassifiedFemale)
	assert.Equal(t, 6, split.ClassifiedMale)
	assert.Equal(t, 10, split.Total())
}

func TestSplitQuotasOverflowGoesToReserve(t *testing.T) {
	// Fewer candidates than seats: leftover capacity lands in the reserve.
	comp := PoolComposition{
		ClassifiedTotal:      3,
		ClassifiedFemale:     1,
		QualifiedTotal:       1,
		QualifiedFemale:      0,
		QualifiedGenderKnown: true,
	}

	split := SplitQuotas(10, 0, comp, 0.2)

	assert.Equal(t, 1, split.ClassifiedFemale)
	assert.Equal(t, 2, split.ClassifiedMale)
	assert.Equal(t, 0, split.QualifiedFemale)
	assert.Equal(t, 1, split.QualifiedMale)
	assert.Equal(t, 6, split.Reserved)
	assert.Equal(t, 10, split.Total())
}

func TestSplitQuotasUnknownQualifiedMixAssumesEvenSplit(t *testing.T) {
	comp := PoolComposition{
		ClassifiedTotal:      0,
		QualifiedTotal:       4,
		QualifiedGenderKnown: false,
	}

	split := SplitQuotas(4, 0, comp, 0.2)

	assert.Equal(t, 2, split.QualifiedFemale)
	assert.Equal(t, 2, split.QualifiedMale)
	assert.Equal(t, 4, split.Total())
}

func TestSplitQuotasZeroTotal(t *testing.T) {
	split := SplitQuotas(0, 5, PoolComposition{ClassifiedTotal: 10}, 0.2)
	assert.Equal(t, QuotaSplit{}, split)
}

func TestSplitQuotasAlwaysSumsToTotal(t *testing.T) {
	comps := []PoolComposition{
		{},
		{ClassifiedTotal: 1, ClassifiedFemale: 1},
		{ClassifiedTotal: 50, ClassifiedFemale: 25, QualifiedTotal: 30, QualifiedFemale: 10, QualifiedGenderKnown: true},
		{ClassifiedTotal: 2, QualifiedTotal: 7},
	}
	for total := 1; total <= 25; total++ {
		for _, comp := range comps {
			split := SplitQuotas(total, 3, comp, 0.2)
			assert.Equal(t, total, split.Total(), "total=%d comp=%+v", total, comp)
		}
	}
}

func TestCompositionOfCountsPendingAsClassified(t *testing.T) {
	category := models.CategoryClassifiedMale
	candidates := []models.Candidate{
		{Status: models.StatusPending, Gender: models.GenderFemale},
		{Status: models.StatusClassified, Gender: models.GenderMale, Category: &category},
		{Status: models.StatusQualified, Gender: models.GenderFemale},
		{Status: models.StatusEliminated, Gender: models.GenderFemale},
	}

	comp := CompositionOf(candidates)

	assert.Equal(t, 2, comp.ClassifiedTotal)
	assert.Equal(t, 1, comp.ClassifiedFemale)
	assert.Equal(t, 1, comp.QualifiedTotal)
	assert.Equal(t, 1, comp.QualifiedFemale)
	assert.True(t, comp.QualifiedGenderKnown)
}

func TestQuotaSplitApply(t *testing.T) {
	pool := &models.VacancyPool{}
	QuotaSplit{ClassifiedMale: 3, ClassifiedFemale: 2, QualifiedMale: 1, QualifiedFemale: 1, Reserved: 3}.Apply(pool)

	assert.Equal(t, 3, pool.Quota(models.CategoryClassifiedMale))
	assert.Equal(t, 2, pool.Quota(models.CategoryClassifiedFemale))
	assert.Equal(t, 1, pool.Quota(models.CategoryQualifiedMale))
	assert.Equal(t, 1, pool.Quota(models.CategoryQualifiedFemale))
	assert.Equal(t, 3, pool.Quota(models.CategoryReserved))
	assert.Equal(t, 10, pool.TotalCapacity())
}
