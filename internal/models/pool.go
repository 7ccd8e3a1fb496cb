package models

import (
	"errors"
	"time"
)

// ErrCapacityExceeded is returned by Increment when a category is full.
var ErrCapacityExceeded = errors.New("vacancy category at configured quota")

// VacancyPool is the capacity record for one (campus, edital, shift) scope.
// EditalID is nil for legacy campus-wide pools; Shift is empty for pools that
// cover a whole edital. Counters are plain non-negative ints from
// construction: a pool has no "unset" quota state.
//
// Counter mutations must be serialized per pool by the caller; the service
// layer holds a per-pool mutex around every check-then-mutate sequence.
type VacancyPool struct {
	ID       string  `db:"id" json:"id"`
	CampusID string  `db:"campus_id" json:"campus_id"`
	EditalID *string `db:"edital_id" json:"edital_id,omitempty"`
	Shift    *string `db:"shift" json:"shift,omitempty"`

	// Capacity is the explicitly configured total. When zero the total is
	// the sum of the category quotas.
	Capacity     int  `db:"capacity" json:"capacity"`
	DynamicSplit bool `db:"dynamic_split" json:"dynamic_split"`

	QuotaClassifiedMale   int `db:"quota_classified_m" json:"quota_classified_m"`
	QuotaClassifiedFemale int `db:"quota_classified_f" json:"quota_classified_f"`
	QuotaQualifiedMale    int `db:"quota_qualified_m" json:"quota_qualified_m"`
	QuotaQualifiedFemale  int `db:"quota_qualified_f" json:"quota_qualified_f"`
	QuotaReserved         int `db:"quota_reserved" json:"quota_reserved"`

	OccupiedClassifiedMale   int `db:"occupied_classified_m" json:"occupied_classified_m"`
	OccupiedClassifiedFemale int `db:"occupied_classified_f" json:"occupied_classified_f"`
	OccupiedQualifiedMale    int `db:"occupied_qualified_m" json:"occupied_qualified_m"`
	OccupiedQualifiedFemale  int `db:"occupied_qualified_f" json:"occupied_qualified_f"`
	OccupiedReserved         int `db:"occupied_reserved" json:"occupied_reserved"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Quota returns the configured quota for a category.
func (p *VacancyPool) Quota(cat VacancyCategory) int {
	switch cat {
	case CategoryClassifiedMale:
		return p.QuotaClassifiedMale
	case CategoryClassifiedFemale:
		return p.QuotaClassifiedFemale
	case CategoryQualifiedMale:
		return p.QuotaQualifiedMale
	case CategoryQualifiedFemale:
		return p.QuotaQualifiedFemale
	case CategoryReserved:
		return p.QuotaReserved
	}
	return 0
}

// Occupied returns the occupancy counter for a category.
func (p *VacancyPool) Occupied(cat VacancyCategory) int {
	switch cat {
	case CategoryClassifiedMale:
		return p.OccupiedClassifiedMale
	case CategoryClassifiedFemale:
		return p.OccupiedClassifiedFemale
	case CategoryQualifiedMale:
		return p.OccupiedQualifiedMale
	case CategoryQualifiedFemale:
		return p.OccupiedQualifiedFemale
	case CategoryReserved:
		return p.OccupiedReserved
	}
	return 0
}

func (p *VacancyPool) setOccupied(cat VacancyCategory, n int) {
	switch cat {
	case CategoryClassifiedMale:
		p.OccupiedClassifiedMale = n
	case CategoryClassifiedFemale:
		p.OccupiedClassifiedFemale = n
	case CategoryQualifiedMale:
		p.OccupiedQualifiedMale = n
	case CategoryQualifiedFemale:
		p.OccupiedQualifiedFemale = n
	case CategoryReserved:
		p.OccupiedReserved = n
	}
}

// SetQuota overwrites the configured quota for a category.
func (p *VacancyPool) SetQuota(cat VacancyCategory, n int) {
	if n < 0 {
		n = 0
	}
	switch cat {
	case CategoryClassifiedMale:
		p.QuotaClassifiedMale = n
	case CategoryClassifiedFemale:
		p.QuotaClassifiedFemale = n
	case CategoryQualifiedMale:
		p.QuotaQualifiedMale = n
	case CategoryQualifiedFemale:
		p.QuotaQualifiedFemale = n
	case CategoryReserved:
		p.QuotaReserved = n
	}
}

// Available returns quota minus occupancy for a category, floored at zero.
func (p *VacancyPool) Available(cat VacancyCategory) int {
	free := p.Quota(cat) - p.Occupied(cat)
	if free < 0 {
		return 0
	}
	return free
}

// HasAvailable reports whether at least one seat is free in the category.
func (p *VacancyPool) HasAvailable(cat VacancyCategory) bool {
	return p.Available(cat) > 0
}

// Increment occupies one seat in the category. It fails with
// ErrCapacityExceeded when occupancy already equals the quota so two
// concurrent grants can never push a counter past its quota.
func (p *VacancyPool) Increment(cat VacancyCategory) error {
	if p.Occupied(cat) >= p.Quota(cat) {
		return ErrCapacityExceeded
	}
	p.setOccupied(cat, p.Occupied(cat)+1)
	return nil
}

// Decrement releases one seat in the category. Releasing an already-empty
// category is a no-op and returns false; callers log it as a consistency
// warning since it points at a prior double release, not a caller mistake.
func (p *VacancyPool) Decrement(cat VacancyCategory) bool {
	if p.Occupied(cat) <= 0 {
		return false
	}
	p.setOccupied(cat, p.Occupied(cat)-1)
	return true
}

// TotalCapacity is the pool's total seat budget.
func (p *VacancyPool) TotalCapacity() int {
	if p.Capacity > 0 {
		return p.Capacity
	}
	total := 0
	for _, cat := range Categories() {
		total += p.Quota(cat)
	}
	return total
}

// TotalOccupied sums occupancy over every category.
func (p *VacancyPool) TotalOccupied() int {
	total := 0
	for _, cat := range Categories() {
		total += p.Occupied(cat)
	}
	return total
}

// Configured reports whether any capacity exists. A freshly auto-created pool
// has every quota at zero and must be configured before anyone gets a seat.
func (p *VacancyPool) Configured() bool {
	return p.TotalCapacity() > 0
}

// OccupancySnapshot is a read-only per-category view used by reporting.
type OccupancySnapshot struct {
	PoolID     string                       `json:"pool_id"`
	CampusID   string                       `json:"campus_id"`
	EditalID   *string                      `json:"edital_id,omitempty"`
	Shift      *string                      `json:"shift,omitempty"`
	Capacity   int                          `json:"capacity"`
	Occupied   int                          `json:"occupied"`
	Categories map[VacancyCategory]SeatView `json:"categories"`
}

// SeatView pairs quota and occupancy for one category.
type SeatView struct {
	Quota     int `json:"quota"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// Snapshot builds an OccupancySnapshot from the pool's current counters.
func (p *VacancyPool) Snapshot() OccupancySnapshot {
	snap := OccupancySnapshot{
		PoolID:     p.ID,
		CampusID:   p.CampusID,
		EditalID:   p.EditalID,
		Shift:      p.Shift,
		Capacity:   p.TotalCapacity(),
		Occupied:   p.TotalOccupied(),
		Categories: make(map[VacancyCategory]SeatView, 5),
	}
	for _, cat := range Categories() {
		snap.Categories[cat] = SeatView{
			Quota:     p.Quota(cat),
			Occupied:  p.Occupied(cat),
			Available: p.Available(cat),
		}
	}
	return snap
}
