package models

import (
	"strings"
	"time"
)

// Gender is the tracked gender of a candidate. Anything the import cannot
// recognise is stored as unknown and competes in the male sub-quota, matching
// the selection rules (the floor protects female representation only).
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "U"
)

// ParseGender maps free-form spreadsheet values onto a Gender.
func ParseGender(raw string) Gender {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F", "FEMININO", "FEMALE":
		return GenderFemale
	case "M", "MASCULINO", "MALE":
		return GenderMale
	default:
		return GenderUnknown
	}
}

// CandidateStatus represents the candidate's place in the selection process.
type CandidateStatus string

const (
	StatusPending    CandidateStatus = "PENDING"
	StatusClassified CandidateStatus = "CLASSIFIED"
	StatusQualified  CandidateStatus = "QUALIFIED"
	StatusReserved   CandidateStatus = "RESERVED"
	StatusEliminated CandidateStatus = "ELIMINATED"
)

// Seated reports whether the status corresponds to an occupied vacancy.
// The data invariant is: Category != nil exactly when Seated() is true.
func (s CandidateStatus) Seated() bool {
	switch s {
	case StatusClassified, StatusQualified, StatusReserved:
		return true
	}
	return false
}

// VacancyCategory is the canonical seat category taxonomy. Earlier revisions
// of the selection rules used several incompatible enumerations (gendered
// tiers, legacy reserved vs open competition, cadastro-reserva); legacy values
// are migrated onto this set at the import boundary.
type VacancyCategory string

const (
	CategoryClassifiedMale   VacancyCategory = "CLASSIFIED_M"
	CategoryClassifiedFemale VacancyCategory = "CLASSIFIED_F"
	CategoryQualifiedMale    VacancyCategory = "QUALIFIED_M"
	CategoryQualifiedFemale  VacancyCategory = "QUALIFIED_F"
	CategoryReserved         VacancyCategory = "RESERVED"
)

// Categories lists every category in tier order.
func Categories() []VacancyCategory {
	return []VacancyCategory{
		CategoryClassifiedMale,
		CategoryClassifiedFemale,
		CategoryQualifiedMale,
		CategoryQualifiedFemale,
		CategoryReserved,
	}
}

// IsClassified reports whether the category belongs to the top tier.
func (c VacancyCategory) IsClassified() bool {
	return c == CategoryClassifiedMale || c == CategoryClassifiedFemale
}

// IsQualified reports whether the category belongs to the second tier.
func (c VacancyCategory) IsQualified() bool {
	return c == CategoryQualifiedMale || c == CategoryQualifiedFemale
}

// IsReserved reports whether the category is the overflow/waitlist tier.
func (c VacancyCategory) IsReserved() bool {
	return c == CategoryReserved
}

// GenderOf returns the gender track a category competes in. Reserved is not
// gendered and returns GenderUnknown.
func (c VacancyCategory) GenderOf() Gender {
	switch c {
	case CategoryClassifiedFemale, CategoryQualifiedFemale:
		return GenderFemale
	case CategoryClassifiedMale, CategoryQualifiedMale:
		return GenderMale
	}
	return GenderUnknown
}

// ClassifiedFor returns the classified category for a gender track.
func ClassifiedFor(g Gender) VacancyCategory {
	if g == GenderFemale {
		return CategoryClassifiedFemale
	}
	return CategoryClassifiedMale
}

// QualifiedFor returns the qualified category for a gender track.
func QualifiedFor(g Gender) VacancyCategory {
	if g == GenderFemale {
		return CategoryQualifiedFemale
	}
	return CategoryQualifiedMale
}

// StatusForCategory returns the status matching the tier a seat belongs to.
func StatusForCategory(c VacancyCategory) CandidateStatus {
	switch {
	case c.IsClassified():
		return StatusClassified
	case c.IsQualified():
		return StatusQualified
	default:
		return StatusReserved
	}
}

// Candidate is a registrant in a selection process. The vacancy pool is not a
// foreign key here: it is derived from (campus, edital, shift) at the moment
// of each operation.
type Candidate struct {
	ID               string          `db:"id" json:"id"`
	FullName         string          `db:"full_name" json:"full_name"`
	CPF              string          `db:"cpf" json:"cpf"`
	BirthDate        *time.Time      `db:"birth_date" json:"birth_date,omitempty"`
	CampusID         string          `db:"campus_id" json:"campus_id"`
	EditalID         *string         `db:"edital_id" json:"edital_id,omitempty"`
	Shift            string          `db:"shift" json:"shift"`
	Gender           Gender          `db:"gender" json:"gender"`
	RegistrationDate time.Time       `db:"registration_date" json:"registration_date"`
	RegistrationTime string          `db:"registration_time" json:"registration_time"`
	Status           CandidateStatus `db:"status" json:"status"`
	Category         *VacancyCategory `db:"category" json:"category,omitempty"`
	EliminationReason *string        `db:"elimination_reason" json:"elimination_reason,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// CandidateFilter encapsulates allowed search parameters for listing candidates.
type CandidateFilter struct {
	Search    string
	CampusID  string
	EditalID  string
	Shift     string
	Gender    Gender
	Status    CandidateStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CandidateDetail enriches Candidate with campus and edital names.
type CandidateDetail struct {
	Candidate
	CampusName        string  `db:"campus_name" json:"campus_name"`
	EditalDescription *string `db:"edital_description" json:"edital_description,omitempty"`
}
