package model

import (
	"strings"
	"time"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// PersonName is the openEHR person name cluster.
//
// GivenName and FamilyName map to NOT NULL columns but carry no required
// tag: they may be stored blank. A name recorded only as UnstructuredName
// leaves both empty, and the structured-name rule in ValidateRules is what
// decides how many parts a structured name needs.
type PersonName struct {
	Base
	NameType           *string    `json:"name_type,omitempty" db:"name_type" validate:"omitempty,max=255,choice=NAME_TYPE"`
	PreferredName      *bool      `json:"preferred_name,omitempty" db:"preferred_name"`
	UnstructuredName   *string    `json:"unstructured_name,omitempty" db:"unstructured_name" validate:"omitempty,max=255"`
	Title              *string    `json:"title,omitempty" db:"title" validate:"omitempty,max=20,choice=TITLE"`
	GivenName          string     `json:"given_name" db:"given_name" validate:"max=255"`
	MiddleName         *string    `json:"middle_name,omitempty" db:"middle_name" validate:"omitempty,max=255"`
	FamilyName         string     `json:"family_name" db:"family_name" validate:"max=255"`
	Suffix             *string    `json:"suffix,omitempty" db:"suffix" validate:"omitempty,max=20"`
	ValidityPeriodFrom *time.Time `json:"validity_period_from,omitempty" db:"validity_period_from"`
	ValidityPeriodTo   *time.Time `json:"validity_period_to,omitempty" db:"validity_period_to"`
}

func (*PersonName) Kind() Kind { return KindPersonName }

// StructuredNameParts are the name parts counted by the structured-name rule.
var StructuredNameParts = []string{"title", "given_name", "middle_name", "family_name", "suffix"}

// PopulatedNameParts counts the structured name parts that hold a
// non-blank value.
func (p *PersonName) PopulatedNameParts() int {
	count := 0
	for _, part := range []*string{p.Title, &p.GivenName, p.MiddleName, &p.FamilyName, p.Suffix} {
		if part != nil && strings.TrimSpace(*part) != "" {
			count++
		}
	}
	return count
}

// ValidateRules rejects a structured name made of a single part. No
// structured parts at all (an unstructured-only name) is accepted.
func (p *PersonName) ValidateRules() error {
	if p.PopulatedNameParts() == 1 {
		return apperrors.NewCrossField(
			"a structured name requires at least two of "+strings.Join(StructuredNameParts, ", "),
			StructuredNameParts...,
		)
	}
	return nil
}

// String renders the name as it would be addressed.
func (p *PersonName) String() string {
	var parts []string
	for _, part := range []*string{p.Title, &p.GivenName, p.MiddleName, &p.FamilyName, p.Suffix} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	if len(parts) == 0 && p.UnstructuredName != nil {
		return *p.UnstructuredName
	}
	return strings.Join(parts, " ")
}
