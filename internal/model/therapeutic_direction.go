package model

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// TherapeuticDirection is one direction of a medication order.
type TherapeuticDirection struct {
	Base
	DirectionSequence        *int    `json:"direction_sequence,omitempty" db:"direction_sequence" validate:"omitempty,min=1"`
	DirectionDuration        *string `json:"direction_duration,omitempty" db:"direction_duration" validate:"omitempty,max=255,choice=DIRECTION_DURATION"`
	DirectionDurationSeconds *int    `json:"direction_duration_seconds,omitempty" db:"direction_duration_seconds" validate:"omitempty,min=0"`
	DirectionDurationText    *string `json:"direction_duration_text,omitempty" db:"direction_duration_text" validate:"omitempty,max=255"`
	MaximumAdministrations   *int    `json:"maximum_administrations,omitempty" db:"maximum_administrations" validate:"omitempty,min=1"`
}

func (*TherapeuticDirection) Kind() Kind { return KindTherapeuticDirection }

// DirectionDurationFields are the mutually exclusive ways of stating a
// direction's duration.
var DirectionDurationFields = []string{"direction_duration", "direction_duration_seconds", "direction_duration_text"}

// DurationsSet counts how many duration representations are present.
// Presence means non-nil, so an empty text still counts.
func (d *TherapeuticDirection) DurationsSet() int {
	count := 0
	if d.DirectionDuration != nil {
		count++
	}
	if d.DirectionDurationSeconds != nil {
		count++
	}
	if d.DirectionDurationText != nil {
		count++
	}
	return count
}

// ValidateRules allows at most one duration representation.
func (d *TherapeuticDirection) ValidateRules() error {
	if d.DurationsSet() > 1 {
		return apperrors.NewCrossField(
			"a direction duration may only be one of "+strings.Join(DirectionDurationFields, ", "),
			DirectionDurationFields...,
		)
	}
	return nil
}

// TherapeuticDirectionDosage belongs to exactly one direction and is
// removed with it.
type TherapeuticDirectionDosage struct {
	Base
	TherapeuticDirectionID uuid.UUID `json:"therapeutic_direction_id" db:"therapeutic_direction_id" validate:"required"`
	DosageSequence         *int      `json:"dosage_sequence,omitempty" db:"dosage_sequence" validate:"omitempty,min=1"`
	DoseAmountExact        *float64  `json:"dose_amount_exact,omitempty" db:"dose_amount_exact" validate:"omitempty,gte=0.01,lt=10000000,decimals=3"`
	DoseAmountRangeLower   *float64  `json:"dose_amount_range_lower,omitempty" db:"dose_amount_range_lower" validate:"omitempty,gte=0.01,lt=10000000,decimals=3"`
	DoseAmountRangeUpper   *float64  `json:"dose_amount_range_upper,omitempty" db:"dose_amount_range_upper" validate:"omitempty,gte=0.01,lt=10000000,decimals=3"`
	DoseUnit               *string   `json:"dose_unit,omitempty" db:"dose_unit" validate:"omitempty,max=255"`
}

func (*TherapeuticDirectionDosage) Kind() Kind { return KindTherapeuticDirectionDosage }

func (d *TherapeuticDirectionDosage) Owner() (Kind, uuid.UUID) {
	return KindTherapeuticDirection, d.TherapeuticDirectionID
}
