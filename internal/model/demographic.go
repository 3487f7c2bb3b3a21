package model

import (
	"time"

	"github.com/google/uuid"
)

// Identifier is an issued identifier for a person, e.g. an NHS number.
type Identifier struct {
	Base
	Issuer         *string `json:"issuer,omitempty" db:"issuer" validate:"omitempty,max=255"`
	Assigner       *string `json:"assigner,omitempty" db:"assigner" validate:"omitempty,max=255"`
	Identifier     string  `json:"identifier" db:"identifier" validate:"required,max=255"`
	IdentifierType *string `json:"identifier_type,omitempty" db:"identifier_type" validate:"omitempty,max=255"`
}

func (*Identifier) Kind() Kind { return KindIdentifier }

// AddressDetails is the openEHR address cluster.
type AddressDetails struct {
	Base
	AddressType         string     `json:"address_type" db:"address_type" validate:"required,max=255,choice=ADDRESS_TYPE"`
	UnstructuredAddress *string    `json:"unstructured_address,omitempty" db:"unstructured_address"`
	PropertyNumber      *string    `json:"property_number,omitempty" db:"property_number" validate:"omitempty,max=20"`
	AddressLine1        *string    `json:"address_line1,omitempty" db:"address_line1" validate:"omitempty,max=255"`
	AddressLine2        *string    `json:"address_line2,omitempty" db:"address_line2" validate:"omitempty,max=255"`
	AddressLine3        *string    `json:"address_line3,omitempty" db:"address_line3" validate:"omitempty,max=255"`
	AddressLine4        *string    `json:"address_line4,omitempty" db:"address_line4" validate:"omitempty,max=255"`
	PostCode            *string    `json:"post_code,omitempty" db:"post_code" validate:"omitempty,max=20"`
	ValidityPeriodFrom  *time.Time `json:"validity_period_from,omitempty" db:"validity_period_from"`
	ValidityPeriodTo    *time.Time `json:"validity_period_to,omitempty" db:"validity_period_to"`
}

func (*AddressDetails) Kind() Kind { return KindAddressDetails }

// TelecomDetails is the openEHR telecom cluster.
type TelecomDetails struct {
	Base
	UnstructuredTelecoms *string `json:"unstructured_telecoms,omitempty" db:"unstructured_telecoms"`
	CountryCode          *string `json:"country_code,omitempty" db:"country_code" validate:"omitempty,max=20"`
	AreaCode             *string `json:"area_code,omitempty" db:"area_code" validate:"omitempty,max=20"`
	Number               *string `json:"number,omitempty" db:"number" validate:"omitempty,max=20"`
	Extension            *string `json:"extension,omitempty" db:"extension" validate:"omitempty,max=20"`
	Method               *string `json:"method,omitempty" db:"method" validate:"omitempty,max=255"`
	UseContext           *string `json:"use_context,omitempty" db:"use_context" validate:"omitempty,max=255"`
}

func (*TelecomDetails) Kind() Kind { return KindTelecomDetails }

func (t *TelecomDetails) String() string {
	if t.Number != nil && *t.Number != "" {
		return *t.Number
	}
	if t.UnstructuredTelecoms != nil && *t.UnstructuredTelecoms != "" {
		return *t.UnstructuredTelecoms
	}
	return "telephone number not held"
}

// Relation names shared by the demographic records.
const (
	RelPersonNames             = "person_names"
	RelAddressDetails          = "address_details"
	RelTelecomDetails          = "telecom_details"
	RelIdentifiers             = "identifiers"
	RelProfessionalIdentifiers = "professional_identifiers"
	RelReferrers               = "referrers"
	RelBodySites               = "body_sites"
	RelPreviousEpisodes        = "previous_episodes"
	RelAssociatedSymptomSigns  = "associated_symptom_signs"
)

// DemographicPersonal is the subject's personal demographic record.
type DemographicPersonal struct {
	Base
	PersonNameIDs         []uuid.UUID `json:"person_name_ids" db:"-"`
	AddressDetailsIDs     []uuid.UUID `json:"address_details_ids" db:"-"`
	TelecomDetailsIDs     []uuid.UUID `json:"telecom_details_ids" db:"-"`
	IdentifierIDs         []uuid.UUID `json:"identifier_ids" db:"-"`
	RelationshipToSubject *string     `json:"relationship_to_subject,omitempty" db:"relationship_to_subject" validate:"omitempty,max=255"`
	DateOfBirth           *time.Time  `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender                *string     `json:"gender,omitempty" db:"gender" validate:"omitempty,max=255,choice=GENDER"`
}

func (*DemographicPersonal) Kind() Kind { return KindDemographicPersonal }

func (d *DemographicPersonal) Links() []Link {
	return []Link{
		{Relation{Name: RelPersonNames, Target: KindPersonName}, &d.PersonNameIDs},
		{Relation{Name: RelAddressDetails, Target: KindAddressDetails}, &d.AddressDetailsIDs},
		{Relation{Name: RelTelecomDetails, Target: KindTelecomDetails}, &d.TelecomDetailsIDs},
		{Relation{Name: RelIdentifiers, Target: KindIdentifier}, &d.IdentifierIDs},
	}
}

// DemographicProfessional describes a healthcare professional.
type DemographicProfessional struct {
	Base
	PersonNameIDs             []uuid.UUID `json:"person_name_ids" db:"-"`
	TelecomDetailsIDs         []uuid.UUID `json:"telecom_details_ids" db:"-"`
	ProfessionalIdentifierIDs []uuid.UUID `json:"professional_identifier_ids" db:"-"`
	ProfessionalGroup         *string     `json:"professional_group,omitempty" db:"professional_group" validate:"omitempty,max=255"`
	ProfessionalGrade         *string     `json:"professional_grade,omitempty" db:"professional_grade" validate:"omitempty,max=255"`
	ProfessionalTeam          *string     `json:"professional_team,omitempty" db:"professional_team" validate:"omitempty,max=255"`
}

func (*DemographicProfessional) Kind() Kind { return KindDemographicProfessional }

func (d *DemographicProfessional) Links() []Link {
	return []Link{
		{Relation{Name: RelPersonNames, Target: KindPersonName}, &d.PersonNameIDs},
		{Relation{Name: RelTelecomDetails, Target: KindTelecomDetails}, &d.TelecomDetailsIDs},
		{Relation{Name: RelProfessionalIdentifiers, Target: KindIdentifier}, &d.ProfessionalIdentifierIDs},
	}
}

// RelevantContact is a person relevant to the subject's care.
type RelevantContact struct {
	Base
	PersonNameIDs        []uuid.UUID `json:"person_name_ids" db:"-"`
	TelecomDetailsIDs    []uuid.UUID `json:"telecom_details_ids" db:"-"`
	RelationshipCategory *string     `json:"relationship_category,omitempty" db:"relationship_category" validate:"omitempty,max=255,choice=RELATIONSHIP_CATEGORY"`
	Relationship         *string     `json:"relationship,omitempty" db:"relationship" validate:"omitempty,max=255"`
	IsNextOfKin          *bool       `json:"is_next_of_kin,omitempty" db:"is_next_of_kin"`
	RelationshipNote     *string     `json:"relationship_note,omitempty" db:"relationship_note" validate:"omitempty,max=255"`
	DateUpdated          *time.Time  `json:"date_updated,omitempty" db:"date_updated"`
}

func (*RelevantContact) Kind() Kind { return KindRelevantContact }

func (r *RelevantContact) Links() []Link {
	return []Link{
		{Relation{Name: RelPersonNames, Target: KindPersonName}, &r.PersonNameIDs},
		{Relation{Name: RelTelecomDetails, Target: KindTelecomDetails}, &r.TelecomDetailsIDs},
	}
}
