package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GetBase gives storage code access to the embedded Base.
func (b *Base) GetBase() *Base {
	return b
}

// Pagination represents common pagination parameters
type Pagination struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Normalize clamps the page to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Kind names a record type. It doubles as the event-type prefix.
type Kind string

const (
	KindIdentifier                 Kind = "identifier"
	KindPersonName                 Kind = "person_name"
	KindAddressDetails             Kind = "address_details"
	KindTelecomDetails             Kind = "telecom_details"
	KindDemographicPersonal        Kind = "demographic_personal"
	KindDemographicProfessional    Kind = "demographic_professional"
	KindBodySite                   Kind = "body_site"
	KindSymptomSign                Kind = "symptom_sign"
	KindAdverseReaction            Kind = "adverse_reaction"
	KindProblemDiagnosis           Kind = "problem_diagnosis"
	KindReasonForEncounter         Kind = "reason_for_encounter"
	KindClinicalSynopsis           Kind = "clinical_synopsis"
	KindInpatientAdmission         Kind = "inpatient_admission"
	KindRelevantContact            Kind = "relevant_contact"
	KindTherapeuticDirection       Kind = "therapeutic_direction"
	KindTherapeuticDirectionDosage Kind = "therapeutic_direction_dosage"
)

// EventType builds the outbox event name for an action on this kind,
// e.g. PERSON_NAME_CREATE.
func (k Kind) EventType(action string) string {
	return strings.ToUpper(string(k)) + "_" + action
}

// Record is implemented by every persisted record type.
type Record interface {
	Kind() Kind
	GetBase() *Base
}

// Linked is implemented by records that carry many-to-many relations.
type Linked interface {
	Record
	Links() []Link
}

// Owned is implemented by records that hold a cascading foreign key
// to a parent record.
type Owned interface {
	Record
	Owner() (Kind, uuid.UUID)
}

// Relation describes a many-to-many association to another kind.
// Relations are shared references: removing either end removes only
// the association.
type Relation struct {
	Name   string `json:"name"`
	Target Kind   `json:"target"`
	// Symmetric relations read the same from both ends.
	Symmetric bool `json:"symmetric"`
}

// Link pairs a relation with the record's slice of related IDs.
type Link struct {
	Relation
	IDs *[]uuid.UUID
}

var constructors = map[Kind]func() Record{
	KindIdentifier:                 func() Record { return &Identifier{} },
	KindPersonName:                 func() Record { return &PersonName{} },
	KindAddressDetails:             func() Record { return &AddressDetails{} },
	KindTelecomDetails:             func() Record { return &TelecomDetails{} },
	KindDemographicPersonal:        func() Record { return &DemographicPersonal{} },
	KindDemographicProfessional:    func() Record { return &DemographicProfessional{} },
	KindBodySite:                   func() Record { return &BodySite{} },
	KindSymptomSign:                func() Record { return &SymptomSign{} },
	KindAdverseReaction:            func() Record { return &AdverseReaction{} },
	KindProblemDiagnosis:           func() Record { return &ProblemDiagnosis{} },
	KindReasonForEncounter:         func() Record { return &ReasonForEncounter{} },
	KindClinicalSynopsis:           func() Record { return &ClinicalSynopsis{} },
	KindInpatientAdmission:         func() Record { return &InpatientAdmission{} },
	KindRelevantContact:            func() Record { return &RelevantContact{} },
	KindTherapeuticDirection:       func() Record { return &TherapeuticDirection{} },
	KindTherapeuticDirectionDosage: func() Record { return &TherapeuticDirectionDosage{} },
}

// New returns an empty record of the given kind, or nil.
func New(k Kind) Record {
	fn, ok := constructors[k]
	if !ok {
		return nil
	}
	return fn()
}

// Kinds lists every registered record kind in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// RelationsOf lists the relations declared by a kind.
func RelationsOf(k Kind) []Relation {
	linked, ok := New(k).(Linked)
	if !ok {
		return nil
	}
	links := linked.Links()
	rels := make([]Relation, 0, len(links))
	for _, l := range links {
		rels = append(rels, l.Relation)
	}
	return rels
}

// FindRelation looks up a relation of kind k by name.
func FindRelation(k Kind, name string) (Relation, bool) {
	for _, rel := range RelationsOf(k) {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}

// LinkIDs returns the ID slice for the named relation of rec.
func LinkIDs(rec Record, name string) *[]uuid.UUID {
	linked, ok := rec.(Linked)
	if !ok {
		return nil
	}
	for _, l := range linked.Links() {
		if l.Name == name {
			return l.IDs
		}
	}
	return nil
}

// UniqueIDs drops duplicate and nil IDs while keeping order.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
