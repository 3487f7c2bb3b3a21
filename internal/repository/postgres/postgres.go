package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
)

// NewStore wires every repository to the same database handle.
func NewStore(db *sqlx.DB) *repository.Store {
	base := NewBaseRepository(db)
	return &repository.Store{
		Identifiers:              NewRecordRepository[*model.Identifier](base),
		PersonNames:              NewRecordRepository[*model.PersonName](base),
		AddressDetails:           NewRecordRepository[*model.AddressDetails](base),
		TelecomDetails:           NewRecordRepository[*model.TelecomDetails](base),
		DemographicPersonals:     NewRecordRepository[*model.DemographicPersonal](base),
		DemographicProfessionals: NewRecordRepository[*model.DemographicProfessional](base),
		RelevantContacts:         NewRecordRepository[*model.RelevantContact](base),
		BodySites:                NewRecordRepository[*model.BodySite](base),
		SymptomSigns:             NewRecordRepository[*model.SymptomSign](base),
		AdverseReactions:         NewRecordRepository[*model.AdverseReaction](base),
		ProblemDiagnoses:         NewRecordRepository[*model.ProblemDiagnosis](base),
		ReasonsForEncounter:      NewRecordRepository[*model.ReasonForEncounter](base),
		ClinicalSynopses:         NewRecordRepository[*model.ClinicalSynopsis](base),
		InpatientAdmissions:      NewRecordRepository[*model.InpatientAdmission](base),
		TherapeuticDirections:    NewTherapeuticDirectionRepository(base),
		Dosages:                  NewRecordRepository[*model.TherapeuticDirectionDosage](base),
		Outbox:                   NewOutboxRepository(base),
		Pinger:                   &base,
	}
}
