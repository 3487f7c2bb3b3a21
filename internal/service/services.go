package service

import (
	"github.com/patrickmn/go-cache"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	"github.com/openhealthcare/openehr-api/internal/service/medication"
	"github.com/openhealthcare/openehr-api/internal/service/record"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
	"github.com/openhealthcare/openehr-api/pkg/validator"
)

// Services holds one record service per kind plus the medication service.
type Services struct {
	Identifiers              *record.Service[*model.Identifier]
	PersonNames              *record.Service[*model.PersonName]
	AddressDetails           *record.Service[*model.AddressDetails]
	TelecomDetails           *record.Service[*model.TelecomDetails]
	DemographicPersonals     *record.Service[*model.DemographicPersonal]
	DemographicProfessionals *record.Service[*model.DemographicProfessional]
	RelevantContacts         *record.Service[*model.RelevantContact]
	BodySites                *record.Service[*model.BodySite]
	SymptomSigns             *record.Service[*model.SymptomSign]
	AdverseReactions         *record.Service[*model.AdverseReaction]
	ProblemDiagnoses         *record.Service[*model.ProblemDiagnosis]
	ReasonsForEncounter      *record.Service[*model.ReasonForEncounter]
	ClinicalSynopses         *record.Service[*model.ClinicalSynopsis]
	InpatientAdmissions      *record.Service[*model.InpatientAdmission]
	TherapeuticDirections    *record.Service[*model.TherapeuticDirection]
	Dosages                  *record.Service[*model.TherapeuticDirectionDosage]
	Medication               *medication.Service
}

// NewServices wires every service against one store. All services share
// the read cache.
func NewServices(store *repository.Store, v validator.Validator, c *cache.Cache, m *metrics.Metrics) *Services {
	s := &Services{
		Identifiers:              record.NewService(store.Identifiers, v, c, m),
		PersonNames:              record.NewService(store.PersonNames, v, c, m),
		AddressDetails:           record.NewService(store.AddressDetails, v, c, m),
		TelecomDetails:           record.NewService(store.TelecomDetails, v, c, m),
		DemographicPersonals:     record.NewService(store.DemographicPersonals, v, c, m),
		DemographicProfessionals: record.NewService(store.DemographicProfessionals, v, c, m),
		RelevantContacts:         record.NewService(store.RelevantContacts, v, c, m),
		BodySites:                record.NewService(store.BodySites, v, c, m),
		SymptomSigns:             record.NewService(store.SymptomSigns, v, c, m),
		AdverseReactions:         record.NewService(store.AdverseReactions, v, c, m),
		ProblemDiagnoses:         record.NewService(store.ProblemDiagnoses, v, c, m),
		ReasonsForEncounter:      record.NewService(store.ReasonsForEncounter, v, c, m),
		ClinicalSynopses:         record.NewService(store.ClinicalSynopses, v, c, m),
		InpatientAdmissions:      record.NewService(store.InpatientAdmissions, v, c, m),
		TherapeuticDirections:    record.NewService[*model.TherapeuticDirection](store.TherapeuticDirections, v, c, m),
		Dosages:                  record.NewService(store.Dosages, v, c, m),
	}
	s.Medication = medication.NewService(store.TherapeuticDirections, s.Dosages)
	return s
}
