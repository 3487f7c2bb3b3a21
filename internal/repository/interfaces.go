package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/model"
)

// All repository interfaces in one file
type (
	// RecordRepository persists one record kind together with its
	// many-to-many links. Every write also enqueues an outbox event in
	// the same unit of work.
	RecordRepository[T model.Record] interface {
		Create(ctx context.Context, rec T) error
		Get(ctx context.Context, id uuid.UUID) (T, error)
		Update(ctx context.Context, rec T) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, page model.Pagination) ([]T, error)
		Link(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error
		Unlink(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error
	}

	IdentifierRepository              = RecordRepository[*model.Identifier]
	PersonNameRepository              = RecordRepository[*model.PersonName]
	AddressDetailsRepository          = RecordRepository[*model.AddressDetails]
	TelecomDetailsRepository          = RecordRepository[*model.TelecomDetails]
	DemographicPersonalRepository     = RecordRepository[*model.DemographicPersonal]
	DemographicProfessionalRepository = RecordRepository[*model.DemographicProfessional]
	RelevantContactRepository         = RecordRepository[*model.RelevantContact]
	BodySiteRepository                = RecordRepository[*model.BodySite]
	SymptomSignRepository             = RecordRepository[*model.SymptomSign]
	AdverseReactionRepository         = RecordRepository[*model.AdverseReaction]
	ProblemDiagnosisRepository        = RecordRepository[*model.ProblemDiagnosis]
	ReasonForEncounterRepository      = RecordRepository[*model.ReasonForEncounter]
	ClinicalSynopsisRepository        = RecordRepository[*model.ClinicalSynopsis]
	InpatientAdmissionRepository      = RecordRepository[*model.InpatientAdmission]

	// TherapeuticDirectionRepository deletes a direction's dosages with it.
	TherapeuticDirectionRepository interface {
		RecordRepository[*model.TherapeuticDirection]
		ListDosages(ctx context.Context, directionID uuid.UUID) ([]*model.TherapeuticDirectionDosage, error)
	}

	TherapeuticDirectionDosageRepository = RecordRepository[*model.TherapeuticDirectionDosage]

	// OutboxRepository feeds the outbox processor. Stores shared between
	// processes must claim the events GetPendingEventsWithLock returns.
	OutboxRepository interface {
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// Pinger reports storage readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Identifiers              IdentifierRepository
	PersonNames              PersonNameRepository
	AddressDetails           AddressDetailsRepository
	TelecomDetails           TelecomDetailsRepository
	DemographicPersonals     DemographicPersonalRepository
	DemographicProfessionals DemographicProfessionalRepository
	RelevantContacts         RelevantContactRepository
	BodySites                BodySiteRepository
	SymptomSigns             SymptomSignRepository
	AdverseReactions         AdverseReactionRepository
	ProblemDiagnoses         ProblemDiagnosisRepository
	ReasonsForEncounter      ReasonForEncounterRepository
	ClinicalSynopses         ClinicalSynopsisRepository
	InpatientAdmissions      InpatientAdmissionRepository
	TherapeuticDirections    TherapeuticDirectionRepository
	Dosages                  TherapeuticDirectionDosageRepository
	Outbox                   OutboxRepository
	Pinger                   Pinger
}
