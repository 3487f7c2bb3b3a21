package model

import (
	"time"

	"github.com/google/uuid"
)

// BodySite names an anatomical location.
type BodySite struct {
	Base
	BodySiteName *string `json:"body_site_name,omitempty" db:"body_site_name" validate:"omitempty,max=255"`
}

func (*BodySite) Kind() Kind { return KindBodySite }

// SymptomSign is a reported symptom or observed sign, including its
// episode history.
type SymptomSign struct {
	Base
	SymptomSignName                         string      `json:"symptom_sign_name" db:"symptom_sign_name" validate:"required,max=255"`
	NilSignificant                          *bool       `json:"nil_significant,omitempty" db:"nil_significant"`
	Description                             *string     `json:"description,omitempty" db:"description" validate:"omitempty,max=255"`
	BodySiteIDs                             []uuid.UUID `json:"body_site_ids" db:"-"`
	Episodicity                             *string     `json:"episodicity,omitempty" db:"episodicity" validate:"omitempty,max=255,choice=EPISODICITY"`
	FirstEver                               *bool       `json:"first_ever,omitempty" db:"first_ever"`
	EpisodeOnset                            *time.Time  `json:"episode_onset,omitempty" db:"episode_onset"`
	OnsetType                               *string     `json:"onset_type,omitempty" db:"onset_type" validate:"omitempty,max=255"`
	Duration                                *time.Time  `json:"duration,omitempty" db:"duration"`
	SeverityCategory                        *string     `json:"severity_category,omitempty" db:"severity_category" validate:"omitempty,max=255,choice=SEVERITY_CATEGORY"`
	SeverityRating                          *float64    `json:"severity_rating,omitempty" db:"severity_rating" validate:"omitempty,gte=0,lte=10,decimals=1"`
	Progression                             *string     `json:"progression,omitempty" db:"progression" validate:"omitempty,max=255,choice=PROGRESSION"`
	Pattern                                 *string     `json:"pattern,omitempty" db:"pattern" validate:"omitempty,max=255"`
	ModifyingFactorName                     *string     `json:"modifying_factor_name,omitempty" db:"modifying_factor_name" validate:"omitempty,max=255"`
	ModifyingFactorEffect                   *string     `json:"modifying_factor_effect,omitempty" db:"modifying_factor_effect" validate:"omitempty,max=255,choice=MODIFYING_FACTOR_EFFECT"`
	ModifyingFactorEffectDescription        *string     `json:"modifying_factor_effect_description,omitempty" db:"modifying_factor_effect_description"`
	PrecipitatingResolvingFactorName        *string     `json:"precipitating_resolving_factor_name,omitempty" db:"precipitating_resolving_factor_name" validate:"omitempty,max=255"`
	PrecipitatingResolvingFactorInterval    *time.Time  `json:"precipitating_resolving_factor_interval,omitempty" db:"precipitating_resolving_factor_interval"`
	PrecipitatingResolvingFactorDescription *string     `json:"precipitating_resolving_factor_description,omitempty" db:"precipitating_resolving_factor_description" validate:"omitempty,max=255"`
	Impact                                  *string     `json:"impact,omitempty" db:"impact"`
	EpisodeDescription                      *string     `json:"episode_description,omitempty" db:"episode_description"`
	ResolutionDateTime                      *time.Time  `json:"resolution_date_time,omitempty" db:"resolution_date_time"`
	PreviousEpisodeDescription              *string     `json:"previous_episode_description,omitempty" db:"previous_episode_description"`
	PreviousEpisodeIDs                      []uuid.UUID `json:"previous_episode_ids" db:"-"`
	AssociatedSymptomSignIDs                []uuid.UUID `json:"associated_symptom_sign_ids" db:"-"`
	SymptomComment                          *string     `json:"symptom_comment,omitempty" db:"symptom_comment"`
}

func (*SymptomSign) Kind() Kind { return KindSymptomSign }

// Links declares two distinct self relations: previous episodes are
// directed, associated symptoms read the same from either end.
func (s *SymptomSign) Links() []Link {
	return []Link{
		{Relation{Name: RelBodySites, Target: KindBodySite}, &s.BodySiteIDs},
		{Relation{Name: RelPreviousEpisodes, Target: KindSymptomSign}, &s.PreviousEpisodeIDs},
		{Relation{Name: RelAssociatedSymptomSigns, Target: KindSymptomSign, Symmetric: true}, &s.AssociatedSymptomSignIDs},
	}
}

// AdverseReaction records a reaction to a causative agent. Severity and
// certainty are free text.
type AdverseReaction struct {
	Base
	CausativeAgent     *string    `json:"causative_agent,omitempty" db:"causative_agent" validate:"omitempty,max=255"`
	ReactionSnomedCode *string    `json:"reaction_snomed_code,omitempty" db:"reaction_snomed_code" validate:"omitempty,max=255"`
	DateRecorded       *time.Time `json:"date_recorded,omitempty" db:"date_recorded"`
	ReactionSeverity   *string    `json:"reaction_severity,omitempty" db:"reaction_severity" validate:"omitempty,max=255"`
	ReactionCertainty  *string    `json:"reaction_certainty,omitempty" db:"reaction_certainty" validate:"omitempty,max=255"`
	ReactionComment    *string    `json:"reaction_comment,omitempty" db:"reaction_comment" validate:"omitempty,max=255"`
}

func (*AdverseReaction) Kind() Kind { return KindAdverseReaction }

// ProblemDiagnosis is a named problem or diagnosis.
type ProblemDiagnosis struct {
	Base
	ProblemDiagnosisName string     `json:"problem_diagnosis_name" db:"problem_diagnosis_name" validate:"required,max=255"`
	ClinicalDescription  *string    `json:"clinical_description,omitempty" db:"clinical_description"`
	BodySiteName         *string    `json:"body_site_name,omitempty" db:"body_site_name" validate:"omitempty,max=255"`
	OnsetDateTime        *time.Time `json:"onset_date_time,omitempty" db:"onset_date_time"`
	RecognitionDateTime  *time.Time `json:"recognition_date_time,omitempty" db:"recognition_date_time"`
	Severity             *string    `json:"severity,omitempty" db:"severity" validate:"omitempty,max=255,choice=PROBLEM_SEVERITY"`
	CourseDescription    *string    `json:"course_description,omitempty" db:"course_description"`
	ResolutionDateTime   *time.Time `json:"resolution_date_time,omitempty" db:"resolution_date_time"`
	DiagnosticCertainty  *string    `json:"diagnostic_certainty,omitempty" db:"diagnostic_certainty" validate:"omitempty,max=255,choice=DIAGNOSTIC_CERTAINTY"`
	LastUpdated          *time.Time `json:"last_updated,omitempty" db:"last_updated"`
	Comment              *string    `json:"comment,omitempty" db:"comment" validate:"omitempty,max=255"`
}

func (*ProblemDiagnosis) Kind() Kind { return KindProblemDiagnosis }

func (p *ProblemDiagnosis) String() string {
	if p.ProblemDiagnosisName != "" {
		return p.ProblemDiagnosisName
	}
	return "anonymous problem / diagnosis"
}

// ReasonForEncounter records why the subject presented.
type ReasonForEncounter struct {
	Base
	ContactType       *string `json:"contact_type,omitempty" db:"contact_type" validate:"omitempty,max=255"`
	PresentingProblem *string `json:"presenting_problem,omitempty" db:"presenting_problem" validate:"omitempty,max=255"`
}

func (*ReasonForEncounter) Kind() Kind { return KindReasonForEncounter }

// ClinicalSynopsis is a free-text summary.
type ClinicalSynopsis struct {
	Base
	Synopsis string `json:"synopsis" db:"synopsis" validate:"required"`
}

func (*ClinicalSynopsis) Kind() Kind { return KindClinicalSynopsis }

// InpatientAdmission records an admission and its referring professionals.
type InpatientAdmission struct {
	Base
	DateOfAdmission   *time.Time  `json:"date_of_admission,omitempty" db:"date_of_admission"`
	AdmissionMethod   *string     `json:"admission_method,omitempty" db:"admission_method" validate:"omitempty,max=255,choice=ADMISSION_METHOD"`
	ReferrerIDs       []uuid.UUID `json:"referrer_ids" db:"-"`
	SourceOfAdmission *string     `json:"source_of_admission,omitempty" db:"source_of_admission" validate:"omitempty,max=255"`
}

func (*InpatientAdmission) Kind() Kind { return KindInpatientAdmission }

func (a *InpatientAdmission) Links() []Link {
	return []Link{
		{Relation{Name: RelReferrers, Target: KindDemographicProfessional}, &a.ReferrerIDs},
	}
}
