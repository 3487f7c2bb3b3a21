package postgres

import (
	"fmt"
	"strings"

	"github.com/openhealthcare/openehr-api/internal/model"
)

// baseColumns are shared by every record table.
var baseColumns = []string{"id", "created_at", "updated_at"}

// columns lists the record-specific columns of each table. The table is
// named after its kind.
var columns = map[model.Kind][]string{
	model.KindIdentifier: {
		"issuer", "assigner", "identifier", "identifier_type",
	},
	model.KindPersonName: {
		"name_type", "preferred_name", "unstructured_name", "title", "given_name",
		"middle_name", "family_name", "suffix", "validity_period_from", "validity_period_to",
	},
	model.KindAddressDetails: {
		"address_type", "unstructured_address", "property_number", "address_line1",
		"address_line2", "address_line3", "address_line4", "post_code",
		"validity_period_from", "validity_period_to",
	},
	model.KindTelecomDetails: {
		"unstructured_telecoms", "country_code", "area_code", "number", "extension",
		"method", "use_context",
	},
	model.KindDemographicPersonal: {
		"relationship_to_subject", "date_of_birth", "gender",
	},
	model.KindDemographicProfessional: {
		"professional_group", "professional_grade", "professional_team",
	},
	model.KindRelevantContact: {
		"relationship_category", "relationship", "is_next_of_kin", "relationship_note",
		"date_updated",
	},
	model.KindBodySite: {
		"body_site_name",
	},
	model.KindSymptomSign: {
		"symptom_sign_name", "nil_significant", "description", "episodicity",
		"first_ever", "episode_onset", "onset_type", "duration", "severity_category",
		"severity_rating", "progression", "pattern", "modifying_factor_name",
		"modifying_factor_effect", "modifying_factor_effect_description",
		"precipitating_resolving_factor_name", "precipitating_resolving_factor_interval",
		"precipitating_resolving_factor_description", "impact", "episode_description",
		"resolution_date_time", "previous_episode_description", "symptom_comment",
	},
	model.KindAdverseReaction: {
		"causative_agent", "reaction_snomed_code", "date_recorded", "reaction_severity",
		"reaction_certainty", "reaction_comment",
	},
	model.KindProblemDiagnosis: {
		"problem_diagnosis_name", "clinical_description", "body_site_name",
		"onset_date_time", "recognition_date_time", "severity", "course_description",
		"resolution_date_time", "diagnostic_certainty", "last_updated", "comment",
	},
	model.KindReasonForEncounter: {
		"contact_type", "presenting_problem",
	},
	model.KindClinicalSynopsis: {
		"synopsis",
	},
	model.KindInpatientAdmission: {
		"date_of_admission", "admission_method", "source_of_admission",
	},
	model.KindTherapeuticDirection: {
		"direction_sequence", "direction_duration", "direction_duration_seconds",
		"direction_duration_text", "maximum_administrations",
	},
	model.KindTherapeuticDirectionDosage: {
		"therapeutic_direction_id", "dosage_sequence", "dose_amount_exact",
		"dose_amount_range_lower", "dose_amount_range_upper", "dose_unit",
	},
}

// table describes the storage of one record kind.
type table struct {
	name    string
	columns []string
}

func tableFor(kind model.Kind) table {
	cols, ok := columns[kind]
	if !ok {
		panic(fmt.Sprintf("postgres: no table registered for %s", kind))
	}
	return table{name: string(kind), columns: cols}
}

func (t table) all() []string {
	return append(append([]string{}, baseColumns...), t.columns...)
}

func (t table) selectQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.all(), ", "), t.name)
}

func (t table) insertQuery() string {
	cols := t.all()
	params := make([]string, len(cols))
	for i, c := range cols {
		params[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), strings.Join(params, ", "))
}

// updateQuery replaces every column except created_at, which it returns.
func (t table) updateQuery() string {
	sets := make([]string, 0, len(t.columns)+1)
	sets = append(sets, "updated_at = :updated_at")
	for _, c := range t.columns {
		sets = append(sets, c+" = :"+c)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id RETURNING created_at",
		t.name, strings.Join(sets, ", "))
}

// joinTable describes the association table behind one relation.
type joinTable struct {
	name      string
	ownerCol  string
	targetCol string
	symmetric bool
}

// joinTableFor names the association table <owner>_<relation>. Self
// relations use from_/to_ column prefixes.
func joinTableFor(owner model.Kind, rel model.Relation) joinTable {
	jt := joinTable{
		name:      string(owner) + "_" + rel.Name,
		ownerCol:  string(owner) + "_id",
		targetCol: string(rel.Target) + "_id",
		symmetric: rel.Symmetric,
	}
	if owner == rel.Target {
		jt.ownerCol = "from_" + string(owner) + "_id"
		jt.targetCol = "to_" + string(owner) + "_id"
	}
	return jt
}
