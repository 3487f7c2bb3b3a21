package model

import "sort"

// Choice is one entry of an archetype value set. Only Code is persisted.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ChoiceSet is an ordered, closed list of choices.
type ChoiceSet struct {
	Name    string   `json:"name"`
	Choices []Choice `json:"choices"`
}

// Contains reports whether code belongs to the set.
func (s ChoiceSet) Contains(code string) bool {
	for _, c := range s.Choices {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Label returns the human label for code, or code itself when unknown.
func (s ChoiceSet) Label(code string) string {
	for _, c := range s.Choices {
		if c.Code == code {
			return c.Label
		}
	}
	return code
}

// Choice set names, as referenced by `choice=` validation tags.
const (
	ChoiceAddressType           = "ADDRESS_TYPE"
	ChoiceGender                = "GENDER"
	ChoiceNameType              = "NAME_TYPE"
	ChoiceTitle                 = "TITLE"
	ChoiceEpisodicity           = "EPISODICITY"
	ChoiceSeverityCategory      = "SEVERITY_CATEGORY"
	ChoiceProgression           = "PROGRESSION"
	ChoiceModifyingFactorEffect = "MODIFYING_FACTOR_EFFECT"
	ChoiceProblemSeverity       = "PROBLEM_SEVERITY"
	ChoiceDiagnosticCertainty   = "DIAGNOSTIC_CERTAINTY"
	ChoiceAdmissionMethod       = "ADMISSION_METHOD"
	ChoiceRelationshipCategory  = "RELATIONSHIP_CATEGORY"
	ChoiceDirectionDuration     = "DIRECTION_DURATION"
)

var choiceSets = map[string]ChoiceSet{
	ChoiceAddressType: {Name: ChoiceAddressType, Choices: []Choice{
		{"RESIDENTIAL", "Residential"},
		{"CORRESPONDENCE", "Correspondence"},
		{"BUSINESS", "Business"},
		{"TEMPORARY", "Temporary"},
	}},
	ChoiceGender: {Name: ChoiceGender, Choices: []Choice{
		{"FEMALE", "Female"},
		{"MALE", "Male"},
		{"UNSPECIFIED", "Unspecified"},
	}},
	ChoiceNameType: {Name: ChoiceNameType, Choices: []Choice{
		{"REGISTERED", "Registered name"},
		{"PREVIOUS", "Previous name"},
		{"BIRTH", "Birth name"},
		{"AKA", "Also known as"},
		{"ALIAS", "Alias"},
		{"MAIDEN", "Maiden name"},
		{"PROFESSIONAL", "Professional name"},
		{"REPORTING", "Reporting name"},
	}},
	ChoiceTitle: {Name: ChoiceTitle, Choices: []Choice{
		{"DR", "Dr"},
		{"MRS", "Mrs"},
		{"MR", "Mr"},
		{"MISS", "Miss"},
		{"MS", "Ms"},
		{"PROF", "Prof"},
		{"SIR", "Sir"},
		{"REV", "Rev"},
	}},
	ChoiceEpisodicity: {Name: ChoiceEpisodicity, Choices: []Choice{
		{"NEW", "New"},
		{"ONGOING", "Ongoing"},
		{"INDETERMINATE", "Indeterminate"},
	}},
	ChoiceSeverityCategory: {Name: ChoiceSeverityCategory, Choices: []Choice{
		{"MILD", "Mild"},
		{"MODERATE", "Moderate"},
		{"SEVERE", "Severe"},
	}},
	ChoiceProgression: {Name: ChoiceProgression, Choices: []Choice{
		{"WORSENING", "Worsening"},
		{"UNCHANGED", "Unchanged"},
		{"IMPROVING", "Improving"},
		{"RESOLVED", "Resolved"},
	}},
	ChoiceModifyingFactorEffect: {Name: ChoiceModifyingFactorEffect, Choices: []Choice{
		{"RELIEVES", "Relieves"},
		{"NOEFFECT", "No effect"},
		{"WORSENS", "Worsens"},
	}},
	ChoiceProblemSeverity: {Name: ChoiceProblemSeverity, Choices: []Choice{
		{"Mild", "Mild"},
		{"Moderate", "Moderate"},
		{"Severe", "Severe"},
	}},
	ChoiceDiagnosticCertainty: {Name: ChoiceDiagnosticCertainty, Choices: []Choice{
		{"Suspected", "Suspected"},
		{"Probable", "Probable"},
		{"Confirmed", "Confirmed"},
	}},
	ChoiceAdmissionMethod: {Name: ChoiceAdmissionMethod, Choices: []Choice{
		{"ELECTIVE", "Elective"},
		{"EMERGENCY", "Emergency"},
		{"TRANSFER", "Transfer"},
		{"MATERNITY", "Maternity"},
	}},
	ChoiceRelationshipCategory: {Name: ChoiceRelationshipCategory, Choices: []Choice{
		{"INFORMAL_CARER", "Informal carer"},
		{"MAIN_INFORMAL", "Main informal carer"},
		{"FORMAL_CARE_WORKER", "Formal care worker"},
		{"KEY_FORMAL_CARE_WORKER", "Key formal care worker"},
	}},
	ChoiceDirectionDuration: {Name: ChoiceDirectionDuration, Choices: []Choice{
		{"INDEFINITE", "Indefinite"},
		{"INDEFINITENTBDC", "Indefinite - not to be discontinued"},
	}},
}

// LookupChoiceSet returns the named choice set.
func LookupChoiceSet(name string) (ChoiceSet, bool) {
	s, ok := choiceSets[name]
	return s, ok
}

// ChoiceSets returns every choice set ordered by name.
func ChoiceSets() []ChoiceSet {
	sets := make([]ChoiceSet, 0, len(choiceSets))
	for _, s := range choiceSets {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets
}

// IsValidChoice reports whether code is a member of the named set.
// Unknown sets accept nothing.
func IsValidChoice(set, code string) bool {
	s, ok := choiceSets[set]
	return ok && s.Contains(code)
}
