package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTherapeuticDirectionFlow(t *testing.T) {
	directionID := create(t, "/therapeutic-directions", map[string]interface{}{
		"direction_sequence": 1,
		"direction_duration": "INDEFINITE",
	})

	first := makeRequest("POST", "/therapeutic-directions/"+directionID+"/dosages", map[string]interface{}{
		"dosage_sequence":   1,
		"dose_amount_exact": 2.5,
		"dose_unit":         "mg",
	}, authToken)
	require.Equal(t, http.StatusCreated, first.StatusCode, first.Message)
	assert.Equal(t, directionID, first.GetString("therapeutic_direction_id"))

	create(t, "/therapeutic-directions/"+directionID+"/dosages", map[string]interface{}{
		"dosage_sequence":         2,
		"dose_amount_range_lower": 1,
		"dose_amount_range_upper": 2,
	})

	list := makeRequest("GET", "/therapeutic-directions/"+directionID+"/dosages", nil, "")
	require.True(t, list.IsSuccess())
	assert.Len(t, list.List, 2)

	tooSmall := makeRequest("POST", "/therapeutic-directions/"+directionID+"/dosages", map[string]interface{}{
		"dose_amount_exact": 0.001,
	}, authToken)
	assert.Equal(t, "field_constraint_violation", tooSmall.Code)
	assert.Equal(t, "dose_amount_exact", tooSmall.Field)

	// dosages go with their direction
	assert.Equal(t, http.StatusNoContent, makeRequest("DELETE", "/therapeutic-directions/"+directionID, nil, authToken).StatusCode)
	dosageID := first.GetString("id")
	gone := makeRequest("GET", "/therapeutic-direction-dosages/"+dosageID, nil, "")
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestTherapeuticDirectionDurationRule(t *testing.T) {
	resp := makeRequest("POST", "/therapeutic-directions", map[string]interface{}{
		"direction_duration":         "INDEFINITE",
		"direction_duration_seconds": 3600,
	}, authToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "cross_field_validation_failure", resp.Code)

	resp = makeRequest("POST", "/therapeutic-directions", map[string]interface{}{
		"direction_duration_text": "until review",
	}, authToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, resp.Message)
}

func TestDosageForMissingDirection(t *testing.T) {
	resp := makeRequest("POST", "/therapeutic-directions/4b0f3c8e-6f1b-4d3e-9a57-0d0c5c1c9d11/dosages", map[string]interface{}{
		"dose_amount_exact": 1,
	}, authToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "field_constraint_violation", resp.Code)
}
