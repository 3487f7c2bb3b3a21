package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonNameFlow(t *testing.T) {
	family := uniqueName("Hopper")

	createResp := makeRequest("POST", "/person-names", map[string]interface{}{
		"title":       "DR",
		"given_name":  "Grace",
		"family_name": family,
		"name_type":   "REGISTERED",
	}, authToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode, createResp.Message)
	nameID := createResp.GetString("id")

	getResp := makeRequest("GET", "/person-names/"+nameID, nil, "")
	assert.True(t, getResp.IsSuccess())
	assert.Equal(t, family, getResp.Data["family_name"])
	assert.Equal(t, "DR", getResp.Data["title"])

	// PUT replaces the whole record, so the title goes away
	updateResp := makeRequest("PUT", "/person-names/"+nameID, map[string]interface{}{
		"given_name":  "Grace",
		"middle_name": "Brewster",
		"family_name": family,
	}, authToken)
	assert.Equal(t, http.StatusOK, updateResp.StatusCode, updateResp.Message)

	verifyResp := makeRequest("GET", "/person-names/"+nameID, nil, "")
	assert.Equal(t, "Brewster", verifyResp.Data["middle_name"])
	assert.Nil(t, verifyResp.Data["title"])

	deleteResp := makeRequest("DELETE", "/person-names/"+nameID, nil, authToken)
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	goneResp := makeRequest("GET", "/person-names/"+nameID, nil, "")
	assert.Equal(t, http.StatusNotFound, goneResp.StatusCode)
	assert.Equal(t, "not_found", goneResp.Code)
}

func TestPersonNameRules(t *testing.T) {
	t.Run("single structured part", func(t *testing.T) {
		resp := makeRequest("POST", "/person-names", map[string]interface{}{"given_name": "Cher"}, authToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "cross_field_validation_failure", resp.Code)
	})

	t.Run("unstructured only", func(t *testing.T) {
		resp := makeRequest("POST", "/person-names", map[string]interface{}{"unstructured_name": "Cher"}, authToken)
		assert.Equal(t, http.StatusCreated, resp.StatusCode, resp.Message)
	})

	t.Run("unknown title", func(t *testing.T) {
		resp := makeRequest("POST", "/person-names", map[string]interface{}{
			"title":       "CAPTAIN",
			"given_name":  "James",
			"family_name": "Kirk",
		}, authToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "choice_constraint_violation", resp.Code)
		assert.Equal(t, "title", resp.Field)
	})

	t.Run("suffix too long", func(t *testing.T) {
		resp := makeRequest("POST", "/person-names", map[string]interface{}{
			"given_name":  "James",
			"family_name": "Kirk",
			"suffix":      "abcdefghijklmnopqrstuvwxyz",
		}, authToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "field_constraint_violation", resp.Code)
		assert.Equal(t, "suffix", resp.Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		resp := makeRequest("POST", "/person-names", map[string]interface{}{
			"given_name":     "James",
			"family_name":    "Kirk",
			"preferred_name": "yes",
		}, authToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "field_constraint_violation", resp.Code)
	})
}

func TestDemographicPersonalFlow(t *testing.T) {
	nameID := createTestPersonName(t)
	addressID := create(t, "/address-details", map[string]interface{}{
		"address_type":  "RESIDENTIAL",
		"address_line1": "1 Analytical Row",
		"post_code":     "N1 1AA",
	})
	identifierID := create(t, "/identifiers", map[string]interface{}{
		"identifier": uniqueName("NHS"),
		"issuer":     "NHS",
	})

	personID := create(t, "/demographic-personals", map[string]interface{}{
		"person_name_ids":     []string{nameID},
		"address_details_ids": []string{addressID},
		"gender":              "FEMALE",
	})

	getResp := makeRequest("GET", "/demographic-personals/"+personID, nil, "")
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, []string{nameID}, getResp.GetIDs("person_name_ids"))
	assert.Equal(t, []string{addressID}, getResp.GetIDs("address_details_ids"))

	linkPath := fmt.Sprintf("/demographic-personals/%s/identifiers/%s", personID, identifierID)
	assert.Equal(t, http.StatusNoContent, makeRequest("POST", linkPath, nil, authToken).StatusCode)
	// linking the same pair again changes nothing
	assert.Equal(t, http.StatusNoContent, makeRequest("POST", linkPath, nil, authToken).StatusCode)

	getResp = makeRequest("GET", "/demographic-personals/"+personID, nil, "")
	assert.Equal(t, []string{identifierID}, getResp.GetIDs("identifier_ids"))

	// deleting the linked address leaves the person in place
	assert.Equal(t, http.StatusNoContent, makeRequest("DELETE", "/address-details/"+addressID, nil, authToken).StatusCode)
	getResp = makeRequest("GET", "/demographic-personals/"+personID, nil, "")
	require.True(t, getResp.IsSuccess())
	assert.Empty(t, getResp.GetIDs("address_details_ids"))

	assert.Equal(t, http.StatusNoContent, makeRequest("DELETE", linkPath, nil, authToken).StatusCode)
	missing := makeRequest("DELETE", linkPath, nil, authToken)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestDemographicPersonalRejectsDanglingLink(t *testing.T) {
	resp := makeRequest("POST", "/demographic-personals", map[string]interface{}{
		"person_name_ids": []string{"4b0f3c8e-6f1b-4d3e-9a57-0d0c5c1c9d11"},
	}, authToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "field_constraint_violation", resp.Code)
}

func TestAddressDetailsRequiresType(t *testing.T) {
	resp := makeRequest("POST", "/address-details", map[string]interface{}{"address_line1": "Nowhere"}, authToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "field_constraint_violation", resp.Code)
	assert.Equal(t, "address_type", resp.Field)

	resp = makeRequest("POST", "/address-details", map[string]interface{}{"address_type": "VACATION"}, authToken)
	assert.Equal(t, "choice_constraint_violation", resp.Code)
}

func TestWritesRequireToken(t *testing.T) {
	resp := makeRequest("POST", "/body-sites", map[string]interface{}{"body_site_name": "Knee"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = makeRequest("POST", "/body-sites", map[string]interface{}{"body_site_name": "Knee"}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = makeRequest("GET", "/body-sites", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
