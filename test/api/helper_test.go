package api_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Helper function to generate unique names
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// create posts a record and returns its id.
func create(t *testing.T, path string, body map[string]interface{}) string {
	t.Helper()
	resp := makeRequest("POST", path, body, authToken)
	require.Equal(t, 201, resp.StatusCode, "create %s: %s %s", path, resp.Code, resp.Message)
	id := resp.GetString("id")
	require.NotEmpty(t, id)
	return id
}

func createTestPersonName(t *testing.T) string {
	return create(t, "/person-names", map[string]interface{}{
		"given_name":  "Ada",
		"family_name": uniqueName("Lovelace"),
	})
}

func createTestBodySite(t *testing.T, name string) string {
	return create(t, "/body-sites", map[string]interface{}{"body_site_name": name})
}

func createTestSymptom(t *testing.T, name string) string {
	return create(t, "/symptom-signs", map[string]interface{}{"symptom_sign_name": name})
}
