package schemas

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/jobtrack/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationsSchema_ValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(Applications), &v))
	assert.Equal(t, "array", v["type"])
}

func TestApplicationsSchema_AcceptsMinimalRecord(t *testing.T) {
	doc := `[{"id":1,"companyName":"Acme","jobTitle":"Dev","jobType":"Contract","status":"Applied","location":"Remote"}]`
	assert.NoError(t, schemas.ValidateJSONBytes(Applications, []byte(doc)))
}

func TestApplicationsSchema_RejectsUnknownStatus(t *testing.T) {
	doc := `[{"id":1,"companyName":"Acme","jobTitle":"Dev","jobType":"Contract","status":"Ghosted","location":"Remote"}]`
	err := schemas.ValidateJSONBytes(Applications, []byte(doc))
	require.Error(t, err)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
}

func TestApplicationsSchema_RejectsBadDate(t *testing.T) {
	doc := `[{"id":1,"companyName":"Acme","jobTitle":"Dev","jobType":"Contract","status":"Applied","location":"Remote","appliedDate":"Jan 5"}]`
	assert.Error(t, schemas.ValidateJSONBytes(Applications, []byte(doc)))
}
