package smartlead

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLeads_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaigns/camp-1/leads", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		var req AddLeadsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.LeadList, 2)
		assert.Equal(t, "jean@acme.fr", req.LeadList[0].Email)
		assert.Equal(t, "Quick question", req.LeadList[0].CustomFields["subject_line"])
		assert.False(t, req.Settings.IgnoreDuplicateLeadsInOtherCamps)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AddLeadsResponse{
			OK:                     true,
			TotalLeads:             2,
			AlreadyAddedToCampaign: 0,
			InvalidEmailCount:      0,
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.AddLeads(context.Background(), "camp-1", AddLeadsRequest{
		LeadList: []Lead{
			{Email: "jean@acme.fr", FirstName: "Jean", CustomFields: map[string]string{"subject_line": "Quick question"}},
			{Email: "marie@beta.fr"},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.TotalLeads)
}

func TestAddLeads_RejectsOversizedBatch(t *testing.T) {
	t.Parallel()

	client := NewClient("test-key")
	batch := make([]Lead, MaxBatchSize+1)

	_, err := client.AddLeads(context.Background(), "camp-1", AddLeadsRequest{LeadList: batch})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max")
}

func TestAddLeads_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"message":"invalid campaign"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.AddLeads(context.Background(), "camp-1", AddLeadsRequest{
		LeadList: []Lead{{Email: "x@acme.fr"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestGetCampaign_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/campaigns/camp-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"name":"Q3 outbound","status":"ACTIVE"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	campaign, err := client.GetCampaign(context.Background(), "camp-1")

	require.NoError(t, err)
	assert.Equal(t, json.Number("42"), campaign.ID)
	assert.Equal(t, "Q3 outbound", campaign.Name)
	assert.Equal(t, "ACTIVE", campaign.Status)
}
