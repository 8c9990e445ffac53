package hunter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain-search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Acme", r.URL.Query().Get("company"))
		assert.Equal(t, "personal", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope[DomainSearchData]{Data: DomainSearchData{
			Domain:       "acme.fr",
			Organization: "Acme SAS",
			Emails: []EmailResult{
				{Value: "jean@acme.fr", FirstName: "Jean", LastName: "Dupont", Confidence: 94},
			},
		}})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	data, err := client.DomainSearch(context.Background(), DomainSearchRequest{
		Company: "Acme",
		Type:    "personal",
	})

	require.NoError(t, err)
	assert.Equal(t, "acme.fr", data.Domain)
	require.Len(t, data.Emails, 1)
	assert.Equal(t, "jean@acme.fr", data.Emails[0].Value)
	assert.Equal(t, 94, data.Emails[0].Confidence)
}

func TestCompanyFind_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/find", r.URL.Path)
		assert.Equal(t, "acme.fr", r.URL.Query().Get("domain"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope[CompanyData]{Data: CompanyData{
			Domain:   "acme.fr",
			Name:     "Acme",
			Industry: "Software",
			Metrics:  CompanyMetrics{Employees: "51-200"},
		}})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	data, err := client.CompanyFind(context.Background(), "acme.fr")

	require.NoError(t, err)
	assert.Equal(t, "51-200", data.Metrics.Employees)
	assert.Equal(t, "Software", data.Industry)
}

func TestVerifyEmail_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-verifier", r.URL.Path)
		assert.Equal(t, "jean@acme.fr", r.URL.Query().Get("email"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope[VerificationData]{Data: VerificationData{
			Status: "valid",
			Result: "deliverable",
			Score:  97,
			Email:  "jean@acme.fr",
		}})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	data, err := client.VerifyEmail(context.Background(), "jean@acme.fr")

	require.NoError(t, err)
	assert.Equal(t, "valid", data.Status)
	assert.Equal(t, 97, data.Score)
}

func TestDomainSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"details":"rate limit"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.DomainSearch(context.Background(), DomainSearchRequest{Company: "Acme"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestVerified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data VerificationData
		want bool
	}{
		{"valid always passes", VerificationData{Status: "valid", Score: 10}, true},
		{"accept_all above threshold", VerificationData{Status: "accept_all", Score: 80}, true},
		{"accept_all below threshold", VerificationData{Status: "accept_all", Score: 79}, false},
		{"invalid never passes", VerificationData{Status: "invalid", Score: 100}, false},
		{"unknown never passes", VerificationData{Status: "unknown", Score: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.data.Verified(80))
		})
	}
}

func TestRateLimit_Waits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope[VerificationData]{Data: VerificationData{Status: "valid"}})
	}))
	defer srv.Close()

	// A cancelled context must surface through the limiter wait.
	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0.001))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.VerifyEmail(ctx, "jean@acme.fr")
	require.Error(t, err)
}
