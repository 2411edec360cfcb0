package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func TestNoOpAlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NoOp{}.NotifyResult(context.Background(), model.VerificationResult{}))
}

func TestHTTPClientPostsResultWithBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody model.VerificationResult

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok123")
	result := model.VerificationResult{ID: uuid.New(), JobID: uuid.New(), Passed: true}

	err := client.NotifyResult(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, result.ID, gotBody.ID)
}

func TestHTTPClientReturnsErrorOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	err := client.NotifyResult(context.Background(), model.VerificationResult{})
	assert.Error(t, err)
}
