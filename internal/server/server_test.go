package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/afonsomatos/recibo/internal/common"
	"github.com/afonsomatos/recibo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	summary  *model.RunSummary
	err      error
	tenantID int64
	path     string
}

func (s *stubRunner) RunOnce(ctx context.Context, tenantID int64, sourcePath string) (*model.RunSummary, error) {
	s.tenantID = tenantID
	s.path = sourcePath
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func newTestServer(runner Runner) *httptest.Server {
	return httptest.NewServer(New("127.0.0.1:0", runner).httpServer.Handler)
}

func TestHandleSync(t *testing.T) {
	now := time.Now()
	runner := &stubRunner{
		summary: &model.RunSummary{
			StartedAt:          now,
			FinishedAt:         now.Add(2 * time.Second),
			TenantID:           7,
			TotalCandidates:    2,
			DocumentsProcessed: 1,
			DocumentsFailed:    1,
			Results: []model.CandidateResult{
				{Filename: "a.pdf", Outcome: model.OutcomeProcessed, DocumentID: "doc-1", ExpenseID: "exp-1"},
				{Filename: "b.pdf", Outcome: model.OutcomeFailed, ErrorKind: common.KindDownload, Error: "timeout"},
			},
		},
	}
	server := newTestServer(runner)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sync", "application/json",
		strings.NewReader(`{"tenant_id": 7, "source_path": "/srv/inbox/7"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), runner.tenantID)
	assert.Equal(t, "/srv/inbox/7", runner.path)

	var body syncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(7), body.TenantID)
	assert.Equal(t, 1, body.Processed)
	assert.Equal(t, 1, body.Failed)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "a.pdf", body.Results[0].Filename)
	assert.Equal(t, "download", body.Results[1].ErrorKind)
}

func TestHandleSyncErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		runnerErr  error
		wantStatus int
	}{
		{"malformed body", `{"tenant_id": `, nil, http.StatusBadRequest},
		{"invalid tenant", `{"tenant_id": 0, "source_path": "/x"}`, common.ErrInvalidTenant, http.StatusBadRequest},
		{"missing source", `{"tenant_id": 1}`, common.ErrNoSource, http.StatusBadRequest},
		{"internal failure", `{"tenant_id": 1, "source_path": "/x"}`, errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(&stubRunner{err: tt.runnerErr})
			defer server.Close()

			resp, err := http.Post(server.URL+"/api/sync", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleSyncMethodNotAllowed(t *testing.T) {
	server := newTestServer(&stubRunner{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/sync")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&stubRunner{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
