package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tvara "github.com/tvarahq/tvara-go"
	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/model"
	"github.com/tvarahq/tvara-go/workflow"
)

func newTestToolkit(t *testing.T) *tvara.Toolkit {
	t.Helper()

	backend := model.NewMockModel("mock-model", "Echo response")
	a, err := agent.New("echo", func(o *agent.Options) {
		o.Model = "mock-model"
		o.APIKey = "test-key"
		o.Backend = backend
	})
	require.NoError(t, err)

	toolkit := tvara.New()
	require.NoError(t, toolkit.RegisterAgent(a))
	return toolkit
}

func postRun(t *testing.T, handler http.Handler, path string, req RunRequest) (*httptest.ResponseRecorder, RunResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))

	var resp RunResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRunAgent(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec, resp := postRun(t, srv.Handler(), "/run", RunRequest{Target: "echo", Input: "hi"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "agent", resp.ExecutionType)
	assert.Equal(t, "Echo response", resp.Result)
}

func TestRunImplicitTarget(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec, resp := postRun(t, srv.Handler(), "/run", RunRequest{Input: "hi"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Echo response", resp.Result)
}

func TestRunTargetInPath(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec, resp := postRun(t, srv.Handler(), "/run/echo", RunRequest{Input: "hi"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Echo response", resp.Result)
}

func TestRunUnknownTarget(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec, _ := postRun(t, srv.Handler(), "/run", RunRequest{Target: "nope", Input: "hi"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `no agent or workflow named "nope"`)
}

func TestRunWorkflow(t *testing.T) {
	toolkit := newTestToolkit(t)

	wf, err := workflow.New("pipeline", func(o *workflow.Options) {
		o.Mode = workflow.Sequential
		o.Agents = []*agent.Agent{toolkit.Agent("echo")}
	})
	require.NoError(t, err)
	require.NoError(t, toolkit.RegisterWorkflow(wf))

	srv := New(toolkit)
	rec, resp := postRun(t, srv.Handler(), "/run", RunRequest{Target: "pipeline", Input: "hi"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "workflow", resp.ExecutionType)
	assert.Equal(t, "Echo response", resp.Result)
	assert.NotEmpty(t, resp.AgentOutputs)
}

func TestRunInvalidBody(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", bytes.NewReader([]byte("{not json"))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestHealth(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInfo(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var info tvara.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Len(t, info.Agents, 1)
	assert.Equal(t, "echo", info.Agents[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := New(newTestToolkit(t), func(o *Options) {
		o.MetricsRegistry = reg
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsDisabledByDefault(t *testing.T) {
	srv := New(newTestToolkit(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
