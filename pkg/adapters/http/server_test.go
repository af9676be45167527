package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinoflow/kinoflow/pkg/adapters/memory"
	"github.com/kinoflow/kinoflow/pkg/builder"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/session"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(
		memory.NewRepository(),
		session.NewManager(memory.NewStore()),
		WithRecorder(memory.NewRecorder()),
		WithMetrics(prometheus.NewRegistry()),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func createGraph(t *testing.T, ts *httptest.Server) domain.Graph {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/graphs", map[string]string{"name": "Demo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var g domain.Graph
	require.NoError(t, json.Unmarshal(body, &g))
	return g
}

func addStep(t *testing.T, ts *httptest.Server, graphID string) domain.Node {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/steps", ts.URL, graphID),
		map[string]any{"position": map[string]float64{"x": 10, "y": 10}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var n domain.Node
	require.NoError(t, json.Unmarshal(body, &n))
	return n
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndFetchGraph(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	require.NotEmpty(t, g.ID)
	assert.Equal(t, "Demo", g.Name)
	require.NotNil(t, g.StartNode())

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/graphs/"+g.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched domain.Graph
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, g.ID, fetched.ID)
}

func TestGetMissingGraph(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/graphs/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStepAuthoringFlow(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)

	step := addStep(t, ts, g.ID)
	assert.Equal(t, "Step 1", step.Label)
	assert.Equal(t, domain.MechanismOpenEnded, step.Mechanism)

	// Rename and switch mechanism in one patch.
	resp, body := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/graphs/%s/steps/%s", ts.URL, g.ID, step.ID),
		map[string]any{
			"label":           "Interested?",
			"answerMechanism": "multiple-choice",
			"mechanismConfig": map[string]any{"options": []string{"Yes", "No"}},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var patched domain.Node
	require.NoError(t, json.Unmarshal(body, &patched))
	assert.Equal(t, "Interested?", patched.Label)
	assert.Equal(t, domain.MechanismMultipleChoice, patched.Mechanism)
	require.Len(t, patched.Rules, 2)

	// Wire rule 0 to end, then commit: rule 1 stays unwired and warns.
	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/graphs/%s/steps/%s/rules/0", ts.URL, g.ID, step.ID),
		map[string]string{"field": "targetType", "value": "end"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/steps/%s/commit", ts.URL, g.ID, step.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var committed struct {
		Warnings []builder.Warning `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(body, &committed))
	require.Len(t, committed.Warnings, 1)
	assert.Equal(t, "option_1", committed.Warnings[0].Condition)
}

func TestPatchRejectsUnknownMechanism(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	step := addStep(t, ts, g.ID)

	resp, _ := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/graphs/%s/steps/%s", ts.URL, g.ID, step.ID),
		map[string]any{"answerMechanism": "telepathy"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateAndDeleteStep(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	step := addStep(t, ts, g.ID)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/steps/%s/duplicate", ts.URL, g.ID, step.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dup domain.Node
	require.NoError(t, json.Unmarshal(body, &dup))
	assert.Equal(t, "Step 1 (Copy)", dup.Label)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/graphs/%s/steps/%s", ts.URL, g.ID, dup.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/graphs/"+g.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched domain.Graph
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, 1, fetched.StepCount())
}

func TestIssuesEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	addStep(t, ts, g.ID)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/graphs/"+g.ID+"/issues", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "issues")
}

func TestPlaybackFlow(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	step := addStep(t, ts, g.ID)

	// Wire the step's text rule to end with a custom message.
	doJSON(t, http.MethodPut, fmt.Sprintf("%s/graphs/%s/steps/%s/rules/2", ts.URL, g.ID, step.ID),
		map[string]string{"field": "targetType", "value": "end"})
	doJSON(t, http.MethodPut, fmt.Sprintf("%s/graphs/%s/steps/%s/rules/2", ts.URL, g.ID, step.ID),
		map[string]string{"field": "endMessage", "value": "Much obliged!"})

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/sessions", ts.URL, g.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var st domain.SessionState
	require.NoError(t, json.Unmarshal(body, &st))
	require.NotEmpty(t, st.SessionID)
	assert.Equal(t, step.ID, st.CurrentNodeID)

	resp, body = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/graphs/%s/sessions/%s/answers", ts.URL, g.ID, st.SessionID),
		map[string]any{"answer": map[string]any{"channel": "text", "value": "hello"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var result submitAnswerResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, domain.OutcomeEnd, result.Outcome.Kind)
	assert.Equal(t, "Much obliged!", result.Outcome.EndMessage)
	assert.True(t, result.Session.Completed)

	// Submitting on a completed session conflicts.
	resp, _ = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/graphs/%s/sessions/%s/answers", ts.URL, g.ID, st.SessionID),
		map[string]any{"answer": map[string]any{"skipped": true}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmitToUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	g := createGraph(t, ts)
	addStep(t, ts, g.ID)

	resp, _ := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/graphs/%s/sessions/ghost/answers", ts.URL, g.ID),
		map[string]any{"answer": map[string]any{"skipped": true}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionRespectsResponseCapWindow(t *testing.T) {
	srv, ts := newTestServer(t)
	g := createGraph(t, ts)

	// Close the campaign window in the stored document.
	ctx := context.Background()
	stored, err := srv.Repo.Load(ctx, g.ID)
	require.NoError(t, err)
	stored.Settings.WindowEnd = "2001-01-01T00:00"
	require.NoError(t, srv.Repo.Save(ctx, stored))

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/sessions", ts.URL, g.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "campaign ended")
}

func TestSessionPasswordGate(t *testing.T) {
	srv, ts := newTestServer(t)
	g := createGraph(t, ts)

	ctx := context.Background()
	stored, err := srv.Repo.Load(ctx, g.ID)
	require.NoError(t, err)
	stored.Settings.Password = "hunter2"
	require.NoError(t, srv.Repo.Save(ctx, stored))

	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/sessions", ts.URL, g.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/graphs/%s/sessions", ts.URL, g.ID),
		map[string]string{"password": "hunter2"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/graphs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
