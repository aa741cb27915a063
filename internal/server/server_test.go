package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/domain"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv, err := New(opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOpenAPIDocument(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "openapi:")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetWorkflow(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/workflows/deliberate-v1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var w domain.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&w))
	assert.Equal(t, "deliberate-v1", w.ID)
	assert.Len(t, w.Nodes, 3)
	assert.Len(t, w.Edges, 2)
}

func TestGetWorkflowNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/workflows/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateConversation(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/conversations", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var conv domain.Conversation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
	assert.NotEmpty(t, conv.ID)

	got, err := http.Get(ts.URL + "/conversations/" + conv.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)
}

func TestGetConversationNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/conversations/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendMessageStreamsScript(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/conversations/conv-1/messages", map[string]string{
		"content":    "why is the sky blue?",
		"workflowId": "deliberate-v1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var types []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame))
		types = append(types, frame["type"].(string))
	}
	require.NoError(t, scanner.Err())

	// Three stages, each start+complete, then title and completion.
	assert.Equal(t, []string{
		"stage_start", "stage_complete",
		"stage_start", "stage_complete",
		"stage_start", "stage_complete",
		"title_complete", "workflow_complete",
	}, types)
}

func TestSendMessagePersistsTranscript(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/conversations/conv-1/messages", map[string]string{
		"content":    "why is the sky blue?",
		"workflowId": "deliberate-v1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := io.Copy(io.Discard, resp.Body)
	require.NoError(t, err)

	got, err := http.Get(ts.URL + "/conversations/conv-1")
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var conv domain.Conversation
	require.NoError(t, json.NewDecoder(got.Body).Decode(&conv))
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "why is the sky blue?", conv.Messages[0].Content)
	assert.NotNil(t, conv.Messages[1].Synthesis)
	assert.Equal(t, "why is the sky blue?", conv.Title)
}

func TestSendMessageValidation(t *testing.T) {
	ts := newTestServer(t)

	t.Run("EmptyContent", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/conversations/conv-1/messages", map[string]string{
			"workflowId": "deliberate-v1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownWorkflow", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/conversations/conv-1/messages", map[string]string{
			"content":    "hello",
			"workflowId": "ghost",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCustomScript(t *testing.T) {
	script := func(w domain.Workflow, content string) []Frame {
		return []Frame{
			{Type: "stage_start", StageID: "stage1"},
			{Type: "stage_error", StageID: "stage1", Message: "worker pool exhausted"},
		}
	}
	ts := newTestServer(t, WithScript(script))

	resp := postJSON(t, ts.URL+"/conversations/conv-1/messages", map[string]string{
		"content":    "hello",
		"workflowId": "deliberate-v1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "worker pool exhausted")
}
