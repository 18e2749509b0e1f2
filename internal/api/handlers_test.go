package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arifaulakh/AscentCast/internal/config"
	"github.com/arifaulakh/AscentCast/internal/insight"
	"github.com/arifaulakh/AscentCast/internal/llm"
	"github.com/arifaulakh/AscentCast/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func testServerConfig(workers int) config.Config {
	return config.Config{
		APIKey:                   testAPIKey,
		ChunkSize:                200,
		ChunkOverlap:             20,
		SynthesisInputBudget:     100000,
		MaxConcurrentExtractions: 2,
		MaxRetryAttempts:         2,
		BackoffBaseDelay:         time.Millisecond,
		BackoffMaxDelay:          5 * time.Millisecond,
		ExtractionFailurePolicy:  config.FailurePolicySkippable,
		WorkerCount:              workers,
		MaxQueueSize:             8,
		MaxUploadBytes:           1 << 20,
		JobTTL:                   time.Hour,
		ReportCacheSize:          8,
	}
}

// newTestServer builds a server backed by the mock completer. With
// workers=0 submitted jobs stay queued, which makes not-ready paths
// deterministic.
func newTestServer(t *testing.T, workers int) *Server {
	t.Helper()
	cfg := testServerConfig(workers)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	analyzer := pipeline.NewAnalyzer(cfg, llm.NewMockCompleter(), log)
	cache, err := pipeline.NewReportCache(cfg.ReportCacheSize)
	require.NoError(t, err)
	orch := pipeline.NewOrchestrator(cfg, analyzer, cache, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	stats := llm.NewStats(time.Hour)
	stats.Record(42 * time.Millisecond)
	return NewServer(orch, stats, "mock", log, cfg)
}

func transcriptUpload(t *testing.T, userContext string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "episode.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "Guest: The best career advice I ever got was to write things down. Keep a brag document and review it with your manager every quarter.")
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("user_context", userContext))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthRejectsMissingAndWrongKey(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyzeLifecycle(t *testing.T) {
	srv := newTestServer(t, 1)

	body, contentType := transcriptUpload(t, "I am a backend engineer at a seed-stage startup.")
	req := authedRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var submitted struct {
		JobID     string `json:"job_id"`
		PollURL   string `json:"poll_url"`
		ReportURL string `json:"report_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.JobID)

	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, authedRequest(http.MethodGet, submitted.PollURL, nil))
		if w.Code != http.StatusOK {
			return false
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status == pipeline.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond, "job never completed")

	// JSON report.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, authedRequest(http.MethodGet, submitted.ReportURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var report insight.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.False(t, report.Partial)
	assert.NotEmpty(t, report.Sections)
	assert.Equal(t, "mock", report.Provenance.Model)

	// Markdown rendering of the same report.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, authedRequest(http.MethodGet, submitted.ReportURL+"?format=markdown", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "## Key Career Lessons")
}

func TestAnalyzeRejectsUnsupportedType(t *testing.T) {
	srv := newTestServer(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "episode.mp3")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "audio bytes")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := authedRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeRequiresFile(t *testing.T) {
	srv := newTestServer(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_context", "no file attached"))
	require.NoError(t, mw.Close())

	req := authedRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, authedRequest(http.MethodGet, "/api/analyze/no-such-job/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportNotReady(t *testing.T) {
	// No workers, so the job stays queued.
	srv := newTestServer(t, 0)

	body, contentType := transcriptUpload(t, "")
	req := authedRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var submitted struct {
		ReportURL string `json:"report_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, authedRequest(http.MethodGet, submitted.ReportURL, nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBatchAnalyze(t *testing.T) {
	srv := newTestServer(t, 1)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"ep1.txt", "ep2.txt"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, "Career advice from "+name+": keep shipping, ask for feedback early, and write down what you learn.")
		require.NoError(t, err)
	}
	fw, err := mw.CreateFormFile("files", "cover.png")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "png bytes")
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("user_context", "I lead a platform team."))
	require.NoError(t, mw.Close())

	req := authedRequest(http.MethodPost, "/api/analyze/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Jobs []struct {
			Filename string `json:"filename"`
			JobID    string `json:"job_id"`
			PollURL  string `json:"poll_url"`
			Error    string `json:"error"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 3)

	assert.NotEmpty(t, resp.Jobs[0].JobID)
	assert.NotEmpty(t, resp.Jobs[1].JobID)
	assert.Contains(t, resp.Jobs[2].Error, "unsupported file type")

	for _, job := range resp.Jobs[:2] {
		pollURL := job.PollURL
		require.Eventually(t, func() bool {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, authedRequest(http.MethodGet, pollURL, nil))
			var snap pipeline.JobSnapshot
			if json.Unmarshal(w.Body.Bytes(), &snap) != nil {
				return false
			}
			return snap.Status == pipeline.StatusCompleted
		}, 5*time.Second, 10*time.Millisecond, "batch job %s never completed", job.Filename)
	}
}

func TestLLMStats(t *testing.T) {
	srv := newTestServer(t, 0)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, authedRequest(http.MethodGet, "/api/stats/llm", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Model      string            `json:"model"`
		Stats      llm.StatsSnapshot `json:"stats"`
		QueueDepth int               `json:"queue_depth"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mock", resp.Model)
	assert.Equal(t, 1, resp.Stats.Count)
	assert.Equal(t, 0, resp.Stats.Failures)
	assert.Equal(t, 0, resp.QueueDepth)
}
