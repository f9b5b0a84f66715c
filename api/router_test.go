package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/fileconv-go/api/handlers"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
	"github.com/yourusername/fileconv-go/internal/infrastructure"
	"github.com/yourusername/fileconv-go/pkg/logger"
)

// fakeSubmitter stands in for the orchestrator
type fakeSubmitter struct {
	dir      string
	filename string
	err      error
	// release, when set, holds the submission until closed
	release chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, sel domain.Selection, sink domain.ProgressSink) domain.TransferOutcome {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.Failure(domain.NewError(domain.KindCancelled, "Conversion cancelled"))
		}
	}

	sink.OnProgress(domain.ProgressEvent{Stage: domain.StageUpload, Percent: 30, Label: domain.StageUpload.Label()})
	if f.err != nil {
		sink.OnProgress(domain.ProgressEvent{Stage: domain.StageFailed, Percent: 30, Label: f.err.Error()})
		return domain.Failure(f.err)
	}

	tmp, err := os.CreateTemp(f.dir, "artifact-*.part")
	if err != nil {
		return domain.Failure(err)
	}
	n, _ := tmp.WriteString("converted:" + sel.TargetFormat)
	tmp.Close()

	sink.OnProgress(domain.ProgressEvent{Stage: domain.StageDone, Percent: 100, Label: f.filename})
	return domain.Success(&domain.Artifact{Path: tmp.Name(), Size: int64(n)}, f.filename)
}

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	return p.err
}

type gateway struct {
	router     *gin.Engine
	controller *app.Controller
	submitter  *fakeSubmitter
	pinger     *fakePinger
	hub        *handlers.ProgressHub
	repo       *infrastructure.SQLiteConversionRepository
	inputDir   string
	downloads  string
	logsDir    string
}

func newGateway(t *testing.T, withHistory bool) *gateway {
	t.Helper()

	root := t.TempDir()
	g := &gateway{
		submitter: &fakeSubmitter{dir: t.TempDir(), filename: "photo.pdf"},
		pinger:    &fakePinger{},
		hub:       handlers.NewProgressHub(zap.NewNop()),
		inputDir:  filepath.Join(root, "input"),
		downloads: filepath.Join(root, "downloads"),
		logsDir:   filepath.Join(root, "logs"),
	}
	require.NoError(t, os.MkdirAll(g.inputDir, 0755))
	require.NoError(t, os.MkdirAll(g.downloads, 0755))

	opts := []app.ControllerOption{app.WithProgressSink(g.hub)}
	var repo domain.ConversionRepository
	if withHistory {
		var err error
		g.repo, err = infrastructure.NewSQLiteConversionRepository(filepath.Join(root, "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { g.repo.Close() })
		repo = g.repo
		opts = append(opts, app.WithHistory(g.repo))
	}

	g.controller = app.NewController(
		app.NewValidator(domain.LimitsConfig{}),
		g.submitter,
		infrastructure.NewDownloadWriter(g.downloads, zap.NewNop()),
		zap.NewNop(),
		opts...,
	)

	g.router = SetupRouter(RouterDeps{
		Ctx:        context.Background(),
		Controller: g.controller,
		Pinger:     g.pinger,
		Hub:        g.hub,
		Repo:       repo,
		LogsDir:    g.logsDir,
		Logger:     zap.NewNop(),
	})
	return g
}

func (g *gateway) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func (g *gateway) writeInput(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(g.inputDir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// selectAndTarget prepares a submittable selection
func (g *gateway) selectAndTarget(t *testing.T, name, target string) {
	t.Helper()
	w := g.do(t, http.MethodPost, "/api/v1/selection", gin.H{"paths": []string{g.writeInput(t, name, "data")}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = g.do(t, http.MethodPut, "/api/v1/selection/target", gin.H{"format": target})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (g *gateway) waitIdle(t *testing.T) app.View {
	t.Helper()
	require.Eventually(t, func() bool { return !g.controller.View().Busy }, 2*time.Second, 5*time.Millisecond)
	return g.controller.View()
}

type errorBody struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind"`
	View  app.View `json:"view"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, handlers.Version, resp.Version)
	assert.False(t, resp.Conversion.Busy)
}

func TestReady(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	g.pinger.err = errors.New("Backend not ready: Service Unavailable")
	w = g.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Backend not ready")
}

func TestFormats_List(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodGet, "/api/v1/formats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Entries []domain.FormatEntry `json:"entries"`
	}](t, w)
	assert.Len(t, resp.Entries, 28)
	assert.Equal(t, "header-document", resp.Entries[0].Code)
}

func TestFormats_Targets(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodGet, "/api/v1/formats/targets?extension=.PNG", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Category  string               `json:"category"`
		Extension string               `json:"extension"`
		Entries   []domain.FormatEntry `json:"entries"`
	}](t, w)
	assert.Equal(t, "image", resp.Category)
	assert.Equal(t, "png", resp.Extension)

	codes := make([]string, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "pdf")
	assert.Contains(t, codes, "jpg")
	assert.NotContains(t, codes, "png")
	assert.NotContains(t, codes, "docx")

	w = g.do(t, http.MethodGet, "/api/v1/formats/targets?category=audio", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"pdf"`)
}

func TestFormats_TargetsErrors(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodGet, "/api/v1/formats/targets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/formats/targets?extension=xyz", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Unsupported file type: .xyz", decode[errorBody](t, w).Error)

	w = g.do(t, http.MethodGet, "/api/v1/formats/targets?category=spreadsheet", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, string(domain.KindNoCompatibleTargets), decode[errorBody](t, w).Kind)
}

func TestSelection_Flow(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodPost, "/api/v1/selection", gin.H{"paths": []string{g.writeInput(t, "photo.png", "png-bytes")}})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[app.View](t, w)
	require.Len(t, view.Selection.Files, 1)
	assert.Equal(t, "photo.png", view.Selection.Files[0].Name)
	assert.Equal(t, int64(9), view.Selection.Files[0].SizeBytes)
	assert.True(t, view.Targets.Contains("pdf"))
	assert.False(t, view.Submittable)
	assert.Equal(t, "Select Format to Convert", view.SubmitLabel)

	w = g.do(t, http.MethodPut, "/api/v1/selection/target", gin.H{"format": "pdf"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[app.View](t, w)
	assert.True(t, view.Submittable)
	assert.Equal(t, "Convert to PDF", view.SubmitLabel)

	w = g.do(t, http.MethodGet, "/api/v1/selection", nil)
	assert.Equal(t, "pdf", decode[app.View](t, w).Selection.TargetFormat)

	w = g.do(t, http.MethodDelete, "/api/v1/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[app.View](t, w)
	assert.Empty(t, view.Selection.Files)
	assert.Empty(t, view.Selection.TargetFormat)
}

func TestSelection_Rejections(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodPost, "/api/v1/selection", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(t, http.MethodPost, "/api/v1/selection", gin.H{"paths": []string{filepath.Join(g.inputDir, "missing.png")}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mixed := []string{g.writeInput(t, "a.png", "x"), g.writeInput(t, "b.mp3", "y")}
	w = g.do(t, http.MethodPost, "/api/v1/selection", gin.H{"paths": mixed})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, string(domain.KindIncompatibleFileSet), body.Kind)
	assert.Equal(t, body.Error, body.View.Status.Text)
	assert.Empty(t, body.View.Selection.Files)

	g.selectAndTarget(t, "c.png", "jpg")
	w = g.do(t, http.MethodPut, "/api/v1/selection/target", gin.H{"format": "mp3"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, string(domain.KindInvalidTarget), decode[errorBody](t, w).Kind)
}

func TestConvert_NotSubmittable(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodPost, "/api/v1/convert", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, string(domain.KindNotSubmittable), body.Kind)
	assert.Equal(t, "Please select a file and target format.", body.Error)
}

func TestConvert_SuccessRecordsHistory(t *testing.T) {
	g := newGateway(t, true)
	g.selectAndTarget(t, "photo.png", "pdf")

	w := g.do(t, http.MethodPost, "/api/v1/convert", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	view := g.waitIdle(t)
	assert.Equal(t, "Success! Saved photo.pdf", view.Status.Text)
	assert.Equal(t, filepath.Join(g.downloads, "photo.pdf"), view.SavedPath)
	data, err := os.ReadFile(view.SavedPath)
	require.NoError(t, err)
	assert.Equal(t, "converted:pdf", string(data))

	var records []*domain.ConversionRecord
	require.Eventually(t, func() bool {
		w = g.do(t, http.MethodGet, "/api/v1/conversions?status=completed", nil)
		records = decode[[]*domain.ConversionRecord](t, w)
		return len(records) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "pdf", records[0].TargetFormat)
	assert.Equal(t, "photo.pdf", records[0].Filename)

	w = g.do(t, http.MethodGet, "/api/v1/conversions/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.ConversionStats](t, w)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.ByTarget["pdf"])

	w = g.do(t, http.MethodGet, "/api/v1/conversions/"+records[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = g.do(t, http.MethodDelete, "/api/v1/conversions/"+records[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/conversions/"+records[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/conversions?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvert_FailureStatus(t *testing.T) {
	g := newGateway(t, false)
	g.submitter.err = domain.NewServiceError(http.StatusInternalServerError, "Unsupported codec")
	g.selectAndTarget(t, "clip.mp4", "webm")

	w := g.do(t, http.MethodPost, "/api/v1/convert", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	view := g.waitIdle(t)
	assert.Equal(t, app.StatusError, view.Status.Level)
	assert.Equal(t, "Unsupported codec", view.Status.Text)
	assert.Empty(t, view.SavedPath)
}

func TestConvert_BusyConflict(t *testing.T) {
	g := newGateway(t, false)
	g.submitter.release = make(chan struct{})
	g.selectAndTarget(t, "photo.png", "pdf")

	w := g.do(t, http.MethodPost, "/api/v1/convert", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	view := decode[app.View](t, w)
	assert.True(t, view.Busy)
	assert.Equal(t, "Converting...", view.SubmitLabel)

	w = g.do(t, http.MethodPost, "/api/v1/convert", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domain.KindBusy), decode[errorBody](t, w).Kind)

	w = g.do(t, http.MethodGet, "/health", nil)
	assert.True(t, decode[handlers.HealthResponse](t, w).Conversion.Busy)

	close(g.submitter.release)
	view = g.waitIdle(t)
	assert.Equal(t, app.StatusSuccess, view.Status.Level)
}

func TestConversions_HistoryDisabled(t *testing.T) {
	g := newGateway(t, false)

	for _, path := range []string{"/api/v1/conversions", "/api/v1/conversions/stats", "/api/v1/conversions/abc"} {
		w := g.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestProgressWebSocket(t *testing.T) {
	g := newGateway(t, false)
	server := httptest.NewServer(g.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/progress/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return g.hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	g.selectAndTarget(t, "photo.png", "pdf")
	w := g.do(t, http.MethodPost, "/api/v1/convert", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var events []domain.ProgressEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var event domain.ProgressEvent
		require.NoError(t, conn.ReadJSON(&event))
		events = append(events, event)
		if event.Stage.IsTerminal() {
			break
		}
	}

	require.Len(t, events, 2)
	assert.Equal(t, domain.StageUpload, events[0].Stage)
	assert.Equal(t, domain.StageDone, events[1].Stage)
	assert.Equal(t, "photo.pdf", events[1].Label)

	last, ok := g.hub.Last()
	assert.True(t, ok)
	assert.Equal(t, 100.0, last.Percent)
}

func TestLogs(t *testing.T) {
	g := newGateway(t, false)

	ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: g.logsDir})
	require.NoError(t, err)
	ml.LogTransferEvent("conversion_started", zap.String("target", "pdf"))
	ml.LogTransferEvent("conversion_failed", zap.String("error", "unsupported codec"))
	require.NoError(t, ml.Close())

	w := g.do(t, http.MethodGet, "/api/v1/logs/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":["transfer","error"]}`, w.Body.String())

	w = g.do(t, http.MethodGet, "/api/v1/logs/transfer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode[map[string]interface{}](t, w)["count"])

	w = g.do(t, http.MethodGet, "/api/v1/logs/transfer/search?q=codec", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, w)["count"])

	w = g.do(t, http.MethodGet, "/api/v1/logs/transfer/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/logs/queue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/logs/transfer?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(t, http.MethodGet, "/api/v1/logs/transfer/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transfer-")
}

func TestMiddleware_CORSAndNoRoute(t *testing.T) {
	g := newGateway(t, false)

	w := g.do(t, http.MethodOptions, "/api/v1/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = g.do(t, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
