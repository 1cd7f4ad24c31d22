package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/service"
	"github.com/sma-engine/masterschedule/pkg/export"
	"github.com/sma-engine/masterschedule/pkg/storage"
)

type stubRunStore struct{ run *models.Run }

func (s stubRunStore) FindByID(ctx context.Context, id string) (*models.Run, error) { return s.run, nil }

type stubSectionStore struct{ sections []models.Section }

func (s stubSectionStore) ListByRun(ctx context.Context, runID string) ([]models.Section, error) {
	return s.sections, nil
}

func newReportHandlerForTest(t *testing.T, run *models.Run, sections []models.Section) *ReportHandler {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	exports := service.NewReportExportService(
		stubRunStore{run: run},
		stubSectionStore{sections: sections},
		store, signer, service.ReportExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(),
		export.NewCSVExporter(), export.NewPDFExporter(),
	)
	return NewReportHandler(exports)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestReportHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := &models.Run{ID: "run-1", Status: models.RunStatusCommitted, SummaryJSON: `{"bucketCounts":{"core":3}}`}
	sections := []models.Section{
		{ID: "s1", RunID: "run-1", CourseID: "ENG9", Period: "P1", RoomNumber: "101", PrimaryTeacherID: "t1", Environment: "GENERAL", MaxSize: 30},
	}
	handler := newReportHandlerForTest(t, run, sections)

	payload, _ := json.Marshal(dto.ExportReportRequest{Format: dto.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/runs/run-1/report/export", payload)
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandlerExportRejectsUncommittedRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := &models.Run{ID: "run-2", Status: models.RunStatusDraft}
	handler := newReportHandlerForTest(t, run, nil)

	payload, _ := json.Marshal(dto.ExportReportRequest{Format: dto.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/runs/run-2/report/export", payload)
	c.Params = gin.Params{{Key: "id", Value: "run-2"}}

	handler.Export(c)
	require.NotEqual(t, http.StatusOK, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := &models.Run{ID: "run-3", Status: models.RunStatusCommitted}
	sections := []models.Section{
		{ID: "s1", RunID: "run-3", CourseID: "MATH9", Period: "P2", RoomNumber: "102", PrimaryTeacherID: "t2", Environment: "GENERAL", MaxSize: 25},
	}
	handler := newReportHandlerForTest(t, run, sections)

	payload, _ := json.Marshal(dto.ExportReportRequest{Format: dto.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/runs/run-3/report/export", payload)
	c.Params = gin.Params{{Key: "id", Value: "run-3"}}
	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.ExportReportResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	token := body.Data.DownloadURL
	prefix := "/reports/download/"
	idx := bytes.Index([]byte(token), []byte(prefix))
	require.GreaterOrEqual(t, idx, 0)
	token = token[idx+len(prefix):]

	c2, w2 := newGinContext(http.MethodGet, "/reports/download/"+token, nil)
	c2.Params = gin.Params{{Key: "token", Value: token}}
	handler.Download(c2)
	require.Equal(t, http.StatusOK, w2.Code)
}
