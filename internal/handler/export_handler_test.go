package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/coursegrid/solver-api/internal/service"
)

type exportDispatcherStub struct {
	result *service.ExportResult
	err    error
}

func (s *exportDispatcherStub) Dispatch(ctx context.Context, solveRunID string, format service.ReportFormat) (*service.ExportResult, error) {
	return s.result, s.err
}

type exportDownloaderStub struct {
	relPath string
	file    *os.File
	err     error
}

func (s *exportDownloaderStub) ParseToken(token string, allowExpired bool) (string, string, time.Time, error) {
	if s.err != nil {
		return "", "", time.Time{}, s.err
	}
	return "run-1", s.relPath, time.Now().Add(time.Hour), nil
}

func (s *exportDownloaderStub) Open(relPath string) (*os.File, error) {
	return s.file, s.err
}

func TestExportHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{dispatcher: &exportDispatcherStub{result: &service.ExportResult{
		URL: "/api/v1/export/token", Format: service.ReportFormatCSV, ExpiresAt: time.Now().Add(time.Hour),
	}}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/run-1/export?format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerGenerateInvalidFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{dispatcher: &exportDispatcherStub{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/run-1/export?format=xml", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{service: &exportDownloaderStub{err: context.DeadlineExceeded}}
	req, _ := http.NewRequest(http.MethodGet, "/export/bad-token", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "bad-token"}}

	handler.Download(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
