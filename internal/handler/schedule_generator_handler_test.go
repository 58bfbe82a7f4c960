package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/coursegrid/solver-api/internal/dto"
	"github.com/coursegrid/solver-api/internal/models"
	appErrors "github.com/coursegrid/solver-api/pkg/errors"
)

type scheduleGeneratorMock struct {
	captured  dto.GenerateTimetableRequest
	runResult *dto.GenerateTimetableResponse
	runErr    error
	deleteErr error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	return &dto.GenerateTimetableResponse{Status: "success", Timetable: []dto.AssignmentResponse{}}, nil
}

func (m *scheduleGeneratorMock) ListRuns(ctx context.Context, query dto.SolveRunQuery) ([]dto.SolveRunSummary, models.Pagination, error) {
	return []dto.SolveRunSummary{{ID: "run-1", Status: "success"}}, models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *scheduleGeneratorMock) GetRun(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.runResult, nil
}

func (m *scheduleGeneratorMock) DeleteRun(ctx context.Context, id string) error {
	return m.deleteErr
}

func TestScheduleGeneratorHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	handler := &ScheduleGeneratorHandler{service: mockSvc}
	payload := []byte(`{"week_config":{"working_days":["Mon"],"week_start_time":"09:00","week_end_time":"12:00"},"subjects":[{"name":"M","type":"theory","hours_per_week":2}],"rooms":[{"name":"R1","type":"classroom"}],"batches":["A"]}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "M", mockSvc.captured.Subjects[0].Name)
}

func TestScheduleGeneratorHandlerGenerateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"week_config":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/runs", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleGeneratorHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{runErr: appErrors.Clone(appErrors.ErrNotFound, "solve run not found")}
	handler := &ScheduleGeneratorHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/runs/missing", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleGeneratorHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodDelete, "/timetables/runs/run-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}
