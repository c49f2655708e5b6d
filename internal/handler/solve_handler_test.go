package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

type solveServiceMock struct {
	solveResp  *dto.SolveStatusResponse
	solveErr   error
	statusResp *dto.SolveStatusResponse
	statusErr  error
	statsResp  *dto.SolveStatsResponse
	cleared    int
	lastReq    dto.SolveRequest
}

func (m *solveServiceMock) Solve(ctx context.Context, sessionID string, req dto.SolveRequest) (*dto.SolveStatusResponse, error) {
	m.lastReq = req
	if m.solveErr != nil {
		return nil, m.solveErr
	}
	return m.solveResp, nil
}

func (m *solveServiceMock) Status(ctx context.Context, sessionID string) (*dto.SolveStatusResponse, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.statusResp, nil
}

func (m *solveServiceMock) Stats(ctx context.Context, sessionID string) (*dto.SolveStatsResponse, error) {
	return m.statsResp, nil
}

func (m *solveServiceMock) Workload(ctx context.Context, sessionID string) (*dto.WorkloadResponse, error) {
	return &dto.WorkloadResponse{SessionID: sessionID}, nil
}

func (m *solveServiceMock) Clear(ctx context.Context, sessionID string) error {
	m.cleared++
	return nil
}

func newSolveTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "session-1"}}
	return c, w
}

func TestSolveHandlerSyncReturnsOK(t *testing.T) {
	mock := &solveServiceMock{solveResp: &dto.SolveStatusResponse{SessionID: "session-1", Status: "optimal"}}
	h := NewSolveHandler(mock)

	body, _ := json.Marshal(dto.SolveRequest{Save: true})
	c, w := newSolveTestContext(t, http.MethodPost, "/sessions/session-1/solve", body)

	h.Solve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.lastReq.Save)
}

func TestSolveHandlerAsyncReturnsAccepted(t *testing.T) {
	mock := &solveServiceMock{solveResp: &dto.SolveStatusResponse{SessionID: "session-1", Status: "running"}}
	h := NewSolveHandler(mock)

	body, _ := json.Marshal(dto.SolveRequest{Async: true})
	c, w := newSolveTestContext(t, http.MethodPost, "/sessions/session-1/solve", body)

	h.Solve(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSolveHandlerEmptyBodyIsAccepted(t *testing.T) {
	mock := &solveServiceMock{solveResp: &dto.SolveStatusResponse{SessionID: "session-1", Status: "feasible"}}
	h := NewSolveHandler(mock)

	c, w := newSolveTestContext(t, http.MethodPost, "/sessions/session-1/solve", nil)

	h.Solve(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSolveHandlerConflictWhileRunning(t *testing.T) {
	mock := &solveServiceMock{solveErr: appErrors.ErrSolveInProgress}
	h := NewSolveHandler(mock)

	c, w := newSolveTestContext(t, http.MethodPost, "/sessions/session-1/solve", nil)

	h.Solve(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSolveHandlerStatusNotFound(t *testing.T) {
	mock := &solveServiceMock{statusErr: appErrors.ErrNotFound}
	h := NewSolveHandler(mock)

	c, w := newSolveTestContext(t, http.MethodGet, "/sessions/session-1/solve/status", nil)

	h.Status(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSolveHandlerClear(t *testing.T) {
	mock := &solveServiceMock{}
	h := NewSolveHandler(mock)

	c, w := newSolveTestContext(t, http.MethodDelete, "/sessions/session-1/assignments", nil)

	h.Clear(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, mock.cleared)
}
