package api

import (
	"alcyxob/weekly-routines/internal/repository/sqlite"
	"alcyxob/weekly-routines/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(t.TempDir() + "/api.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	auth := service.NewAuthService(users, "api-test-secret", time.Hour)
	routines := service.NewRoutineService(sqlite.NewRoutineRepository(db), zap.NewNop())
	schedule := service.NewScheduleService(sqlite.NewScheduleRepository(db), routines, zap.NewNop())
	routines.RegisterDeletionHook(schedule)

	router := gin.New()
	SetupRoutes(router, RouterOptions{
		Logger:         zap.NewNop(),
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
		RequestTimeout: 5 * time.Second,
	}, Services{
		Auth:     auth,
		Routines: routines,
		Schedule: schedule,
		Export:   service.NewExportService(routines, schedule, nil, 0, zap.NewNop()),
		Users:    users,
		Pinger:   db,
	})

	s := &testServer{router: router}
	s.token = s.login(t, "lee@example.com")
	return s
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"displayName": "Lee", "email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/routines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/routines", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/me", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lee@example.com", decode[UserResponse](t, w).Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"displayName": "Again", "email": "lee@example.com", "password": "another-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "lee@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutineLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/routines", s.token, gin.H{"name": "Push"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	routine := decode[RoutineResponse](t, w)
	assert.Equal(t, "Push", routine.Name)
	assert.Empty(t, routine.Exercises)

	w = s.do(t, http.MethodPut, "/api/v1/routines/"+routine.ID, s.token, gin.H{
		"name": "Push A",
		"exercises": []gin.H{
			{"id": "bench", "name": "Bench Press", "sets": 3, "reps": 8, "weight": 60},
			{"name": "Dips", "sets": 3, "reps": 12, "weight": 0},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[RoutineResponse](t, w)
	assert.Equal(t, "Push A", updated.Name)
	require.Len(t, updated.Exercises, 2)
	assert.NotEmpty(t, updated.Exercises[1].ID)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	w = s.do(t, http.MethodPut, "/api/v1/routines/"+routine.ID+"/exercises/bench", s.token, gin.H{
		"name": "Bench Press", "sets": 5, "reps": 5, "weight": 70,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[RoutineResponse](t, w).Exercises[0].Sets)

	w = s.do(t, http.MethodPost, "/api/v1/routines/"+routine.ID+"/exercises", s.token, gin.H{
		"name": "Fly", "sets": 3, "reps": 15, "weight": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[RoutineResponse](t, w).Exercises, 3)

	w = s.do(t, http.MethodDelete, "/api/v1/routines/"+routine.ID+"/exercises/bench", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[RoutineResponse](t, w).Exercises, 2)

	w = s.do(t, http.MethodGet, "/api/v1/routines", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]RoutineResponse](t, w), 1)

	w = s.do(t, http.MethodDelete, "/api/v1/routines/"+routine.ID, s.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/routines/"+routine.ID, s.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutineValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/routines", s.token, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/routines", s.token, gin.H{"name": "Legs"})
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[RoutineResponse](t, w)

	w = s.do(t, http.MethodPut, "/api/v1/routines/"+routine.ID, s.token, gin.H{
		"name":      "Legs",
		"exercises": []gin.H{{"name": "Squat", "sets": 0, "reps": 5, "weight": 100}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "exercises[0].sets", decode[gin.H](t, w)["field"])

	w = s.do(t, http.MethodGet, "/api/v1/routines/not-an-id", s.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutinesAreScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	other := s.login(t, "kim@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/routines", s.token, gin.H{"name": "Mine"})
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[RoutineResponse](t, w)

	w = s.do(t, http.MethodGet, "/api/v1/routines/"+routine.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/routines/"+routine.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/schedule/1", other, gin.H{"routineId": routine.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/routines", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]RoutineResponse](t, w))
}

func TestScheduleEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/routines", s.token, gin.H{"name": "Pull"})
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[RoutineResponse](t, w)

	w = s.do(t, http.MethodPut, "/api/v1/schedule/3", s.token, gin.H{"routineId": routine.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assignment := decode[AssignmentResponse](t, w)
	assert.Equal(t, "Wednesday", assignment.DayName)

	w = s.do(t, http.MethodGet, "/api/v1/schedule", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	week := decode[WeekResponse](t, w)
	require.Len(t, week.Days, 7)
	require.NotNil(t, week.Days[3].Routine)
	assert.Equal(t, routine.ID, week.Days[3].Routine.ID)
	assert.Nil(t, week.Days[0].Routine)

	w = s.do(t, http.MethodPut, "/api/v1/schedule/7", s.token, gin.H{"routineId": routine.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/schedule/monday", s.token, gin.H{"routineId": routine.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/schedule/3", s.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/schedule/3", s.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/schedule", s.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[WeekResponse](t, w).Days[3].Routine)
}

func TestExportDisabledWithoutBucket(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/exports", s.token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
