package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/auth"
	"github.com/jkkim74/bsTodoList/internal/stats"
	"github.com/jkkim74/bsTodoList/internal/store"
	"github.com/jkkim74/bsTodoList/internal/task"
)

// MockTaskService implements TaskService with overridable funcs.
type MockTaskService struct {
	CaptureFunc       func(ctx context.Context, userID int64, req task.CaptureRequest) (*store.Task, error)
	CategorizeFunc    func(ctx context.Context, userID, taskID int64, req task.CategorizeRequest) (*store.Task, error)
	AssignTop3Func    func(ctx context.Context, userID, taskID int64, req task.Top3Request) (*store.Task, error)
	CompleteFunc      func(ctx context.Context, userID, taskID int64) (*store.Task, error)
	UncompleteFunc    func(ctx context.Context, userID, taskID int64) (*store.Task, error)
	UpdateFunc        func(ctx context.Context, userID, taskID int64, req task.UpdateRequest) (*store.Task, error)
	DeleteFunc        func(ctx context.Context, userID, taskID int64) error
	DailyOverviewFunc func(ctx context.Context, userID int64, date string) (*task.Overview, error)
	IncompleteFunc    func(ctx context.Context, userID int64) (*task.IncompleteGroups, error)
}

func (m *MockTaskService) Capture(ctx context.Context, userID int64, req task.CaptureRequest) (*store.Task, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, userID, req)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) Categorize(ctx context.Context, userID, taskID int64, req task.CategorizeRequest) (*store.Task, error) {
	if m.CategorizeFunc != nil {
		return m.CategorizeFunc(ctx, userID, taskID, req)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) AssignTop3(ctx context.Context, userID, taskID int64, req task.Top3Request) (*store.Task, error) {
	if m.AssignTop3Func != nil {
		return m.AssignTop3Func(ctx, userID, taskID, req)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) Complete(ctx context.Context, userID, taskID int64) (*store.Task, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, userID, taskID)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) Uncomplete(ctx context.Context, userID, taskID int64) (*store.Task, error) {
	if m.UncompleteFunc != nil {
		return m.UncompleteFunc(ctx, userID, taskID)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) Update(ctx context.Context, userID, taskID int64, req task.UpdateRequest) (*store.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, taskID, req)
	}
	return &store.Task{}, nil
}

func (m *MockTaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, taskID)
	}
	return nil
}

func (m *MockTaskService) DailyOverview(ctx context.Context, userID int64, date string) (*task.Overview, error) {
	if m.DailyOverviewFunc != nil {
		return m.DailyOverviewFunc(ctx, userID, date)
	}
	return &task.Overview{}, nil
}

func (m *MockTaskService) Incomplete(ctx context.Context, userID int64) (*task.IncompleteGroups, error) {
	if m.IncompleteFunc != nil {
		return m.IncompleteFunc(ctx, userID)
	}
	return &task.IncompleteGroups{}, nil
}

// MockStatsService implements StatsService with overridable funcs.
type MockStatsService struct {
	DailyFunc   func(ctx context.Context, userID int64, start, end string) ([]*store.DayStat, error)
	WeeklyFunc  func(ctx context.Context, userID int64, start, end string) (*stats.WeeklyReport, error)
	MonthlyFunc func(ctx context.Context, userID int64, year, month int) (*stats.MonthlyReport, error)
}

func (m *MockStatsService) Daily(ctx context.Context, userID int64, start, end string) ([]*store.DayStat, error) {
	if m.DailyFunc != nil {
		return m.DailyFunc(ctx, userID, start, end)
	}
	return nil, nil
}

func (m *MockStatsService) Weekly(ctx context.Context, userID int64, start, end string) (*stats.WeeklyReport, error) {
	if m.WeeklyFunc != nil {
		return m.WeeklyFunc(ctx, userID, start, end)
	}
	return &stats.WeeklyReport{}, nil
}

func (m *MockStatsService) Monthly(ctx context.Context, userID int64, year, month int) (*stats.MonthlyReport, error) {
	if m.MonthlyFunc != nil {
		return m.MonthlyFunc(ctx, userID, year, month)
	}
	return &stats.MonthlyReport{}, nil
}

// MockAuthService accepts the token "valid-token" as user 1.
type MockAuthService struct {
	SignupFunc func(ctx context.Context, req auth.SignupRequest) (*auth.Session, error)
	LoginFunc  func(ctx context.Context, req auth.LoginRequest) (*auth.Session, error)
	VerifyFunc func(token string) (*auth.Claims, error)
}

func (m *MockAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, req)
	}
	return &auth.Session{UserID: 1}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &auth.Session{UserID: 1}, nil
}

func (m *MockAuthService) VerifyToken(token string) (*auth.Claims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	if token != "valid-token" {
		return nil, apperr.Authentication("invalid or expired token")
	}
	return &auth.Claims{UserID: 1}, nil
}

type testServer struct {
	tasks  *MockTaskService
	stats  *MockStatsService
	auth   *MockAuthService
	store  *store.Store
	server *Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "web_test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.CreateUser(context.Background(), "web@test.local", "x", "webuser")
	require.NoError(t, err)

	ts := &testServer{
		tasks: &MockTaskService{},
		stats: &MockStatsService{},
		auth:  &MockAuthService{},
		store: st,
	}
	ts.server = NewServer(ts.tasks, ts.stats, ts.auth, st, zerolog.Nop())
	return ts
}

// do issues an authenticated request against the router.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")

	w := httptest.NewRecorder()
	ts.server.router.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/incomplete", nil)
		w := httptest.NewRecorder()
		ts.server.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := parseEnvelope(t, w.Body)
		assert.Equal(t, false, resp["success"])
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/incomplete", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		ts.server.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/tasks/incomplete", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandleCreateTask(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(*MockTaskService)
		wantStatus int
		check      func(*testing.T, map[string]any)
	}{
		{
			name: "created",
			body: map[string]any{"title": "Buy milk", "task_date": "2026-01-05"},
			setup: func(m *MockTaskService) {
				m.CaptureFunc = func(ctx context.Context, userID int64, req task.CaptureRequest) (*store.Task, error) {
					if userID != 1 {
						t.Errorf("expected user 1, got %d", userID)
					}
					return &store.Task{ID: 7, Title: req.Title, TaskDate: req.TaskDate}, nil
				}
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, true, resp["success"])
				data := resp["data"].(map[string]any)
				assert.Equal(t, "Buy milk", data["title"])
			},
		},
		{
			name: "validation error",
			body: map[string]any{"task_date": "2026-01-05"},
			setup: func(m *MockTaskService) {
				m.CaptureFunc = func(ctx context.Context, userID int64, req task.CaptureRequest) (*store.Task, error) {
					return nil, apperr.Validation("title is required")
				}
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, false, resp["success"])
				assert.Equal(t, "title is required", resp["error"])
			},
		},
		{
			name:       "malformed body",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.setup != nil {
				tt.setup(ts.tasks)
			}

			w := ts.do(t, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				tt.check(t, parseEnvelope(t, w.Body))
			}
		})
	}
}

func TestHandleAssignTop3(t *testing.T) {
	t.Run("slot conflict maps to 409", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.AssignTop3Func = func(ctx context.Context, userID, taskID int64, req task.Top3Request) (*store.Task, error) {
			return nil, apperr.Conflict("slot 1 is already taken")
		}

		w := ts.do(t, http.MethodPatch, "/api/tasks/5/top3", map[string]any{
			"slot": 1, "action_detail": "Go to store",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := parseEnvelope(t, w.Body)
		assert.Equal(t, "slot 1 is already taken", resp["error"])
	})

	t.Run("full day maps to 400", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.AssignTop3Func = func(ctx context.Context, userID, taskID int64, req task.Top3Request) (*store.Task, error) {
			return nil, apperr.Capacity("all three focus slots are taken")
		}

		w := ts.do(t, http.MethodPatch, "/api/tasks/5/top3", map[string]any{
			"action_detail": "Go to store",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad task id maps to 404", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(t, http.MethodPatch, "/api/tasks/abc/top3", map[string]any{
			"action_detail": "x",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleDailyOverview(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.DailyOverviewFunc = func(ctx context.Context, userID int64, date string) (*task.Overview, error) {
		assert.Equal(t, "2026-01-05", date)
		return &task.Overview{Date: date}, nil
	}

	w := ts.do(t, http.MethodGet, "/api/tasks/daily/2026-01-05", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseEnvelope(t, w.Body)
	assert.Equal(t, true, resp["success"])
}

func TestHandleDailyStats(t *testing.T) {
	ts := newTestServer(t)
	ts.stats.DailyFunc = func(ctx context.Context, userID int64, start, end string) ([]*store.DayStat, error) {
		if start == "" || end == "" {
			return nil, apperr.Validation("start_date and end_date are required")
		}
		return []*store.DayStat{{TaskDate: start}}, nil
	}

	w := ts.do(t, http.MethodGet, "/api/stats/daily", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/stats/daily?start_date=2026-01-01&end_date=2026-01-07", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleMonthlyStatsQueryValidation(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/stats/monthly?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("signup created", func(t *testing.T) {
		ts := newTestServer(t)
		ts.auth.SignupFunc = func(ctx context.Context, req auth.SignupRequest) (*auth.Session, error) {
			return &auth.Session{UserID: 2, Email: req.Email, Username: req.Username, Token: "t"}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			bytes.NewBufferString(`{"email":"a@b.c","password":"pw","username":"a"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		ts.server.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := parseEnvelope(t, w.Body)
		data := resp["data"].(map[string]any)
		assert.Equal(t, "t", data["token"])
	})

	t.Run("login failure maps to 401", func(t *testing.T) {
		ts := newTestServer(t)
		ts.auth.LoginFunc = func(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
			return nil, apperr.Authentication("invalid email or password")
		}

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			bytes.NewBufferString(`{"email":"a@b.c","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		ts.server.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGoalHandlers(t *testing.T) {
	ts := newTestServer(t)

	t.Run("order out of range", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/goals", map[string]any{
			"week_start_date": "2026-01-05",
			"week_end_date":   "2026-01-11",
			"goal_order":      4,
			"title":           "Too many goals",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var goalID float64
	t.Run("create", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/goals", map[string]any{
			"week_start_date": "2026-01-05",
			"week_end_date":   "2026-01-11",
			"goal_order":      1,
			"title":           "Ship the report",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		data := parseEnvelope(t, w.Body)["data"].(map[string]any)
		assert.Equal(t, float64(0), data["progress_rate"])
		assert.Equal(t, "IN_PROGRESS", data["status"])
		goalID = data["goal_id"].(float64)
	})

	t.Run("progress 100 completes the goal", func(t *testing.T) {
		w := ts.do(t, http.MethodPatch,
			"/api/goals/"+jsonNumber(goalID)+"/progress",
			map[string]any{"progress_rate": 100})
		require.Equal(t, http.StatusOK, w.Code)
		data := parseEnvelope(t, w.Body)["data"].(map[string]any)
		assert.Equal(t, "COMPLETED", data["status"])
	})

	t.Run("progress out of range", func(t *testing.T) {
		w := ts.do(t, http.MethodPatch,
			"/api/goals/"+jsonNumber(goalID)+"/progress",
			map[string]any{"progress_rate": 101})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete then 404", func(t *testing.T) {
		w := ts.do(t, http.MethodDelete, "/api/goals/"+jsonNumber(goalID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(t, http.MethodPatch,
			"/api/goals/"+jsonNumber(goalID)+"/progress",
			map[string]any{"progress_rate": 10})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNoteHandlers(t *testing.T) {
	ts := newTestServer(t)

	t.Run("create then update", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/notes", map[string]any{
			"note_date": "2026-01-05", "content": "first draft",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		w = ts.do(t, http.MethodPost, "/api/notes", map[string]any{
			"note_date": "2026-01-05", "content": "second draft",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		data := parseEnvelope(t, w.Body)["data"].(map[string]any)
		assert.Equal(t, "second draft", data["content"])
	})

	t.Run("missing note is null data", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/notes/2030-12-31", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseEnvelope(t, w.Body)
		assert.Nil(t, resp["data"])
	})

	t.Run("list", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/notes", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		data := parseEnvelope(t, w.Body)["data"].([]any)
		assert.Len(t, data, 1)
	})

	t.Run("delete unknown note", func(t *testing.T) {
		w := ts.do(t, http.MethodDelete, "/api/notes/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLetGoHandlers(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/letgo", map[string]any{
		"let_go_date": "2026-01-05", "content": "Reorganize the garage",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := parseEnvelope(t, w.Body)["data"].(map[string]any)
	letGoID := data["let_go_id"].(float64)
	assert.Nil(t, data["task_id"])

	w = ts.do(t, http.MethodGet, "/api/letgo/2026-01-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := parseEnvelope(t, w.Body)["data"].([]any)
	assert.Len(t, items, 1)

	w = ts.do(t, http.MethodDelete, "/api/letgo/"+jsonNumber(letGoID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/letgo/2026-01-05", nil)
	items = parseEnvelope(t, w.Body)["data"].([]any)
	assert.Len(t, items, 0)
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		wantStart string
		wantEnd   string
	}{
		{"monday", "2026-01-05", "2026-01-05", "2026-01-11"},
		{"midweek", "2026-01-07", "2026-01-05", "2026-01-11"},
		{"sunday belongs to prior monday", "2026-01-11", "2026-01-05", "2026-01-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.day)
			require.NoError(t, err)

			start, end := weekBounds(day)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func jsonNumber(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
