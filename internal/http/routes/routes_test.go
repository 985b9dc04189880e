package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillora/skillora-server/internal/http/routes"
	"github.com/skillora/skillora-server/pkg/cache"
	"github.com/skillora/skillora-server/pkg/config"
	"github.com/skillora/skillora-server/pkg/database"
	"github.com/skillora/skillora-server/pkg/storage"
)

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination json.RawMessage `json:"pagination"`
}

type testServer struct {
	engine *gin.Engine
	t      *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	storageClient, err := storage.NewClient(t.TempDir())
	require.NoError(t, err)

	memCache := cache.NewMemoryClient()
	t.Cleanup(func() { memCache.Close() })

	engine := gin.New()
	routes.Register(engine, routes.Dependencies{
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			Env:       "test",
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
		Cache:   memCache,
		Storage: storageClient,
	})

	return &testServer{engine: engine, t: t}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *testServer) doForm(method, path, token string, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(s.t, writer.WriteField(key, value))
	}
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *testServer) register(email, role string) (token, id string) {
	s.t.Helper()

	rec, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "Test",
		"lastName":  "User",
		"email":     email,
		"password":  "password-123",
		"role":      role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &payload))
	return payload.Token, payload.User.ID
}

func TestEndToEndLearningFlow(t *testing.T) {
	s := newTestServer(t)

	instructorToken, instructorID := s.register("teach@example.com", "instructor")

	rec, env := s.doForm(http.MethodPost, "/api/courses", instructorToken, map[string]string{
		"title":       "Go Fundamentals",
		"description": "Start here.",
		"category":    "engineering",
		"level":       "beginner",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID           string `json:"id"`
		Slug         string `json:"slug"`
		InstructorID string `json:"instructorId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "go-fundamentals", created.Slug)
	assert.Equal(t, instructorID, created.InstructorID)

	rec, env = s.do(http.MethodPost, "/api/courses/"+created.ID+"/modules", instructorToken, gin.H{
		"title": "Intro",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var mod struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mod))

	studentToken, _ := s.register("kid@example.com", "student")

	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, "/api/courses/"+created.ID+"/progress", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var prog struct {
		CompletedModules []string `json:"completedModules"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prog))
	assert.Empty(t, prog.CompletedModules)

	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/modules/"+mod.ID+"/complete", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, "/api/courses/"+created.ID+"/progress", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &prog))
	assert.Equal(t, []string{mod.ID}, prog.CompletedModules)

	// Completing the same module again changes nothing.
	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/modules/"+mod.ID+"/complete", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/courses/"+created.ID+"/progress", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &prog))
	assert.Equal(t, []string{mod.ID}, prog.CompletedModules)
}

func TestRegisterThenLogin(t *testing.T) {
	s := newTestServer(t)

	_, id := s.register("ada@example.com", "")

	rec, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password-123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, id, payload.User.ID)
	assert.Equal(t, "student", payload.User.Role)

	rec, env = s.do(http.MethodGet, "/api/auth/me", payload.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	s := newTestServer(t)
	s.register("ada@example.com", "")

	rec, _ := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "Other",
		"lastName":  "Person",
		"email":     "ada@example.com",
		"password":  "password-456",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register("ada@example.com", "")

	rec, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Message)

	rec, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password-123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestCourseDetailErrors(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/api/courses/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/courses/6bb7b810-9dad-11d1-80b4-00c04fd430c8", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseMutationRequiresOwner(t *testing.T) {
	s := newTestServer(t)

	ownerToken, _ := s.register("owner@example.com", "instructor")
	otherToken, _ := s.register("other@example.com", "instructor")
	studentToken, _ := s.register("kid@example.com", "student")

	rec, env := s.doForm(http.MethodPost, "/api/courses", ownerToken, map[string]string{
		"title":       "Owned",
		"description": "Mine.",
		"category":    "engineering",
		"level":       "beginner",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, _ = s.do(http.MethodPut, "/api/courses/"+created.ID, otherToken, gin.H{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodPut, "/api/courses/"+created.ID, studentToken, gin.H{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodDelete, "/api/courses/"+created.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/modules", otherToken, gin.H{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnrollmentRules(t *testing.T) {
	s := newTestServer(t)

	instructorToken, _ := s.register("teach@example.com", "instructor")
	studentToken, _ := s.register("kid@example.com", "student")

	rec, env := s.doForm(http.MethodPost, "/api/courses", instructorToken, map[string]string{
		"title":       "Popular",
		"description": "Everyone wants in.",
		"category":    "engineering",
		"level":       "beginner",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Instructors hold no student role, so they cannot enroll.
	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/enroll", instructorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/courses/"+created.ID+"/enroll", studentToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/courses/"+created.ID+"/enrollment", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Enrolled bool `json:"enrolled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Enrolled)

	rec, env = s.do(http.MethodGet, "/api/courses/"+created.ID+"/enrollment", instructorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Enrolled)

	// Progress belongs to enrolled users only.
	rec, _ = s.do(http.MethodGet, "/api/courses/"+created.ID+"/progress", instructorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/courses/enrolled", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
