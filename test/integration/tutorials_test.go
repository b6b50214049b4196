package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeverse/backend/internal/config"
	"github.com/codeverse/backend/internal/database"
	"github.com/codeverse/backend/internal/handlers"
	"github.com/codeverse/backend/internal/models"
	"github.com/codeverse/backend/internal/repositories"
	"github.com/codeverse/backend/internal/services"
	"github.com/codeverse/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	testConfig *config.Config
	testLogger *zap.Logger
)

// testEnv is a fully wired application on top of a temporary mirror file
type testEnv struct {
	router     chi.Router
	supervisor *database.Supervisor
	mirror     services.MirrorStore
}

// setupTestEnv wires the application the way main does.
// An empty mongo URI gives an application that only has the mirror.
func setupTestEnv(t *testing.T, mongoCfg config.MongoConfig) *testEnv {
	t.Helper()

	supervisor := database.NewSupervisor(mongoCfg, testLogger)
	t.Cleanup(func() { supervisor.Close(context.Background()) })

	mirror := storage.NewFileStore(filepath.Join(t.TempDir(), "tutorials_content.json"), testLogger)
	repo := repositories.NewTutorialRepository(supervisor, mongoCfg.OperationTimeout, testLogger)
	svc := services.NewTutorialService(supervisor, repo, mirror, testConfig.Resolver.FallbackOnEmptyList, testLogger)

	pageHandler, err := handlers.NewPageHandler(svc, testLogger)
	require.NoError(t, err)
	base := handlers.NewBaseHandler(testLogger)

	r := chi.NewRouter()
	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)
	pageHandler.RegisterRoutes(r)
	handlers.NewTutorialHandler(svc, testLogger).RegisterRoutes(r)

	return &testEnv{router: r, supervisor: supervisor, mirror: mirror}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	testConfig, err = config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}

	os.Exit(m.Run())
}

func TestIntegration_MirrorOnly_Lifecycle(t *testing.T) {
	env := setupTestEnv(t, config.MongoConfig{})

	// Create
	w := env.do(t, http.MethodPost, "/api/v1/tutorials", map[string]string{
		"title":    "Loops",
		"language": "go",
		"duration": "20 min",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.TutorialResponse](t, w)
	require.NotNil(t, created.Data)
	id := created.Data.ID
	assert.Len(t, id, 36)

	// Get returns the defaults
	w = env.do(t, http.MethodGet, "/api/v1/tutorials/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.TutorialResponse](t, w)
	assert.Equal(t, "Loops", got.Data.Title)
	assert.Equal(t, "go", got.Data.Language)
	assert.Equal(t, "20 min", got.Data.Duration)
	assert.Equal(t, "", got.Data.Description)
	assert.Equal(t, "beginner", got.Data.Level)
	assert.Equal(t, "<p>No content available</p>", got.Data.Content)

	// Update content
	w = env.do(t, http.MethodPut, "/api/v1/tutorials/"+id, map[string]string{"content": "<p>for i := range 3</p>"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// List comes from the mirror
	w = env.do(t, http.MethodGet, "/api/v1/tutorials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.TutorialListResponse](t, w)
	assert.Equal(t, models.SourceMirror, list.Source)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "<p>for i := range 3</p>", list.Data[0].Content)

	// Detail page renders the content
	w = env.do(t, http.MethodGet, "/tutorials/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>for i := range 3</p>")

	// Delete, then every read misses
	w = env.do(t, http.MethodDelete, "/api/v1/tutorials/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/tutorials/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/tutorials/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/tutorials/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_MirrorOnly_Errors(t *testing.T) {
	env := setupTestEnv(t, config.MongoConfig{})

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
	}{
		{name: "unknown id", method: http.MethodGet, path: "/api/v1/tutorials/not-a-real-id", expectedStatus: http.StatusNotFound},
		{name: "missing title", method: http.MethodPost, path: "/api/v1/tutorials", body: map[string]string{"language": "go"}, expectedStatus: http.StatusBadRequest},
		{name: "unknown level", method: http.MethodPut, path: "/api/v1/tutorials/abc", body: map[string]string{"level": "guru"}, expectedStatus: http.StatusBadRequest},
		{name: "sync without database", method: http.MethodPost, path: "/api/v1/tutorials/sync", expectedStatus: http.StatusServiceUnavailable},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/lessons", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decode[models.ErrorResponse](t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestIntegration_MirrorOnly_Health(t *testing.T) {
	env := setupTestEnv(t, config.MongoConfig{})

	w := env.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[models.HealthStatus](t, w)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "disconnected", health.Database)
	assert.Equal(t, "not found", health.JSONFallback)

	env.do(t, http.MethodPost, "/api/v1/tutorials", map[string]string{"title": "Loops"})

	w = env.do(t, http.MethodGet, "/api/v1/health", nil)
	health = decode[models.HealthStatus](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "available", health.JSONFallback)
}

func TestIntegration_Mongo_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	if testConfig.Mongo.URI == "" {
		t.Skip("TEST_MONGO_URI is not set")
	}

	env := setupTestEnv(t, testConfig.Mongo)
	ctx := context.Background()
	require.Equal(t, models.Available, env.supervisor.EnsureConnected(ctx))

	coll, err := env.supervisor.Collection(ctx)
	require.NoError(t, err)
	_, err = coll.DeleteMany(ctx, bson.D{})
	require.NoError(t, err)
	t.Cleanup(func() { coll.DeleteMany(context.Background(), bson.D{}) })

	// Create lands in both stores under the database id
	w := env.do(t, http.MethodPost, "/api/v1/tutorials", map[string]string{"title": "Channels", "language": "go"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[models.TutorialResponse](t, w).Data.ID
	assert.Len(t, id, 24)

	m, err := env.mirror.Load()
	require.NoError(t, err)
	_, ok := m.Get(id)
	assert.True(t, ok)

	// List comes from the database
	w = env.do(t, http.MethodGet, "/api/v1/tutorials", nil)
	list := decode[models.TutorialListResponse](t, w)
	assert.Equal(t, models.SourceDatabase, list.Source)
	assert.Equal(t, 1, list.Count)

	// Update reaches the database
	w = env.do(t, http.MethodPut, "/api/v1/tutorials/"+id, map[string]string{"content": "<p>chan int</p>"})
	require.Equal(t, http.StatusOK, w.Code)
	var doc bson.M
	require.NoError(t, coll.FindOne(ctx, bson.M{"title": "Channels"}).Decode(&doc))
	assert.Equal(t, "<p>chan int</p>", doc["content"])

	// Sync rewrites the mirror from the database
	require.NoError(t, env.mirror.Save(storage.NewMirror()))
	w = env.do(t, http.MethodPost, "/api/v1/tutorials/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.SyncResponse](t, w).Data.Count)
	m, err = env.mirror.Load()
	require.NoError(t, err)
	mirrored, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, "<p>chan int</p>", mirrored.Content)

	// Delete removes it from both stores
	w = env.do(t, http.MethodDelete, "/api/v1/tutorials/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/tutorials/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Health reports the database
	w = env.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, "connected", decode[models.HealthStatus](t, w).Database)
}
