package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/models"
	"lumina/backend/routes"
	"lumina/backend/stats"
	"lumina/backend/testutil"
	"lumina/backend/utils"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) AssessmentQuestions(ctx context.Context, topic, notes string) (string, error) {
	args := m.Called(ctx, topic, notes)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) TutorAnswer(ctx context.Context, topic, question string) (string, error) {
	args := m.Called(ctx, topic, question)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	gen *mockGenerator
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		AllowedOrigins:   "*",
		Timezone:         "UTC",
		Location:         time.UTC,
		LeaderboardLimit: 50,
	}
}

func newTestEnv(t *testing.T, lbCache *cache.LeaderboardCache) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testConfig()
	gen := &mockGenerator{}
	t.Cleanup(func() { gen.AssertExpectations(t) })

	app := routes.NewApp(routes.Services{DB: db, Cfg: cfg, AI: gen, Cache: lbCache})
	return &testEnv{t: t, app: app, db: db, cfg: cfg, gen: gen}
}

func (e *testEnv) today() time.Time {
	return stats.Day(e.cfg.Now())
}

// user creates a user directly in the store and returns a token for it.
func (e *testEnv) user(email string, xp int64) (*models.User, string) {
	e.t.Helper()
	user := testutil.CreateUser(e.t, e.db, email, xp)
	token, err := utils.GenerateJWTToken(user, e.cfg)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) do(method, path, token string, body interface{}) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) postForm(path string, form url.Values) *http.Response {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) xp(userID uint) int64 {
	e.t.Helper()
	var user models.User
	require.NoError(e.t, e.db.First(&user, userID).Error)
	return user.TotalXP
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}
