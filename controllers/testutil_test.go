package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/controllers"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/store"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures reset mails instead of sending them.
type recordingMailer struct {
	to    []string
	codes []string
}

func (m *recordingMailer) SendPasswordResetCode(to, _, code string) error {
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	return nil
}

type testApp struct {
	router *gin.Engine
	store  *store.Memory
	mailer *recordingMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("ADMIN_TOKEN_SECRET", "admin-secret")
	t.Setenv("DOCTOR_TOKEN_SECRET", "doctor-secret")
	t.Setenv("PATIENT_TOKEN_SECRET", "patient-secret")

	gin.SetMode(gin.TestMode)
	st := store.NewMemory()
	ml := &recordingMailer{}

	r := gin.New()
	controllers.MountRoutes(r, controllers.Deps{Store: st, Mailer: ml})
	return &testApp{router: r, store: st, mailer: ml}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
}

// signup registers an identity over HTTP and returns its id and first token.
func (a *testApp) signup(t *testing.T, role *models.Role, name, email string) (string, string) {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/"+role.Collection+"/signup", map[string]any{
		"name":     name,
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rr, &resp)
	require.NotEmpty(t, resp.Token)

	id, err := auth.VerifyToken(role, resp.Token)
	require.NoError(t, err)
	return id, resp.Token
}

// seedAdmin bypasses HTTP and plants an admin session directly in the store.
func (a *testApp) seedAdmin(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	admin := &models.Identity{Name: "Root", Email: "root@example.com", PasswordHash: "x", Status: true}
	require.NoError(t, a.store.Insert(ctx, models.AdminRole, admin))
	token, err := auth.IssueToken(models.AdminRole, admin.ID.Hex())
	require.NoError(t, err)
	require.NoError(t, a.store.AppendToken(ctx, models.AdminRole, admin.ID.Hex(), token))
	return token
}
