package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupIssuesAListedToken(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup(t, models.PatientRole, "Pat One", "p1@example.com")

	// The token must verify under the issuing role and be on the record.
	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.True(t, ident.HasToken(token))
	assert.Equal(t, "p1@example.com", ident.Email)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, models.PatientRole, "Pat One", "p1@example.com")

	rr := app.do(t, http.MethodPost, "/patients/signup", map[string]any{
		"name": "Pat Two", "email": "p1@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(t, http.MethodPost, "/patients/signup", map[string]any{
		"name": "No Mail", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(t, http.MethodPost, "/patients/signup", map[string]any{
		"name": "Short", "email": "s@example.com", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDoctorSignupStartsPending(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.signup(t, models.DoctorRole, "Dr Who", "who@example.com")

	ident, err := app.store.FindByID(context.Background(), models.DoctorRole, id)
	require.NoError(t, err)
	assert.False(t, ident.Status)

	// Pending doctors are invisible in the public listing.
	rr := app.do(t, http.MethodGet, "/doctors", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestLoginAppendsSecondToken(t *testing.T) {
	app := newTestApp(t)
	id, first := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPost, "/patients/login", map[string]any{
		"email": "p@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rr, &resp)
	assert.NotEqual(t, first, resp.Token)

	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.Len(t, ident.Tokens, 2)
	assert.True(t, ident.HasToken(first))
	assert.True(t, ident.HasToken(resp.Token))
	assert.False(t, ident.LastLogin.IsZero())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPost, "/patients/login", map[string]any{
		"email": "p@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(t, http.MethodPost, "/patients/login", map[string]any{
		"email": "ghost@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMeRequiresSession(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodGet, "/patients/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "p@example.com")

	rr = app.do(t, http.MethodGet, "/patients/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateMeAllowListIsAtomic(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	before, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)

	// One disallowed field rejects the whole update.
	rr := app.do(t, http.MethodPatch, "/patients/me", map[string]any{
		"name": "New Name", "weight": 70.5, "isAdmin": true,
	}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	after, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateMeAppliesAllowedFields(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPatch, "/patients/me", map[string]any{
		"name": "Pat Renamed", "weight": 70.5, "bloodType": "O-",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.Equal(t, "Pat Renamed", ident.Name)
	assert.Equal(t, 70.5, ident.Weight)
	assert.Equal(t, "O-", ident.BloodType)
}

func TestUpdateMeRehashesPassword(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPatch, "/patients/me", map[string]any{
		"password": "new-password-1",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(ident.PasswordHash, "new-password-1"))
	assert.Error(t, auth.CheckPassword(ident.PasswordHash, "password123"))
}

func TestLogoutRevokesExactlyTheUsedToken(t *testing.T) {
	app := newTestApp(t)
	id, t1 := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPost, "/patients/login", map[string]any{
		"email": "p@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rr, &resp)
	t2 := resp.Token

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/patients/logout", nil, t1).Code)

	// t1 is dead, t2 still works.
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/patients/me", nil, t1).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/patients/me", nil, t2).Code)

	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.Equal(t, []string{t2}, ident.Tokens)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	app := newTestApp(t)
	id, t1 := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	rr := app.do(t, http.MethodPost, "/patients/login", map[string]any{
		"email": "p@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rr, &resp)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/patients/logout-all", nil, t1).Code)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/patients/me", nil, t1).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/patients/me", nil, resp.Token).Code)

	ident, err := app.store.FindByID(context.Background(), models.PatientRole, id)
	require.NoError(t, err)
	assert.Empty(t, ident.Tokens)
}

func TestDeleteMeKillsAllSessions(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signup(t, models.PatientRole, "Pat", "p@example.com")

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/patients/me", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/patients/me", nil, token).Code)
}

func TestGetAndFind(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.signup(t, models.PatientRole, "Éléonore Durand", "el@example.com")

	rr := app.do(t, http.MethodGet, "/patients/get/"+id, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "el@example.com")

	rr = app.do(t, http.MethodGet, "/patients/get/000000000000000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Accent and case folded search.
	rr = app.do(t, http.MethodGet, "/patients/find?name=eleonore+durand", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "el@example.com")

	rr = app.do(t, http.MethodGet, "/patients/find", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminGateOnCrossIdentityOps(t *testing.T) {
	app := newTestApp(t)
	id, patientToken := app.signup(t, models.PatientRole, "Pat", "p@example.com")
	adminToken := app.seedAdmin(t)

	// A patient session cannot use the admin-gated routes, even on itself.
	rr := app.do(t, http.MethodDelete, "/patients/"+id, nil, patientToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(t, http.MethodPatch, "/patients/"+id, map[string]any{"city": "Oslo"}, adminToken)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The admin still goes through the same allow-list.
	rr = app.do(t, http.MethodPatch, "/patients/"+id, map[string]any{"isBlocked": true}, adminToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(t, http.MethodDelete, "/patients/"+id, nil, adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/patients/"+id, nil, adminToken).Code)
}

func TestEndToEndSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	// signup p1 -> token t1 -> logout(t1) -> t1 is unauthenticated.
	_, t1 := app.signup(t, models.PatientRole, "P One", "p1@example.com")
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/patients/logout", nil, t1).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/patients/me", nil, t1).Code)
}
