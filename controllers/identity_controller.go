package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/dto"
	"github.com/medipoint/medipointbackend/mailer"
	"github.com/medipoint/medipointbackend/middleware"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/store"
	"github.com/medipoint/medipointbackend/utils"
)

// Deps is everything the handlers need; main wires the mongo store and the
// SMTP mailer, the tests wire the in-memory store and a recording mailer.
type Deps struct {
	Store  store.IdentityStore
	Mailer mailer.Mailer
}

// Signup registers a new identity and issues its first session token.
// Doctors start pending until an admin activates them.
func Signup(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))

		if _, err := d.Store.FindByEmail(ctx, role, email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "this email already exists"})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		ident := &models.Identity{
			Name:         strings.TrimSpace(body.Name),
			Email:        email,
			PasswordHash: hash,
			Gender:       body.Gender,
			Address:      body.Address,
			City:         body.City,
			PhoneNumber:  body.PhoneNumber,
			DateOfBirth:  body.DateOfBirth,
			Status:       !role.HasActivation,
		}
		if role == models.PatientRole {
			ident.Weight = body.Weight
			ident.Height = body.Height
			ident.BloodType = body.BloodType
		}
		if role == models.DoctorRole {
			ident.ClinicName = body.ClinicName
			ident.ClinicAddress = body.ClinicAddress
			ident.WorkHours = body.WorkHours
			ident.Rate = body.Rate
			ident.Specialization = body.Specialization
		}

		if err := d.Store.Insert(ctx, role, ident); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				c.JSON(http.StatusConflict, gin.H{"error": "this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		token, err := auth.IssueToken(role, ident.ID.Hex())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		if err := d.Store.AppendToken(ctx, role, ident.ID.Hex(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{role.Name: ident, "token": token})
	}
}

// Login checks credentials, refuses blocked patients and issues a new
// session token alongside any already active ones.
func Login(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		ident, err := d.Store.FindByEmail(ctx, role, email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := auth.CheckPassword(ident.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if role.HasBlockFlag && ident.IsBlocked {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are blocked, contact the admins"})
			return
		}

		token, err := auth.IssueToken(role, ident.ID.Hex())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		if err := d.Store.AppendToken(ctx, role, ident.ID.Hex(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_ = d.Store.Update(ctx, role, ident.ID.Hex(), map[string]any{"lastLogin": time.Now().UTC()})

		c.JSON(http.StatusOK, gin.H{role.Name: ident, "token": token})
	}
}

func Me(role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{role.Name: middleware.Identity(c)})
	}
}

func GetByID(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := d.Store.FindByID(c.Request.Context(), role, c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": role.Name + " not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{role.Name: ident})
	}
}

// List returns all identities of the role; doctors are filtered to activated
// accounts, pending ones are only visible through the admin listing.
func List(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), 50)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 50
		}
		if limit > 200 {
			limit = 200
		}

		q := store.Query{
			Limit: limit,
			Skip:  (page - 1) * limit,
		}
		if role.HasActivation {
			activated := true
			q.Status = &activated
		}

		idents, err := d.Store.List(c.Request.Context(), role, q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, idents)
	}
}

// Find searches by name (and for doctors, specialization).
func Find(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := store.Query{Name: strings.TrimSpace(c.Query("name"))}
		if role == models.DoctorRole {
			q.Specialization = strings.TrimSpace(c.Query("specialization"))
		}
		if q.Name == "" && q.Specialization == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "name is missing"})
			return
		}

		idents, err := d.Store.List(c.Request.Context(), role, q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, idents)
	}
}

// UpdateMe mutates the caller's own record through the role's allow-list.
// One disallowed field rejects the whole update.
func UpdateMe(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.Identity(c)
		if role.HasBlockFlag && ident.IsBlocked {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are blocked, contact the admins"})
			return
		}
		applyUpdate(c, d, role, ident.ID.Hex())
	}
}

// UpdateByID is the admin-gated variant of UpdateMe; the same allow-list
// applies, admins get no extra mutable fields on other identities.
func UpdateByID(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := d.Store.FindByID(c.Request.Context(), role, id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": role.Name + " not found"})
			return
		}
		applyUpdate(c, d, role, id)
	}
}

func applyUpdate(c *gin.Context, d Deps, role *models.Role, id string) {
	ctx := c.Request.Context()

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	fields := make([]string, 0, len(body))
	for k := range body {
		fields = append(fields, k)
	}
	if err := role.AuthorizeUpdate(fields); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if pw, ok := body["password"]; ok {
		pwStr, ok := pw.(string)
		if !ok || pwStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be a non-empty string"})
			return
		}
		hash, err := auth.HashPassword(pwStr)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		delete(body, "password")
		body["passwordHash"] = hash
	}
	if email, ok := body["email"].(string); ok {
		body["email"] = strings.ToLower(strings.TrimSpace(email))
	}

	if err := d.Store.Update(ctx, role, id, body); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": "this email already exists"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": role.Name + " not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ident, err := d.Store.FindByID(ctx, role, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{role.Name: ident})
}

// DeleteMe removes the caller's record; all its sessions die with it.
func DeleteMe(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.Identity(c)
		if role.HasBlockFlag && ident.IsBlocked {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you are blocked, contact the admins"})
			return
		}
		if err := d.Store.Delete(c.Request.Context(), role, ident.ID.Hex()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeleteByID(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := d.Store.Delete(c.Request.Context(), role, c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": role.Name + " not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// Logout revokes exactly the session token used for this request; other
// devices stay logged in.
func Logout(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.Identity(c)
		token := middleware.Token(c)
		if err := d.Store.RemoveToken(c.Request.Context(), role, ident.ID.Hex(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "the " + role.Name + " logged out"})
	}
}

// LogoutAll clears the token list, invalidating every session at once.
func LogoutAll(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := middleware.Identity(c)
		if err := d.Store.ClearTokens(c.Request.Context(), role, ident.ID.Hex()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
