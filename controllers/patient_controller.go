package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/dto"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/store"
)

func setBlocked(d Deps, blocked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		err := d.Store.Update(ctx, models.PatientRole, id, map[string]any{"isBlocked": blocked})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		patient, err := d.Store.FindByID(ctx, models.PatientRole, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"patient": patient})
	}
}

// BlockPatient and UnblockPatient are admin-gated; a blocked patient keeps
// its tokens but every gated self-operation and login is refused.
func BlockPatient(d Deps) gin.HandlerFunc   { return setBlocked(d, true) }
func UnblockPatient(d Deps) gin.HandlerFunc { return setBlocked(d, false) }

// ForgotPassword starts the reset flow. Requesting again before the code is
// used resends the same code instead of minting a new one.
func ForgotPassword(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.ForgotPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		patient, err := d.Store.FindByEmail(ctx, models.PatientRole, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		code := patient.PasswordResetToken
		if code == "" {
			code = auth.NewResetCode()
			err := d.Store.Update(ctx, models.PatientRole, patient.ID.Hex(), map[string]any{
				"passwordResetToken": code,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		// Fire and forget: a failed mail never rolls back the stored code.
		if err := d.Mailer.SendPasswordResetCode(patient.Email, patient.Name, code); err != nil {
			log.Printf("failed to send reset code to %s: %v", patient.Email, err)
		}

		c.JSON(http.StatusOK, gin.H{"msg": "reset code sent"})
	}
}

// VerifyResetCode consumes a code: it is cleared on first use and the
// account becomes eligible for ResetPassword.
func VerifyResetCode(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.VerifyResetCodeDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		patient, err := d.Store.FindByResetCode(ctx, models.PatientRole, body.Code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "invalid code"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		err = d.Store.Update(ctx, models.PatientRole, patient.ID.Hex(), map[string]any{
			"passwordResetToken": "",
			"changePassword":     true,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"msg": "code verified"})
	}
}

// ResetPassword finishes the flow for an account that verified a code.
func ResetPassword(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.Password != body.PasswordConfirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		patient, err := d.Store.FindByEmail(ctx, models.PatientRole, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !patient.ChangePassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reset code has not been verified"})
			return
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		err = d.Store.Update(ctx, models.PatientRole, patient.ID.Hex(), map[string]any{
			"passwordHash":   hash,
			"changePassword": false,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"msg": "password has been reset"})
	}
}
