package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/store"
)

// PendingDoctors lists signups waiting for activation. Admin-gated.
func PendingDoctors(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := false
		idents, err := d.Store.List(c.Request.Context(), models.DoctorRole, store.Query{Status: &pending})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, idents)
	}
}

// ActivateDoctor flips a pending doctor to activated. Admin-gated.
func ActivateDoctor(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		err := d.Store.Update(ctx, models.DoctorRole, id, map[string]any{"status": true})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		doctor, err := d.Store.FindByID(ctx, models.DoctorRole, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"doctor": doctor})
	}
}
