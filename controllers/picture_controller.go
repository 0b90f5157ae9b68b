package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/medipointbackend/middleware"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/utils"
)

// UploadPicture stores a new profile picture in GCS and points pictureUrl at
// it. The replaced object is deleted best effort.
func UploadPicture(d Deps, role *models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ident := middleware.Identity(c)

		fileHeader, err := c.FormFile("picture")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is missing"})
			return
		}

		client, bucket, err := utils.NewGCSClient(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
			return
		}
		defer client.Close()

		url, err := utils.UploadAvatarToGCS(ctx, client, bucket, role.Name, ident.ID.Hex(), fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := d.Store.Update(ctx, role, ident.ID.Hex(), map[string]any{"pictureUrl": url}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if ident.PictureURL != "" {
			if obj, err := utils.ObjectNameFromGCSPublicURL(bucket, ident.PictureURL); err == nil {
				_ = utils.DeleteGCSObjects(ctx, client, bucket, []string{obj})
			}
		}

		c.JSON(http.StatusOK, gin.H{"pictureUrl": url})
	}
}
