package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/purge"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// PurgeRequest is the body of the purge endpoint. Keep is decoded separately
// so a non-array value can be reported precisely.
type PurgeRequest struct {
	Confirm string          `json:"confirm"`
	Keep    json.RawMessage `json:"keep"`
	DryRun  *bool           `json:"dry_run"`
}

// PurgeNonAdminUsers deletes every non-superuser account outside the keep list
// together with their content. Runs as a dry run unless dry_run is false.
// POST /api/admin-tools/purge-non-admin-users
func (h *Handlers) PurgeNonAdminUsers(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Confirm != purge.ConfirmPhrase {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "Confirmation required",
			"message":         "Set confirm to the required phrase to run the purge",
			"required_phrase": purge.ConfirmPhrase,
		})
		return
	}

	var keep []string
	if len(req.Keep) > 0 && !bytes.Equal(bytes.TrimSpace(req.Keep), jsonNull) {
		if err := json.Unmarshal(req.Keep, &keep); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid keep_list format"})
			return
		}
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	logger.Log.Info("Purge requested",
		logger.WithUserID(currentUser.ID),
		zap.Bool("dry_run", dryRun),
		zap.Strings("keep", keep))

	summary, err := purge.New(database.DB).Run(c.Request.Context(), keep, dryRun)
	if err != nil {
		logger.Log.Error("Purge failed", logger.WithUserID(currentUser.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Purge failed", "message": err.Error()})
		return
	}

	if dryRun {
		c.JSON(http.StatusOK, gin.H{
			"mode":         "dry_run",
			"message":      "Dry run completed - no data was deleted",
			"would_delete": summary,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":    "executed",
		"message": "Purge completed successfully",
		"deleted": summary,
	})
}
