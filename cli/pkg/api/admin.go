package api

import (
	"net/http"

	"github.com/emrealmaoglu/trailium/cli/pkg/logger"
)

// PurgeConfirmPhrase must be sent as confirm for the purge to run
const PurgeConfirmPhrase = "PURGE_NON_ADMIN_USERS"

// PurgeNonAdminUsers runs the purge. Superusers and the keep list survive.
func PurgeNonAdminUsers(keep []string, dryRun bool) (*PurgeResponse, error) {
	logger.Info("Purge requested", "keep", keep, "dry_run", dryRun)

	var out PurgeResponse
	err := sendJSON(http.MethodPost, "/api/admin-tools/purge-non-admin-users", PurgeRequest{
		Confirm: PurgeConfirmPhrase,
		Keep:    keep,
		DryRun:  dryRun,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
