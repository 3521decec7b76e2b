package handlers

import (
	"github.com/emrealmaoglu/trailium/internal/auth"
	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/repository"
	"github.com/emrealmaoglu/trailium/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth    auth.AuthServiceInterface
	users   repository.UserRepository
	storage storage.PhotoStorage
	config  *config.Config
}

// NewHandlers creates a new handlers instance. database.DB must be
// initialized first.
func NewHandlers(authService auth.AuthServiceInterface, photoStorage storage.PhotoStorage, cfg *config.Config) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handlers{
		auth:    authService,
		users:   repository.NewUserRepository(database.DB),
		storage: photoStorage,
		config:  cfg,
	}
}

// SetStorage swaps the photo storage backend
func (h *Handlers) SetStorage(photoStorage storage.PhotoStorage) {
	h.storage = photoStorage
}
