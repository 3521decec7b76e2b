package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/emrealmaoglu/trailium/cli/pkg/config"
)

// Credentials is the stored session. ExpiresAt tracks the access token;
// RefreshExpiresAt is zero when the lifetime of the refresh token is unknown.
type Credentials struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
	UserID           uint      `json:"user_id"`
	Username         string    `json:"username"`
	IsStaff          bool      `json:"is_staff"`
	IsSuperuser      bool      `json:"is_superuser"`
}

// Load reads credentials from disk. It returns nil, nil when none are saved.
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes credentials readable by the owner only
func Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetCredentialsPath(), data, 0600)
}

// Delete removes the credentials file. A missing file is not an error.
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsExpired checks if the access token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are valid
func (c *Credentials) IsValid() bool {
	return c.AccessToken != "" && !c.IsExpired()
}

// CanRefresh reports whether the refresh token may still be exchanged
func (c *Credentials) CanRefresh() bool {
	if c.RefreshToken == "" {
		return false
	}
	return c.RefreshExpiresAt.IsZero() || time.Now().Before(c.RefreshExpiresAt)
}
