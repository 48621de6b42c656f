package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ConsentFileName is the consent file under the user config directory.
const ConsentFileName = "telemetry.json"

// ConsentStatus is the user's recorded telemetry decision.
type ConsentStatus struct {
	InstallID   string    `json:"install_id"`
	Enabled     bool      `json:"enabled"`
	ConsentDate time.Time `json:"consent_date"`
	Version     string    `json:"version"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agentify"), nil
}

// GetConsentStatus reads the recorded decision. A missing file returns
// nil with no error.
func GetConsentStatus() (*ConsentStatus, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, ConsentFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var consent ConsentStatus
	if err := json.Unmarshal(data, &consent); err != nil {
		return nil, err
	}
	return &consent, nil
}

// SetConsentStatus records the decision, keeping an existing install ID.
func SetConsentStatus(enabled bool, version string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	installID := uuid.New().String()
	if existing, err := GetConsentStatus(); err == nil && existing != nil && existing.InstallID != "" {
		installID = existing.InstallID
	}

	consent := ConsentStatus{
		InstallID:   installID,
		Enabled:     enabled,
		ConsentDate: time.Now().UTC(),
		Version:     version,
	}
	data, err := json.MarshalIndent(consent, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConsentFileName), data, 0o644)
}

// NeedsConsent reports whether the user has never been asked.
func NeedsConsent() (bool, error) {
	consent, err := GetConsentStatus()
	if err != nil {
		return true, err
	}
	return consent == nil, nil
}
