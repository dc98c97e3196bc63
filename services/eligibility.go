// services/eligibility.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"season-pool-system/models"
)

// EligibilityVerifier gates registration. Deployments that require a
// backend-issued approval or token-ownership proof plug their verifier in
// here; the engine only sees allowed / not allowed.
type EligibilityVerifier interface {
	VerifyEligibility(wallet string, seasonNumber uint64) error
}

// AllowAllVerifier admits every authenticated caller.
type AllowAllVerifier struct{}

func (AllowAllVerifier) VerifyEligibility(string, uint64) error { return nil }

// BackendVerifier asks an external approval service whether the wallet may
// register for the season.
type BackendVerifier struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewBackendVerifier(baseURL, token string) *BackendVerifier {
	return &BackendVerifier{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (v *BackendVerifier) VerifyEligibility(wallet string, seasonNumber uint64) error {
	url := fmt.Sprintf("%s/eligibility/check", v.BaseURL)

	reqBody := map[string]interface{}{
		"wallet":        wallet,
		"season_number": seasonNumber,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.Token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("Eligibility check returned %d for %s: %s", resp.StatusCode, wallet, string(body))
		return models.ErrNotEligible
	}

	var out struct {
		Eligible bool `json:"eligible"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return err
	}
	if !out.Eligible {
		return models.ErrNotEligible
	}
	return nil
}
