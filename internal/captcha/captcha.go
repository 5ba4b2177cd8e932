package captcha

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the Turnstile siteverify URL.
const DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier checks captcha tokens against the siteverify endpoint.
// The HTTP client carries a bounded timeout so registration cannot hang
// on a slow verification service.
type Verifier struct {
	Secret   string
	Endpoint string
	Client   *http.Client
}

func New(secret string) *Verifier {
	return &Verifier{
		Secret:   secret,
		Endpoint: DefaultEndpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify returns nil when the token passes. remoteIP is optional.
func (v *Verifier) Verify(token, remoteIP string) error {
	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	resp, err := v.Client.Post(v.Endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("captcha verify decode: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("captcha rejected: %s", strings.Join(out.ErrorCodes, ","))
	}
	return nil
}
