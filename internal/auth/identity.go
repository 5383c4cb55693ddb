package auth

import "encoding/json"

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// Identity é o resultado canônico da verificação de uma credencial externa.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
	Raw            json.RawMessage
}
