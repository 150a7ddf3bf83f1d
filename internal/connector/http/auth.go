package http

import (
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// =============================================================================
// AUTHENTICATION STRATEGIES
// =============================================================================

// AuthConfig represents authentication configuration.
type AuthConfig interface {
	Apply(req *http.Request)
}

// TransportWrapper is implemented by strategies that need to negotiate at the
// transport level.
type TransportWrapper interface {
	WrapTransport(rt http.RoundTripper) http.RoundTripper
}

// NoAuth represents no authentication.
type NoAuth struct{}

func (a NoAuth) Apply(req *http.Request) {}

// NTLMAuth authenticates against Windows-integrated sites.
// Credentials travel as DOMAIN\user basic auth and the wrapped transport
// upgrades them to an NTLM handshake when the server asks for it.
type NTLMAuth struct {
	Domain   string
	Username string
	Password string
}

// Principal returns DOMAIN\user, or just user without a domain.
func (a NTLMAuth) Principal() string {
	if a.Domain == "" {
		return a.Username
	}
	return a.Domain + `\` + a.Username
}

// Apply adds the credentials the negotiator reads.
func (a NTLMAuth) Apply(req *http.Request) {
	if a.Username == "" {
		return
	}
	req.SetBasicAuth(a.Principal(), a.Password)
}

// WrapTransport installs the NTLM negotiator.
func (a NTLMAuth) WrapTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return ntlmssp.Negotiator{RoundTripper: rt}
}
