package auth

// Authenticator checks admin bearer tokens. A configured bcrypt hash takes
// precedence over the plain key.
type Authenticator struct {
	plainKey string
	keyHash  string
}

// NewAuthenticator creates an Authenticator. Either argument may be empty.
func NewAuthenticator(plainKey, keyHash string) *Authenticator {
	return &Authenticator{plainKey: plainKey, keyHash: keyHash}
}

// AuthResult contains the result of an authentication attempt
type AuthResult struct {
	Authenticated bool
	Error         string
}

// Authenticate checks the Authorization header value.
func (a *Authenticator) Authenticate(authHeader string) AuthResult {
	token := ExtractBearerToken(authHeader)
	if token == "" {
		return AuthResult{Error: "missing bearer token"}
	}

	switch {
	case a.keyHash != "":
		if VerifyAPIKey(token, a.keyHash) {
			return AuthResult{Authenticated: true}
		}
	case a.plainKey != "":
		if VerifyAPIKeyConstantTime(token, a.plainKey) {
			return AuthResult{Authenticated: true}
		}
	}
	return AuthResult{Error: "invalid token"}
}
