package api

import "sync"

// AuthContext carries the bearer token for the login-gated companion
// surface. It is injected into the Client at construction and updated
// by Login, rather than read from ambient storage at call time.
type AuthContext struct {
	mu       sync.RWMutex
	token    string
	username string
}

// NewAuthContext returns an empty, unauthenticated context.
func NewAuthContext() *AuthContext {
	return &AuthContext{}
}

// SetToken stores the access token and the username it belongs to.
func (a *AuthContext) SetToken(token, username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
	a.username = username
}

// Token returns the current access token, empty when logged out.
func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Username returns the logged-in username, empty when logged out.
func (a *AuthContext) Username() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.username
}

// Clear drops the stored credentials.
func (a *AuthContext) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.username = ""
}
