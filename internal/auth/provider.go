package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTooManyAttempts is returned once an account exceeds the configured
	// number of failed logins.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// User is one login account and the department it acts for.
type User struct {
	Username   string
	Password   string
	Department string
}

// Session is an authenticated login.
type Session struct {
	Token      string
	Username   string
	Department string
}

// Provider is the identity provider: it verifies credentials, limits failed
// attempts per account, and resolves session tokens to departments. It is
// an identity/role lookup only.
type Provider struct {
	mu          sync.Mutex
	users       map[string]User
	sessions    map[string]Session
	attempts    map[string]int
	maxAttempts int
	logger      *zap.Logger
}

// NewProvider creates a provider over the configured accounts.
func NewProvider(users []User, maxAttempts int, logger *zap.Logger) *Provider {
	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &Provider{
		users:       byName,
		sessions:    make(map[string]Session),
		attempts:    make(map[string]int),
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Login verifies the credentials and returns a new session. A successful
// login resets the account's failure counter.
func (p *Provider) Login(username, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attempts[username] >= p.maxAttempts {
		p.logger.Warn("Login blocked, attempt limit reached", zap.String("username", username))
		return nil, ErrTooManyAttempts
	}

	user, ok := p.users[username]
	if !ok || user.Password != password {
		p.attempts[username]++
		p.logger.Warn("Login failed",
			zap.String("username", username),
			zap.Int("remaining", p.maxAttempts-p.attempts[username]))
		return nil, ErrInvalidCredentials
	}

	p.attempts[username] = 0
	session := Session{
		Token:      uuid.NewString(),
		Username:   username,
		Department: user.Department,
	}
	p.sessions[session.Token] = session

	p.logger.Info("Login succeeded",
		zap.String("username", username),
		zap.String("department", user.Department))
	return &session, nil
}

// CurrentDepartment resolves a session token to the department it acts
// for. An unknown token means no operations are authorized.
func (p *Provider) CurrentDepartment(token string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[token]
	if !ok {
		return "", false
	}
	return session.Department, true
}

// Logout discards a session. Unknown tokens are ignored.
func (p *Provider) Logout(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, token)
}
