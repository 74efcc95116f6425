package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"opportunity-board/internal/config"
	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrUserNotFound       = errors.New("user not found")
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordRegex = regexp.MustCompile(`^.{6,72}$`) // bcrypt reads at most 72 bytes
)

// ValidateCredentials checks sign-up input.
func ValidateCredentials(email, password string) error {
	if !emailRegex.MatchString(email) || len(email) > 254 {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if !passwordRegex.MatchString(password) {
		return fmt.Errorf("%w: password must be 6-72 characters", ErrInvalidInput)
	}
	return nil
}

// Provider signs users up and in, tracks sessions and resolves roles. All
// state lives in the document store: credentials keyed by lowercased email,
// identity records keyed by user id, sessions keyed by token.
type Provider struct {
	store      storage.Store
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
	now        func() time.Time
}

func NewProvider(store storage.Store, cfg config.AuthConfig) *Provider {
	p := &Provider{
		store:      store,
		ttl:        cfg.SessionTTL,
		retries:    cfg.IdentityRetries,
		retryDelay: cfg.IdentityRetryDelay,
		now:        time.Now,
	}
	if p.ttl <= 0 {
		p.ttl = 30 * 24 * time.Hour
	}
	if p.retries <= 0 {
		p.retries = 1
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new account with the user role.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	if _, err := p.store.Get(ctx, model.CollectionLogins, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("auth: check existing email: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u := &model.User{ID: uuid.NewString(), Email: email, Role: model.RoleUser, CreatedAt: p.now().UTC()}
	cred := storage.Document{
		ID:       email,
		Fields:   map[string]string{"uid": u.ID, "email": email, "passwordHash": string(hash)},
		PostedAt: u.CreatedAt,
	}
	if err := p.store.Put(ctx, model.CollectionLogins, cred); err != nil {
		return nil, fmt.Errorf("auth: store credentials: %w", err)
	}
	if err := p.writeIdentity(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("auth: user signed up", "uid", u.ID)
	return u, nil
}

// writeIdentity stores the identity record, retrying a fixed number of times
// with a fixed delay before giving up.
func (p *Provider) writeIdentity(ctx context.Context, u *model.User) error {
	doc := storage.Document{
		ID:       u.ID,
		Fields:   map[string]string{"uid": u.ID, "email": u.Email, "role": string(u.Role)},
		PostedAt: u.CreatedAt,
	}
	var err error
	for i := 0; i < p.retries; i++ {
		if err = p.store.Put(ctx, model.CollectionUsers, doc); err == nil {
			return nil
		}
		slog.Warn("auth: identity write failed", "uid", u.ID, "attempt", i+1, "error", err)
		if i == p.retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}
	return fmt.Errorf("auth: write identity record: %w", err)
}

// Login verifies the password and opens a new session.
func (p *Provider) Login(ctx context.Context, email, password string) (*model.User, model.Session, error) {
	email = normalizeEmail(email)
	cred, err := p.store.Get(ctx, model.CollectionLogins, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, model.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, model.Session{}, fmt.Errorf("auth: load credentials: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.Fields["passwordHash"]), []byte(password)) != nil {
		return nil, model.Session{}, ErrInvalidCredentials
	}
	uid := cred.Fields["uid"]
	s := model.Session{Token: uuid.NewString(), UserID: uid, Expires: p.now().Add(p.ttl).UTC()}
	doc := storage.Document{
		ID: s.Token,
		Fields: map[string]string{
			"uid":     uid,
			"email":   email,
			"expires": s.Expires.Format(time.RFC3339Nano),
		},
		PostedAt: p.now().UTC(),
	}
	if err := p.store.Put(ctx, model.CollectionSessions, doc); err != nil {
		return nil, model.Session{}, fmt.Errorf("auth: create session: %w", err)
	}
	u := &model.User{ID: uid, Email: email, Role: p.Role(ctx, uid)}
	return u, s, nil
}

// Logout ends a session.
func (p *Provider) Logout(ctx context.Context, token string) error {
	err := p.store.Delete(ctx, model.CollectionSessions, token)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// CurrentUser resolves a session token to its user. Expired sessions are
// removed.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	doc, err := p.store.Get(ctx, model.CollectionSessions, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load session: %w", err)
	}
	if p.expired(doc) {
		_ = p.store.Delete(ctx, model.CollectionSessions, token)
		return nil, ErrSessionNotFound
	}
	uid := doc.Fields["uid"]
	u := &model.User{ID: uid, Email: doc.Fields["email"], Role: model.RoleUser}
	idDoc, err := p.store.Get(ctx, model.CollectionUsers, uid)
	switch {
	case err == nil:
		u.Role = model.ParseRole(idDoc.Fields["role"])
		u.CreatedAt = idDoc.PostedAt
	case !errors.Is(err, storage.ErrNotFound):
		slog.Warn("auth: role lookup failed", "uid", uid, "error", err)
	}
	return u, nil
}

// expired also reports sessions with an unreadable expiry.
func (p *Provider) expired(doc storage.Document) bool {
	expires, err := time.Parse(time.RFC3339Nano, doc.Fields["expires"])
	return err != nil || !p.now().Before(expires)
}

// PurgeExpiredSessions deletes every expired session and returns how many
// were removed. Sessions deleted concurrently are not counted.
func (p *Provider) PurgeExpiredSessions(ctx context.Context) (int, error) {
	docs, err := p.store.List(ctx, model.CollectionSessions)
	if err != nil {
		return 0, fmt.Errorf("auth: list sessions: %w", err)
	}
	removed := 0
	for _, d := range docs {
		if !p.expired(d) {
			continue
		}
		err := p.store.Delete(ctx, model.CollectionSessions, d.ID)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, storage.ErrNotFound):
		default:
			return removed, fmt.Errorf("auth: delete session: %w", err)
		}
	}
	if removed > 0 {
		slog.Info("auth: purged expired sessions", "removed", removed, "remaining", len(docs)-removed)
	}
	return removed, nil
}

// Role returns the user's role, defaulting to user when the identity record
// is absent or cannot be read.
func (p *Provider) Role(ctx context.Context, uid string) model.Role {
	doc, err := p.store.Get(ctx, model.CollectionUsers, uid)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("auth: role lookup failed", "uid", uid, "error", err)
		}
		return model.RoleUser
	}
	return model.ParseRole(doc.Fields["role"])
}

// SetRole changes the role of the account registered under email.
func (p *Provider) SetRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	email = normalizeEmail(email)
	cred, err := p.store.Get(ctx, model.CollectionLogins, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load credentials: %w", err)
	}
	u := &model.User{ID: cred.Fields["uid"], Email: email, Role: role}
	err = p.store.Update(ctx, model.CollectionUsers, u.ID, map[string]string{"role": string(role)})
	if errors.Is(err, storage.ErrNotFound) {
		// identity record never made it; recreate it
		u.CreatedAt = cred.PostedAt
		return u, p.writeIdentity(ctx, u)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: update role: %w", err)
	}
	return u, nil
}
