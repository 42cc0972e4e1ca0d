package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/persistence"
)

// Local storage keys written by the session store.
const (
	KeyToken                = "authToken"
	KeyUsername             = "username"
	KeyRefPhotoURL          = "ref_photo_url"
	KeyRole                 = "role"
	KeyPendingPhotographer  = "pendingAccess_photographer"
	KeyPendingAlbumID       = "pendingAccess_albumId"
	KeyPostLoginRedirectURL = "postLoginRedirectUrl"
	keyLegacyEmail          = "userEmail"
)

var sessionKeys = []string{
	KeyToken,
	KeyUsername,
	KeyRefPhotoURL,
	KeyRole,
	KeyPendingPhotographer,
	KeyPendingAlbumID,
	KeyPostLoginRedirectURL,
	keyLegacyEmail,
}

// ErrMissingCredentials is returned by Login when username or password is blank.
var ErrMissingCredentials = errors.New("session: username and password are required")

// Profile is the cached identity of the signed-in user.
type Profile struct {
	Username    string
	RefPhotoURL string
	Role        string
}

// IsAttendee reports whether the role is one of the attendee roles.
func (p Profile) IsAttendee() bool {
	return p.Role == api.RoleAttendee || p.Role == api.RoleVIPAttendee
}

// Session is the cached authentication state.
type Session struct {
	Token string
	Profile
}

// LoggedIn reports whether the session carries a token. Without a token the
// session is logged out whatever the other fields hold.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// PendingAccess is a VIP album the user opened before signing in.
type PendingAccess struct {
	Photographer string
	AlbumID      string
}

// Verifier checks the stored token against the backend.
type Verifier interface {
	Verify(ctx context.Context) (api.VerifyResult, error)
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (api.LoginResult, error)
}

// Store keeps the session in local storage.
type Store struct {
	store  persistence.Store
	logger *slog.Logger
}

// New constructs a Store over local storage.
func New(store persistence.Store, logger *slog.Logger) *Store {
	return &Store{store: store, logger: logging.Default(logger)}
}

// Token implements api.TokenSource.
func (s *Store) Token(ctx context.Context) string {
	token, _ := s.GetToken(ctx)
	return token
}

// GetToken returns the stored token without side effects.
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	token := s.get(ctx, KeyToken)
	return token, token != ""
}

// Cached returns the session as last stored, without contacting the backend.
func (s *Store) Cached(ctx context.Context) Session {
	token := s.get(ctx, KeyToken)
	if token == "" {
		return Session{}
	}
	return Session{
		Token: token,
		Profile: Profile{
			Username:    s.get(ctx, KeyUsername),
			RefPhotoURL: s.get(ctx, KeyRefPhotoURL),
			Role:        s.get(ctx, KeyRole),
		},
	}
}

// SetSession persists a freshly issued token and its profile.
func (s *Store) SetSession(ctx context.Context, token string, profile Profile) error {
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return s.writeProfile(ctx, profile)
}

func (s *Store) writeProfile(ctx context.Context, profile Profile) error {
	if err := s.setOrDelete(ctx, KeyUsername, profile.Username); err != nil {
		return err
	}
	if err := s.setOrDelete(ctx, KeyRole, profile.Role); err != nil {
		return err
	}
	return s.setOrDelete(ctx, KeyRefPhotoURL, profile.RefPhotoURL)
}

// Clear removes every session key. Calling it on an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, sessionKeys...)
}

// Logout clears the session.
func (s *Store) Logout(ctx context.Context) error {
	return s.Clear(ctx)
}

// Verify confirms the stored token with the backend. Any failure, including
// a network error, clears the session and reports false. It never returns an
// error so callers can treat the result as a plain logged-in check.
func (s *Store) Verify(ctx context.Context, verifier Verifier) (Session, bool) {
	logger := logging.Component(ctx, s.logger, "SessionStore", "Verify")

	token, ok := s.GetToken(ctx)
	if !ok {
		return Session{}, false
	}

	result, err := verifier.Verify(ctx)
	if err != nil || !result.Valid {
		if err != nil {
			logger.Info("session rejected", "error", err)
		} else {
			logger.Info("session rejected", "reason", "invalid")
		}
		s.clearQuietly(ctx, logger)
		return Session{}, false
	}

	profile := Profile{Username: result.Username, RefPhotoURL: result.RefPhotoURL, Role: result.Role}
	if profile.Role == "" {
		profile.Role = s.get(ctx, KeyRole)
	}
	if err := s.writeProfile(ctx, profile); err != nil {
		logger.Warn("failed to refresh cached profile", "error", err)
	}
	return Session{Token: token, Profile: profile}, true
}

// Login validates the credentials locally, signs in and persists the session.
func (s *Store) Login(ctx context.Context, auth Authenticator, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	result, err := auth.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	profile := Profile{Username: result.Username, RefPhotoURL: result.RefPhotoURL, Role: result.Role}
	if profile.Username == "" {
		profile.Username = username
	}
	if err := s.SetSession(ctx, result.Token, profile); err != nil {
		return Session{}, err
	}
	logging.Component(ctx, s.logger, "SessionStore", "Login", "role", profile.Role).Info("signed in")
	return Session{Token: result.Token, Profile: profile}, nil
}

// SetPendingAccess remembers a VIP album to unlock after sign-in.
func (s *Store) SetPendingAccess(ctx context.Context, pending PendingAccess) error {
	if err := s.store.Set(ctx, KeyPendingPhotographer, pending.Photographer); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyPendingAlbumID, pending.AlbumID)
}

// PendingAccess returns the remembered VIP album, if any.
func (s *Store) PendingAccess(ctx context.Context) (PendingAccess, bool) {
	pending := PendingAccess{
		Photographer: s.get(ctx, KeyPendingPhotographer),
		AlbumID:      s.get(ctx, KeyPendingAlbumID),
	}
	return pending, pending.Photographer != "" && pending.AlbumID != ""
}

// ClearPendingAccess forgets the remembered VIP album.
func (s *Store) ClearPendingAccess(ctx context.Context) error {
	return s.store.Delete(ctx, KeyPendingPhotographer, KeyPendingAlbumID)
}

// SetPostLoginRedirect remembers where to return after sign-in.
func (s *Store) SetPostLoginRedirect(ctx context.Context, target string) error {
	return s.store.Set(ctx, KeyPostLoginRedirectURL, target)
}

// TakePostLoginRedirect returns and forgets the remembered redirect target.
func (s *Store) TakePostLoginRedirect(ctx context.Context) (string, bool) {
	target := s.get(ctx, KeyPostLoginRedirectURL)
	if target == "" {
		return "", false
	}
	if err := s.store.Delete(ctx, KeyPostLoginRedirectURL); err != nil {
		s.logger.Warn("failed to clear post login redirect", "error", err)
	}
	return target, true
}

func (s *Store) get(ctx context.Context, key string) string {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			s.logger.Warn("local storage read failed", "key", key, "error", err)
		}
		return ""
	}
	return value
}

func (s *Store) setOrDelete(ctx context.Context, key, value string) error {
	if value == "" {
		return s.store.Delete(ctx, key)
	}
	return s.store.Set(ctx, key, value)
}

func (s *Store) clearQuietly(ctx context.Context, logger *slog.Logger) {
	if err := s.Clear(ctx); err != nil {
		logger.Warn("failed to clear session", "error", err)
	}
}
