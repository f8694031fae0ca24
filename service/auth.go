package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zlnvch/stylussphere/cache"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Session lifetime; the JWT expiry and the cache TTL move together.
const sessionTTL = 24 * time.Hour

// Principal identifies the authenticated owner of a session token.
type Principal struct {
	Username  string
	SessionId string
}

func (s *Service) Register(ctx context.Context, username string, password string) (models.User, string, error) {
	if err := ValidateUsername(username); err != nil {
		return models.User{}, "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password failed: %w", err)
	}

	user, err := s.Store.CreateUser(ctx, models.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, store.ErrItemExists) {
			return models.User{}, "", ErrUserExists
		}
		return models.User{}, "", fmt.Errorf("create user failed: %w", err)
	}

	token, err := s.CreateSession(ctx, user.Username)
	if err != nil {
		return models.User{}, "", fmt.Errorf("session creation failed: %w", err)
	}

	return user, token, nil
}

func (s *Service) Login(ctx context.Context, username string, password string) (models.User, string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.CreateSession(ctx, user.Username)
	if err != nil {
		return models.User{}, "", fmt.Errorf("session creation failed: %w", err)
	}

	return user, token, nil
}

func (s *Service) Authenticate(ctx context.Context, username string, password string) (models.User, error) {
	user, err := s.Store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("get user failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// CreateSession issues a signed session token and records the session
// id in the cache so a REST logout can revoke it.
func (s *Service) CreateSession(ctx context.Context, username string) (string, error) {
	sid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	sessionId := sid.String()

	token, err := s.CreateJWT(sessionId, username)
	if err != nil {
		return "", err
	}

	if err := s.Cache.SetSession(ctx, sessionId, username, sessionTTL); err != nil {
		return "", fmt.Errorf("store session failed: %w", err)
	}

	return token, nil
}

func (s *Service) CreateJWT(sessionId string, username string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionId,
		"sub": username,
		"exp": time.Now().Add(sessionTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) VerifyJWT(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", err
	}

	if !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}

	sessionId, ok := claims["sid"].(string)
	if !ok {
		return "", "", errors.New("missing sid claim")
	}

	username, ok := claims["sub"].(string)
	if !ok {
		return "", "", errors.New("missing sub claim")
	}

	return sessionId, username, nil
}

// AuthenticateToken resolves a session token to its Principal. The
// signature check alone is not enough: the session must still be live
// in the cache, otherwise a logged-out token would keep working until
// its expiry.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	if len(token) == 0 {
		return Principal{}, ErrUnauthenticated
	}

	sessionId, username, err := s.VerifyJWT(token)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}

	stored, err := s.Cache.GetSession(ctx, sessionId)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, fmt.Errorf("session lookup failed: %w", err)
	}
	if stored != username {
		return Principal{}, ErrUnauthenticated
	}

	return Principal{Username: username, SessionId: sessionId}, nil
}

type SessionRevokedMessage struct {
	SessionId string `json:"sessionId"`
}

// Logout revokes the token's session unconditionally. Invalid or
// already-revoked tokens are not an error; the operation is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	if len(token) == 0 {
		return nil
	}

	sessionId, _, err := s.VerifyJWT(token)
	if err != nil {
		return nil
	}

	if err := s.Cache.DeleteSession(ctx, sessionId); err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}

	// Let every hub instance demote live connections bound to this
	// session back to unauthenticated.
	msg := SessionRevokedMessage{SessionId: sessionId}
	if msgBytes, err := json.Marshal(msg); err == nil {
		if err := s.Cache.Publish(ctx, SessionRevokedChannel, msgBytes); err != nil {
			log.Printf("Failed to publish session revocation: %v", err)
		}
	}

	return nil
}
