package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/stylussphere/cache"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/service"
	"github.com/zlnvch/stylussphere/store"
)

func TestCreateAndVerifyJWT(t *testing.T) {
	svc, _, _ := setupService(t)

	sessionId := "sess-123"
	username := "alice"

	token, err := svc.CreateJWT(sessionId, username)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	gotSessionId, gotUsername, err := svc.VerifyJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, sessionId, gotSessionId)
	assert.Equal(t, username, gotUsername)
}

func TestVerifyJWT_Invalid(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, err := svc.VerifyJWT("invalid.token.string")
	assert.Error(t, err)
}

func TestVerifyJWT_NoneAlgorithmRejected(t *testing.T) {
	svc, _, _ := setupService(t)

	claims := jwt.MapClaims{"sid": "sess-123", "sub": "alice"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, _, err = svc.VerifyJWT(signed)
	assert.Error(t, err)
}

func TestVerifyJWT_WrongSecret(t *testing.T) {
	svc, _, _ := setupService(t)

	other, err := service.NewService(nil, nil, []byte("other-secret"))
	assert.NoError(t, err)

	token, err := other.CreateJWT("sess-123", "alice")
	assert.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.Error(t, err)
}

func TestRegister_Success(t *testing.T) {
	svc, mockStore, mockCache := setupService(t)
	ctx := context.Background()

	var created models.User
	mockStore.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.User)
		}).
		Return(models.User{Username: "alice"}, nil)
	mockCache.On("SetSession", mock.Anything, mock.Anything, "alice", mock.Anything).Return(nil)

	user, token, err := svc.Register(ctx, "alice", "pw1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)

	// Only the bcrypt hash ever reaches the store.
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotContains(t, created.PasswordHash, "pw1")

	mockStore.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, store.ErrItemExists)

	_, _, err := svc.Register(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestRegister_InvalidUsername(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "al ice", "pw1")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	mockStore.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestAuthenticate_Success(t *testing.T) {
	svc, mockStore, mockCache := setupService(t)
	ctx := context.Background()

	var created models.User
	mockStore.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.User)
		}).
		Return(models.User{Username: "alice"}, nil)
	mockCache.On("SetSession", mock.Anything, mock.Anything, "alice", mock.Anything).Return(nil)

	_, _, err := svc.Register(ctx, "alice", "pw1")
	assert.NoError(t, err)

	mockStore.On("GetUser", mock.Anything, "alice").Return(created, nil)

	user, err := svc.Authenticate(ctx, "alice", "pw1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestAuthenticate_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc, mockStore, mockCache := setupService(t)
	ctx := context.Background()

	var created models.User
	mockStore.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.User)
		}).
		Return(models.User{Username: "alice"}, nil)
	mockCache.On("SetSession", mock.Anything, mock.Anything, "alice", mock.Anything).Return(nil)

	_, _, err := svc.Register(ctx, "alice", "pw1")
	assert.NoError(t, err)

	mockStore.On("GetUser", mock.Anything, "alice").Return(created, nil)
	mockStore.On("GetUser", mock.Anything, "nobody").Return(models.User{}, store.ErrItemNotFound)

	_, wrongPasswordErr := svc.Authenticate(ctx, "alice", "wrong")
	_, unknownUserErr := svc.Authenticate(ctx, "nobody", "pw1")

	assert.ErrorIs(t, wrongPasswordErr, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUserErr, service.ErrInvalidCredentials)
}

func TestAuthenticateToken_Success(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	token, err := svc.CreateJWT("sess-123", "alice")
	assert.NoError(t, err)

	mockCache.On("GetSession", mock.Anything, "sess-123").Return("alice", nil)

	principal, err := svc.AuthenticateToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, "sess-123", principal.SessionId)
}

func TestAuthenticateToken_RevokedSession(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	token, err := svc.CreateJWT("sess-123", "alice")
	assert.NoError(t, err)

	// A valid signature is not enough once the session is gone.
	mockCache.On("GetSession", mock.Anything, "sess-123").Return("", cache.ErrSessionNotFound)

	_, err = svc.AuthenticateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuthenticateToken_EmptyToken(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AuthenticateToken(ctx, "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	token, err := svc.CreateJWT("sess-123", "alice")
	assert.NoError(t, err)

	mockCache.On("DeleteSession", mock.Anything, "sess-123").Return(nil)

	var published []byte
	mockCache.On("Publish", mock.Anything, service.SessionRevokedChannel, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(2).([]byte)
		}).
		Return(nil)

	err = svc.Logout(ctx, token)
	assert.NoError(t, err)

	var msg service.SessionRevokedMessage
	assert.NoError(t, json.Unmarshal(published, &msg))
	assert.Equal(t, "sess-123", msg.SessionId)

	mockCache.AssertExpectations(t)
}

func TestLogout_InvalidTokenIsNoop(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "not.a.token"))

	mockCache.AssertNotCalled(t, "DeleteSession", mock.Anything, mock.Anything)
}
