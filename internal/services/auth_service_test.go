package services_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListAdmins() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) SetAdmin(id string, admin bool) error {
	args := m.Called(id, admin)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repositories.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(session *models.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(token string) (*models.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired() error {
	args := m.Called()
	return args.Error(0)
}

// stubVerifier returns fixed claims for any token, or an error.
type stubVerifier struct {
	claims *services.GoogleClaims
	err    error
}

func (s *stubVerifier) Verify(string) (*services.GoogleClaims, error) {
	return s.claims, s.err
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_CreateSession_NewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	verifier := &stubVerifier{claims: &services.GoogleClaims{
		Email:   "shopper@example.com",
		Name:    "Shopper",
		Picture: "https://example.com/p.png",
	}}
	authService := services.NewAuthService(userRepo, sessionRepo, verifier, nil)

	userRepo.On("GetByEmail", "shopper@example.com").Return(nil, notFoundErr("user")).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "user_abc123def456"
	}).Return(nil).Once()
	sessionRepo.On("Create", mock.AnythingOfType("*models.Session")).Return(nil).Once()

	user, session, err := authService.CreateSession("any-token")
	assert.NoError(t, err)
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, user.ID, session.UserID)
	assert.Contains(t, session.Token, "session_")
	assert.True(t, session.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))
	userRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

func TestAuthService_CreateSession_SuperAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	verifier := &stubVerifier{claims: &services.GoogleClaims{Email: "owner@example.com", Name: "Owner"}}
	authService := services.NewAuthService(userRepo, sessionRepo, verifier, []string{"Owner@Example.com"})

	userRepo.On("GetByEmail", "owner@example.com").Return(nil, notFoundErr("user")).Once()
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "user_owner0000001"
	}).Return(nil).Once()
	sessionRepo.On("Create", mock.AnythingOfType("*models.Session")).Return(nil).Once()

	user, _, err := authService.CreateSession("any-token")
	assert.NoError(t, err)
	assert.True(t, user.IsAdmin, "super admin emails must come up as admins")
	userRepo.AssertExpectations(t)
}

func TestAuthService_CreateSession_ExistingUserRefreshed(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	verifier := &stubVerifier{claims: &services.GoogleClaims{Email: "shopper@example.com", Name: "New Name", Picture: "new.png"}}
	authService := services.NewAuthService(userRepo, sessionRepo, verifier, nil)

	existing := &models.User{ID: "user_existing0001", Email: "shopper@example.com", Name: "Old Name", IsAdmin: true}
	userRepo.On("GetByEmail", "shopper@example.com").Return(existing, nil).Once()
	userRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()
	sessionRepo.On("Create", mock.AnythingOfType("*models.Session")).Return(nil).Once()

	user, _, err := authService.CreateSession("any-token")
	assert.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.True(t, user.IsAdmin, "sign-in must not downgrade the admin flag")
	userRepo.AssertExpectations(t)
}

func TestAuthService_CreateSession_BadToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), new(MockSessionRepository),
		&stubVerifier{err: fmt.Errorf("invalid ID token")}, nil)

	_, _, err := authService.CreateSession("garbage")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestAuthService_GetUserBySession(t *testing.T) {
	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	authService := services.NewAuthService(userRepo, sessionRepo, &stubVerifier{}, nil)

	// Valid session
	session := &models.Session{Token: "session_ok", UserID: "user_1", ExpiresAt: time.Now().Add(time.Hour)}
	sessionRepo.On("GetByToken", "session_ok").Return(session, nil).Once()
	userRepo.On("GetByID", "user_1").Return(&models.User{ID: "user_1"}, nil).Once()

	user, err := authService.GetUserBySession("session_ok")
	assert.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)

	// Unknown token
	sessionRepo.On("GetByToken", "session_unknown").Return(nil, notFoundErr("session")).Once()
	_, err = authService.GetUserBySession("session_unknown")
	assert.ErrorIs(t, err, services.ErrInvalidSession)

	// Expired session is rejected and deleted
	expired := &models.Session{Token: "session_old", UserID: "user_1", ExpiresAt: time.Now().Add(-time.Minute)}
	sessionRepo.On("GetByToken", "session_old").Return(expired, nil).Once()
	sessionRepo.On("Delete", "session_old").Return(nil).Once()
	_, err = authService.GetUserBySession("session_old")
	assert.ErrorIs(t, err, services.ErrSessionExpired)

	sessionRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	authService := services.NewAuthService(userRepo, new(MockSessionRepository), &stubVerifier{}, nil)

	userRepo.On("GetByID", "user_1").Return(&models.User{ID: "user_1"}, nil).Once()
	userRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.UpdateProfile("user_1", "+91 98765 43210", "12 Market Road, Kochi", "9.93, 76.26")
	assert.NoError(t, err)
	assert.Equal(t, "+91 98765 43210", user.PhoneNumber)
	assert.Equal(t, "12 Market Road, Kochi", user.HomeAddress)

	// Invalid phone rejected before any repository call
	_, err = authService.UpdateProfile("user_1", "not-a-phone", "12 Market Road, Kochi", "")
	assert.ErrorIs(t, err, services.ErrInvalidPhone)
	userRepo.AssertExpectations(t)
}

func TestAuthService_GrantAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	authService := services.NewAuthService(userRepo, new(MockSessionRepository), &stubVerifier{}, nil)

	// Grant to a registered non-admin
	userRepo.On("GetByEmail", "new.admin@example.com").Return(&models.User{ID: "user_2", Email: "new.admin@example.com"}, nil).Once()
	userRepo.On("SetAdmin", "user_2", true).Return(nil).Once()
	assert.NoError(t, authService.GrantAdmin("new.admin@example.com"))

	// Unknown user
	userRepo.On("GetByEmail", "stranger@example.com").Return(nil, notFoundErr("user")).Once()
	err := authService.GrantAdmin("stranger@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Already an admin
	userRepo.On("GetByEmail", "admin@example.com").Return(&models.User{ID: "user_3", IsAdmin: true}, nil).Once()
	err = authService.GrantAdmin("admin@example.com")
	assert.ErrorIs(t, err, services.ErrAlreadyAdmin)
	userRepo.AssertExpectations(t)
}

func TestAuthService_RevokeAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	authService := services.NewAuthService(userRepo, new(MockSessionRepository), &stubVerifier{}, []string{"owner@example.com"})
	actor := &models.User{ID: "user_actor", Email: "actor@example.com", IsAdmin: true}

	// Super admin is untouchable
	userRepo.On("GetByID", "user_super").Return(&models.User{ID: "user_super", Email: "owner@example.com"}, nil).Once()
	err := authService.RevokeAdmin(actor, "user_super")
	assert.ErrorIs(t, err, services.ErrSuperAdmin)

	// Cannot revoke yourself
	userRepo.On("GetByID", "user_actor").Return(actor, nil).Once()
	err = authService.RevokeAdmin(actor, "user_actor")
	assert.ErrorIs(t, err, services.ErrRevokeSelf)

	// Normal revoke
	userRepo.On("GetByID", "user_other").Return(&models.User{ID: "user_other", Email: "other@example.com", IsAdmin: true}, nil).Once()
	userRepo.On("SetAdmin", "user_other", false).Return(nil).Once()
	assert.NoError(t, authService.RevokeAdmin(actor, "user_other"))
	userRepo.AssertExpectations(t)
}
