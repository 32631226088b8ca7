package service

import (
	"testing"

	"autolot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (*AuthService, *fakeStore) {
	store := newFakeStore()
	return NewAuthService(&fakeUserRepo{store: store}, testLogger()), store
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Username:        "jordan_b",
		Email:           "Jordan@Example.com",
		Phone:           "+1 555 010 2030",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
	}
}

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc, store := newAuthFixture()

	user, err := svc.Register(registerReq())
	require.NoError(t, err)

	assert.Equal(t, "jordan@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "Secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret1")))
	assert.Contains(t, store.users, user.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()

	cases := []struct {
		name  string
		field string
		edit  func(*RegisterRequest)
	}{
		{"short username", "username", func(r *RegisterRequest) { r.Username = "ab" }},
		{"bad username chars", "username", func(r *RegisterRequest) { r.Username = "no spaces" }},
		{"bad email", "email", func(r *RegisterRequest) { r.Email = "nope" }},
		{"short password", "password", func(r *RegisterRequest) { r.Password = "Ab1"; r.ConfirmPassword = "Ab1" }},
		{"no uppercase", "password", func(r *RegisterRequest) { r.Password = "secret1"; r.ConfirmPassword = "secret1" }},
		{"no digit", "password", func(r *RegisterRequest) { r.Password = "Secrets"; r.ConfirmPassword = "Secrets" }},
		{"mismatch", "confirm_password", func(r *RegisterRequest) { r.ConfirmPassword = "Other1x" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := registerReq()
			tc.edit(&req)

			_, err := svc.Register(req)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)

			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			assert.True(t, found, "expected a complaint about %q, got %v", tc.field, verr.Fields)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Username = "someone_else"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, models.ErrDuplicateUser)
}

func TestLoginByEmailAndPhone(t *testing.T) {
	svc, _ := newAuthFixture()

	registered, err := svc.Register(registerReq())
	require.NoError(t, err)

	user, err := svc.Login(LoginRequest{Login: "jordan@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	user, err = svc.Login(LoginRequest{Login: "+1 555 010 2030", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(registerReq())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(LoginRequest{Login: "jordan@example.com", Password: "Wrong1x"})
	_, unknownUser := svc.Login(LoginRequest{Login: "nobody@example.com", Password: "Secret1"})

	assert.ErrorIs(t, wrongPassword, models.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, models.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestDeleteUserProtectsAdmins(t *testing.T) {
	svc, store := newAuthFixture()

	store.users["admin-1"] = &models.User{ID: "admin-1", Username: "boss", Email: "boss@example.com", IsAdmin: true}

	err := svc.DeleteUser("admin-1")
	assert.ErrorIs(t, err, models.ErrAdminProtected)

	assert.ErrorIs(t, svc.DeleteUser("missing"), models.ErrUserNotFound)
}
