package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"autolot/internal/repositories"
	"autolot/models"
	"autolot/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterRequest carries the fields of a signup form
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest identifies the account by email or phone number
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AdminUsersPerPage is the admin user listing page size
const AdminUsersPerPage = 10

// UserPage is one page of a user listing
type UserPage struct {
	Users      []*models.User    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

type AuthServiceInterface interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(req LoginRequest) (*models.User, error)
	GetUser(id string) (*models.User, error)
	ListUsers(page int) (*UserPage, error)
	DeleteUser(id string) error
	UserCount() (int, error)
}

type AuthService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *logger.Logger
}

func NewAuthService(userRepo repositories.UserRepositoryInterface, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger.WithComponent("auth_service"),
	}
}

// Register creates a new non-admin account
func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "username", req.Username)

	if err := validateRegisterRequest(req); err != nil {
		s.logger.Warn("Registration failed: invalid data", "error", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Warn("Registration failed", "username", req.Username, "error", err)
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates by email or phone. Lookup and password failures
// collapse into the same error so the response does not reveal which
// part was wrong.
func (s *AuthService) Login(req LoginRequest) (*models.User, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByLogin(login)
	if err != nil {
		s.logger.Warn("Login failed: unknown account")
		return nil, models.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn("Login failed: wrong password", "user_id", user.ID)
		return nil, models.ErrInvalidCredentials
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser retrieves an account by id
func (s *AuthService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ListUsers retrieves one page of accounts, newest first
func (s *AuthService) ListUsers(page int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}

	users, total, err := s.userRepo.List(AdminUsersPerPage, (page-1)*AdminUsersPerPage)
	if err != nil {
		return nil, err
	}

	return &UserPage{
		Users:      users,
		Pagination: models.NewPagination(page, AdminUsersPerPage, total),
	}, nil
}

// DeleteUser removes a non-admin account. Orders the user placed keep
// their stored customer info and stay intact.
func (s *AuthService) DeleteUser(id string) error {
	s.logger.Info("Deleting user", "user_id", id)

	if err := s.userRepo.Delete(id); err != nil {
		s.logger.Warn("Delete failed", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("User deleted", "user_id", id)
	return nil
}

// UserCount retrieves the total number of accounts
func (s *AuthService) UserCount() (int, error) {
	return s.userRepo.Count()
}

func validateRegisterRequest(req RegisterRequest) error {
	verr := &models.ValidationError{}

	username := strings.TrimSpace(req.Username)
	if len(username) < MinUsernameLength {
		verr.Add("username", fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	} else if !usernamePattern.MatchString(username) {
		verr.Add("username", "username may only contain letters, numbers and underscores")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		verr.Add("email", "email is required")
	} else if !models.ValidEmail(email) {
		verr.Add("email", "please enter a valid email address")
	}

	if phone := strings.TrimSpace(req.Phone); phone != "" && !models.ValidPhone(phone) {
		verr.Add("phone", "please enter a valid phone number")
	}

	if msg := passwordComplaint(req.Password); msg != "" {
		verr.Add("password", msg)
	} else if req.Password != req.ConfirmPassword {
		verr.Add("confirm_password", "passwords do not match")
	}

	return verr.Err()
}

// passwordComplaint returns the first objection to the password, or ""
// when it is acceptable
func passwordComplaint(password string) string {
	if len(password) < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return "password must contain an uppercase letter, a lowercase letter and a digit"
	}
	return ""
}
