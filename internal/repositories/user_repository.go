package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"autolot/models"
	"autolot/pkg/database"
	"autolot/pkg/logger"

	"github.com/lib/pq"
)

// UserRepositoryInterface persists user accounts
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	FindByLogin(login string) (*models.User, error)
	List(limit, offset int) ([]*models.User, int, error)
	Delete(id string) error
	Count() (int, error)
}

type UserRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewUserRepository(logger *logger.Logger, db *database.DB) *UserRepository {
	return &UserRepository{
		logger: logger.WithComponent("user_repository"),
		db:     db,
	}
}

const userColumns = `id, username, email, phone, password_hash, is_admin, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&phone,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		user.Phone = phone.String
	}
	return user, nil
}

// Create inserts a new user. Duplicate username or email surfaces as
// ErrDuplicateUser via the unique constraint.
func (r *UserRepository) Create(user *models.User) error {
	r.logger.Debug("Adding new user to database", "username", user.Username)

	var phone interface{}
	if user.Phone != "" {
		phone = user.Phone
	}

	query := `
		INSERT INTO users (id, username, email, phone, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		user.ID, user.Username, strings.ToLower(user.Email), phone,
		user.PasswordHash, user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.logger.Warn("Attempted to add duplicate user", "username", user.Username)
			return models.ErrDuplicateUser
		}
		r.logger.Error("Failed to add user", "error", err, "username", user.Username)
		return fmt.Errorf("failed to add user: %v", err)
	}

	r.logger.Info("Added new user", "user_id", user.ID, "username", user.Username)
	return nil
}

// GetByID retrieves a single user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	r.logger.Debug("Retrieving user from database", "user_id", id)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("User not found", "user_id", id)
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to retrieve user", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}

	return user, nil
}

// FindByLogin retrieves a user by email or phone
func (r *UserRepository) FindByLogin(login string) (*models.User, error) {
	r.logger.Debug("Looking up user by login")

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 OR phone = $2`, userColumns)

	user, err := scanUser(r.db.QueryRow(query, strings.ToLower(login), login))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to look up user by login", "error", err)
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}

	return user, nil
}

// List retrieves users newest first, with a total count for pagination
func (r *UserRepository) List(limit, offset int) ([]*models.User, int, error) {
	r.logger.Debug("Listing users", "limit", limit, "offset", offset)

	var total int
	if err := r.db.QueryRow(`SELECT count(*) FROM users`).Scan(&total); err != nil {
		r.logger.Error("Failed to count users", "error", err)
		return nil, 0, fmt.Errorf("failed to count users: %v", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, userColumns)

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to query users", "error", err)
		return nil, 0, fmt.Errorf("failed to query users: %v", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("Failed to scan user row", "error", err)
			return nil, 0, fmt.Errorf("failed to scan user row: %v", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %v", err)
	}

	return users, total, nil
}

// Delete removes a non-admin user. Admin accounts are protected at the
// statement level.
func (r *UserRepository) Delete(id string) error {
	r.logger.Debug("Deleting user from database", "user_id", id)

	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1 AND is_admin = FALSE`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", "error", err, "user_id", id)
		return fmt.Errorf("failed to delete user: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check user existence: %v", err)
		}
		if !exists {
			r.logger.Warn("Attempted to delete non-existent user", "user_id", id)
			return models.ErrUserNotFound
		}
		r.logger.Warn("Attempted to delete admin user", "user_id", id)
		return models.ErrAdminProtected
	}

	r.logger.Info("Deleted user", "user_id", id)
	return nil
}

// Count returns the total number of users
func (r *UserRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT count(*) FROM users`).Scan(&count); err != nil {
		r.logger.Error("Failed to count users", "error", err)
		return 0, fmt.Errorf("failed to count users: %v", err)
	}
	return count, nil
}
