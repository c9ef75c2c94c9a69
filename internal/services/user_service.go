package services

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/nvaldr/shopstack-be/internal/apperrors"
	"github.com/nvaldr/shopstack-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Cost factor matching the original deployment; high enough to resist offline
// brute force.
const bcryptCost = 12

// Burned when the username is unknown so login takes the same effort either way.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Signup(username, password string, shopNames []string) (models.User, error)
	Authenticate(username, password string) (models.UserWithShops, error)
	GetUserWithShops(id string) (models.UserWithShops, error)
}

// UserService provides business logic for user accounts and signup.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// validateSignup aggregates every validation failure into one message list.
func validateSignup(username, password string, shopNames []string) ([]string, []string) {
	var messages []string

	if len(username) < 3 {
		messages = append(messages, "Username must be at least 3 characters long")
	}

	if len(password) < 8 {
		messages = append(messages, "Password must be at least 8 characters long")
	}
	hasDigit := strings.ContainsFunc(password, unicode.IsDigit)
	if !hasDigit || !strings.ContainsAny(password, passwordSymbols) {
		messages = append(messages, "Password must contain at least 1 number and 1 special character")
	}

	seen := make(map[string]bool, len(shopNames))
	var unique []string
	duplicate := false
	for _, name := range shopNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if seen[name] {
			duplicate = true
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}
	if duplicate {
		messages = append(messages, "Shop names must be unique")
	}
	if len(unique) < 3 {
		messages = append(messages, "At least 3 unique shop names are required")
	}

	return messages, unique
}

// Signup creates a new user together with all requested shops. The duplicate
// checks and inserts run in a single transaction, so a failed shop insert
// rolls the whole signup back and leaves no partial user.
func (s *UserService) Signup(username, password string, shopNames []string) (models.User, error) {
	messages, uniqueNames := validateSignup(username, password, shopNames)
	if len(messages) > 0 {
		return models.User{}, apperrors.Validation(messages...)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var conflicts []string

	var exists int
	err = tx.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		conflicts = append(conflicts, "Username already exists")
	}

	taken, err := takenShopNames(tx, uniqueNames)
	if err != nil {
		return models.User{}, err
	}
	for _, name := range taken {
		conflicts = append(conflicts, fmt.Sprintf("Shop name '%s' already exists", name))
	}

	if len(conflicts) > 0 {
		return models.User{}, apperrors.Conflict(conflicts...)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	_, err = tx.Exec("INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)",
		user.ID, user.Username, user.PasswordHash)
	if err != nil {
		return models.User{}, err
	}

	for _, name := range uniqueNames {
		_, err = tx.Exec("INSERT INTO shops (id, name, owner_id) VALUES (?, ?, ?)",
			uuid.New().String(), name, user.ID)
		if err != nil {
			return models.User{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// takenShopNames returns the requested names that already exist, in one query.
func takenShopNames(tx *sql.Tx, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := tx.Query("SELECT name FROM shops WHERE name IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Report in request order so the message list is stable.
	var taken []string
	for _, name := range names {
		if existing[name] {
			taken = append(taken, name)
		}
	}
	return taken, nil
}

// Authenticate verifies a user's credentials and loads their shops.
func (s *UserService) Authenticate(username, password string) (models.UserWithShops, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Keep the compare cost even for unknown usernames.
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return models.UserWithShops{}, apperrors.Auth("Invalid credentials")
		}
		return models.UserWithShops{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.UserWithShops{}, apperrors.Auth("Invalid credentials")
	}

	shops, err := s.shopsByOwner(user.ID, user.Username)
	if err != nil {
		return models.UserWithShops{}, err
	}

	return models.UserWithShops{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		Shops:     shops,
	}, nil
}

// GetUserWithShops retrieves a user profile and their current shop list.
func (s *UserService) GetUserWithShops(id string) (models.UserWithShops, error) {
	var user models.UserWithShops
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.UserWithShops{}, apperrors.NotFound("User not found")
		}
		return models.UserWithShops{}, err
	}

	shops, err := s.shopsByOwner(user.ID, user.Username)
	if err != nil {
		return models.UserWithShops{}, err
	}
	user.Shops = shops
	return user, nil
}

func (s *UserService) shopsByOwner(ownerID, ownerUsername string) ([]models.Shop, error) {
	rows, err := s.db.Query("SELECT id, name, owner_id, created_at FROM shops WHERE owner_id = ? ORDER BY created_at, name", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []models.Shop{}
	for rows.Next() {
		var shop models.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.OwnerID, &shop.CreatedAt); err != nil {
			return nil, err
		}
		shop.OwnerUsername = ownerUsername
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}
