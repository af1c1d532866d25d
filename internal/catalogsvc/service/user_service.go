package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/gamevault/catalog-services/internal/catalogsvc/models"
)

const bcryptCost = 10

// UserService handles accounts. Passwords are stored as bcrypt hashes
// and compared only through bcrypt.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates an account after checking username and email
// uniqueness. The unique indexes on the users collection backstop the
// checks under concurrent signups.
func (s *UserService) Register(ctx context.Context, username, email, password, role string, lastLogin *time.Time) (*models.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	existing, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Insert(ctx, models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		LastLogin: lastLogin,
	})
}

// Authenticate checks email and password and stamps lastLogin. A
// missing account and a wrong password are indistinguishable to the
// caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return user, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id.Hex())
	}
	return user, nil
}

// Delete removes an account. The caller cascades the user's list
// entries before calling this.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, id.Hex())
	}
	return s.users.Delete(ctx, id)
}

// Page returns one page of accounts plus the page count.
func (s *UserService) Page(ctx context.Context, page, records int) ([]models.User, int, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.users.Page(ctx, page, records)
	if err != nil {
		return nil, 0, err
	}

	return users, totalPages(total, records), nil
}
