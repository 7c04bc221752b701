package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
var bcryptCost = bcrypt.DefaultCost

// UserService implements the business logic for users.
type UserService struct {
	repo     repository.UserRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, producer EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateUserInput holds the parameters for registering a user.
type CreateUserInput struct {
	Username  string
	Name      string
	Password  string
	Email     string
	Phone     string
	Role      string
	BirthDate *time.Time
}

// UpdateUserInput holds the parameters for a partial user update. Empty
// strings and a nil BirthDate leave the stored value unchanged.
type UpdateUserInput struct {
	Username  string
	Name      string
	Password  string
	Email     string
	Phone     string
	Role      string
	BirthDate *time.Time
}

// validateProfileFields bounds the free-text user columns. Empty values
// pass; callers decide which fields are required.
func validateProfileFields(username, name, email, phone string) error {
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"username", username, domain.MaxUsernameLength},
		{"name", name, domain.MaxNameLength},
		{"email", email, domain.MaxEmailLength},
		{"phone", phone, domain.MaxPhoneLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return apperrors.InvalidInput(fmt.Sprintf("%s must be at most %d characters", l.field, l.max))
		}
	}
	return nil
}

// validatePassword applies the character limit and bcrypt's byte limit,
// which multibyte passwords can hit first.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) > domain.MaxPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at most %d characters", domain.MaxPasswordLength))
	}
	if len(password) > domain.MaxPasswordBytes {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at most %d bytes", domain.MaxPasswordBytes))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.InvalidInput(fmt.Sprintf("password must be at most %d bytes", domain.MaxPasswordBytes))
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser registers a user together with its cart and wishlist.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.UserProfile, error) {
	switch {
	case input.Username == "":
		return nil, apperrors.InvalidInput("username is required")
	case input.Email == "":
		return nil, apperrors.InvalidInput("email is required")
	case input.Password == "":
		return nil, apperrors.InvalidInput("password is required")
	}
	if err := validateProfileFields(input.Username, input.Name, input.Email, input.Phone); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", input.Role))
	}

	usernameTaken, emailTaken, err := s.repo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check user uniqueness: %w", err)
	}
	if usernameTaken {
		return nil, apperrors.AlreadyExists("user", "username", input.Username)
	}
	if emailTaken {
		return nil, apperrors.AlreadyExists("user", "email", input.Email)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:         input.Username,
		Name:             input.Name,
		PasswordHash:     hash,
		Email:            input.Email,
		Phone:            input.Phone,
		Role:             role,
		RegistrationDate: time.Now().UTC(),
		BirthDate:        input.BirthDate,
	}

	profile, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, profile); err != nil {
		logPublishFailure(ctx, s.logger, "user.registered", err, slog.Int64("user_id", profile.ID))
	}

	s.logger.InfoContext(ctx, "user created",
		slog.Int64("user_id", profile.ID),
		slog.Int64("cart_id", profile.CartID),
		slog.Int64("wishlist_id", profile.WishlistID),
	)
	return profile, nil
}

// GetUser returns the user with its cart, wishlist and child counts.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return profile, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, perPage int) ([]domain.User, int, error) {
	users, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	s.logger.InfoContext(ctx, "user authenticated", slog.Int64("user_id", user.ID))
	return user, nil
}

// UpdateUser applies the non-empty fields of input. A missing user is
// reported as found=false.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (bool, error) {
	if err := validateProfileFields(input.Username, input.Name, input.Email, input.Phone); err != nil {
		return false, err
	}
	if input.Password != "" {
		if err := validatePassword(input.Password); err != nil {
			return false, err
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if ok, err := found(err, "get user"); !ok || err != nil {
		return ok, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if strings.TrimSpace(input.Role) != "" {
		role, ok := domain.ParseRole(input.Role)
		if !ok {
			return false, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", input.Role))
		}
		user.Role = role
	}
	if input.BirthDate != nil {
		user.BirthDate = input.BirthDate
	}
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return false, err
		}
		user.PasswordHash = hash
	}

	ok, err := found(s.repo.Update(ctx, user), "update user")
	if ok {
		s.logger.InfoContext(ctx, "user updated", slog.Int64("user_id", id))
	}
	return ok, err
}

// DeleteUser removes the user. Storage cascades to its cart, wishlist,
// orders and reviews.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	ok, err := found(s.repo.Delete(ctx, id), "delete user")
	if ok {
		s.logger.InfoContext(ctx, "user deleted", slog.Int64("user_id", id))
	}
	return ok, err
}
