package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookhub/internal/api/models"
	"bookhub/internal/api/repository"
	"bookhub/internal/config"
	"bookhub/internal/middleware/auth"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
)

// Identity is the authenticated caller, produced once per request by
// Authenticate and threaded explicitly into downstream calls.
type Identity struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	Authenticate(ctx context.Context, tokenString string) (*Identity, error)
	Logout(ctx context.Context, tokenString string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	sessionStore repository.SessionStore
	jwtSecret    string
	sessionTTL   time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionStore repository.SessionStore,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		sessionStore: sessionStore,
		jwtSecret:    cfg.JWTSecret,
		sessionTTL:   cfg.SessionTTL, // 1 hour
	}
}

// Register creates a user with a bcrypt password hash. The role is fixed
// at creation; an empty role defaults to "user".
func (s *authService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	// Fast path; the unique index on email is what actually prevents
	// two concurrent registrations from both succeeding.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and issues a signed session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// dummy compare so unknown emails take as long as bad passwords
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateSessionToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *authService) generateSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"jti":     uuid.New().String(),
		"exp":     now.Add(s.sessionTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// Authenticate validates signature, expiry and revocation, and returns
// the caller's identity.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	tokenID, _ := claims["jti"].(string)
	if userID == "" || role == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	if tokenID != "" {
		revoked, err := s.sessionStore.IsRevoked(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Identity{
		UserID:    userID,
		Role:      role,
		TokenID:   tokenID,
		ExpiresAt: exp.Time,
	}, nil
}

// Logout revokes the session token for the rest of its lifetime. An
// invalid or expired token is not an error: the caller ends up logged
// out either way.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	identity, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil
	}
	return s.sessionStore.Revoke(ctx, identity.TokenID, time.Until(identity.ExpiresAt))
}

func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}
