package auth

import (
	"context"
	"log/slog"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type Service struct {
	repo   RepositoryAPI
	tokens TokenGeneratorAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if u == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !u.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return s.issue(principalOf(u))
}

// RefreshTokens exchanges a refresh token for a new pair. The user is reloaded
// so role changes and deactivation take effect.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.loadActive(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issue(principalOf(u))
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// CurrentUser resolves the stored user behind validated access claims.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*internal.CurrentUser, error) {
	u, err := s.loadActive(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &internal.CurrentUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

func (s *Service) loadActive(ctx context.Context, claims *Claims) (*userDatamodel.User, error) {
	id, err := claims.ParsedUserID()
	if err != nil {
		s.logger.Warn("failed to parse user id from token claims", "value", claims.UserID, "error", err)
		return nil, internal.ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

func (s *Service) issue(p Principal) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(p)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(p)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func principalOf(u *userDatamodel.User) Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}
