package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Deactivate(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	sink       auditlog.Sink
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, sink auditlog.Sink, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		sink:       sink,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// Create adds a user with one of the four roles.
func (s *Service) Create(ctx context.Context, actor *internal.CurrentUser, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	email := dto.normalizedEmail()

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check existing user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	if existing != nil {
		return nil, internal.ErrUserExists
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Email:        email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         dto.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.audit(ctx, actor, auditlog.ActionCreate, fmt.Sprintf("Created user: %s (%s)", row.Email, row.Role))
	s.logger.Info("user created", "user_id", row.ID, "role", row.Role)
	return FromDataModel(row), nil
}

// Delete deactivates a user. Users cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *internal.CurrentUser, id int64) error {
	if actor != nil && actor.ID == id {
		return internal.NewValidationError("you cannot delete your own account", internal.ErrCodeValidationFailed)
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return internal.NewInternalError("failed to delete user", err)
	}
	if !ok {
		return internal.ErrUserNotFound
	}

	s.audit(ctx, actor, auditlog.ActionDelete, fmt.Sprintf("Deleted user: %s (%s)", target.Email, target.Role))
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) audit(ctx context.Context, actor *internal.CurrentUser, action auditlog.Action, description string) {
	if err := s.sink.Append(ctx, auditlog.Entry{
		User:        actor.AuditName(),
		Action:      action,
		Module:      auditlog.ModuleUsers,
		Description: description,
	}); err != nil {
		s.logger.Warn("audit append failed", "error", err, "action", action)
	}
}
