package service

import (
	autherrors "barberbook/internal/auth/errors"
	"barberbook/internal/auth/repository"
	"barberbook/internal/auth/validator"
	"barberbook/pkg/auth"
	"barberbook/pkg/config"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/model"
	"barberbook/pkg/sanitizer"
	"context"
	"errors"
	"strings"
)

type TokenIssuer interface {
	Issue(userID, role, email string) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	GetProfile(ctx context.Context, caller *auth.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller *auth.Identity, update *model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, caller *auth.Identity, change *model.PasswordChange) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	SetRole(ctx context.Context, caller *auth.Identity, id string, update *model.RoleUpdate) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, password, name string) (bool, error)
	CurrentRole(ctx context.Context, userID string) (string, error)
}

type authService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    TokenIssuer
	cfg       *config.Config
}

func NewAuthService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	tokens TokenIssuer,
	cfg *config.Config,
) AuthService {
	return &authService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Registration cannot be empty")
	}

	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Phone = sanitizer.NormalizePhone(req.Phone, s.cfg.DefaultPhoneRegion)

	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, req.Phone, model.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "email", user.Email)
	return s.respond(user)
}

func (s *authService) createUser(ctx context.Context, email, password, name, phone, role string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("Email already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", email, "error", err)
		return nil, apperrors.Storage("Failed to create user", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Credentials cannot be empty")
	}

	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			s.cfg.Log.Info("Login failed", "email", req.Email, "reason", "unknown email")
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user", "email", req.Email, "error", err)
		return nil, apperrors.Storage("Failed to look up user", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.cfg.Log.Info("Login failed", "email", req.Email, "reason", "wrong password")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return s.respond(user)
}

func (s *authService) GetProfile(ctx context.Context, caller *auth.Identity) (*model.User, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	return s.findUser(ctx, caller.UserID)
}

func (s *authService) UpdateProfile(ctx context.Context, caller *auth.Identity, update *model.ProfileUpdate) (*model.User, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if update == nil {
		return nil, apperrors.InvalidInput("Profile cannot be empty")
	}

	update.Name = sanitizer.NormalizeName(update.Name)
	update.Phone = sanitizer.NormalizePhone(update.Phone, s.cfg.DefaultPhoneRegion)
	if err := s.validate(update); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, caller.UserID, update.Name, update.Phone)
	if err != nil {
		return nil, s.translateLookupError(caller.UserID, err)
	}

	s.cfg.Log.Info("Profile updated", "id", user.ID)
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, caller *auth.Identity, change *model.PasswordChange) error {
	if caller == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if change == nil {
		return apperrors.InvalidInput("Password change cannot be empty")
	}
	if err := s.validate(change); err != nil {
		return err
	}

	user, err := s.findUser(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, change.CurrentPassword) {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hash, err := auth.HashPassword(change.NewPassword)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.translateLookupError(user.ID, err)
	}

	s.cfg.Log.Info("Password changed", "id", user.ID)
	return nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Storage("Failed to retrieve users", err)
	}
	return users, nil
}

// SetRole promotes or demotes a user. Admins cannot change their own role.
func (s *authService) SetRole(ctx context.Context, caller *auth.Identity, id string, update *model.RoleUpdate) (*model.User, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if update == nil {
		return nil, apperrors.InvalidInput("Role cannot be empty")
	}

	update.Role = strings.ToLower(strings.TrimSpace(update.Role))
	if err := s.validate(update); err != nil {
		return nil, err
	}
	if id == caller.UserID {
		return nil, apperrors.Forbidden("Admins cannot change their own role")
	}

	user, err := s.repo.UpdateRole(ctx, id, update.Role)
	if err != nil {
		return nil, s.translateLookupError(id, err)
	}

	s.cfg.Log.Info("User role changed", "id", user.ID, "role", user.Role, "by", caller.UserID)
	return user, nil
}

// EnsureAdmin creates the default admin account when no admin exists yet. An
// existing account with the same email is promoted instead. It reports
// whether anything changed.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, apperrors.InvalidInput("Admin email and password are required")
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	count, err := s.repo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, apperrors.Storage("Failed to count admins", err)
	}
	if count > 0 {
		s.cfg.Log.Info("Admin already exists, skipping seed")
		return false, nil
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := s.repo.UpdateRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return false, s.translateLookupError(existing.ID, err)
		}
		s.cfg.Log.Info("Existing user promoted to admin", "id", existing.ID, "email", email)
		return true, nil
	case !errors.Is(err, autherrors.ErrNotFound):
		return false, apperrors.Storage("Failed to look up admin", err)
	}

	if err := s.validate(&model.RegisterRequest{Email: email, Password: password, Name: name}); err != nil {
		return false, err
	}
	user, err := s.createUser(ctx, email, password, sanitizer.NormalizeName(name), "", model.RoleAdmin)
	if err != nil {
		return false, err
	}

	s.cfg.Log.Info("Default admin created", "id", user.ID, "email", email)
	return true, nil
}

// CurrentRole returns the stored role of userID. Tokens carry the role they
// were issued with, which goes stale after SetRole.
func (s *authService) CurrentRole(ctx context.Context, userID string) (string, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *authService) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(id, err)
	}
	return user, nil
}

func (s *authService) translateLookupError(id string, err error) error {
	switch {
	case errors.Is(err, autherrors.ErrNotFound), errors.Is(err, autherrors.ErrInvalidID):
		return apperrors.NotFoundWithID("User", id)
	default:
		s.cfg.Log.Error("User store failure", "id", id, "error", err)
		return apperrors.Storage("Failed to access user", err)
	}
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Role, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) validate(req any) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Auth request validation failed", "error", err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation("Invalid request", validationErrs.Details())
		}
		return apperrors.Validation("Invalid request", map[string]any{"error": err.Error()})
	}
	return nil
}
