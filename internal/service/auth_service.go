package service

import (
	"context"
	"time"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/pkg/mailer"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Invalid email or password"

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	auditPublisher IAuditPublisher
	jwtSecret      string
	tokenExpiry    time.Duration
	logger         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	auditPublisher IAuditPublisher,
	jwtSecret string,
	tokenExpiry time.Duration,
	logger logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		auditPublisher: auditPublisher,
		jwtSecret:      jwtSecret,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("Failed to check existing account", err)
	}
	if existing != nil {
		return nil, apperror.Validation("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		CreatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to create account", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal("Failed to issue token", err)
	}

	// Welcome email is auxiliary; registration succeeds without it.
	if s.emailService != nil {
		if err := s.emailService.SendWelcome(user.Email, user.FullName); err != nil {
			s.logger.Warn("auth", "Failed to send welcome email", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
	}

	s.auditPublisher.Record(ctx, dto.AuditEntry{
		UserId:       &user.Id,
		Action:       string(entity.AuditActionRegister),
		ResourceType: "user",
		ResourceId:   user.Id.String(),
		IpAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return s.toAuthResponse(user, token), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("Failed to load account", err)
	}
	if user == nil {
		s.recordFailedLogin(ctx, req.Email, ipAddress, userAgent)
		return nil, apperror.Auth(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedLogin(ctx, req.Email, ipAddress, userAgent)
		return nil, apperror.Auth(invalidCredentialsMessage)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal("Failed to issue token", err)
	}

	s.auditPublisher.Record(ctx, dto.AuditEntry{
		UserId:       &user.Id,
		Action:       string(entity.AuditActionLogin),
		ResourceType: "user",
		ResourceId:   user.Id.String(),
		IpAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return s.toAuthResponse(user, token), nil
}

// recordFailedLogin keeps the attempted email in metadata only; no user id
// is attached so a failed probe cannot be joined against real accounts.
func (s *authService) recordFailedLogin(ctx context.Context, email, ipAddress, userAgent string) {
	s.auditPublisher.Record(ctx, dto.AuditEntry{
		Action:       string(entity.AuditActionLoginFailed),
		ResourceType: "user",
		IpAddress:    ipAddress,
		UserAgent:    userAgent,
		Metadata:     map[string]interface{}{"email": email},
	})
}

func (s *authService) generateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) toAuthResponse(user *entity.User, token string) *dto.AuthResponse {
	return &dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
		},
	}
}
