package services

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"repairshop-backend/internal/auth"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/repositories"
)

const (
	adminAccount       = "admin"
	maxFailedLogins    = 5
	failedLoginWindow  = 15 * time.Minute
	defaultActionLimit = 200
)

// AdminService guards the store-wide admin password and records gated actions.
type AdminService struct {
	Settings *SettingsService
	Sessions *auth.SessionManager
	Logs     *repositories.AdminActionLogRepository
	Issuer   string

	failures *gocache.Cache
}

func NewAdminService(settings *SettingsService, sessions *auth.SessionManager, logs *repositories.AdminActionLogRepository, issuer string) *AdminService {
	return &AdminService{
		Settings: settings,
		Sessions: sessions,
		Logs:     logs,
		Issuer:   issuer,
		failures: gocache.New(failedLoginWindow, 5*time.Minute),
	}
}

func (s *AdminService) passwordHash(ctx context.Context) (string, error) {
	return s.Settings.secret(ctx, models.SettingAdminPasswordHash)
}

func (s *AdminService) totpEnabled(ctx context.Context) (bool, string, error) {
	enabled, err := s.Settings.secret(ctx, models.SettingAdminTOTPEnabled)
	if err != nil {
		return false, "", err
	}
	secret, err := s.Settings.secret(ctx, models.SettingAdminTOTPSecret)
	if err != nil {
		return false, "", err
	}
	return enabled == "true" && secret != "", secret, nil
}

// Status never exposes the hash, only whether one is stored.
func (s *AdminService) Status(ctx context.Context, authenticated bool) (*models.AdminStatus, error) {
	hash, err := s.passwordHash(ctx)
	if err != nil {
		return nil, err
	}
	enabled, _, err := s.totpEnabled(ctx)
	if err != nil {
		return nil, err
	}
	return &models.AdminStatus{PasswordSet: hash != "", TOTPEnabled: enabled, Authenticated: authenticated}, nil
}

// Setup defines the first admin password. It is refused once a password exists.
func (s *AdminService) Setup(ctx context.Context, req *models.AdminSetupRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	hash, err := s.passwordHash(ctx)
	if err != nil {
		return err
	}
	if hash != "" {
		return fmt.Errorf("%w: admin password already defined", ErrConflict)
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.Settings.setSecret(ctx, models.SettingAdminPasswordHash, hashed); err != nil {
		return err
	}
	zap.L().Info("admin password defined")
	return nil
}

func (s *AdminService) Login(ctx context.Context, req *models.AdminLoginRequest, ip string) (*models.AdminSession, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if n, ok := s.failures.Get(ip); ok && n.(int) >= maxFailedLogins {
		metrics.AdminLogins.WithLabelValues("locked").Inc()
		return nil, fmt.Errorf("%w: too many failed attempts, try again later", ErrForbidden)
	}

	hash, err := s.passwordHash(ctx)
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return nil, invalid("no admin password is defined yet")
	}
	if !auth.VerifyPassword(hash, req.Password) {
		s.fail(ip)
		return nil, fmt.Errorf("%w: wrong password", ErrUnauthorized)
	}

	enabled, secret, err := s.totpEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if enabled && !auth.ValidateTOTP(req.Code, secret) {
		s.fail(ip)
		return nil, fmt.Errorf("%w: invalid authentication code", ErrUnauthorized)
	}

	token, expiresAt, err := s.Sessions.Issue()
	if err != nil {
		return nil, err
	}
	s.failures.Delete(ip)
	metrics.AdminLogins.WithLabelValues("success").Inc()
	zap.L().Info("admin login", zap.String("ip", ip))
	return &models.AdminSession{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AdminService) fail(ip string) {
	metrics.AdminLogins.WithLabelValues("failure").Inc()
	if err := s.failures.Add(ip, 1, gocache.DefaultExpiration); err != nil {
		_, _ = s.failures.IncrementInt(ip, 1)
	}
	zap.L().Warn("admin login failed", zap.String("ip", ip))
}

func (s *AdminService) Logout(sessionID string) {
	s.Sessions.Revoke(sessionID)
}

// ChangePassword ends every open session.
func (s *AdminService) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	hash, err := s.passwordHash(ctx)
	if err != nil {
		return err
	}
	if hash == "" || !auth.VerifyPassword(hash, req.OldPassword) {
		return fmt.Errorf("%w: wrong password", ErrUnauthorized)
	}
	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Settings.setSecret(ctx, models.SettingAdminPasswordHash, hashed); err != nil {
		return err
	}
	s.Sessions.RevokeAll()
	zap.L().Info("admin password changed, sessions revoked")
	return nil
}

// SetupTOTP stores a fresh secret. It only takes effect after EnableTOTP.
func (s *AdminService) SetupTOTP(ctx context.Context) (*models.TOTPSetup, error) {
	secret, url, err := auth.GenerateTOTP(s.Issuer, adminAccount)
	if err != nil {
		return nil, err
	}
	if err := s.Settings.setSecret(ctx, models.SettingAdminTOTPSecret, secret); err != nil {
		return nil, err
	}
	if err := s.Settings.setSecret(ctx, models.SettingAdminTOTPEnabled, "false"); err != nil {
		return nil, err
	}
	return &models.TOTPSetup{Secret: secret, URL: url}, nil
}

func (s *AdminService) EnableTOTP(ctx context.Context, req *models.TOTPCodeRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	secret, err := s.Settings.secret(ctx, models.SettingAdminTOTPSecret)
	if err != nil {
		return err
	}
	if secret == "" {
		return invalid("run the authenticator setup first")
	}
	if !auth.ValidateTOTP(req.Code, secret) {
		return fmt.Errorf("%w: invalid authentication code", ErrUnauthorized)
	}
	return s.Settings.setSecret(ctx, models.SettingAdminTOTPEnabled, "true")
}

func (s *AdminService) DisableTOTP(ctx context.Context, req *models.TOTPCodeRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	enabled, secret, err := s.totpEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	if !auth.ValidateTOTP(req.Code, secret) {
		return fmt.Errorf("%w: invalid authentication code", ErrUnauthorized)
	}
	if err := s.Settings.setSecret(ctx, models.SettingAdminTOTPEnabled, "false"); err != nil {
		return err
	}
	return s.Settings.setSecret(ctx, models.SettingAdminTOTPSecret, "")
}

// Record writes an admin action. Failures are logged, the action itself already happened.
func (s *AdminService) Record(ctx context.Context, action, targetType string, targetID *int, description, ip string) {
	entry := &models.AdminActionLog{
		ActionType:  action,
		TargetType:  targetType,
		TargetID:    targetID,
		Description: description,
	}
	if ip != "" {
		entry.IPAddress = &ip
	}
	if err := s.Logs.Create(ctx, entry); err != nil {
		zap.L().Error("failed to record admin action", zap.String("action", action), zap.Error(err))
		return
	}
	zap.L().Info("admin action", zap.String("action", action), zap.String("target", targetType), zap.String("description", description))
}

func (s *AdminService) Actions(ctx context.Context, limit int) ([]*models.AdminActionLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultActionLimit
	}
	return s.Logs.List(ctx, limit)
}
