package admin

import (
	"strings"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"go.uber.org/zap"
)

// 验证/重置 token 的随机字节数（十六进制编码后 64 个字符）
const secureTokenBytes = 32

// 密码重置链接的有效期
const resetTokenTTL = 10 * time.Minute

// Mailer 认证流程需要的邮件发送能力，*email.Mailer 满足该接口
type Mailer interface {
	SendVerificationEmail(to, token string) error
	SendPasswordResetEmail(to, token string) error
}

type AuthService interface {
	Register(email, password, name string) (*models.User, error)
	VerifyEmail(token string) error
	Login(email, password string) (string, *models.User, error)
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) error
}

type authService struct {
	userRepo repositories.UserRepository
	mailer   Mailer
	cfg      *config.Config
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repositories.UserRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 注册新用户并发送验证邮件。
// 验证邮件发送失败只记录日志，注册本身仍然成功，用户之后可以重新请求验证。
func (s *authService) Register(email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, xerr.ErrEmailAlreadyExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	token, err := utils.GenerateSecureToken(secureTokenBytes)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:             email,
		PasswordHash:      hash,
		Name:              strings.TrimSpace(name),
		IsVerified:        false,
		VerificationToken: &token,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(user.Email, token); err != nil {
		logger.Error("发送验证邮件失败，注册流程继续",
			zap.Uint64("userID", user.ID),
			zap.Error(err))
	}

	logger.Info("用户注册成功", zap.Uint64("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// VerifyEmail 消费验证 token，token 用过即作废
func (s *authService) VerifyEmail(token string) error {
	user, err := s.userRepo.GetUserByVerificationToken(token)
	if err != nil {
		return err
	}
	if user == nil {
		return xerr.ErrTokenAlreadyUsed
	}

	user.IsVerified = true
	user.VerificationToken = nil
	if err := s.userRepo.UpdateUser(user); err != nil {
		return err
	}

	logger.Info("邮箱验证成功", zap.Uint64("userID", user.ID))
	return nil
}

// Login 校验凭据并签发 JWT。邮箱不存在和密码错误返回同一个错误，
// 不泄露账号是否存在。
func (s *authService) Login(email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, xerr.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, s.cfg.JWT.SecretKey, s.cfg.JWT.Issuer, s.cfg.JWT.ExpiresIn)
	if err != nil {
		logger.Error("签发 JWT 失败", zap.Uint64("userID", user.ID), zap.Error(err))
		return "", nil, err
	}

	logger.Info("用户登录成功", zap.Uint64("userID", user.ID))
	return token, user, nil
}

// ForgotPassword 生成密码重置 token 并发送邮件。
// 与注册不同，邮件发送失败会清掉 token 并返回错误：用户收不到邮件时
// 留着一个有效的重置 token 没有意义。
func (s *authService) ForgotPassword(email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return xerr.ErrUserNotFound
	}

	token, err := utils.GenerateSecureToken(secureTokenBytes)
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.UpdateUser(user); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
		logger.Error("发送密码重置邮件失败", zap.Uint64("userID", user.ID), zap.Error(err))
		user.ResetPasswordToken = nil
		user.ResetPasswordExpires = nil
		if updateErr := s.userRepo.UpdateUser(user); updateErr != nil {
			logger.Error("回收重置 token 失败", zap.Uint64("userID", user.ID), zap.Error(updateErr))
		}
		return xerr.ErrEmailError
	}

	logger.Info("密码重置邮件已发送", zap.Uint64("userID", user.ID))
	return nil
}

// ResetPassword 消费重置 token 设置新密码，过期或已用过的 token 一律拒绝
func (s *authService) ResetPassword(token, newPassword string) error {
	user, err := s.userRepo.GetUserByResetToken(token, time.Now())
	if err != nil {
		return err
	}
	if user == nil {
		return xerr.ErrTokenAlreadyUsed
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	if err := s.userRepo.UpdateUser(user); err != nil {
		return err
	}

	logger.Info("密码重置成功", zap.Uint64("userID", user.ID))
	return nil
}
