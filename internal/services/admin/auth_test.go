package admin

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*models.User
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*models.User)}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByID(id uint64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByVerificationToken(token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *fakeUserRepo) GetUserByResetToken(token string, now time.Time) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now)
	})
}

type fakeMailer struct {
	mu          sync.Mutex
	verifySent  []string // 收到验证邮件的地址
	resetSent   []string
	lastToken   string
	verifyErr   error
	resetErr    error
}

func (m *fakeMailer) SendVerificationEmail(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifyErr != nil {
		return m.verifyErr
	}
	m.verifySent = append(m.verifySent, to)
	m.lastToken = token
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetSent = append(m.resetSent, to)
	m.lastToken = token
	return nil
}

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.Issuer = "cloudfile"
	cfg.JWT.ExpiresIn = time.Hour
	return cfg
}

func newTestAuthService() (AuthService, *fakeUserRepo, *fakeMailer) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	return NewAuthService(repo, mailer, testAuthConfig()), repo, mailer
}

func TestRegister(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	user, err := svc.Register("  Alice@Example.COM ", "password123", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email, "邮箱规整为小写")
	assert.False(t, user.IsVerified)
	assert.NotNil(t, user.VerificationToken)
	assert.Len(t, *user.VerificationToken, 64, "32 字节 token 十六进制编码后 64 字符")
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, []string{"alice@example.com"}, mailer.verifySent)

	saved, _ := repo.GetUserByEmail("alice@example.com")
	require.NotNil(t, saved)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	_, err = svc.Register("A@B.com", "password456", "B")
	assert.ErrorIs(t, err, xerr.ErrEmailAlreadyExists)
}

func TestRegisterSucceedsWhenEmailFails(t *testing.T) {
	svc, repo, mailer := newTestAuthService()
	mailer.verifyErr = assert.AnError

	user, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err, "验证邮件发送失败不阻塞注册")

	saved, _ := repo.GetUserByID(user.ID)
	assert.NotNil(t, saved)
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	_, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)
	token := mailer.lastToken

	require.NoError(t, svc.VerifyEmail(token))

	user, _ := repo.GetUserByEmail("a@b.com")
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken, "token 用完即作废")

	// 二次使用被拒
	assert.ErrorIs(t, svc.VerifyEmail(token), xerr.ErrTokenAlreadyUsed)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()

	registered, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	token, user, err := svc.Login("a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	_, _, err = svc.Login("a@b.com", "wrongpass")
	assert.ErrorIs(t, err, xerr.ErrInvalidCredentials)

	// 不存在的邮箱返回同一个错误
	_, _, err = svc.Login("nobody@b.com", "password123")
	assert.ErrorIs(t, err, xerr.ErrInvalidCredentials)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	_, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword("a@b.com"))
	assert.Equal(t, []string{"a@b.com"}, mailer.resetSent)
	resetToken := mailer.lastToken

	user, _ := repo.GetUserByEmail("a@b.com")
	require.NotNil(t, user.ResetPasswordToken)
	require.NotNil(t, user.ResetPasswordExpires)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *user.ResetPasswordExpires, time.Minute)

	require.NoError(t, svc.ResetPassword(resetToken, "newpassword1"))

	// 新密码生效，token 作废
	_, _, err = svc.Login("a@b.com", "newpassword1")
	assert.NoError(t, err)
	_, _, err = svc.Login("a@b.com", "password123")
	assert.ErrorIs(t, err, xerr.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ResetPassword(resetToken, "another123"), xerr.ErrTokenAlreadyUsed)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	assert.ErrorIs(t, svc.ForgotPassword("nobody@b.com"), xerr.ErrUserNotFound)
}

func TestForgotPasswordEmailFailureClearsToken(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	_, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	mailer.resetErr = assert.AnError
	assert.ErrorIs(t, svc.ForgotPassword("a@b.com"), xerr.ErrEmailError)

	user, _ := repo.GetUserByEmail("a@b.com")
	assert.Nil(t, user.ResetPasswordToken, "邮件发不出去时不留下有效的重置 token")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	user, err := svc.Register("a@b.com", "password123", "A")
	require.NoError(t, err)

	// 直接塞一个已过期的 token
	expired := time.Now().Add(-time.Minute)
	token := "deadbeef"
	saved, _ := repo.GetUserByID(user.ID)
	saved.ResetPasswordToken = &token
	saved.ResetPasswordExpires = &expired
	require.NoError(t, repo.UpdateUser(saved))

	assert.ErrorIs(t, svc.ResetPassword(token, "newpassword1"), xerr.ErrTokenAlreadyUsed)
}
