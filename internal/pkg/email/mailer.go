package email

import (
	"fmt"

	"github.com/0xEcho/cloudfile/internal/config"
	mail "github.com/go-mail/mail"
)

// Mailer 负责发送验证邮件和密码重置邮件
type Mailer struct {
	cfg     *config.SMTPConfig
	baseURL string
}

func NewMailer(cfg *config.SMTPConfig, baseURL string) *Mailer {
	return &Mailer{cfg: cfg, baseURL: baseURL}
}

func (m *Mailer) send(to, subject, text, html string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.SenderEmail, m.cfg.SenderName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	dialer := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// SendVerificationEmail 发送邮箱验证邮件，链接 24 小时内有效
func (m *Mailer) SendVerificationEmail(to, token string) error {
	verificationURL := fmt.Sprintf("%s/api/v1/auth/verify/%s", m.baseURL, token)

	text := fmt.Sprintf("欢迎使用 CloudFile！\n\n请访问以下链接完成邮箱验证：\n%s\n\n链接 24 小时内有效。如果这不是你的操作，请忽略本邮件。", verificationURL)
	html := fmt.Sprintf(`<div style="max-width:600px;margin:0 auto;padding:20px;font-family:sans-serif">
  <h2>CloudFile 邮箱验证</h2>
  <p>欢迎使用 CloudFile，点击下面的按钮完成邮箱验证：</p>
  <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#2563eb;color:#fff;text-decoration:none;border-radius:6px">验证邮箱</a></p>
  <p style="color:#666;font-size:13px">链接 24 小时内有效。如果这不是你的操作，请忽略本邮件。</p>
</div>`, verificationURL)

	return m.send(to, "验证你的邮箱 - CloudFile", text, html)
}

// SendPasswordResetEmail 发送密码重置邮件，链接 10 分钟内有效
func (m *Mailer) SendPasswordResetEmail(to, token string) error {
	resetURL := fmt.Sprintf("%s/reset/%s", m.baseURL, token)

	text := fmt.Sprintf("收到你的密码重置请求。\n\n请访问以下链接设置新密码：\n%s\n\n链接 10 分钟内有效。如果这不是你的操作，请忽略本邮件，你的账户仍然安全。", resetURL)
	html := fmt.Sprintf(`<div style="max-width:600px;margin:0 auto;padding:20px;font-family:sans-serif">
  <h2>CloudFile 密码重置</h2>
  <p>收到你的密码重置请求，点击下面的按钮设置新密码：</p>
  <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#dc3545;color:#fff;text-decoration:none;border-radius:6px">重置密码</a></p>
  <p style="color:#666;font-size:13px">链接 10 分钟内有效。如果这不是你的操作，请忽略本邮件。</p>
</div>`, resetURL)

	return m.send(to, "重置你的密码 - CloudFile", text, html)
}
