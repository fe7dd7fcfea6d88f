// Package mail реализует отправку писем через SMTP.
package mail

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured возвращается, если транспорт почты не настроен.
var ErrNotConfigured = errors.New("mail transport is not configured")

// Config содержит параметры SMTP-транспорта.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Sender отправляет письма сервиса SAWA.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSender создаёт отправителя почты.
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendRecoveryCode отправляет письмо с кодом восстановления пароля.
// Ошибка диалога с SMTP-сервером означает, что получатель не принят и код
// считается недоставленным.
func (s *Sender) SendRecoveryCode(to, code string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Forgot password code")
	m.SetBody("text/html", recoveryBody(code))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.logger.Info("recovery code email sent", zap.String("to", to))
	return nil
}

func recoveryBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
  .container { max-width: 600px; margin: 20px auto; background-color: #fff; padding: 20px; border-radius: 8px; }
  .header { text-align: center; color: #333; }
  .content { text-align: center; font-size: 18px; margin: 20px 0; }
  .code { font-size: 24px; font-weight: bold; color: #4CAF50; }
  .footer { text-align: center; font-size: 14px; color: #888; margin-top: 30px; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>Forgot Password</h1></div>
    <div class="content">
      <p>We received a request to reset your password. Please use the following code to proceed:</p>
      <div class="code">%s</div>
      <p>The code is valid for 5 minutes.</p>
    </div>
    <div class="footer">
      <p>If you did not request a password reset, please ignore this email.</p>
      <p>&copy; 2025 SAWA. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`, code)
}
