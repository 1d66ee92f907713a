package mailer

import "github.com/cookwithlove/directory-api/pkg/config"

// Service sends the transactional mail the signup and password reset
// flows depend on.
type Service interface {
	SendEmailVerification(toEmail, toName, code string) error
	SendPasswordReset(toEmail, toName, code string) error
}

// NewFromConfig picks an implementation: dev mode logs to stdout,
// a MailerSend key wins over SMTP, SMTP is the fallback.
func NewFromConfig(cfg config.EmailConfig) Service {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.SMTPFromName, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
}
