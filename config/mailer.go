package config

import (
	"crypto/tls"
	"fmt"
	"sync"

	mail "github.com/go-mail/mail/v2"
)

var (
	mailMu       sync.RWMutex
	mailSettings MailSettings
)

// ConfigureMailer replaces the SMTP settings used by SendMail.
func ConfigureMailer(s MailSettings) {
	if s.Port == 0 {
		s.Port = 587
	}
	mailMu.Lock()
	mailSettings = s
	mailMu.Unlock()
}

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}

	mailMu.RLock()
	s := mailSettings
	mailMu.RUnlock()

	if s.Host == "" || s.From == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)

	// STARTTLS is mandatory on 587 (Gmail/Office365).
	d.StartTLSPolicy = mail.MandatoryStartTLS

	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.SkipTLSVerify, // dev only
	}

	return d.DialAndSend(m)
}
