package service

import (
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/picklemart/internal/config"

	"github.com/google/uuid"
)

const smtpDialTimeout = 10 * time.Second

// smtpSecurity SMTP 连接加密方式
type smtpSecurity int

const (
	smtpPlain smtpSecurity = iota
	smtpStartTLS
	smtpImplicitTLS
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
	now func() time.Time
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, now: time.Now}
}

// Send 发送纯文本邮件
func (s *EmailService) Send(toEmail, subject, body string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	cfg := s.cfg
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port == 0 || strings.TrimSpace(cfg.From) == "" {
		return ErrEmailServiceNotConfigured
	}
	to, err := mail.ParseAddress(strings.TrimSpace(toEmail))
	if err != nil {
		return ErrInvalidEmail
	}

	msg := buildEmailMessage(buildFromAddress(cfg.From, cfg.FromName), to.Address, strings.TrimSpace(subject), body)
	msg = stampEmailMessage(msg, s.now(), cfg.From)
	return normalizeEmailSendError(s.deliver(to.Address, []byte(msg)))
}

func (s *EmailService) security() smtpSecurity {
	switch {
	case s.cfg.UseSSL:
		return smtpImplicitTLS
	case s.cfg.UseTLS:
		return smtpStartTLS
	default:
		return smtpPlain
	}
}

// deliver 建立连接并完成一次 MAIL/RCPT/DATA 会话
func (s *EmailService) deliver(to string, msg []byte) error {
	host := strings.TrimSpace(s.cfg.Host)
	addr := net.JoinHostPort(host, strconv.Itoa(s.cfg.Port))

	client, err := dialSMTP(addr, host, s.security())
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Username != "" || s.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return &recipientError{err: err}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}

func dialSMTP(addr, host string, security smtpSecurity) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	tlsConfig := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if security == smtpImplicitTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}
	if security == smtpStartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}
	return client, nil
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	return (&mail.Address{Name: strings.TrimSpace(name), Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var b strings.Builder
	header := []struct{ key, value string }{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("UTF-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}
	for _, h := range header {
		b.WriteString(h.key + ": " + h.value + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return b.String()
}

// stampEmailMessage 补充 Date 与 Message-ID 头
func stampEmailMessage(msg string, at time.Time, from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("Date: %s\r\nMessage-ID: <%s@%s>\r\n%s", at.Format(time.RFC1123Z), uuid.NewString(), domain, msg)
}

// recipientError RCPT 阶段被服务器拒绝
type recipientError struct {
	err error
}

func (e *recipientError) Error() string { return "smtp rcpt: " + e.err.Error() }

func (e *recipientError) Unwrap() error { return e.err }

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var rcpt *recipientError
	if errors.As(err, &rcpt) {
		var proto *textproto.Error
		if errors.As(rcpt.err, &proto) {
			return proto.Code >= 550 && proto.Code <= 553
		}
		return true
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range []string{"no such recipient", "no such user", "recipient address rejected", "user unknown", "mailbox unavailable"} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}
