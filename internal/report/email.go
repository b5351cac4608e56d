package report

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"strings"
)

// Mailer sends the digest over SMTP. There is no third-party mailer in the
// stack; plain net/smtp with a hand-built MIME message covers the need.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

// NewMailerFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD,
// REPORT_FROM and REPORT_TO (comma-separated).
func NewMailerFromEnv() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("REPORT_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	to := strings.Split(os.Getenv("REPORT_TO"), ",")
	var recipients []string
	for _, t := range to {
		if t = strings.TrimSpace(t); t != "" {
			recipients = append(recipients, t)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("REPORT_TO is not set")
	}
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
		To:       recipients,
	}, nil
}

// Attachment is a file attached to the digest mail.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Send delivers an HTML mail with optional attachments.
func (m *Mailer) Send(subject, htmlBody string, attachments ...Attachment) error {
	msg := buildMessage(m.From, m.To, subject, htmlBody, attachments)

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, m.To, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

const mimeBoundary = "rfp-radar-mime-boundary"

func buildMessage(from string, to []string, subject, htmlBody string, attachments []Attachment) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	b.WriteString(wrapBase64(htmlBody))
	b.WriteString("\r\n")

	for _, a := range attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", ct)
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", a.Filename)
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(wrapBase64(string(a.Data)))
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}

// wrapBase64 encodes and folds at 76 characters per RFC 2045.
func wrapBase64(s string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	var b strings.Builder
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc)
	return b.String()
}
