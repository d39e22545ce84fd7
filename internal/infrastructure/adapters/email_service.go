// Package adapters contains outbound infrastructure adapters, currently
// the transactional email sender for withdrawal confirmations.
package adapters

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/vaultex/vaultex_service/internal/domain/services/wallet"
)

// EmailServiceConfig holds email service configuration
type EmailServiceConfig struct {
	Provider    string
	APIKey      string
	FromEmail   string
	FromName    string
	Environment string // "development", "staging", "production"
	BaseURL     string // For confirmation links
	ReplyTo     string
	// SMTP settings (for mailpit, smtp providers)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// Ensure EmailService implements the wallet service's sender interface
var _ wallet.EmailSender = (*EmailService)(nil)

// EmailService sends transactional email via the configured provider
type EmailService struct {
	logger *zap.Logger
	config EmailServiceConfig
	client *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(logger *zap.Logger, config EmailServiceConfig) (*EmailService, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		return nil, fmt.Errorf("email provider is required")
	}

	if strings.TrimSpace(config.FromEmail) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	var client *sendgrid.Client

	switch provider {
	case "sendgrid":
		if strings.TrimSpace(config.APIKey) == "" {
			return nil, fmt.Errorf("sendgrid api key is required")
		}
		client = sendgrid.NewSendClient(config.APIKey)
	case "mailpit", "smtp":
		if config.SMTPHost == "" {
			return nil, fmt.Errorf("smtp host is required for %s provider", provider)
		}
		if config.SMTPPort == 0 {
			config.SMTPPort = 1025 // default mailpit port
		}
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}

	return &EmailService{
		logger: logger,
		config: config,
		client: client,
	}, nil
}

// SendWithdrawalRequestEmail sends the confirmation email carrying the
// single-use withdrawal token link
func (e *EmailService) SendWithdrawalRequestEmail(ctx context.Context, details wallet.WithdrawalEmail) error {
	domain := details.Domain
	if domain == "" {
		domain = e.config.BaseURL
	}
	confirmLink := fmt.Sprintf("%s/withdraw/confirm?token=%s", strings.TrimRight(domain, "/"), details.TransactionID)

	subject := fmt.Sprintf("Confirm your %s withdrawal", strings.ToUpper(details.Currency))
	html := e.buildWithdrawalRequestHTML(details, confirmLink)
	text := e.buildWithdrawalRequestText(details, confirmLink)

	return e.sendEmail(ctx, details.Email, subject, html, text)
}

// sendEmail is a helper method to send emails via the configured provider
func (e *EmailService) sendEmail(ctx context.Context, to, subject, htmlContent, textContent string) error {
	provider := strings.ToLower(e.config.Provider)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch provider {
	case "sendgrid":
		return e.sendViaSendgrid(ctxWithTimeout, to, subject, htmlContent, textContent)
	case "mailpit", "smtp":
		return e.sendViaSMTP(ctxWithTimeout, to, subject, htmlContent)
	default:
		return fmt.Errorf("unsupported email provider: %s", provider)
	}
}

func (e *EmailService) sendViaSendgrid(ctx context.Context, to, subject, htmlContent, textContent string) error {
	if e.client == nil {
		return fmt.Errorf("sendgrid client not configured")
	}

	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, textContent, htmlContent)

	if strings.TrimSpace(e.config.ReplyTo) != "" {
		message.SetReplyTo(mail.NewEmail(e.config.FromName, e.config.ReplyTo))
	}

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		e.logger.Error("Failed to send email",
			zap.String("provider", "sendgrid"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		e.logger.Error("Email service returned error",
			zap.String("provider", "sendgrid"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("status_code", response.StatusCode),
			zap.String("response_body", response.Body))
		return fmt.Errorf("email service error: status %d, body: %s", response.StatusCode, response.Body)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", "sendgrid"),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("status_code", response.StatusCode))

	return nil
}

func (e *EmailService) sendViaSMTP(_ context.Context, to, subject, htmlContent string) error {
	from := e.config.FromEmail
	if e.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.config.FromName, e.config.FromEmail)
	}

	// Build MIME message
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	if e.config.ReplyTo != "" {
		msg.WriteString(fmt.Sprintf("Reply-To: %s\r\n", e.config.ReplyTo))
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)

	addr := fmt.Sprintf("%s:%d", e.config.SMTPHost, e.config.SMTPPort)

	var auth smtp.Auth
	if e.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)
	}

	var err error
	if e.config.SMTPUseTLS {
		err = e.sendSMTPWithTLS(addr, auth, e.config.FromEmail, to, msg.Bytes())
	} else {
		err = smtp.SendMail(addr, auth, e.config.FromEmail, []string{to}, msg.Bytes())
	}

	if err != nil {
		e.logger.Error("Failed to send email via SMTP",
			zap.String("provider", e.config.Provider),
			zap.String("to", to),
			zap.String("host", e.config.SMTPHost),
			zap.Error(err))
		return fmt.Errorf("smtp send failed: %w", err)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", e.config.Provider),
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}

func (e *EmailService) sendSMTPWithTLS(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.config.SMTPHost})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return err
		}
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}
	return client.Quit()
}

func (e *EmailService) buildWithdrawalRequestHTML(details wallet.WithdrawalEmail, confirmLink string) string {
	currency := strings.ToUpper(details.Currency)
	networkRow := ""
	if details.Network != "" {
		networkRow = fmt.Sprintf("<tr><td>Network</td><td>%s</td></tr>", details.Network)
	}
	ipRow := ""
	if details.IP != "" {
		ipRow = fmt.Sprintf("<tr><td>Request IP</td><td>%s</td></tr>", details.IP)
	}
	return fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif;">
			<h2>Withdrawal Confirmation</h2>
			<p>A withdrawal was requested from your account. Review the details and confirm to proceed.</p>
			<table cellpadding="6">
				<tr><td>Currency</td><td>%s</td></tr>
				<tr><td>Amount</td><td>%s %s</td></tr>
				<tr><td>Fee</td><td>%s %s</td></tr>
				<tr><td>Address</td><td>%s</td></tr>
				%s%s
			</table>
			<p><a href="%s" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Confirm Withdrawal</a></p>
			<p>If you did not request this withdrawal, ignore this email and the request will expire.</p>
		</body>
		</html>`,
		currency,
		details.Amount.String(), currency,
		details.Fee.String(), strings.ToUpper(details.FeeCoin),
		details.Address,
		networkRow, ipRow,
		confirmLink,
	)
}

func (e *EmailService) buildWithdrawalRequestText(details wallet.WithdrawalEmail, confirmLink string) string {
	currency := strings.ToUpper(details.Currency)
	return fmt.Sprintf(
		"A withdrawal of %s %s (fee %s %s) to %s was requested from your account. Confirm it here: %s\n\nIf you did not request this withdrawal, ignore this email and the request will expire.",
		details.Amount.String(), currency,
		details.Fee.String(), strings.ToUpper(details.FeeCoin),
		details.Address,
		confirmLink,
	)
}
