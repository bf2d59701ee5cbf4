// Package sender превращает уведомления биллинга из очереди в письма.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/trip-billing/internal/lib/money"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/lib/smtp"
	"github.com/magabrotheeeer/trip-billing/internal/models"
)

const dateLayout = "January 2, 2006"

// SenderService отправляет квитанции и уведомления о продлении.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendReceipt отправляет квитанцию об оплате.
func (s *SenderService) SendReceipt(ctx context.Context, body []byte) error {
	var message models.Receipt
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Email == "" {
		s.log.Warn("receipt without email skipped", slog.String("charge_id", message.ChargeID))
		return nil
	}

	subject := "Your TRIP payment receipt"
	bodyText := fmt.Sprintf("Thank you for your payment.\n\n%s\nAmount: %s %s\nReference: %s\n",
		message.Description, money.Format(message.Amount), strings.ToUpper(message.Currency), message.ChargeID)

	return s.sendEmail(ctx, []string{message.Email}, subject, bodyText)
}

// SendRenewal подтверждает продление членства.
func (s *SenderService) SendRenewal(ctx context.Context, body []byte) error {
	var message models.RenewalNotice
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your TRIP membership has been renewed"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour membership is active from %s through %s.\n",
		message.Name, message.StartDate.Format(dateLayout), message.EndDate.Format(dateLayout))

	return s.sendEmail(ctx, []string{message.Email}, subject, bodyText)
}

// SendRenewalReminder напоминает об окончании срока членства без автопродления.
func (s *SenderService) SendRenewalReminder(ctx context.Context, body []byte) error {
	var message models.RenewalReminder
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your TRIP membership expires soon"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour membership expires on %s and auto-renew is turned off.\n"+
		"Renew from your account page to keep your member benefits.\n",
		message.Name, message.EndDate.Format(dateLayout))

	return s.sendEmail(ctx, []string{message.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from %s: %w", from, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
