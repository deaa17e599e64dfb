// Package sender отправляет пользователям письма-предупреждения
// об истечении premium-доступа. Сообщения приходят из очереди
// уведомлений, тексты писем — на языке площадки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/lib/smtp"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Transport устанавливает SMTP-соединение для отправки письма.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendExpiringSoonWarning обрабатывает сообщение о premium-доступе,
// истекающем в ближайшие семь дней.
func (s *SenderService) SendExpiringSoonWarning(body []byte) error {
	var message models.ExpiringUser
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Premium üyeliğiniz yakında sona eriyor"
	bodyText := fmt.Sprintf("Merhaba!\n\nTahminci.info premium üyeliğiniz %s tarihinde sona erecek.\n\nKesintisiz erişim için lütfen üyeliğinizi önceden yenileyin.",
		message.PremiumUntil.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

// SendExpiringTomorrowWarning обрабатывает сообщение о premium-доступе,
// истекающем завтра.
func (s *SenderService) SendExpiringTomorrowWarning(body []byte) error {
	var message models.ExpiringUser
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Premium üyeliğinizin son günü"
	bodyText := fmt.Sprintf("Merhaba!\n\nTahminci.info premium üyeliğiniz yarın (%s) sona eriyor.\n\nYenilemezseniz premium tahminlere erişiminiz kapanacak.",
		message.PremiumUntil.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
