package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/driano7/Xoco-POS-sub003/internal/config"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

type Service interface {
	SendReservationConfirmation(ctx context.Context, to, customerName, date, clock string) error
	SendChecklistAlert(ctx context.Context, branchName, kind string, failedItems []string) error
	SendSyncFailureAlert(ctx context.Context, scope, pendingID, lastError string) error
}

type service struct {
	dialer   *gomail.Dialer
	from     string
	opsEmail string
	logger   *logger.Logger
}

func NewService(cfg config.SMTPConfig, log *logger.Logger) Service {
	return &service{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		opsEmail: cfg.OpsEmail,
		logger:   log,
	}
}

func (s *service) SendReservationConfirmation(ctx context.Context, to, customerName, date, clock string) error {
	body := fmt.Sprintf(
		"Hola %s,\n\nTu reservación quedó confirmada para el %s a las %s.\n\n— Xoco Café",
		customerName, date, clock,
	)
	return s.send(to, "Reservación confirmada", body)
}

func (s *service) SendChecklistAlert(ctx context.Context, branchName, kind string, failedItems []string) error {
	body := fmt.Sprintf("Branch %s failed %d %s checklist items:\n", branchName, len(failedItems), kind)
	for _, item := range failedItems {
		body += fmt.Sprintf("  - %s\n", item)
	}
	return s.send(s.opsEmail, fmt.Sprintf("[compliance] %s checklist failures at %s", kind, branchName), body)
}

func (s *service) SendSyncFailureAlert(ctx context.Context, scope, pendingID, lastError string) error {
	body := fmt.Sprintf(
		"A queued write could not be replayed and needs manual inspection.\n\nscope: %s\npending record: %s\nlast error: %s\n",
		scope, pendingID, lastError,
	)
	return s.send(s.opsEmail, "[sync] pending record failed permanently", body)
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(err, "failed to send email", "to", to, "subject", subject)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
