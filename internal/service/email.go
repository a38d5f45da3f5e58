package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"carrental-backend/internal/config"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(cfg config.SMTPConfig) EmailService {
	return &emailService{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *emailService) SendBookingCreatedNotification(ctx context.Context, email, name, reference string, total int64) error {
	subject := fmt.Sprintf("Booking %s - Payment Required", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s has been created. The total amount due is %d.\n\nPlease complete the payment to confirm your booking. Unpaid bookings are released automatically.\n\nBest regards,\nThe CarRental Team", name, reference, total)
	return s.send(email, subject, body)
}

func (s *emailService) SendBookingConfirmedNotification(ctx context.Context, email, name, reference string, total int64) error {
	subject := fmt.Sprintf("Booking %s Confirmed", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour payment of %d has been received and booking %s is confirmed.\n\nWe wish you a pleasant trip.\n\nBest regards,\nThe CarRental Team", name, total, reference)
	return s.send(email, subject, body)
}

func (s *emailService) SendBookingCancelledNotification(ctx context.Context, email, name, reference, reason string) error {
	subject := fmt.Sprintf("Booking %s Cancelled", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s has been cancelled.", name, reference)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nAny completed payment will be refunded.\n\nBest regards,\nThe CarRental Team"
	return s.send(email, subject, body)
}

func (s *emailService) SendBookingCompletedNotification(ctx context.Context, email, name, reference string, total int64) error {
	subject := fmt.Sprintf("Booking %s Completed", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s is complete. The final charged amount is %d.\n\nThank you for renting with us.\n\nBest regards,\nThe CarRental Team", name, reference, total)
	return s.send(email, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}

	return nil
}
