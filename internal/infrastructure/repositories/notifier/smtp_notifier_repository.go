package notifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifierRepository delivers notifications as plain-text mail through an unauthenticated relay.
type SMTPNotifierRepository struct {
	addr string
	from string
	send SendFunc
}

// NewSMTPNotifierRepository creates a notifier for the configured relay.
func NewSMTPNotifierRepository(settings entities.EmailSettings) *SMTPNotifierRepository {
	return NewSMTPNotifierRepositoryWithSender(settings, smtp.SendMail)
}

// NewSMTPNotifierRepositoryWithSender creates a notifier using a custom send function.
func NewSMTPNotifierRepositoryWithSender(settings entities.EmailSettings, send SendFunc) *SMTPNotifierRepository {
	return &SMTPNotifierRepository{
		addr: net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port)),
		from: settings.From,
		send: send,
	}
}

// Notify sends one mail to all recipients of the notification.
func (it *SMTPNotifierRepository) Notify(_ context.Context, notification entities.Notification) error {
	if len(notification.Recipients) == 0 {
		return errors.New("notification has no recipients")
	}

	to := make([]string, 0, len(notification.Recipients))
	headerTo := make([]string, 0, len(notification.Recipients))
	for _, recipient := range notification.Recipients {
		to = append(to, recipient.Email)
		headerTo = append(headerTo, recipient.Address())
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", it.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(headerTo, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", notification.Subject())
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(ComposeBody(notification), "\n", "\r\n"))

	if err := it.send(it.addr, nil, it.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send %s notification: %w", notification.Kind, err)
	}
	logger.Infof("Sent %s notification to %s", notification.Kind, strings.Join(to, ", "))
	return nil
}
