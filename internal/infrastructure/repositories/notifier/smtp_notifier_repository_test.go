//go:build unit

package notifier_test

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/notifier"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func capturingSender(captured *capturedMail, err error) notifier.SendFunc {
	return func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return err
	}
}

func TestSMTPNotifierRepository_Notify(t *testing.T) {
	t.Parallel()

	settings := entities.EmailSettings{Host: "mail.example.org", Port: 25, From: "updater@example.org"}

	t.Run("should send one mail to every recipient", func(t *testing.T) {
		t.Parallel()

		// given
		var captured capturedMail
		repo := notifier.NewSMTPNotifierRepositoryWithSender(settings, capturingSender(&captured, nil))
		notification := entities.Notification{
			Kind:     entities.NotificationNoChange,
			Project:  "shop",
			Hostname: "pweb01",
			Recipients: []entities.AdminContact{
				{Name: "Ada", Email: "ada@example.org"},
				{Email: "ops@example.org"},
			},
		}

		// when
		err := repo.Notify(context.Background(), notification)

		// then
		require.NoError(t, err)
		assert.Equal(t, "mail.example.org:25", captured.addr)
		assert.Equal(t, "updater@example.org", captured.from)
		assert.Equal(t, []string{"ada@example.org", "ops@example.org"}, captured.to)
		assert.Contains(t, captured.msg, "To: \"Ada\" <ada@example.org>, ops@example.org\r\n")
		assert.Contains(t, captured.msg, "Subject: auto-updater info from server pweb01 for project shop\r\n")
		assert.NotContains(t, strings.ReplaceAll(captured.msg, "\r\n", ""), "\n")
	})

	t.Run("should refuse a notification without recipients", func(t *testing.T) {
		t.Parallel()

		// given
		var captured capturedMail
		repo := notifier.NewSMTPNotifierRepositoryWithSender(settings, capturingSender(&captured, nil))

		// when
		err := repo.Notify(context.Background(), entities.Notification{Kind: entities.NotificationSuccess})

		// then
		require.Error(t, err)
		assert.Empty(t, captured.addr)
	})

	t.Run("should wrap a relay failure", func(t *testing.T) {
		t.Parallel()

		// given
		var captured capturedMail
		relayErr := errors.New("connection refused")
		repo := notifier.NewSMTPNotifierRepositoryWithSender(settings, capturingSender(&captured, relayErr))
		notification := entities.Notification{
			Kind:       entities.NotificationRollback,
			Recipients: []entities.AdminContact{{Email: "ops@example.org"}},
		}

		// when
		err := repo.Notify(context.Background(), notification)

		// then
		require.ErrorIs(t, err, relayErr)
		assert.Contains(t, err.Error(), "rollback")
	})
}

func TestLogNotifierRepository_Notify(t *testing.T) {
	t.Parallel()

	t.Run("should never fail", func(t *testing.T) {
		t.Parallel()

		// given
		repo := notifier.NewLogNotifierRepository(entities.EmailSettings{})

		// when
		err := repo.Notify(context.Background(), entities.Notification{Kind: entities.NotificationSuccess})

		// then
		assert.NoError(t, err)
	})
}
