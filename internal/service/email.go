package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foldervault/foldervault/internal/model"
	"github.com/resend/resend-go/v2"
)

// EmailService sends share notifications. In development it logs instead
// of sending so no API key is needed.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendShareNotifications notifies each grantee that a folder was shared
// with them. Fire-and-forget: a delivery failure never fails the share.
func (s *EmailService) SendShareNotifications(folder *model.Folder, owner *model.User) {
	for _, grantee := range folder.SharedWith {
		err := s.sendShareEmail(grantee.Email, owner.Name, folder.Path)
		if err != nil {
			slog.Error("failed to send share notification", "error", err, "to", grantee.Email, "folder", folder.Path)
		}
	}
}

func (s *EmailService) sendShareEmail(to, ownerName, folderPath string) error {
	subject := fmt.Sprintf("%s shared a folder with you", ownerName)
	body := fmt.Sprintf("%s shared the folder %q with you on %s. Sign in to download its contents.", ownerName, folderPath, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "folder_shared", "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", "folder_shared", "to", to)
	}
	return err
}
