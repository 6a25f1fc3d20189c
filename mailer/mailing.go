package mailer

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

// RenderBody substitutes the per-recipient placeholders in a mailing body.
func RenderBody(body string, member *models.Member) string {
	replacer := strings.NewReplacer(
		"{{voornaam}}", member.FirstName,
		"{{achternaam}}", member.LastName,
		"{{naam}}", member.FullName(),
	)
	return replacer.Replace(body)
}

// SendMailing resolves the recipient set and delivers the mailing one
// message at a time. A failed recipient is logged and counted, the rest of
// the batch still goes out.
func SendMailing(ctx context.Context, client *Client, mailingId int) (*models.Mailing, error) {
	mailing, err := models.MarkMailingStarted(ctx, mailingId)
	if err != nil {
		return nil, err
	}

	recipients, err := models.MailingRecipients(ctx, mailing)
	if err != nil {
		return nil, err
	}

	actor := "system"
	if username, ok := utils.GetUsernameFromContext(ctx); ok && username != "" {
		actor = username
	}
	config.LogInfo(config.GetLogger(), "mailer", "SendMailing",
		fmt.Sprintf("mailing %d started by %s (%d recipients)", mailingId, actor, len(recipients)))

	sent := 0
	failed := 0
	for _, member := range recipients {
		msg := &Message{
			ToEmail:  member.Email,
			ToName:   member.FullName(),
			Subject:  mailing.Subject,
			BodyHtml: RenderBody(mailing.BodyHtml, member),
		}
		if err := client.Send(ctx, msg); err != nil {
			failed++
			config.LogError(config.GetLogger(), "mailer", "SendMailing", member.Email, nil, err)
			continue
		}
		sent++
	}

	if err := models.MarkMailingFinished(ctx, mailingId, sent, failed); err != nil {
		return nil, err
	}
	mailing.Status = models.MailingStatusSent
	mailing.SentCount = sent
	mailing.FailedCount = failed
	return mailing, nil
}
