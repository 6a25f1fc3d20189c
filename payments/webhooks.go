package payments

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/mollie"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
)

// Webhook deliveries always get a 200 back, whatever happened internally.
// A non-200 makes Mollie retry with backoff; against a permanently failing
// handler that turns into a webhook storm. Internal failures are logged only.

const webhookLockTTL = 30 * time.Second

// webhookPaymentId reads the payment id from a Mollie webhook: a form post
// with an `id` field, or a JSON body for manual replays.
func webhookPaymentId(c *gin.Context) string {
	if id := c.PostForm("id"); id != "" {
		return id
	}
	var body struct {
		Id string `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.Id
	}
	return ""
}

// acquireWebhookLock narrows the window for concurrent duplicate deliveries
// of the same payment id. Best effort: without redis everyone proceeds and
// the terminal-state guard in the models does the real work.
func acquireWebhookLock(ctx context.Context, paymentId string) (*redislock.Lock, bool) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, true
	}
	lock, err := locker.Obtain(ctx, "webhook:"+paymentId, webhookLockTTL, nil)
	if err != nil {
		// a concurrent delivery holds the lock; let it do the work
		return nil, false
	}
	return lock, true
}

// ContributionWebhookHandler reconciles a contribution with the payment
// state fetched from Mollie. The payload is unauthenticated, so the id is
// never trusted beyond being a lookup key.
func ContributionWebhookHandler(client *mollie.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.String(http.StatusOK, "ok")

		paymentId := webhookPaymentId(c)
		if paymentId == "" {
			return
		}
		if client == nil {
			config.LogInfo(config.GetLogger(), "payments", "ContributionWebhookHandler",
				"delivery skipped: mollie client is not configured")
			return
		}
		ctx := c.Request.Context()

		lock, proceed := acquireWebhookLock(ctx, paymentId)
		if !proceed {
			return
		}
		if lock != nil {
			defer lock.Release(context.Background())
		}

		payment, err := client.GetPayment(ctx, paymentId)
		if err != nil {
			config.LogError(config.GetLogger(), "payments", "ContributionWebhookHandler", paymentId, nil, err)
			return
		}

		status, actionable := models.MapProviderStatus(payment.Status)
		if !actionable {
			return
		}

		contribution, err := models.GetContributionByPaymentId(ctx, paymentId)
		if err != nil {
			config.LogError(config.GetLogger(), "payments", "ContributionWebhookHandler", paymentId, nil, err)
			return
		}

		paidAt := time.Now()
		if payment.PaidAt != nil {
			paidAt = *payment.PaidAt
		}
		if err := models.ApplyContributionPaymentStatus(ctx, contribution.ID, status, paidAt); err != nil {
			config.LogError(config.GetLogger(), "payments", "ContributionWebhookHandler", paymentId, nil, err)
			return
		}
		config.LogInfo(config.GetLogger(), "payments", "ContributionWebhookHandler",
			fmt.Sprintf("payment %s reconciled to %s", paymentId, status))
	}
}

// DonationWebhookHandler is the donation counterpart; it additionally
// records the raw provider status on the donation row.
func DonationWebhookHandler(client *mollie.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.String(http.StatusOK, "ok")

		paymentId := webhookPaymentId(c)
		if paymentId == "" {
			return
		}
		if client == nil {
			config.LogInfo(config.GetLogger(), "payments", "DonationWebhookHandler",
				"delivery skipped: mollie client is not configured")
			return
		}
		ctx := c.Request.Context()

		lock, proceed := acquireWebhookLock(ctx, paymentId)
		if !proceed {
			return
		}
		if lock != nil {
			defer lock.Release(context.Background())
		}

		payment, err := client.GetPayment(ctx, paymentId)
		if err != nil {
			config.LogError(config.GetLogger(), "payments", "DonationWebhookHandler", paymentId, nil, err)
			return
		}

		status, _ := models.MapProviderStatus(payment.Status)

		donation, err := models.GetDonationByPaymentId(ctx, paymentId)
		if err != nil {
			config.LogError(config.GetLogger(), "payments", "DonationWebhookHandler", paymentId, nil, err)
			return
		}

		paidAt := time.Now()
		if payment.PaidAt != nil {
			paidAt = *payment.PaidAt
		}
		if err := models.ApplyDonationPaymentStatus(ctx, donation.ID, status, payment.Status, paidAt); err != nil {
			config.LogError(config.GetLogger(), "payments", "DonationWebhookHandler", paymentId, nil, err)
			return
		}
		config.LogInfo(config.GetLogger(), "payments", "DonationWebhookHandler",
			fmt.Sprintf("payment %s recorded as %s", paymentId, payment.Status))
	}
}
