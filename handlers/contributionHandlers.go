package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/mollie"
	"bitbucket.org/mmdatafocus/leden_backend/payments"
	"github.com/gin-gonic/gin"
)

func CreateContributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewContribution
		if !bindJSON(c, &input) {
			return
		}
		contribution, err := models.CreateContribution(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contribution)
	}
}

func DeleteContributionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		contribution, err := models.DeleteContribution(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contribution)
	}
}

func GetContributionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *models.PaymentStatus
		if raw := c.Query("status"); raw != "" {
			s := models.PaymentStatus(raw)
			status = &s
		}
		contributions, err := models.GetContributions(c.Request.Context(),
			queryInt(c, "year"), status, queryInt(c, "member_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contributions)
	}
}

func MarkContributionPaidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		contribution, err := models.MarkContributionPaid(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contribution)
	}
}

type startPaymentInput struct {
	RedirectUrl string `json:"redirect_url" binding:"required"`
}

// StartContributionPaymentHandler creates the provider payment and returns
// the checkout URL for the payer.
func StartContributionPaymentHandler(client *mollie.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input startPaymentInput
		if !bindJSON(c, &input) {
			return
		}
		payment, err := payments.StartContributionPayment(c.Request.Context(), client, id, input.RedirectUrl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"payment_id":   payment.Id,
			"checkout_url": payment.CheckoutUrl(),
		})
	}
}
