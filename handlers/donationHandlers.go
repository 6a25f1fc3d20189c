package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/mollie"
	"bitbucket.org/mmdatafocus/leden_backend/payments"
	"github.com/gin-gonic/gin"
)

func CreateDonationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDonation
		if !bindJSON(c, &input) {
			return
		}
		donation, err := models.CreateDonation(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, donation)
	}
}

func GetDonationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *models.PaymentStatus
		if raw := c.Query("status"); raw != "" {
			s := models.PaymentStatus(raw)
			status = &s
		}
		donations, err := models.GetDonations(c.Request.Context(), status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, donations)
	}
}

func MarkDonationPaidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		donation, err := models.MarkDonationPaid(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, donation)
	}
}

func StartDonationPaymentHandler(client *mollie.Client) gin.HandlerFunc {
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
		payment, err := payments.StartDonationPayment(c.Request.Context(), client, id, input.RedirectUrl)
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
