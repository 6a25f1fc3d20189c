package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/mailer"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func CreateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if !bindJSON(c, &input) {
			return
		}
		invoice, err := models.CreateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func UpdateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewInvoice
		if !bindJSON(c, &input) {
			return
		}
		invoice, err := models.UpdateInvoice(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func DeleteInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := models.DeleteInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func GetInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := models.GetInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func GetInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *models.InvoiceStatus
		if raw := c.Query("status"); raw != "" {
			parsed, err := models.ParseInvoiceStatus(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status = &parsed
		}
		invoices, err := models.GetInvoices(c.Request.Context(), queryInt(c, "year"), status, queryInt(c, "member_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

// SendInvoiceHandler mails the invoice to its recipient and marks it sent.
func SendInvoiceHandler(client *mailer.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mailer is not configured"})
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := mailer.SendInvoiceMail(c.Request.Context(), client, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

type invoicePaymentInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func RecordInvoicePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input invoicePaymentInput
		if !bindJSON(c, &input) {
			return
		}
		invoice, err := models.RecordInvoicePayment(c.Request.Context(), id, input.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

// SendInvoiceReminderHandler mails a payment reminder; the reminder count
// moves only when the mail went out.
func SendInvoiceReminderHandler(client *mailer.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mailer is not configured"})
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		invoice, err := mailer.SendInvoiceReminder(c.Request.Context(), client, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

// PreviewInvoiceTotalsHandler computes totals for an item set without
// persisting anything; the invoice form uses it live.
func PreviewInvoiceTotalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Items []models.NewInvoiceItem `json:"items"`
		}
		if !bindJSON(c, &input) {
			return
		}
		c.JSON(http.StatusOK, models.CalculateInvoiceTotals(input.Items))
	}
}
