package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/mailer"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateMailingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMailing
		if !bindJSON(c, &input) {
			return
		}
		mailing, err := models.CreateMailing(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, mailing)
	}
}

func UpdateMailingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewMailing
		if !bindJSON(c, &input) {
			return
		}
		mailing, err := models.UpdateMailing(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mailing)
	}
}

func DeleteMailingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		mailing, err := models.DeleteMailing(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mailing)
	}
}

func GetMailingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		mailing, err := models.GetMailing(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mailing)
	}
}

func GetMailingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		mailings, err := models.GetMailings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mailings)
	}
}

// PreviewMailingRecipientsHandler resolves the recipient set without sending.
func PreviewMailingRecipientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		mailing, err := models.GetMailing(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		recipients, err := models.MailingRecipients(c.Request.Context(), mailing)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(recipients), "recipients": recipients})
	}
}

// SendMailingHandler delivers the mailing synchronously; the response carries
// the sent and failed counts.
func SendMailingHandler(client *mailer.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mailer is not configured"})
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		mailing, err := mailer.SendMailing(c.Request.Context(), client, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mailing)
	}
}
