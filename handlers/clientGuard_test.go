package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// Handlers holding an optional outbound client must refuse with a 503 when
// the client is not configured, instead of dereferencing nil mid-request.
func TestClientHandlers_UnconfiguredClientReturns503(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"SendInvoice", SendInvoiceHandler(nil)},
		{"SendInvoiceReminder", SendInvoiceReminderHandler(nil)},
		{"StartContributionPayment", StartContributionPaymentHandler(nil)},
		{"StartDonationPayment", StartDonationPaymentHandler(nil)},
		{"SendMailing", SendMailingHandler(nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			c.Params = gin.Params{{Key: "id", Value: "1"}}

			tc.handler(c)

			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503; got %d (body %s)", w.Code, w.Body.String())
			}
		})
	}
}
