package payments

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/mollie"
)

// publicBaseURL is where Mollie reaches the webhook endpoints; it has to be
// an externally routable address.
func publicBaseURL() string {
	return strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
}

// StartContributionPayment registers a Mollie payment for a pending
// contribution and stores the payment id on the record. The returned payment
// carries the checkout URL for the payer.
func StartContributionPayment(ctx context.Context, client *mollie.Client, contributionId int, redirectUrl string) (*mollie.Payment, error) {
	contribution, err := models.GetContribution(ctx, contributionId)
	if err != nil {
		return nil, err
	}
	if contribution.Status.IsTerminal() {
		return nil, fmt.Errorf("contribution is already settled")
	}

	payment, err := client.CreatePayment(ctx, &mollie.NewPayment{
		Amount:      contribution.Amount,
		Description: fmt.Sprintf("Contributie %d", contribution.Year),
		RedirectUrl: redirectUrl,
		WebhookUrl:  publicBaseURL() + "/webhooks/mollie/contributions",
		Metadata:    map[string]string{"contribution_id": fmt.Sprint(contribution.ID)},
	})
	if err != nil {
		return nil, err
	}

	if err := models.SetContributionPaymentId(ctx, contribution.ID, payment.Id); err != nil {
		return nil, err
	}
	return payment, nil
}

// StartDonationPayment mirrors StartContributionPayment for donations.
func StartDonationPayment(ctx context.Context, client *mollie.Client, donationId int, redirectUrl string) (*mollie.Payment, error) {
	donation, err := models.GetDonation(ctx, donationId)
	if err != nil {
		return nil, err
	}
	if donation.Status.IsTerminal() {
		return nil, fmt.Errorf("donation is already settled")
	}

	description := "Donatie"
	if donation.DonorName != "" {
		description = fmt.Sprintf("Donatie van %s", donation.DonorName)
	}
	payment, err := client.CreatePayment(ctx, &mollie.NewPayment{
		Amount:      donation.Amount,
		Description: description,
		RedirectUrl: redirectUrl,
		WebhookUrl:  publicBaseURL() + "/webhooks/mollie/donations",
		Metadata:    map[string]string{"donation_id": fmt.Sprint(donation.ID)},
	})
	if err != nil {
		return nil, err
	}

	if err := models.SetDonationPaymentId(ctx, donation.ID, payment.Id); err != nil {
		return nil, err
	}
	return payment, nil
}
