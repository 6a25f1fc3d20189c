package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/leden_backend/models"
)

// invoiceRecipient resolves who receives invoice mail: the member on the
// invoice, or the company when no member is linked.
func invoiceRecipient(ctx context.Context, invoice *models.Invoice) (email string, name string, err error) {
	if invoice.MemberId > 0 {
		member, err := models.GetMember(ctx, invoice.MemberId)
		if err != nil {
			return "", "", err
		}
		if member.Email == "" {
			return "", "", errors.New("member has no email address")
		}
		return member.Email, member.FullName(), nil
	}
	if invoice.CompanyId > 0 {
		company, err := models.GetCompany(ctx, invoice.CompanyId)
		if err != nil {
			return "", "", err
		}
		if company.Email == "" {
			return "", "", errors.New("company has no email address")
		}
		return company.Email, company.Name, nil
	}
	return "", "", errors.New("invoice has no recipient")
}

func invoiceSubject(invoice *models.Invoice) string {
	return "Factuur " + invoice.InvoiceNumber
}

func reminderSubject(invoice *models.Invoice) string {
	return fmt.Sprintf("Herinnering %d: factuur %s", invoice.ReminderCount+1, invoice.InvoiceNumber)
}

func renderInvoiceBody(invoice *models.Invoice, recipientName string, intro string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<p>Beste %s,</p>", recipientName))
	sb.WriteString("<p>" + intro + "</p>")
	sb.WriteString("<ul>")
	for _, item := range invoice.Items {
		sb.WriteString(fmt.Sprintf("<li>%s: &euro; %s</li>", item.Description, item.LineTotal.StringFixed(2)))
	}
	sb.WriteString("</ul>")
	sb.WriteString(fmt.Sprintf("<p>Totaal: &euro; %s</p>", invoice.Total.StringFixed(2)))
	if !invoice.DueDate.IsZero() {
		sb.WriteString(fmt.Sprintf("<p>Te voldoen voor %s.</p>", invoice.DueDate.Format("02-01-2006")))
	}
	return sb.String()
}

// SendInvoiceMail delivers a draft invoice to its recipient and flips the
// status to sent. The mail goes out first; an undeliverable invoice stays
// draft.
func SendInvoiceMail(ctx context.Context, client *Client, invoiceId int) (*models.Invoice, error) {
	invoice, err := models.GetInvoice(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, errors.New("only draft invoices can be sent")
	}

	email, name, err := invoiceRecipient(ctx, invoice)
	if err != nil {
		return nil, err
	}
	msg := &Message{
		ToEmail:  email,
		ToName:   name,
		Subject:  invoiceSubject(invoice),
		BodyHtml: renderInvoiceBody(invoice, name, "Hierbij ontvangt u onze factuur."),
	}
	if err := client.Send(ctx, msg); err != nil {
		return nil, err
	}

	return models.MarkInvoiceSent(ctx, invoice.ID)
}

// SendInvoiceReminder mails a payment reminder and bumps the reminder count.
// Only invoices that went out and are still unpaid qualify; the count moves
// only after the mail was accepted.
func SendInvoiceReminder(ctx context.Context, client *Client, invoiceId int) (*models.Invoice, error) {
	invoice, err := models.GetInvoice(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusOverdue {
		return nil, errors.New("only sent or overdue invoices can be reminded")
	}

	email, name, err := invoiceRecipient(ctx, invoice)
	if err != nil {
		return nil, err
	}
	intro := fmt.Sprintf("Volgens onze administratie staat factuur %s nog open.", invoice.InvoiceNumber)
	msg := &Message{
		ToEmail:  email,
		ToName:   name,
		Subject:  reminderSubject(invoice),
		BodyHtml: renderInvoiceBody(invoice, name, intro),
	}
	if err := client.Send(ctx, msg); err != nil {
		return nil, err
	}

	return models.IncrementReminderCount(ctx, invoice.ID)
}
