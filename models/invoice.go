package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceNumberSequence backs the per-year invoice counter. The sequence is
// advanced by a single atomic upsert inside the invoice-create transaction;
// concurrent creators serialize on the row lock, so numbering is gapless
// under sequential creation and race-free under concurrent creation.
type InvoiceNumberSequence struct {
	Year    int `gorm:"primaryKey;autoIncrement:false" json:"year"`
	LastSeq int `gorm:"not null;default:0" json:"last_seq"`
}

type Invoice struct {
	ID              int             `gorm:"primary_key" json:"id"`
	InvoiceNumber   string          `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`
	InvoiceYear     int             `gorm:"index;not null" json:"invoice_year"`
	InvoiceSequence int             `gorm:"not null" json:"invoice_sequence"`
	MemberId        int             `gorm:"index" json:"member_id"`
	CompanyId       int             `gorm:"index" json:"company_id"`
	InvoiceDate     time.Time       `gorm:"not null" json:"invoice_date"`
	DueDate         time.Time       `json:"due_date"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	VatRate         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_rate"`
	VatAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
	Total           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Status          InvoiceStatus   `gorm:"size:20;not null;default:'Draft'" json:"status"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	ReminderCount   int             `gorm:"default:0" json:"reminder_count"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceId" json:"items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	VatRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_rate"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_total"`
	SortOrder   int             `gorm:"default:0" json:"sort_order"`
}

type NewInvoice struct {
	MemberId    int              `json:"member_id"`
	CompanyId   int              `json:"company_id"`
	InvoiceDate time.Time        `json:"invoice_date" binding:"required"`
	DueDate     time.Time        `json:"due_date"`
	Notes       string           `json:"notes"`
	Items       []NewInvoiceItem `json:"items"`
}

type NewInvoiceItem struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
}

// InvoiceTotals is the computed money summary of a line item set.
type InvoiceTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	VatAmount  decimal.Decimal `json:"vat_amount"`
	Total      decimal.Decimal `json:"total"`
	AvgVatRate decimal.Decimal `json:"avg_vat_rate"`
}

// CalculateInvoiceTotals computes subtotal, vat amount, total and the
// weighted-average vat rate for a line item set. Amounts accumulate
// unrounded and are rounded to 2 decimals at the end; the total is the sum
// of the two rounded outputs so that total == subtotal + vat_amount always
// holds on the cent. The average rate falls back to the default 21% when
// the subtotal is zero (cosmetic, the amounts are zero anyway).
func CalculateInvoiceTotals(items []NewInvoiceItem) InvoiceTotals {
	subtotal := decimal.Zero
	vatAmount := decimal.Zero

	for _, item := range items {
		lineAmount := item.Quantity.Mul(item.UnitPrice)
		subtotal = subtotal.Add(lineAmount)
		vatAmount = vatAmount.Add(lineAmount.Mul(item.VatRate).Div(decimalOneHundred))
	}

	avgVatRate := DefaultVatRate
	if subtotal.IsPositive() {
		avgVatRate = vatAmount.Div(subtotal).Mul(decimalOneHundred).Round(2)
	}

	subtotal = RoundMoney(subtotal)
	vatAmount = RoundMoney(vatAmount)

	return InvoiceTotals{
		Subtotal:   subtotal,
		VatAmount:  vatAmount,
		Total:      subtotal.Add(vatAmount),
		AvgVatRate: avgVatRate,
	}
}

// CalculateLineTotal is the per-line gross amount: qty x price x (1 + rate/100),
// rounded independently of the invoice totals.
func CalculateLineTotal(quantity, unitPrice, vatRate decimal.Decimal) decimal.Decimal {
	gross := quantity.Mul(unitPrice).Mul(decimal.NewFromInt(1).Add(vatRate.Div(decimalOneHundred)))
	return RoundMoney(gross)
}

func FormatInvoiceNumber(year int, sequence int) string {
	return fmt.Sprintf("%d-%d", year, sequence)
}

func ParseInvoiceNumber(number string) (year int, sequence int, err error) {
	parts := strings.SplitN(number, "-", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("invalid invoice number")
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.New("invalid invoice number")
	}
	sequence, err = strconv.Atoi(parts[1])
	if err != nil || sequence < 1 {
		return 0, 0, errors.New("invalid invoice number")
	}
	return year, sequence, nil
}

// nextInvoiceSequence advances the per-year counter atomically. Must run
// inside tx: the upsert keeps the sequence row locked until commit, so a
// concurrent creator blocks instead of reading the same value.
func nextInvoiceSequence(ctx context.Context, tx *gorm.DB, year int) (int, error) {
	if err := tx.WithContext(ctx).Exec(
		"INSERT INTO invoice_number_sequences (year, last_seq) VALUES (?, 1) "+
			"ON DUPLICATE KEY UPDATE last_seq = last_seq + 1", year).Error; err != nil {
		return 0, err
	}
	var seq int
	if err := tx.WithContext(ctx).Model(&InvoiceNumberSequence{}).
		Where("year = ?", year).Select("last_seq").Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

func mapInvoiceItems(input []NewInvoiceItem) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(input))
	for i, item := range input {
		items = append(items, InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			VatRate:     item.VatRate,
			LineTotal:   CalculateLineTotal(item.Quantity, item.UnitPrice, item.VatRate),
			SortOrder:   i,
		})
	}
	return items
}

func (input *NewInvoice) validate(ctx context.Context) error {
	if input.MemberId > 0 {
		if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
			return errors.New("member not found")
		}
	}
	if input.CompanyId > 0 {
		if err := utils.ValidateResourceId[Company](ctx, input.CompanyId); err != nil {
			return errors.New("company not found")
		}
	}
	for _, item := range input.Items {
		if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() || item.VatRate.IsNegative() {
			return errors.New("invoice item amounts cannot be negative")
		}
	}
	return nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	totals := CalculateInvoiceTotals(input.Items)
	year := input.InvoiceDate.Year()

	db := config.GetDB()
	tx := db.Begin()

	sequence, err := nextInvoiceSequence(ctx, tx, year)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoice := Invoice{
		InvoiceNumber:   FormatInvoiceNumber(year, sequence),
		InvoiceYear:     year,
		InvoiceSequence: sequence,
		MemberId:        input.MemberId,
		CompanyId:       input.CompanyId,
		InvoiceDate:     input.InvoiceDate,
		DueDate:         input.DueDate,
		Subtotal:        totals.Subtotal,
		VatRate:         totals.AvgVatRate,
		VatAmount:       totals.VatAmount,
		Total:           totals.Total,
		Status:          InvoiceStatusDraft,
		Notes:           input.Notes,
		Items:           mapInvoiceItems(input.Items),
	}

	// db action
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice recomputes all totals from the new item set and replaces
// all items (delete then reinsert, not a diff). The invoice number never
// changes on edit.
func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusPaid {
		return nil, errors.New("paid invoice cannot be edited")
	}

	totals := CalculateInvoiceTotals(input.Items)
	items := mapInvoiceItems(input.Items)

	db := config.GetDB()
	tx := db.Begin()
	// db action
	if err = tx.WithContext(ctx).Model(&invoice).
		Updates(map[string]interface{}{
			"MemberId":    input.MemberId,
			"CompanyId":   input.CompanyId,
			"InvoiceDate": input.InvoiceDate,
			"DueDate":     input.DueDate,
			"Notes":       input.Notes,
			"Subtotal":    totals.Subtotal,
			"VatRate":     totals.AvgVatRate,
			"VatAmount":   totals.VatAmount,
			"Total":       totals.Total,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.WithContext(ctx).Model(&invoice).
		Session(&gorm.Session{FullSaveAssociations: true, SkipHooks: true}).
		Association("Items").
		Unscoped().Replace(&items); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return invoice, nil
}

func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusPaid {
		return nil, errors.New("paid invoice cannot be deleted")
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Select("Items").Delete(&invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return utils.FetchModel[Invoice](ctx, id, "Items")
}

func GetInvoices(ctx context.Context, year *int, status *InvoiceStatus, memberId *int) ([]*Invoice, error) {
	db := config.GetDB()
	var results []*Invoice

	dbCtx := db.WithContext(ctx)
	if year != nil {
		dbCtx = dbCtx.Where("invoice_year = ?", *year)
	}
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if memberId != nil {
		dbCtx = dbCtx.Where("member_id = ?", *memberId)
	}
	// db query
	err := dbCtx.Preload("Items").Order("invoice_year DESC, invoice_sequence DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func MarkInvoiceSent(ctx context.Context, id int) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		return nil, errors.New("only draft invoices can be sent")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&invoice).
		Update("Status", InvoiceStatusSent).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecordInvoicePayment registers a (partial) payment; the invoice flips to
// paid once the paid amount covers the total.
func RecordInvoicePayment(ctx context.Context, id int, amount decimal.Decimal) (*Invoice, error) {
	if !amount.IsPositive() {
		return nil, errors.New("payment amount must be positive")
	}

	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusDraft {
		return nil, errors.New("draft invoice cannot receive payments")
	}

	paidAmount := invoice.PaidAmount.Add(amount)
	status := invoice.Status
	if paidAmount.GreaterThanOrEqual(invoice.Total) {
		status = InvoiceStatusPaid
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&invoice).
		Updates(map[string]interface{}{
			"PaidAmount": paidAmount,
			"Status":     status,
		}).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func IncrementReminderCount(ctx context.Context, id int) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&invoice).
		Update("ReminderCount", gorm.Expr("reminder_count + 1")).Error; err != nil {
		return nil, err
	}
	invoice.ReminderCount++
	return invoice, nil
}

// MarkOverdueInvoices flips sent invoices past their due date to overdue.
// Called from the nightly sweep.
func MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&Invoice{}).
		Where("status = ? AND due_date < ? AND due_date IS NOT NULL", InvoiceStatusSent, now).
		Update("status", InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
