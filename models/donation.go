package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Donation is a one-off payment from a member or visitor. Unlike a
// contribution there is no uniqueness; the raw provider status is kept
// alongside the mapped local status.
type Donation struct {
	ID              int             `gorm:"primary_key" json:"id"`
	MemberId        int             `gorm:"index" json:"member_id"`
	DonorName       string          `gorm:"size:255" json:"donor_name"`
	DonorEmail      string          `gorm:"size:255" json:"donor_email"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status          PaymentStatus   `gorm:"size:20;not null;default:'Pending'" json:"status"`
	MolliePaymentId string          `gorm:"size:50;index" json:"mollie_payment_id"`
	MollieStatus    string          `gorm:"size:20" json:"mollie_status"`
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDonation struct {
	MemberId   int             `json:"member_id"`
	DonorName  string          `json:"donor_name"`
	DonorEmail string          `json:"donor_email"`
	Amount     decimal.Decimal `json:"amount"`
}

func (input *NewDonation) validate(ctx context.Context) error {
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if input.MemberId > 0 {
		if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
			return errors.New("member not found")
		}
	}
	if input.DonorEmail != "" && !utils.IsValidEmail(input.DonorEmail) {
		return errors.New("invalid email address")
	}
	return nil
}

func CreateDonation(ctx context.Context, input *NewDonation) (*Donation, error) {

	// a member-linked account donating for itself can omit the member id
	if input.MemberId == 0 {
		if memberId, ok := utils.GetMemberIdFromContext(ctx); ok && memberId > 0 {
			input.MemberId = memberId
		}
	}

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	donation := Donation{
		MemberId:   input.MemberId,
		DonorName:  input.DonorName,
		DonorEmail: input.DonorEmail,
		Amount:     input.Amount,
		Status:     PaymentStatusPending,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func GetDonation(ctx context.Context, id int) (*Donation, error) {
	return utils.FetchModel[Donation](ctx, id)
}

func GetDonationByPaymentId(ctx context.Context, molliePaymentId string) (*Donation, error) {
	db := config.GetDB()
	var donation Donation
	err := db.WithContext(ctx).Where("mollie_payment_id = ?", molliePaymentId).First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func GetDonations(ctx context.Context, status *PaymentStatus) ([]*Donation, error) {
	db := config.GetDB()
	var results []*Donation

	dbCtx := db.WithContext(ctx)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	// db query
	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func SetDonationPaymentId(ctx context.Context, id int, molliePaymentId string) error {
	donation, err := utils.FetchModel[Donation](ctx, id)
	if err != nil {
		return err
	}
	if donation.Status.IsTerminal() {
		return errors.New("donation is already settled")
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(&donation).
		Update("MolliePaymentId", molliePaymentId).Error
}

// ApplyDonationPaymentStatus mirrors the contribution transition: terminal
// once paid or failed, income row derived exactly once on paid. The terminal
// transition is a compare-and-set on the pending status, so of any number of
// concurrent or repeated deliveries exactly one wins the update and derives
// the ledger row.
func ApplyDonationPaymentStatus(ctx context.Context, id int, status PaymentStatus, rawStatus string, paidAt time.Time) error {
	db := config.GetDB()

	if !status.IsTerminal() {
		// record the raw provider status only; a settled donation keeps its
		// final status untouched
		return db.WithContext(ctx).Model(&Donation{}).
			Where("id = ? AND status = ?", id, PaymentStatusPending).
			Update("MollieStatus", rawStatus).Error
	}

	updates := map[string]interface{}{
		"Status":       status,
		"MollieStatus": rawStatus,
	}
	if status == PaymentStatusPaid {
		updates["PaidAt"] = paidAt
	}

	result := db.WithContext(ctx).Model(&Donation{}).
		Where("id = ? AND status = ?", id, PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// already settled by an earlier delivery
		return nil
	}

	if status == PaymentStatusPaid {
		donation, err := utils.FetchModel[Donation](ctx, id)
		if err != nil {
			return err
		}
		description := "Donatie"
		if donation.DonorName != "" {
			description = fmt.Sprintf("Donatie van %s", donation.DonorName)
		}
		_, err = EnsureIncomeForSource(ctx, LedgerSourceDonation, donation.ID, &Income{
			Description: description,
			Amount:      donation.Amount,
			Date:        paidAt,
			Category:    "Donaties",
			MemberId:    donation.MemberId,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MarkDonationPaid is the explicit admin action bypassing the provider.
func MarkDonationPaid(ctx context.Context, id int) (*Donation, error) {
	donation, err := utils.FetchModel[Donation](ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.Status.IsTerminal() {
		return nil, errors.New("donation is already settled")
	}

	if err := ApplyDonationPaymentStatus(ctx, id, PaymentStatusPaid, "paid", time.Now()); err != nil {
		return nil, err
	}
	return utils.FetchModel[Donation](ctx, id)
}
