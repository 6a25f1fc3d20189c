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

// Contribution is the yearly membership fee owed by a member.
// At most one per (member, year).
type Contribution struct {
	ID              int             `gorm:"primary_key" json:"id"`
	MemberId        int             `gorm:"not null;uniqueIndex:idx_contribution_member_year" json:"member_id" binding:"required"`
	Year            int             `gorm:"not null;uniqueIndex:idx_contribution_member_year" json:"year" binding:"required"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status          PaymentStatus   `gorm:"size:20;not null;default:'Pending'" json:"status"`
	MolliePaymentId string          `gorm:"size:50;index" json:"mollie_payment_id"`
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContribution struct {
	MemberId int             `json:"member_id" binding:"required"`
	Year     int             `json:"year" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

func (input *NewContribution) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return errors.New("member not found")
	}
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return nil
}

func CreateContribution(ctx context.Context, input *NewContribution) (*Contribution, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	contribution := Contribution{
		MemberId: input.MemberId,
		Year:     input.Year,
		Amount:   input.Amount,
		Status:   PaymentStatusPending,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&contribution).Error; err != nil {
		// the unique index on (member_id, year) is the real guard
		if utils.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("member already has a contribution for %d", input.Year)
		}
		return nil, err
	}
	return &contribution, nil
}

func DeleteContribution(ctx context.Context, id int) (*Contribution, error) {
	contribution, err := utils.FetchModel[Contribution](ctx, id)
	if err != nil {
		return nil, err
	}
	if contribution.Status == PaymentStatusPaid {
		return nil, errors.New("paid contribution cannot be deleted")
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&contribution).Error; err != nil {
		return nil, err
	}
	return contribution, nil
}

func GetContribution(ctx context.Context, id int) (*Contribution, error) {
	return utils.FetchModel[Contribution](ctx, id)
}

func GetContributionByPaymentId(ctx context.Context, molliePaymentId string) (*Contribution, error) {
	db := config.GetDB()
	var contribution Contribution
	err := db.WithContext(ctx).Where("mollie_payment_id = ?", molliePaymentId).First(&contribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &contribution, nil
}

func GetContributions(ctx context.Context, year *int, status *PaymentStatus, memberId *int) ([]*Contribution, error) {
	db := config.GetDB()
	var results []*Contribution

	dbCtx := db.WithContext(ctx)
	if year != nil {
		dbCtx = dbCtx.Where("year = ?", *year)
	}
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if memberId != nil {
		dbCtx = dbCtx.Where("member_id = ?", *memberId)
	}
	// db query
	err := dbCtx.Order("year DESC, member_id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SetContributionPaymentId stores the provider payment id after payment
// initiation.
func SetContributionPaymentId(ctx context.Context, id int, molliePaymentId string) error {
	contribution, err := utils.FetchModel[Contribution](ctx, id)
	if err != nil {
		return err
	}
	if contribution.Status.IsTerminal() {
		return errors.New("contribution is already settled")
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(&contribution).
		Update("MolliePaymentId", molliePaymentId).Error
}

// ApplyContributionPaymentStatus moves a contribution to paid or failed and,
// on the transition to paid, derives the income ledger row exactly once.
// The transition is a compare-and-set on the pending status: of any number of
// concurrent or repeated deliveries exactly one wins the update and derives
// the ledger row; the rest match zero rows and do nothing.
func ApplyContributionPaymentStatus(ctx context.Context, id int, status PaymentStatus, paidAt time.Time) error {
	if !status.IsTerminal() {
		// provider still reports pending/open; nothing to record
		return nil
	}

	updates := map[string]interface{}{"Status": status}
	if status == PaymentStatusPaid {
		updates["PaidAt"] = paidAt
	}

	db := config.GetDB()
	result := db.WithContext(ctx).Model(&Contribution{}).
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
		contribution, err := utils.FetchModel[Contribution](ctx, id)
		if err != nil {
			return err
		}
		_, err = EnsureIncomeForSource(ctx, LedgerSourceContribution, contribution.ID, &Income{
			Description: fmt.Sprintf("Contributie %d", contribution.Year),
			Amount:      contribution.Amount,
			Date:        paidAt,
			Category:    "Contributie",
			MemberId:    contribution.MemberId,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MarkContributionPaid is the explicit admin action that bypasses the
// payment provider. Same transition rules as the webhook path.
func MarkContributionPaid(ctx context.Context, id int) (*Contribution, error) {
	contribution, err := utils.FetchModel[Contribution](ctx, id)
	if err != nil {
		return nil, err
	}
	if contribution.Status.IsTerminal() {
		return nil, errors.New("contribution is already settled")
	}

	if err := ApplyContributionPaymentStatus(ctx, id, PaymentStatusPaid, time.Now()); err != nil {
		return nil, err
	}
	return utils.FetchModel[Contribution](ctx, id)
}
