package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

type Income struct {
	ID          int              `gorm:"primary_key" json:"id"`
	Description string           `gorm:"size:255;not null" json:"description" binding:"required"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Date        time.Time        `gorm:"not null;index" json:"date" binding:"required"`
	Category    string           `gorm:"size:100" json:"category"`
	MemberId    int              `gorm:"index" json:"member_id"`
	CompanyId   int              `gorm:"index" json:"company_id"`
	SourceType  LedgerSourceType `gorm:"size:20;default:'Manual';index:idx_income_source" json:"source_type"`
	SourceId    int              `gorm:"default:0;index:idx_income_source" json:"source_id"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewIncome struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date" binding:"required"`
	Category    string          `json:"category"`
	MemberId    int             `json:"member_id"`
	CompanyId   int             `json:"company_id"`
}

func CreateIncome(ctx context.Context, input *NewIncome) (*Income, error) {

	income := Income{
		Description: input.Description,
		Amount:      input.Amount,
		Date:        input.Date,
		Category:    input.Category,
		MemberId:    input.MemberId,
		CompanyId:   input.CompanyId,
		SourceType:  LedgerSourceManual,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&income).Error; err != nil {
		return nil, err
	}
	return &income, nil
}

func UpdateIncome(ctx context.Context, id int, input *NewIncome) (*Income, error) {
	income, err := utils.FetchModel[Income](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&income).
		Updates(map[string]interface{}{
			"Description": input.Description,
			"Amount":      input.Amount,
			"Date":        input.Date,
			"Category":    input.Category,
			"MemberId":    input.MemberId,
			"CompanyId":   input.CompanyId,
		}).Error; err != nil {
		return nil, err
	}
	return income, nil
}

func DeleteIncome(ctx context.Context, id int) (*Income, error) {
	income, err := utils.FetchModel[Income](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&income).Error; err != nil {
		return nil, err
	}
	return income, nil
}

func GetIncome(ctx context.Context, id int) (*Income, error) {
	return utils.FetchModel[Income](ctx, id)
}

func GetIncomes(ctx context.Context, from *time.Time, until *time.Time, category *string) ([]*Income, error) {
	db := config.GetDB()
	var results []*Income

	dbCtx := db.WithContext(ctx)
	if from != nil {
		dbCtx = dbCtx.Where("date >= ?", *from)
	}
	if until != nil {
		dbCtx = dbCtx.Where("date <= ?", *until)
	}
	if category != nil && len(*category) > 0 {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	// db query
	err := dbCtx.Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureIncomeForSource inserts the ledger row derived from a paid
// contribution or donation, at most once per source record. The real
// exactly-once guard is upstream: only the delivery that wins the
// compare-and-set status transition calls this at all. The existence check
// here is a second line against manual replays and admin mark-paid racing a
// webhook.
func EnsureIncomeForSource(ctx context.Context, sourceType LedgerSourceType, sourceId int, income *Income) (bool, error) {
	count, err := utils.ResourceCountWhere[Income](ctx, "source_type = ? AND source_id = ?", sourceType, sourceId)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	income.SourceType = sourceType
	income.SourceId = sourceId

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(income).Error; err != nil {
		return false, err
	}
	return true, nil
}
