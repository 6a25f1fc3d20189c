package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Description string          `gorm:"size:255;not null" json:"description" binding:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date" binding:"required"`
	Category    string          `gorm:"size:100" json:"category"`
	MemberId    int             `gorm:"index" json:"member_id"`
	CompanyId   int             `gorm:"index" json:"company_id"`
	Documents   []*Document     `gorm:"polymorphic:Reference" json:"documents"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date" binding:"required"`
	Category    string          `json:"category"`
	MemberId    int             `json:"member_id"`
	CompanyId   int             `json:"company_id"`
	Documents   []*NewDocument  `json:"documents"`
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {

	documents, err := mapDocuments(ctx, input.Documents)
	if err != nil {
		return nil, err
	}

	expense := Expense{
		Description: input.Description,
		Amount:      input.Amount,
		Date:        input.Date,
		Category:    input.Category,
		MemberId:    input.MemberId,
		CompanyId:   input.CompanyId,
		Documents:   documents,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func UpdateExpense(ctx context.Context, id int, input *NewExpense) (*Expense, error) {
	expense, err := utils.FetchModel[Expense](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&expense).
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
	return expense, nil
}

func DeleteExpense(ctx context.Context, id int) (*Expense, error) {
	expense, err := utils.FetchModel[Expense](ctx, id, "Documents")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Select("Documents").Delete(&expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {
	return utils.FetchModel[Expense](ctx, id, "Documents")
}

func GetExpenses(ctx context.Context, from *time.Time, until *time.Time, category *string) ([]*Expense, error) {
	db := config.GetDB()
	var results []*Expense

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
	err := dbCtx.Preload("Documents").Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
