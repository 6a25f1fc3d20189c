package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Year      int             `gorm:"not null;uniqueIndex:idx_budget_year_category" json:"year" binding:"required"`
	Category  string          `gorm:"size:100;not null;uniqueIndex:idx_budget_year_category" json:"category" binding:"required"`
	Planned   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"planned"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBudget struct {
	Year     int             `json:"year" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Planned  decimal.Decimal `json:"planned"`
}

// BudgetLineResponse is a budget row with the realized amounts joined in
// from the ledger.
type BudgetLineResponse struct {
	Year          int             `json:"year"`
	Category      string          `json:"category"`
	Planned       decimal.Decimal `json:"planned"`
	ActualIncome  decimal.Decimal `json:"actual_income"`
	ActualExpense decimal.Decimal `json:"actual_expense"`
}

func CreateBudget(ctx context.Context, input *NewBudget) (*Budget, error) {

	budget := Budget{
		Year:     input.Year,
		Category: input.Category,
		Planned:  input.Planned,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&budget).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("budget for this year and category already exists")
		}
		return nil, err
	}
	return &budget, nil
}

func UpdateBudget(ctx context.Context, id int, input *NewBudget) (*Budget, error) {
	budget, err := utils.FetchModel[Budget](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&budget).
		Updates(map[string]interface{}{
			"Year":     input.Year,
			"Category": input.Category,
			"Planned":  input.Planned,
		}).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("budget for this year and category already exists")
		}
		return nil, err
	}
	return budget, nil
}

func DeleteBudget(ctx context.Context, id int) (*Budget, error) {
	budget, err := utils.FetchModel[Budget](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgetReport assembles planned vs realized per category for a year.
// Realized amounts come from the ledger in separate queries and are joined
// in application code.
func GetBudgetReport(ctx context.Context, year int) ([]*BudgetLineResponse, error) {
	db := config.GetDB()

	var budgets []*Budget
	if err := db.WithContext(ctx).Where("year = ?", year).Order("category").Find(&budgets).Error; err != nil {
		return nil, err
	}

	type categorySum struct {
		Category string
		Total    decimal.Decimal
	}

	var incomeSums []categorySum
	if err := db.WithContext(ctx).Model(&Income{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("YEAR(date) = ?", year).
		Group("category").Scan(&incomeSums).Error; err != nil {
		return nil, err
	}
	var expenseSums []categorySum
	if err := db.WithContext(ctx).Model(&Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("YEAR(date) = ?", year).
		Group("category").Scan(&expenseSums).Error; err != nil {
		return nil, err
	}

	incomeByCategory := make(map[string]decimal.Decimal, len(incomeSums))
	for _, s := range incomeSums {
		incomeByCategory[s.Category] = s.Total
	}
	expenseByCategory := make(map[string]decimal.Decimal, len(expenseSums))
	for _, s := range expenseSums {
		expenseByCategory[s.Category] = s.Total
	}

	report := make([]*BudgetLineResponse, 0, len(budgets))
	for _, b := range budgets {
		report = append(report, &BudgetLineResponse{
			Year:          b.Year,
			Category:      b.Category,
			Planned:       b.Planned,
			ActualIncome:  incomeByCategory[b.Category],
			ActualExpense: expenseByCategory[b.Category],
		})
	}
	return report, nil
}
