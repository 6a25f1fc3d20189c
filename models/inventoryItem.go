package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Quantity  int             `gorm:"default:0" json:"quantity"`
	UnitValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_value"`
	Location  string          `gorm:"size:255" json:"location"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryItem struct {
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Location  string          `json:"location"`
	Notes     string          `json:"notes"`
}

func CreateInventoryItem(ctx context.Context, input *NewInventoryItem) (*InventoryItem, error) {

	item := InventoryItem{
		Name:      input.Name,
		Quantity:  input.Quantity,
		UnitValue: input.UnitValue,
		Location:  input.Location,
		Notes:     input.Notes,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateInventoryItem(ctx context.Context, id int, input *NewInventoryItem) (*InventoryItem, error) {
	item, err := utils.FetchModel[InventoryItem](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&item).
		Updates(map[string]interface{}{
			"Name":      input.Name,
			"Quantity":  input.Quantity,
			"UnitValue": input.UnitValue,
			"Location":  input.Location,
			"Notes":     input.Notes,
		}).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func DeleteInventoryItem(ctx context.Context, id int) (*InventoryItem, error) {
	item, err := utils.FetchModel[InventoryItem](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func GetInventoryItem(ctx context.Context, id int) (*InventoryItem, error) {
	return utils.FetchModel[InventoryItem](ctx, id)
}

func GetInventoryItems(ctx context.Context) ([]*InventoryItem, error) {
	return utils.FetchAllModels[InventoryItem](ctx)
}

// TotalInventoryValue sums quantity x unit value over all items.
func TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.Decimal
	err := db.WithContext(ctx).Model(&InventoryItem{}).
		Select("COALESCE(SUM(quantity * unit_value), 0)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
