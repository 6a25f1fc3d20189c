package models

import (
	"context"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

// DefaultVatRate is the Dutch high VAT rate, used as the cosmetic average
// rate on invoices without line items.
var DefaultVatRate = decimal.NewFromInt(21)

var decimalOneHundred = decimal.NewFromInt(100)

// RoundMoney rounds a monetary amount to 2 decimals, half up.
// Rounding happens only at the final step of a computation, never per line.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// GetResource reads a model by id, redis cache first, caching the record on
// a miss. Only association-free reads are cached; mutations must clear the
// key via utils.ClearRedisModel.
func GetResource[T any](ctx context.Context, id int) (*T, error) {
	cached, err := utils.RetrieveRedisModel[T](id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	result, err := utils.FetchModel[T](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisModel(id, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAllResource lists a reference-data model, redis cache first,
// caching the result on a miss.
func ListAllResource[T any](ctx context.Context, orders ...string) ([]*T, error) {
	results, err := utils.RetrieveRedisList[T]()
	if err != nil {
		return nil, err
	}
	// if not exists in redis
	if results == nil {
		db := config.GetDB()
		dbCtx := db.WithContext(ctx)
		for _, order := range orders {
			dbCtx = dbCtx.Order(order)
		}
		// db query
		if err = dbCtx.Find(&results).Error; err != nil {
			return nil, err
		}

		// caching the result
		if err := utils.StoreRedisList[T](results); err != nil {
			return nil, err
		}
	}

	return results, nil
}
