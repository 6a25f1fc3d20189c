package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"gorm.io/gorm"
)

type Company struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	VatNumber string    `gorm:"size:50" json:"vat_number"`
	Logo      string    `gorm:"size:255" json:"logo"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	VatNumber string `json:"vat_number"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCompany) validate(ctx context.Context, id int) error {
	// name
	if err := utils.ValidateUnique[Company](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	return nil
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	company := Company{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		VatNumber: input.VatNumber,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Company]()
	return &company, nil
}

func UpdateCompany(ctx context.Context, id int, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	company, err := utils.FetchModel[Company](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&company).
		Updates(map[string]interface{}{
			"Name":      input.Name,
			"Email":     input.Email,
			"Phone":     input.Phone,
			"Address":   input.Address,
			"VatNumber": input.VatNumber,
		}).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Company]()
	utils.ClearRedisModel[Company](company.ID)
	return company, nil
}

func DeleteCompany(ctx context.Context, id int) (*Company, error) {
	company, err := utils.FetchModel[Company](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any member is linked to this company
	var count int64
	db := config.GetDB()
	if err = db.WithContext(ctx).Model(&Member{}).
		Where("company_id = ?", company.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("used by member")
	}

	// db action
	if err := db.WithContext(ctx).Delete(&company).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Company]()
	utils.ClearRedisModel[Company](company.ID)
	return company, nil
}

func GetCompany(ctx context.Context, id int) (*Company, error) {
	return GetResource[Company](ctx, id)
}

func GetCompanies(ctx context.Context, name *string) ([]*Company, error) {
	if name == nil || len(*name) == 0 {
		return ListAllResource[Company](ctx, "name")
	}

	db := config.GetDB()
	var results []*Company
	// db query
	err := db.WithContext(ctx).Where("name LIKE ?", "%"+*name+"%").
		Order("name").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SetCompanyLogo uploads a base64-encoded logo (plus thumbnail) to object
// storage and records the object name. A previous logo is removed best-effort.
func SetCompanyLogo(ctx context.Context, id int, imageData string) (*Company, error) {
	company, err := utils.FetchModel[Company](ctx, id)
	if err != nil {
		return nil, err
	}

	objectName := "logos/" + utils.GenerateUniqueFilename() + ".png"
	if err := utils.SaveLogoToGCS(ctx, objectName, imageData); err != nil {
		return nil, err
	}
	if company.Logo != "" {
		_ = utils.DeleteFromGCS(ctx, company.Logo)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&company).Update("Logo", objectName).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Company]()
	utils.ClearRedisModel[Company](company.ID)
	company.Logo = objectName
	return company, nil
}

// FindCompanyByName resolves a company case-insensitively by exact name.
// Used by the CSV import; returns nil without error when not found.
func FindCompanyByName(ctx context.Context, name string) (*Company, error) {
	db := config.GetDB()
	var company Company
	err := db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}
