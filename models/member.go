package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

// Member dates are stored as text: imports pass unparseable dates through
// unmodified instead of rejecting the row, so the column cannot be a DATE.
type Member struct {
	ID             int            `gorm:"primary_key" json:"id"`
	FirstName      string         `gorm:"size:100;not null" json:"first_name" binding:"required"`
	LastName       string         `gorm:"size:100;not null" json:"last_name" binding:"required"`
	Email          string         `gorm:"size:255;index" json:"email"`
	Phone          string         `gorm:"size:50" json:"phone"`
	Address        string         `gorm:"size:255" json:"address"`
	PostalCode     string         `gorm:"size:20" json:"postal_code"`
	City           string         `gorm:"size:100" json:"city"`
	Iban           string         `gorm:"size:34" json:"iban"`
	BirthDate      string         `gorm:"size:20" json:"birth_date"`
	MemberSince    string         `gorm:"size:20" json:"member_since"`
	MembershipType MembershipType `gorm:"size:20;default:'Regular'" json:"membership_type"`
	CompanyId      int            `gorm:"index" json:"company_id"`
	Segments       string         `gorm:"size:255" json:"segments"`
	Notes          string         `gorm:"type:text" json:"notes"`
	Tags           []Tag          `gorm:"many2many:member_tags" json:"tags"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMember struct {
	FirstName      string         `json:"first_name" binding:"required"`
	LastName       string         `json:"last_name" binding:"required"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	PostalCode     string         `json:"postal_code"`
	City           string         `json:"city"`
	Iban           string         `json:"iban"`
	BirthDate      string         `json:"birth_date"`
	MemberSince    string         `json:"member_since"`
	MembershipType MembershipType `json:"membership_type"`
	CompanyId      int            `json:"company_id"`
	Segments       []MemberSegment `json:"segments"`
	Notes          string         `json:"notes"`
	TagIds         []int          `json:"tag_ids"`
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m *Member) HasSegment(segment MemberSegment) bool {
	for _, s := range strings.Split(m.Segments, ",") {
		if MemberSegment(strings.TrimSpace(s)) == segment {
			return true
		}
	}
	return false
}

func joinSegments(segments []MemberSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, string(s))
	}
	return strings.Join(utils.UniqueSlice(parts), ",")
}

// validate input for both create & update. (id = 0 for create)
func (input *NewMember) validate(ctx context.Context, id int) error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	for _, segment := range input.Segments {
		if _, err := ParseMemberSegment(string(segment)); err != nil {
			return err
		}
	}
	if input.CompanyId > 0 {
		if err := utils.ValidateResourceId[Company](ctx, input.CompanyId); err != nil {
			return errors.New("company not found")
		}
	}
	if len(input.TagIds) > 0 {
		if err := utils.ValidateResourcesId[Tag](ctx, input.TagIds); err != nil {
			return errors.New("tag not found")
		}
	}
	return nil
}

func fetchTags(ctx context.Context, tagIds []int) ([]Tag, error) {
	if len(tagIds) == 0 {
		return []Tag{}, nil
	}
	db := config.GetDB()
	var tags []Tag
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(tagIds)).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	tags, err := fetchTags(ctx, input.TagIds)
	if err != nil {
		return nil, err
	}

	membershipType := input.MembershipType
	if membershipType == "" {
		membershipType = MembershipTypeRegular
	}

	member := Member{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		PostalCode:     input.PostalCode,
		City:           input.City,
		Iban:           input.Iban,
		BirthDate:      utils.NormalizeDate(input.BirthDate),
		MemberSince:    utils.NormalizeDate(input.MemberSince),
		MembershipType: membershipType,
		CompanyId:      input.CompanyId,
		Segments:       joinSegments(input.Segments),
		Notes:          input.Notes,
		Tags:           tags,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func UpdateMember(ctx context.Context, id int, input *NewMember) (*Member, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := fetchTags(ctx, input.TagIds)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	// db action
	if err = tx.WithContext(ctx).Model(&member).
		Updates(map[string]interface{}{
			"FirstName":      input.FirstName,
			"LastName":       input.LastName,
			"Email":          input.Email,
			"Phone":          input.Phone,
			"Address":        input.Address,
			"PostalCode":     input.PostalCode,
			"City":           input.City,
			"Iban":           input.Iban,
			"BirthDate":      utils.NormalizeDate(input.BirthDate),
			"MemberSince":    utils.NormalizeDate(input.MemberSince),
			"MembershipType": input.MembershipType,
			"CompanyId":      input.CompanyId,
			"Segments":       joinSegments(input.Segments),
			"Notes":          input.Notes,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.WithContext(ctx).Model(&member).
		Association("Tags").Replace(&tags); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return member, nil
}

func DeleteMember(ctx context.Context, id int) (*Member, error) {
	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&member).Association("Tags").Clear(); err != nil {
		tx.Rollback()
		return nil, err
	}
	// db action
	if err := tx.WithContext(ctx).Delete(&member).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return member, nil
}

func GetMember(ctx context.Context, id int) (*Member, error) {
	return utils.FetchModel[Member](ctx, id, "Tags")
}

func GetMembers(ctx context.Context, name *string, segment *MemberSegment, tagId *int) ([]*Member, error) {
	db := config.GetDB()
	var results []*Member

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		like := "%" + *name + "%"
		// name search feeds the lookup box; cap it like any other search
		dbCtx = dbCtx.Where("first_name LIKE ? OR last_name LIKE ?", like, like).Limit(config.SearchLimit)
	}
	if segment != nil {
		dbCtx = dbCtx.Where("FIND_IN_SET(?, segments) > 0", string(*segment))
	}
	if tagId != nil {
		dbCtx = dbCtx.Joins("JOIN member_tags ON member_tags.member_id = members.id AND member_tags.tag_id = ?", *tagId)
	}
	// db query
	err := dbCtx.Preload("Tags").Order("last_name, first_name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
