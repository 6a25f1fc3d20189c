package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

type Tag struct {
	ID    int    `gorm:"primary_key" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name" binding:"required"`
	Color string `gorm:"size:20" json:"color"`
}

type NewTag struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewTag) validate(ctx context.Context, id int) error {
	// name
	return utils.ValidateUnique[Tag](ctx, "name", input.Name, id)
}

func CreateTag(ctx context.Context, input *NewTag) (*Tag, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	tag := Tag{
		Name:  input.Name,
		Color: input.Color,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Tag]()
	return &tag, nil
}

func UpdateTag(ctx context.Context, id int, input *NewTag) (*Tag, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	tag, err := utils.FetchModel[Tag](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&tag).
		Updates(map[string]interface{}{
			"Name":  input.Name,
			"Color": input.Color,
		}).Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Tag]()
	return tag, nil
}

func DeleteTag(ctx context.Context, id int) (*Tag, error) {
	tag, err := utils.FetchModel[Tag](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Exec("DELETE FROM member_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// db action
	if err := tx.WithContext(ctx).Delete(&tag).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	utils.ClearRedisList[Tag]()
	return tag, nil
}

func GetTag(ctx context.Context, id int) (*Tag, error) {
	return utils.FetchModel[Tag](ctx, id)
}

func GetTags(ctx context.Context) ([]*Tag, error) {
	return ListAllResource[Tag](ctx, "name")
}

// AttachTagToMember adds a tag to a member, ignoring duplicates.
func AttachTagToMember(ctx context.Context, memberId int, tagId int) error {
	member, err := utils.FetchModel[Member](ctx, memberId)
	if err != nil {
		return err
	}
	tag, err := utils.FetchModel[Tag](ctx, tagId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(&member).Association("Tags").Append(tag)
}

func DetachTagFromMember(ctx context.Context, memberId int, tagId int) error {
	member, err := utils.FetchModel[Member](ctx, memberId)
	if err != nil {
		return err
	}
	tag, err := utils.FetchModel[Tag](ctx, tagId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&member).Association("Tags").Delete(tag); err != nil {
		return err
	}
	return nil
}

// MembersForTags returns the distinct members carrying any of the tags.
// Used for mailing recipient selection.
func MembersForTags(ctx context.Context, tagIds []int) ([]*Member, error) {
	if len(tagIds) == 0 {
		return nil, errors.New("at least one tag is required")
	}

	db := config.GetDB()
	var results []*Member
	err := db.WithContext(ctx).
		Joins("JOIN member_tags ON member_tags.member_id = members.id").
		Where("member_tags.tag_id IN ?", utils.UniqueSlice(tagIds)).
		Distinct().
		Order("last_name, first_name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
