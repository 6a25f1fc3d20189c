package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

// Mailing is a bulk templated email to a filtered member set. Recipients
// are selected by tags, by segment, or everybody with an email address.
type Mailing struct {
	ID            int           `gorm:"primary_key" json:"id"`
	Subject       string        `gorm:"size:255;not null" json:"subject" binding:"required"`
	BodyHtml      string        `gorm:"type:text;not null" json:"body_html" binding:"required"`
	TagIds        string        `gorm:"size:255" json:"tag_ids"`
	SegmentFilter MemberSegment `gorm:"size:20" json:"segment_filter"`
	Status        MailingStatus `gorm:"size:20;not null;default:'Draft'" json:"status"`
	SentCount     int           `gorm:"default:0" json:"sent_count"`
	FailedCount   int           `gorm:"default:0" json:"failed_count"`
	SentAt        *time.Time    `json:"sent_at"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMailing struct {
	Subject       string        `json:"subject" binding:"required"`
	BodyHtml      string        `json:"body_html" binding:"required"`
	TagIds        []int         `json:"tag_ids"`
	SegmentFilter MemberSegment `json:"segment_filter"`
}

func joinTagIds(tagIds []int) string {
	parts := make([]string, 0, len(tagIds))
	for _, id := range utils.UniqueSlice(tagIds) {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

func (m *Mailing) TagIdList() []int {
	if m.TagIds == "" {
		return nil
	}
	parts := strings.Split(m.TagIds, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (input *NewMailing) validate(ctx context.Context) error {
	if input.SegmentFilter != "" {
		if _, err := ParseMemberSegment(string(input.SegmentFilter)); err != nil {
			return err
		}
	}
	if len(input.TagIds) > 0 {
		if err := utils.ValidateResourcesId[Tag](ctx, input.TagIds); err != nil {
			return errors.New("tag not found")
		}
	}
	return nil
}

func CreateMailing(ctx context.Context, input *NewMailing) (*Mailing, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	mailing := Mailing{
		Subject:       input.Subject,
		BodyHtml:      input.BodyHtml,
		TagIds:        joinTagIds(input.TagIds),
		SegmentFilter: input.SegmentFilter,
		Status:        MailingStatusDraft,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&mailing).Error; err != nil {
		return nil, err
	}
	return &mailing, nil
}

func UpdateMailing(ctx context.Context, id int, input *NewMailing) (*Mailing, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	mailing, err := utils.FetchModel[Mailing](ctx, id)
	if err != nil {
		return nil, err
	}
	if mailing.Status != MailingStatusDraft {
		return nil, errors.New("only draft mailings can be edited")
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&mailing).
		Updates(map[string]interface{}{
			"Subject":       input.Subject,
			"BodyHtml":      input.BodyHtml,
			"TagIds":        joinTagIds(input.TagIds),
			"SegmentFilter": input.SegmentFilter,
		}).Error; err != nil {
		return nil, err
	}
	return mailing, nil
}

func DeleteMailing(ctx context.Context, id int) (*Mailing, error) {
	mailing, err := utils.FetchModel[Mailing](ctx, id)
	if err != nil {
		return nil, err
	}
	if mailing.Status == MailingStatusSending {
		return nil, errors.New("mailing is being sent")
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&mailing).Error; err != nil {
		return nil, err
	}
	return mailing, nil
}

func GetMailing(ctx context.Context, id int) (*Mailing, error) {
	return utils.FetchModel[Mailing](ctx, id)
}

func GetMailings(ctx context.Context) ([]*Mailing, error) {
	db := config.GetDB()
	var results []*Mailing
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MailingRecipients resolves the member set for a mailing: tag match first,
// then segment filter, otherwise all members. Members without an email
// address are dropped here, not at send time.
func MailingRecipients(ctx context.Context, mailing *Mailing) ([]*Member, error) {
	var members []*Member
	var err error

	if tagIds := mailing.TagIdList(); len(tagIds) > 0 {
		members, err = MembersForTags(ctx, tagIds)
	} else if mailing.SegmentFilter != "" {
		segment := mailing.SegmentFilter
		members, err = GetMembers(ctx, nil, &segment, nil)
	} else {
		members, err = GetMembers(ctx, nil, nil, nil)
	}
	if err != nil {
		return nil, err
	}

	withEmail := make([]*Member, 0, len(members))
	for _, m := range members {
		if m.Email != "" {
			withEmail = append(withEmail, m)
		}
	}
	return withEmail, nil
}

// MarkMailingStarted flips a draft to sending; refuses double sends.
func MarkMailingStarted(ctx context.Context, id int) (*Mailing, error) {
	mailing, err := utils.FetchModel[Mailing](ctx, id)
	if err != nil {
		return nil, err
	}
	if mailing.Status != MailingStatusDraft {
		return nil, errors.New("mailing has already been sent")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&mailing).
		Update("Status", MailingStatusSending).Error; err != nil {
		return nil, err
	}
	return mailing, nil
}

func MarkMailingFinished(ctx context.Context, id int, sentCount int, failedCount int) error {
	mailing, err := utils.FetchModel[Mailing](ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	db := config.GetDB()
	return db.WithContext(ctx).Model(&mailing).
		Updates(map[string]interface{}{
			"Status":      MailingStatusSent,
			"SentCount":   sentCount,
			"FailedCount": failedCount,
			"SentAt":      now,
		}).Error
}
