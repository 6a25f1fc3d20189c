package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"gorm.io/gorm/clause"
)

type Event struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	Title         string              `gorm:"size:255;not null" json:"title" binding:"required"`
	Description   string              `gorm:"type:text" json:"description"`
	EventDate     time.Time           `gorm:"not null;index" json:"event_date" binding:"required"`
	Location      string              `gorm:"size:255" json:"location"`
	Capacity      int                 `gorm:"default:0" json:"capacity"`
	Registrations []EventRegistration `gorm:"foreignKey:EventId" json:"registrations"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type EventRegistration struct {
	ID         int        `gorm:"primary_key" json:"id"`
	EventId    int        `gorm:"not null;uniqueIndex:idx_registration_event_member" json:"event_id" binding:"required"`
	MemberId   int        `gorm:"not null;uniqueIndex:idx_registration_event_member" json:"member_id" binding:"required"`
	GuestCount int        `gorm:"default:0" json:"guest_count"`
	CanceledAt *time.Time `json:"canceled_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type NewEvent struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
}

type NewEventRegistration struct {
	EventId    int `json:"event_id" binding:"required"`
	MemberId   int `json:"member_id" binding:"required"`
	GuestCount int `json:"guest_count"`
}

func CreateEvent(ctx context.Context, input *NewEvent) (*Event, error) {

	event := Event{
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
		Location:    input.Location,
		Capacity:    input.Capacity,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func UpdateEvent(ctx context.Context, id int, input *NewEvent) (*Event, error) {
	event, err := utils.FetchModel[Event](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err = db.WithContext(ctx).Model(&event).
		Updates(map[string]interface{}{
			"Title":       input.Title,
			"Description": input.Description,
			"EventDate":   input.EventDate,
			"Location":    input.Location,
			"Capacity":    input.Capacity,
		}).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func DeleteEvent(ctx context.Context, id int) (*Event, error) {
	event, err := utils.FetchModel[Event](ctx, id, "Registrations")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Select("Registrations").Delete(&event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func GetEvent(ctx context.Context, id int) (*Event, error) {
	return utils.FetchModel[Event](ctx, id, "Registrations")
}

func GetEvents(ctx context.Context, upcomingOnly bool) ([]*Event, error) {
	db := config.GetDB()
	var results []*Event

	dbCtx := db.WithContext(ctx)
	if upcomingOnly {
		dbCtx = dbCtx.Where("event_date >= ?", time.Now())
	}
	// db query
	err := dbCtx.Preload("Registrations").Order("event_date").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RegisterForEvent enforces capacity inside the transaction. The event row
// is read FOR UPDATE, so concurrent registrations for the same event
// serialize on the row lock and the seat count sees every committed
// registration before it.
func RegisterForEvent(ctx context.Context, input *NewEventRegistration) (*EventRegistration, error) {

	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return nil, errors.New("member not found")
	}
	if input.GuestCount < 0 {
		return nil, errors.New("guest count cannot be negative")
	}

	db := config.GetDB()
	tx := db.Begin()

	var event Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, input.EventId).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("event not found")
	}

	if event.Capacity > 0 {
		var taken int64
		if err := tx.WithContext(ctx).Model(&EventRegistration{}).
			Where("event_id = ? AND canceled_at IS NULL", event.ID).
			Select("COALESCE(SUM(1 + guest_count), 0)").Scan(&taken).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if taken+int64(1+input.GuestCount) > int64(event.Capacity) {
			tx.Rollback()
			return nil, errors.New("event is full")
		}
	}

	registration := EventRegistration{
		EventId:    input.EventId,
		MemberId:   input.MemberId,
		GuestCount: input.GuestCount,
	}
	// db action
	if err := tx.WithContext(ctx).Create(&registration).Error; err != nil {
		tx.Rollback()
		if utils.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("member is already registered for this event")
		}
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func CancelEventRegistration(ctx context.Context, id int) (*EventRegistration, error) {
	registration, err := utils.FetchModel[EventRegistration](ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.CanceledAt != nil {
		return registration, nil
	}

	now := time.Now()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&registration).
		Update("CanceledAt", now).Error; err != nil {
		return nil, err
	}
	registration.CanceledAt = &now
	return registration, nil
}
