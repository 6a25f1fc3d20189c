package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

// User is an admin console account, optionally linked to a member.
type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null;default:'Readonly'" json:"role"`
	MemberId     int       `gorm:"index" json:"member_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Email    string   `json:"email" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role"`
	MemberId int      `json:"member_id"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (input *NewUser) validate(ctx context.Context) error {
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if len(input.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if input.Role != "" {
		if _, err := ParseUserRole(string(input.Role)); err != nil {
			return err
		}
	}
	if input.MemberId > 0 {
		if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
			return errors.New("member not found")
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleReadonly
	}

	user := User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         role,
		MemberId:     input.MemberId,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		// unique indexes on username and email
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("an account with this username or email already exists")
		}
		return nil, err
	}
	return &user, nil
}

func DeleteUser(ctx context.Context, id int) (*User, error) {
	if currentId, ok := utils.GetUserIdFromContext(ctx); ok && currentId == id {
		return nil, errors.New("cannot delete your own account")
	}

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Delete(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func GetUsers(ctx context.Context) ([]*User, error) {
	return utils.FetchAllModels[User](ctx)
}

// Login verifies credentials and returns a signed token.
func Login(ctx context.Context, input *LoginInput) (string, *User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error; err != nil {
		return "", nil, errors.New("invalid username or password")
	}
	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return "", nil, errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role), user.MemberId)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// UpsertAdminUser creates or refreshes the seeded admin account.
func UpsertAdminUser(ctx context.Context, username, email, password string) (*User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var user User
	err = db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		if err := db.WithContext(ctx).Model(&user).
			Updates(map[string]interface{}{
				"Email":        email,
				"PasswordHash": string(hashed),
				"Role":         UserRoleAdmin,
			}).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	user = User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         UserRoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
