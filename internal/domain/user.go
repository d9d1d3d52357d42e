package domain

import "time"

type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// User is the identity referenced by progress and comments. Accounts, sessions
// and profiles live with the identity provider.
type User struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex" json:"email"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	IsAdmin     bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) Role() UserRole {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}
