package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey" db:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" db:"email"`
	Name         string    `gorm:"column:name;not null" db:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" db:"password_hash"`
	Role         string    `gorm:"column:role;not null;index" db:"role"`
	IsActive     bool      `gorm:"column:is_active;default:true" db:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
