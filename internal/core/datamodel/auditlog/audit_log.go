package auditlog

import "time"

type AuditLog struct {
	ID          string    `gorm:"column:id;primaryKey;size:36"`
	User        string    `gorm:"column:user_name;index;not null"`
	Action      string    `gorm:"column:action;index;not null"`
	Module      string    `gorm:"column:module;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;index;autoCreateTime:false"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
