package report

import "time"

type GeneratedReport struct {
	ID          int64     `gorm:"primaryKey"`
	Type        string    `gorm:"column:type;index;not null"`
	Title       string    `gorm:"column:title;not null"`
	Params      string    `gorm:"column:params"`
	GeneratedAt time.Time `gorm:"column:generated_at;index;not null"`
	GeneratedBy string    `gorm:"column:generated_by;not null"`
	RequestedBy string    `gorm:"column:requested_by"`
}

func (GeneratedReport) TableName() string {
	return "generated_reports"
}
