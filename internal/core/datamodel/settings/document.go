package settings

import "time"

// Document is one row of settings_documents; body holds the JSON document verbatim.
type Document struct {
	Key       string    `gorm:"column:doc_key;primaryKey;size:64"`
	Body      string    `gorm:"column:body;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (Document) TableName() string {
	return "settings_documents"
}
