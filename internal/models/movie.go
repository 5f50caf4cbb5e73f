package models

import "time"

// Movie maps a user-facing code to a previously uploaded video.
// FileID is Telegram's file_id and is re-sent without re-uploading bytes.
type Movie struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Code      string    `gorm:"column:code;size:64;uniqueIndex" json:"-"`
	Title     string    `gorm:"column:title;size:500" json:"title"`
	FileID    string    `gorm:"column:file_id;size:255" json:"file_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Movie) TableName() string {
	return "movies"
}
