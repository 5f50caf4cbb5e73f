package models

import "time"

// User is a bot subscriber. Rows are created on first /start and are only
// read afterwards, as the broadcast recipient list.
type User struct {
	ChatID    int64     `gorm:"column:chat_id;primaryKey;autoIncrement:false" json:"chat_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
