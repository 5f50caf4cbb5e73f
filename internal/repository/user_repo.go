package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kinobot/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Add inserts the chat id unless it is already known.
func (r *UserRepository) Add(chatID int64) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.User{ChatID: chatID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IDs returns every registered chat id.
func (r *UserRepository) IDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&models.User{}).Order("chat_id ASC").Pluck("chat_id", &ids).Error
	return ids, err
}

// Count returns the number of registered users.
func (r *UserRepository) Count() (int, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return int(count), err
}
