package repository

import (
	"errors"

	"gorm.io/gorm"

	"kinobot/internal/models"
)

// MovieRepository handles movie database operations.
type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Put creates the movie or overwrites title and file id of the existing code.
func (r *MovieRepository) Put(movie *models.Movie) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Movie
		err := tx.Where("code = ?", movie.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(movie).Error
		}
		if err != nil {
			return err
		}
		movie.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"title":   movie.Title,
			"file_id": movie.FileID,
		}).Error
	})
}

// Get returns the movie stored under code.
func (r *MovieRepository) Get(code string) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.Where("code = ?", code).First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &movie, nil
}

// List returns movies in the order they were first added.
func (r *MovieRepository) List() ([]models.Movie, error) {
	var movies []models.Movie
	err := r.db.Order("id ASC").Find(&movies).Error
	return movies, err
}

// Delete removes the movie with the given code.
func (r *MovieRepository) Delete(code string) (bool, error) {
	res := r.db.Where("code = ?", code).Delete(&models.Movie{})
	return res.RowsAffected > 0, res.Error
}

func (r *MovieRepository) Count() (int, error) {
	var count int64
	err := r.db.Model(&models.Movie{}).Count(&count).Error
	return int(count), err
}
