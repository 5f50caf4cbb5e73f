package repository

import (
	"errors"

	"gorm.io/gorm"

	"kinobot/internal/models"
)

// ChannelRepository handles the mandatory channel list and the invite link cache.
type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// List returns channels in the order they were added.
func (r *ChannelRepository) List() ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Order("seq ASC").Find(&channels).Error
	return channels, err
}

func (r *ChannelRepository) Add(ch *models.Channel) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Channel{}).Where("channel_id = ?", ch.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := r.db.Create(ch).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *ChannelRepository) Remove(id string) (bool, error) {
	res := r.db.Where("channel_id = ?", id).Delete(&models.Channel{})
	return res.RowsAffected > 0, res.Error
}

// InviteLinkRepository caches resolved invite links.
type InviteLinkRepository struct {
	db *gorm.DB
}

func NewInviteLinkRepository(db *gorm.DB) *InviteLinkRepository {
	return &InviteLinkRepository{db: db}
}

func (r *InviteLinkRepository) Get(channelID string) (string, error) {
	var link models.InviteLink
	if err := r.db.Where("channel_id = ?", channelID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return link.URL, nil
}

func (r *InviteLinkRepository) Put(channelID, url string) error {
	return r.db.Save(&models.InviteLink{ChannelID: channelID, URL: url}).Error
}

// NewGormRepos wires the SQL-backed stores.
func NewGormRepos(db *gorm.DB) *Repos {
	return &Repos{
		User:       NewUserRepository(db),
		Movie:      NewMovieRepository(db),
		Channel:    NewChannelRepository(db),
		InviteLink: NewInviteLinkRepository(db),
	}
}
