// Package catalog holds the movie catalog: codes chosen by admins mapped to
// previously uploaded videos.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"kinobot/internal/models"
	"kinobot/internal/repository"
)

// ErrInvalidMovie is returned when a movie is missing a field.
var ErrInvalidMovie = errors.New("movie code, title and file id are required")

// Entry is one line of the admin movie list.
type Entry struct {
	Code  string
	Title string
}

// Catalog wraps a MovieStore with the lookup rules users are held to.
type Catalog struct {
	movies repository.MovieStore
}

func New(movies repository.MovieStore) *Catalog {
	return &Catalog{movies: movies}
}

// Add stores the movie, replacing any movie that already uses the code.
func (c *Catalog) Add(code, title, fileID string) (*models.Movie, error) {
	code = strings.TrimSpace(code)
	title = strings.TrimSpace(title)
	if code == "" || title == "" || fileID == "" {
		return nil, ErrInvalidMovie
	}
	movie := &models.Movie{Code: code, Title: title, FileID: fileID}
	if err := c.movies.Put(movie); err != nil {
		return nil, fmt.Errorf("store movie %s: %w", code, err)
	}
	return movie, nil
}

// Get returns the movie for code. A miss is (nil, false, nil).
func (c *Catalog) Get(code string) (*models.Movie, bool, error) {
	movie, err := c.movies.Get(strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return movie, true, nil
}

// List returns (code, title) pairs in insertion order.
func (c *Catalog) List() ([]Entry, error) {
	movies, err := c.movies.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(movies))
	for _, m := range movies {
		entries = append(entries, Entry{Code: m.Code, Title: m.Title})
	}
	return entries, nil
}

// Remove deletes the movie and reports whether it existed.
func (c *Catalog) Remove(code string) (bool, error) {
	return c.movies.Delete(strings.TrimSpace(code))
}

func (c *Catalog) Count() (int, error) {
	return c.movies.Count()
}

// IsLookupCode reports whether text is accepted as a user lookup: ASCII
// digits only. Admin codes go through the same check, so every stored code
// is reachable, but "07" and "7" stay distinct.
func IsLookupCode(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

// Caption is the text sent with a movie video.
func Caption(m *models.Movie) string {
	return fmt.Sprintf("🎬 %s (ID: %s)", m.Title, m.Code)
}
