package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"kinobot/internal/models"
	"kinobot/internal/storage"
)

// The JSON stores keep their document in memory behind a mutex and write
// the whole file back after every change.

// JSONUserStore persists users.json as {"<chat_id>": true}.
type JSONUserStore struct {
	store *storage.Store
	mu    sync.RWMutex
	ids   map[int64]bool
}

func NewJSONUserStore(store *storage.Store) (*JSONUserStore, error) {
	s := &JSONUserStore{store: store, ids: make(map[int64]bool)}
	raw, ok, err := store.LoadRaw(storage.UsersFile)
	if err != nil || !ok {
		return s, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []int64
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", storage.UsersFile, err)
		}
		for _, id := range list {
			s.ids[id] = true
		}
		return s, nil
	}

	var doc map[string]bool
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.UsersFile, err)
	}
	for key := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		s.ids[id] = true
	}
	return s, nil
}

func (s *JSONUserStore) Add(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[chatID] {
		return false, nil
	}
	s.ids[chatID] = true
	if err := s.saveLocked(); err != nil {
		delete(s.ids, chatID)
		return false, err
	}
	return true, nil
}

func (s *JSONUserStore) IDs() ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *JSONUserStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

func (s *JSONUserStore) saveLocked() error {
	doc := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		doc[strconv.FormatInt(id, 10)] = true
	}
	return s.store.Save(storage.UsersFile, doc)
}

// JSONMovieStore persists movies.json in insertion order.
type JSONMovieStore struct {
	store *storage.Store
	mu    sync.RWMutex
	doc   *storage.MovieDocument
}

func NewJSONMovieStore(store *storage.Store) (*JSONMovieStore, error) {
	doc := storage.NewMovieDocument()
	if _, err := store.Load(storage.MoviesFile, doc); err != nil {
		return nil, err
	}
	return &JSONMovieStore{store: store, doc: doc}, nil
}

func (s *JSONMovieStore) Put(movie *models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.doc.Get(movie.Code)
	s.doc.Put(movie.Code, movie.Title, movie.FileID)
	if err := s.store.Save(storage.MoviesFile, s.doc); err != nil {
		if existed {
			s.doc.Put(prev.Code, prev.Title, prev.FileID)
		} else {
			s.doc.Delete(movie.Code)
		}
		return err
	}
	return nil
}

func (s *JSONMovieStore) Get(code string) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movie, ok := s.doc.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	return &movie, nil
}

func (s *JSONMovieStore) List() ([]models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Movies(), nil
}

func (s *JSONMovieStore) Delete(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.doc.Get(code)
	if !ok {
		return false, nil
	}
	s.doc.Delete(code)
	if err := s.store.Save(storage.MoviesFile, s.doc); err != nil {
		// Restored at the end of the list; the file still has the old order.
		s.doc.Put(prev.Code, prev.Title, prev.FileID)
		return false, err
	}
	return true, nil
}

func (s *JSONMovieStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Len(), nil
}

// JSONChannelStore persists channels.json in the tagged layout. Legacy
// layouts are read once and rewritten on load.
type JSONChannelStore struct {
	store    *storage.Store
	mu       sync.RWMutex
	channels []models.Channel
	imported storage.ChannelShape
}

func NewJSONChannelStore(store *storage.Store) (*JSONChannelStore, error) {
	s := &JSONChannelStore{store: store}
	raw, ok, err := store.LoadRaw(storage.ChannelsFile)
	if err != nil || !ok {
		return s, err
	}

	channels, shape, err := storage.DecodeChannels(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", storage.ChannelsFile, err)
	}
	s.channels = channels
	if shape.Legacy() {
		if err := store.Save(storage.ChannelsFile, storage.EncodeChannels(channels)); err != nil {
			return nil, fmt.Errorf("rewrite legacy %s: %w", storage.ChannelsFile, err)
		}
		s.imported = shape
	}
	return s, nil
}

// ImportedFrom reports the legacy layout rewritten on load, or ShapeEmpty.
func (s *JSONChannelStore) ImportedFrom() storage.ChannelShape {
	return s.imported
}

func (s *JSONChannelStore) List() ([]models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Channel, len(s.channels))
	copy(out, s.channels)
	return out, nil
}

func (s *JSONChannelStore) Add(ch *models.Channel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.channels {
		if existing.ID == ch.ID {
			return false, nil
		}
	}
	next := append(append([]models.Channel(nil), s.channels...), *ch)
	if err := s.store.Save(storage.ChannelsFile, storage.EncodeChannels(next)); err != nil {
		return false, err
	}
	s.channels = next
	return true, nil
}

func (s *JSONChannelStore) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		if ch.ID != id {
			next = append(next, ch)
		}
	}
	if len(next) == len(s.channels) {
		return false, nil
	}
	if err := s.store.Save(storage.ChannelsFile, storage.EncodeChannels(next)); err != nil {
		return false, err
	}
	s.channels = next
	return true, nil
}

// JSONInviteLinkStore persists invite_links.json as {"<channel_id>": "<url>"}.
type JSONInviteLinkStore struct {
	store *storage.Store
	mu    sync.RWMutex
	links map[string]string
}

func NewJSONInviteLinkStore(store *storage.Store) (*JSONInviteLinkStore, error) {
	links := make(map[string]string)
	if _, err := store.Load(storage.InviteLinksFile, &links); err != nil {
		return nil, err
	}
	if links == nil {
		links = make(map[string]string)
	}
	return &JSONInviteLinkStore{store: store, links: links}, nil
}

func (s *JSONInviteLinkStore) Get(channelID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	url, ok := s.links[channelID]
	if !ok || url == "" {
		return "", ErrNotFound
	}
	return url, nil
}

func (s *JSONInviteLinkStore) Put(channelID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.links == nil {
		s.links = make(map[string]string)
	}
	prev, existed := s.links[channelID]
	s.links[channelID] = url
	if err := s.store.Save(storage.InviteLinksFile, s.links); err != nil {
		if existed {
			s.links[channelID] = prev
		} else {
			delete(s.links, channelID)
		}
		return err
	}
	return nil
}

// NewJSONRepos loads every document from store and wires the file-backed stores.
func NewJSONRepos(store *storage.Store) (*Repos, error) {
	users, err := NewJSONUserStore(store)
	if err != nil {
		return nil, err
	}
	movies, err := NewJSONMovieStore(store)
	if err != nil {
		return nil, err
	}
	channels, err := NewJSONChannelStore(store)
	if err != nil {
		return nil, err
	}
	links, err := NewJSONInviteLinkStore(store)
	if err != nil {
		return nil, err
	}
	return &Repos{User: users, Movie: movies, Channel: channels, InviteLink: links}, nil
}
