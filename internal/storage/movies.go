package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"kinobot/internal/models"
)

type movieRecord struct {
	Title  string `json:"title"`
	FileID string `json:"file_id"`
	// Name is the title key written by older builds.
	Name string `json:"name,omitempty"`
}

// MovieDocument is the movies.json object. Key order in the file follows
// insertion order, which encoding/json maps do not keep.
type MovieDocument struct {
	codes  []string
	byCode map[string]movieRecord
}

func NewMovieDocument() *MovieDocument {
	return &MovieDocument{byCode: make(map[string]movieRecord)}
}

// Put adds or overwrites a movie. An overwrite keeps the original position.
func (d *MovieDocument) Put(code, title, fileID string) {
	if d.byCode == nil {
		d.byCode = make(map[string]movieRecord)
	}
	if _, ok := d.byCode[code]; !ok {
		d.codes = append(d.codes, code)
	}
	d.byCode[code] = movieRecord{Title: title, FileID: fileID}
}

func (d *MovieDocument) Get(code string) (models.Movie, bool) {
	rec, ok := d.byCode[code]
	if !ok {
		return models.Movie{}, false
	}
	return models.Movie{Code: code, Title: rec.Title, FileID: rec.FileID}, true
}

func (d *MovieDocument) Delete(code string) bool {
	if _, ok := d.byCode[code]; !ok {
		return false
	}
	delete(d.byCode, code)
	for i, c := range d.codes {
		if c == code {
			d.codes = append(d.codes[:i], d.codes[i+1:]...)
			break
		}
	}
	return true
}

func (d *MovieDocument) Len() int {
	return len(d.codes)
}

// Movies returns every movie in insertion order.
func (d *MovieDocument) Movies() []models.Movie {
	out := make([]models.Movie, 0, len(d.codes))
	for _, code := range d.codes {
		rec := d.byCode[code]
		out = append(out, models.Movie{Code: code, Title: rec.Title, FileID: rec.FileID})
	}
	return out
}

func (d *MovieDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range d.codes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		rec := d.byCode[code]
		val, err := json.Marshal(movieRecord{Title: rec.Title, FileID: rec.FileID})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *MovieDocument) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("movies document must be an object, got %v", tok)
	}

	d.codes = nil
	d.byCode = make(map[string]movieRecord)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected movie key %v", tok)
		}
		var rec movieRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode movie %q: %w", code, err)
		}
		if rec.Title == "" {
			rec.Title = rec.Name
		}
		d.Put(code, rec.Title, rec.FileID)
	}
	_, err = dec.Token()
	return err
}
