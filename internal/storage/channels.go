package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"kinobot/internal/models"
)

// ChannelShape names the layout a channels.json file was written in.
type ChannelShape int

const (
	ShapeEmpty ChannelShape = iota
	// ShapeTagged is the current layout: [{"id": "@x", "type": "public"}].
	ShapeTagged
	// ShapeFlat is a legacy list of bare ids: ["@x", "-100123"].
	ShapeFlat
	// ShapeSplit is a legacy {"public": [...], "private": [...]} document.
	ShapeSplit
)

func (s ChannelShape) String() string {
	switch s {
	case ShapeTagged:
		return "tagged"
	case ShapeFlat:
		return "flat"
	case ShapeSplit:
		return "split"
	default:
		return "empty"
	}
}

// Legacy reports whether the shape has to be rewritten in the tagged layout.
func (s ChannelShape) Legacy() bool {
	return s == ShapeFlat || s == ShapeSplit
}

// TaggedChannel is one entry of the current channels.json layout.
type TaggedChannel struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type splitChannels struct {
	Public  []string `json:"public"`
	Private []string `json:"private"`
}

// DecodeChannels parses any of the known channels.json layouts into an
// ordered, de-duplicated channel list.
func DecodeChannels(raw []byte) ([]models.Channel, ChannelShape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ShapeEmpty, nil
	}

	var out []models.Channel
	seen := make(map[string]bool)
	add := func(id string, kind models.ChannelKind) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		if kind == "" {
			kind = models.InferChannelKind(id)
		}
		out = append(out, models.Channel{ID: id, Kind: kind})
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, ShapeEmpty, fmt.Errorf("decode channel list: %w", err)
		}
		shape := ShapeTagged
		for _, item := range items {
			var id string
			if err := json.Unmarshal(item, &id); err == nil {
				shape = ShapeFlat
				add(id, "")
				continue
			}
			var tc TaggedChannel
			if err := json.Unmarshal(item, &tc); err != nil {
				return nil, ShapeEmpty, fmt.Errorf("decode channel entry %s: %w", string(item), err)
			}
			add(tc.ID, parseKind(tc.Type))
		}
		if len(items) == 0 {
			shape = ShapeEmpty
		}
		return out, shape, nil

	case '{':
		var doc splitChannels
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, ShapeEmpty, fmt.Errorf("decode channel document: %w", err)
		}
		for _, id := range doc.Public {
			add(id, models.ChannelPublic)
		}
		for _, id := range doc.Private {
			add(id, models.ChannelPrivate)
		}
		return out, ShapeSplit, nil
	}

	return nil, ShapeEmpty, fmt.Errorf("unrecognized channels document starting with %q", raw[0])
}

// EncodeChannels returns the tagged layout for the given channels.
func EncodeChannels(channels []models.Channel) []TaggedChannel {
	out := make([]TaggedChannel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, TaggedChannel{ID: ch.ID, Type: string(ch.Kind)})
	}
	return out
}

func parseKind(s string) models.ChannelKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return models.ChannelPublic
	case "private":
		return models.ChannelPrivate
	}
	return ""
}
