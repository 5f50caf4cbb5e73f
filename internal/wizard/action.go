package wizard

import "strings"

// Action is one entry of the admin panel.
type Action int

const (
	ActionNone Action = iota
	ActionAddMovie
	ActionListMovies
	ActionDeleteMovie
	ActionAddChannel
	ActionRemoveChannel
	ActionListChannels
	ActionBroadcast
	ActionStats
	ActionCancel
)

// CallbackPrefix starts the callback data of every panel action.
const CallbackPrefix = "admin:"

type actionSpec struct {
	label string
	key   string
}

// panel lists actions in keyboard order. Labels and callback keys come from
// this table only, so a button can never drift from its handler.
var panel = []struct {
	action Action
	spec   actionSpec
}{
	{ActionAddMovie, actionSpec{"🎬 Kino qo‘shish", "add_movie"}},
	{ActionListMovies, actionSpec{"📂 Kino ro‘yxati", "list_movies"}},
	{ActionDeleteMovie, actionSpec{"🗑 Kino o‘chirish", "delete_movie"}},
	{ActionAddChannel, actionSpec{"➕ Kanal qo‘shish", "add_channel"}},
	{ActionRemoveChannel, actionSpec{"➖ Kanal o‘chirish", "remove_channel"}},
	{ActionListChannels, actionSpec{"📡 Kanallar", "list_channels"}},
	{ActionBroadcast, actionSpec{"📢 Hammaga xabar", "broadcast"}},
	{ActionStats, actionSpec{"📊 Statistika", "stats"}},
	{ActionCancel, actionSpec{"❌ Bekor qilish", "cancel"}},
}

// PanelActions returns every action in keyboard order.
func PanelActions() []Action {
	out := make([]Action, 0, len(panel))
	for _, p := range panel {
		out = append(out, p.action)
	}
	return out
}

func (a Action) spec() (actionSpec, bool) {
	for _, p := range panel {
		if p.action == a {
			return p.spec, true
		}
	}
	return actionSpec{}, false
}

// Label is the reply keyboard text of the action.
func (a Action) Label() string {
	s, _ := a.spec()
	return s.label
}

// Callback is the inline button data of the action.
func (a Action) Callback() string {
	s, ok := a.spec()
	if !ok {
		return ""
	}
	return CallbackPrefix + s.key
}

func (a Action) String() string {
	s, ok := a.spec()
	if !ok {
		return "none"
	}
	return s.key
}

// StartsSession reports whether the action waits for further admin input.
func (a Action) StartsSession() bool {
	switch a {
	case ActionAddMovie, ActionDeleteMovie, ActionAddChannel, ActionRemoveChannel, ActionBroadcast:
		return true
	default:
		return false
	}
}

// ActionByLabel maps keyboard text back to its action.
func ActionByLabel(text string) (Action, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ActionNone, false
	}
	for _, p := range panel {
		if p.spec.label == text {
			return p.action, true
		}
	}
	return ActionNone, false
}

// ActionByCallback maps inline button data back to its action.
func ActionByCallback(data string) (Action, bool) {
	key, ok := strings.CutPrefix(strings.TrimSpace(data), CallbackPrefix)
	if !ok {
		return ActionNone, false
	}
	for _, p := range panel {
		if p.spec.key == key {
			return p.action, true
		}
	}
	return ActionNone, false
}
