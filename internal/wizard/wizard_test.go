package wizard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMovieFlow(t *testing.T) {
	m := NewManager()
	const admin = 1

	s := m.Begin(admin, ActionAddMovie)
	require.NotNil(t, s)
	assert.Equal(t, StepMovieCode, m.Step(admin))

	out := m.Feed(admin, Input{Text: "abc"})
	assert.Equal(t, ProblemNeedDigits, out.Problem)
	assert.Equal(t, StepMovieCode, m.Step(admin))

	out = m.Feed(admin, Input{Text: " 42 "})
	require.Equal(t, ProblemNone, out.Problem)
	assert.Equal(t, AwaitMovieTitle{Code: "42"}, out.Next)

	out = m.Feed(admin, Input{VideoFileID: "vid"})
	assert.Equal(t, ProblemNeedText, out.Problem)

	out = m.Feed(admin, Input{Text: "Dune"})
	require.Equal(t, ProblemNone, out.Problem)
	assert.Equal(t, StepMovieMedia, m.Step(admin))

	out = m.Feed(admin, Input{Text: "not a video"})
	assert.Equal(t, ProblemNeedVideo, out.Problem)
	assert.Equal(t, StepMovieMedia, m.Step(admin))

	out = m.Feed(admin, Input{VideoFileID: "vid"})
	assert.Equal(t, ProblemNone, out.Problem)
	assert.Nil(t, out.Next)
	assert.Equal(t, MovieCommit{Code: "42", Title: "Dune", FileID: "vid"}, out.Commit)
	assert.Equal(t, StepIdle, m.Step(admin))
	assert.Zero(t, m.Len())
}

func TestSingleStepForms(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		bad     Input
		problem Problem
		good    Input
		commit  Commit
	}{
		{"delete movie", ActionDeleteMovie, Input{Text: "x1"}, ProblemNeedDigits, Input{Text: "07"}, DeleteMovieCommit{Code: "07"}},
		{"add channel", ActionAddChannel, Input{Text: "kino"}, ProblemBadChannel, Input{Text: " @kino "}, ChannelAddCommit{ID: "@kino"}},
		{"add channel without text", ActionAddChannel, Input{VideoFileID: "v"}, ProblemNeedText, Input{Text: "-1001"}, ChannelAddCommit{ID: "-1001"}},
		{"remove channel", ActionRemoveChannel, Input{Text: "  "}, ProblemNeedText, Input{Text: "@kino"}, ChannelRemoveCommit{ID: "@kino"}},
		{"broadcast", ActionBroadcast, Input{VideoFileID: "v"}, ProblemNeedText, Input{Text: " hi all "}, BroadcastCommit{Text: "hi all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			require.NotNil(t, m.Begin(7, tt.action))

			out := m.Feed(7, tt.bad)
			assert.Equal(t, tt.problem, out.Problem)
			assert.Nil(t, out.Commit)
			_, active := m.Active(7)
			assert.True(t, active)

			out = m.Feed(7, tt.good)
			assert.Equal(t, ProblemNone, out.Problem)
			assert.Equal(t, tt.commit, out.Commit)
			_, active = m.Active(7)
			assert.False(t, active)
		})
	}
}

func TestFeedWithoutSession(t *testing.T) {
	m := NewManager()
	assert.Equal(t, ProblemNoSession, m.Feed(1, Input{Text: "1"}).Problem)
	assert.Equal(t, ProblemNoSession, Advance(nil, Input{}).Problem)
}

func TestBeginReplacesAndNonSessionActionsClear(t *testing.T) {
	m := NewManager()
	m.Begin(1, ActionAddMovie)
	m.Feed(1, Input{Text: "5"})
	require.Equal(t, StepMovieTitle, m.Step(1))

	m.Begin(1, ActionBroadcast)
	assert.Equal(t, StepBroadcastMessage, m.Step(1))

	assert.Nil(t, m.Begin(1, ActionStats))
	assert.Equal(t, StepIdle, m.Step(1))
}

func TestSessionsArePerAdmin(t *testing.T) {
	m := NewManager()
	m.Begin(1, ActionAddMovie)
	m.Begin(2, ActionDeleteMovie)

	assert.Equal(t, StepMovieCode, m.Step(1))
	assert.Equal(t, StepDeleteMovie, m.Step(2))

	assert.True(t, m.Cancel(1))
	assert.False(t, m.Cancel(1))
	assert.Equal(t, StepDeleteMovie, m.Step(2))
	assert.Equal(t, 1, m.Len())
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.Begin(id, ActionAddMovie)
			m.Feed(id, Input{Text: "1"})
			m.Feed(id, Input{Text: "T"})
			m.Feed(id, Input{VideoFileID: "f"})
		}(i)
	}
	wg.Wait()
	assert.Zero(t, m.Len())
}

func TestActionTable(t *testing.T) {
	actions := PanelActions()
	require.Len(t, actions, 9)

	seenLabels := map[string]bool{}
	for _, a := range actions {
		require.NotEmpty(t, a.Label(), a.String())
		assert.False(t, seenLabels[a.Label()], "duplicate label %q", a.Label())
		seenLabels[a.Label()] = true

		byLabel, ok := ActionByLabel(" " + a.Label() + " ")
		require.True(t, ok)
		assert.Equal(t, a, byLabel)

		byCallback, ok := ActionByCallback(a.Callback())
		require.True(t, ok)
		assert.Equal(t, a, byCallback)

		assert.Equal(t, Start(a) != nil, a.StartsSession(), a.String())
	}

	_, ok := ActionByLabel("")
	assert.False(t, ok)
	_, ok = ActionByLabel("hello")
	assert.False(t, ok)
	_, ok = ActionByCallback("add_movie")
	assert.False(t, ok)
	_, ok = ActionByCallback(CallbackPrefix + "nope")
	assert.False(t, ok)

	assert.Equal(t, "none", ActionNone.String())
	assert.Empty(t, ActionNone.Callback())
}
