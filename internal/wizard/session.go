// Package wizard implements the multi-step admin forms: adding a movie,
// removing one, adding or removing a channel and composing a broadcast.
package wizard

import (
	"strings"

	"kinobot/internal/catalog"
	"kinobot/internal/channel"
)

// Step names the state a session is waiting in.
type Step string

const (
	StepIdle             Step = "idle"
	StepMovieCode        Step = "awaiting_movie_number"
	StepMovieTitle       Step = "awaiting_movie_title"
	StepMovieMedia       Step = "awaiting_movie_media"
	StepDeleteMovie      Step = "awaiting_movie_to_delete"
	StepNewChannel       Step = "awaiting_new_channel"
	StepChannelRemoval   Step = "awaiting_channel_to_remove"
	StepBroadcastMessage Step = "awaiting_broadcast_text"
)

// Session is the state of one admin's form. Each step is its own type and
// carries exactly the fields collected so far.
type Session interface {
	Step() Step
	advance(in Input) Outcome
}

type AwaitMovieCode struct{}

type AwaitMovieTitle struct {
	Code string
}

type AwaitMovieMedia struct {
	Code  string
	Title string
}

type AwaitDeleteMovie struct{}

type AwaitNewChannel struct{}

type AwaitChannelRemoval struct{}

type AwaitBroadcastText struct{}

func (AwaitMovieCode) Step() Step      { return StepMovieCode }
func (AwaitMovieTitle) Step() Step     { return StepMovieTitle }
func (AwaitMovieMedia) Step() Step     { return StepMovieMedia }
func (AwaitDeleteMovie) Step() Step    { return StepDeleteMovie }
func (AwaitNewChannel) Step() Step     { return StepNewChannel }
func (AwaitChannelRemoval) Step() Step { return StepChannelRemoval }
func (AwaitBroadcastText) Step() Step  { return StepBroadcastMessage }

// Input is one admin message fed to a session.
type Input struct {
	Text        string
	VideoFileID string
}

// Problem explains why an input was rejected.
type Problem int

const (
	ProblemNone Problem = iota
	ProblemNoSession
	ProblemNeedDigits
	ProblemNeedText
	ProblemNeedVideo
	ProblemBadChannel
)

// Commit is the record produced by a finished form.
type Commit interface {
	commit()
}

type MovieCommit struct {
	Code   string
	Title  string
	FileID string
}

type DeleteMovieCommit struct {
	Code string
}

type ChannelAddCommit struct {
	ID string
}

type ChannelRemoveCommit struct {
	ID string
}

type BroadcastCommit struct {
	Text string
}

func (MovieCommit) commit()         {}
func (DeleteMovieCommit) commit()   {}
func (ChannelAddCommit) commit()    {}
func (ChannelRemoveCommit) commit() {}
func (BroadcastCommit) commit()     {}

// Outcome is the result of feeding one input.
//
// Exactly one of the following holds: Problem is set and Next is the
// unchanged session; Commit is set and Next is nil; or Next is the
// following step.
type Outcome struct {
	Next    Session
	Commit  Commit
	Problem Problem
}

func reject(s Session, p Problem) Outcome {
	return Outcome{Next: s, Problem: p}
}

func (s AwaitMovieCode) advance(in Input) Outcome {
	code := strings.TrimSpace(in.Text)
	if !catalog.IsLookupCode(code) {
		return reject(s, ProblemNeedDigits)
	}
	return Outcome{Next: AwaitMovieTitle{Code: code}}
}

func (s AwaitMovieTitle) advance(in Input) Outcome {
	title := strings.TrimSpace(in.Text)
	if title == "" {
		return reject(s, ProblemNeedText)
	}
	return Outcome{Next: AwaitMovieMedia{Code: s.Code, Title: title}}
}

func (s AwaitMovieMedia) advance(in Input) Outcome {
	if in.VideoFileID == "" {
		return reject(s, ProblemNeedVideo)
	}
	return Outcome{Commit: MovieCommit{Code: s.Code, Title: s.Title, FileID: in.VideoFileID}}
}

func (s AwaitDeleteMovie) advance(in Input) Outcome {
	code := strings.TrimSpace(in.Text)
	if !catalog.IsLookupCode(code) {
		return reject(s, ProblemNeedDigits)
	}
	return Outcome{Commit: DeleteMovieCommit{Code: code}}
}

func (s AwaitNewChannel) advance(in Input) Outcome {
	if strings.TrimSpace(in.Text) == "" {
		return reject(s, ProblemNeedText)
	}
	id, err := channel.ParseID(in.Text)
	if err != nil {
		return reject(s, ProblemBadChannel)
	}
	return Outcome{Commit: ChannelAddCommit{ID: id}}
}

func (s AwaitChannelRemoval) advance(in Input) Outcome {
	id := strings.TrimSpace(in.Text)
	if id == "" {
		return reject(s, ProblemNeedText)
	}
	return Outcome{Commit: ChannelRemoveCommit{ID: id}}
}

func (s AwaitBroadcastText) advance(in Input) Outcome {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return reject(s, ProblemNeedText)
	}
	return Outcome{Commit: BroadcastCommit{Text: text}}
}

// Start returns the first step of an action, or nil when the action does
// not take further input.
func Start(a Action) Session {
	switch a {
	case ActionAddMovie:
		return AwaitMovieCode{}
	case ActionDeleteMovie:
		return AwaitDeleteMovie{}
	case ActionAddChannel:
		return AwaitNewChannel{}
	case ActionRemoveChannel:
		return AwaitChannelRemoval{}
	case ActionBroadcast:
		return AwaitBroadcastText{}
	default:
		return nil
	}
}

// Advance applies one input to s.
func Advance(s Session, in Input) Outcome {
	if s == nil {
		return Outcome{Problem: ProblemNoSession}
	}
	return s.advance(in)
}
