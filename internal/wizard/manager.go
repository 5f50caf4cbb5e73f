package wizard

import "sync"

// Manager holds at most one session per admin chat. Updates are handled on
// separate goroutines, so every access goes through the mutex.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]Session)}
}

// Begin starts the form for action, replacing any unfinished one. It returns
// nil and clears the admin's session when the action takes no input.
func (m *Manager) Begin(adminID int64, action Action) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Start(action)
	if s == nil {
		delete(m.sessions, adminID)
		return nil
	}
	m.sessions[adminID] = s
	return s
}

// Active returns the admin's current session.
func (m *Manager) Active(adminID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[adminID]
	return s, ok
}

// Step returns the step the admin is in, StepIdle without a session.
func (m *Manager) Step(adminID int64) Step {
	if s, ok := m.Active(adminID); ok {
		return s.Step()
	}
	return StepIdle
}

// Cancel drops the admin's session and reports whether one existed.
func (m *Manager) Cancel(adminID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[adminID]
	delete(m.sessions, adminID)
	return ok
}

// Feed applies one input to the admin's session. A rejected input leaves the
// session untouched; a commit removes it.
func (m *Manager) Feed(adminID int64, in Input) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[adminID]
	if !ok {
		return Outcome{Problem: ProblemNoSession}
	}

	out := s.advance(in)
	switch {
	case out.Problem != ProblemNone:
	case out.Commit != nil:
		delete(m.sessions, adminID)
	default:
		m.sessions[adminID] = out.Next
	}
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
