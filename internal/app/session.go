package app

import (
	"sync"

	"github.com/StruginiCrew/odyssey/internal/event"
	"github.com/StruginiCrew/odyssey/internal/state"
	"github.com/StruginiCrew/odyssey/internal/view"
)

// Session is one live quiz session. The runner itself is single-threaded;
// the session serializes callers so a host process can drive many sessions
// from concurrent handlers.
type Session struct {
	id     string
	mu     sync.Mutex
	runner *Runner
}

// NewSession wraps a runner under a session id.
func NewSession(id string, runner *Runner) *Session {
	return &Session{id: id, runner: runner}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// SelectAnswers applies a selection event and returns the question view.
func (s *Session) SelectAnswers(questionID int, answerIDs []int) (view.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.SelectAnswers(questionID, answerIDs)
}

// InputAnswers applies a free-text entry event and returns the question view.
func (s *Session) InputAnswers(questionID int, inputs []string) (view.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.InputAnswers(questionID, inputs)
}

// ClearAnswers removes a question's answers and returns the question view.
func (s *Session) ClearAnswers(questionID int) (view.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.ClearAnswers(questionID)
}

// QuestionView renders one question.
func (s *Session) QuestionView(questionID int) (view.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.QuestionView(questionID)
}

// SectionView renders one section.
func (s *Session) SectionView(sectionID int) (view.SectionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.SectionView(sectionID)
}

// QuizView renders the whole session.
func (s *Session) QuizView() view.QuizView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.QuizView()
}

// QuizStatus reports the quiz-level verdict.
func (s *Session) QuizStatus() state.QuizStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.QuizStatus()
}

// Generation is the session's event count.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Generation()
}

// EventLog exports a copy of the session's event log.
func (s *Session) EventLog() *event.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.EventLog()
}
