package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/StruginiCrew/odyssey/internal/event"
	"github.com/StruginiCrew/odyssey/internal/input"
	"github.com/StruginiCrew/odyssey/internal/store"
	"github.com/StruginiCrew/odyssey/internal/view"
)

// DefinitionRepository loads raw quiz definitions (from cache/backing store).
type DefinitionRepository interface {
	GetDefinition(ctx context.Context, quizUID string) (input.Quiz, error)
}

// EventLogStore persists exported event logs keyed by session id.
type EventLogStore interface {
	Save(ctx context.Context, sessionID string, log *event.Log) error
	Load(ctx context.Context, sessionID string) (*event.Log, error)
}

// SessionRepository tracks live sessions (in-memory, per process).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// Service wires definitions, sessions and event-log persistence into the
// quiz use cases.
type Service struct {
	sessions    SessionRepository
	definitions DefinitionRepository
	logs        EventLogStore
}

func NewService(sessions SessionRepository, definitions DefinitionRepository, logs EventLogStore) *Service {
	return &Service{sessions: sessions, definitions: definitions, logs: logs}
}

// StartSession compiles the quiz definition and opens a fresh session.
func (s *Service) StartSession(ctx context.Context, quizUID string) (*Session, error) {
	runner, err := s.compileRunner(ctx, quizUID, nil)
	if err != nil {
		return nil, err
	}

	session := NewSession(uuid.NewString(), runner)
	s.sessions.Put(session)
	if err := s.logs.Save(ctx, session.ID(), session.EventLog()); err != nil {
		return nil, fmt.Errorf("save event log: %w", err)
	}
	return session, nil
}

// ResumeSession reconstructs a session from its persisted event log by
// replaying every event against a fresh compile of the definition.
func (s *Service) ResumeSession(ctx context.Context, quizUID, sessionID string) (*Session, error) {
	log, err := s.logs.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load event log: %w", err)
	}

	runner, err := s.compileRunner(ctx, quizUID, log)
	if err != nil {
		return nil, err
	}

	session := NewSession(sessionID, runner)
	s.sessions.Put(session)
	return session, nil
}

func (s *Service) compileRunner(ctx context.Context, quizUID string, log *event.Log) (*Runner, error) {
	raw, err := s.definitions.GetDefinition(ctx, quizUID)
	if err != nil {
		return nil, err
	}
	quiz, err := store.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile quiz %s: %w", quizUID, err)
	}
	if log == nil {
		return NewRunner(quiz), nil
	}
	return NewRunnerFromLog(quiz, log)
}

// SelectAnswers submits answer ids on behalf of a session and persists the
// updated event log.
func (s *Service) SelectAnswers(ctx context.Context, sessionID string, questionID int, answerIDs []int) (view.QuestionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.QuestionView{}, ErrSessionNotFound
	}
	qv, err := session.SelectAnswers(questionID, answerIDs)
	if err != nil {
		return view.QuestionView{}, err
	}
	if err := s.logs.Save(ctx, sessionID, session.EventLog()); err != nil {
		return view.QuestionView{}, fmt.Errorf("save event log: %w", err)
	}
	return qv, nil
}

// InputAnswers submits free-text entries on behalf of a session and persists
// the updated event log.
func (s *Service) InputAnswers(ctx context.Context, sessionID string, questionID int, inputs []string) (view.QuestionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.QuestionView{}, ErrSessionNotFound
	}
	qv, err := session.InputAnswers(questionID, inputs)
	if err != nil {
		return view.QuestionView{}, err
	}
	if err := s.logs.Save(ctx, sessionID, session.EventLog()); err != nil {
		return view.QuestionView{}, fmt.Errorf("save event log: %w", err)
	}
	return qv, nil
}

// ClearAnswers removes a question's answers and persists the updated log.
func (s *Service) ClearAnswers(ctx context.Context, sessionID string, questionID int) (view.QuestionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.QuestionView{}, ErrSessionNotFound
	}
	qv, err := session.ClearAnswers(questionID)
	if err != nil {
		return view.QuestionView{}, err
	}
	if err := s.logs.Save(ctx, sessionID, session.EventLog()); err != nil {
		return view.QuestionView{}, fmt.Errorf("save event log: %w", err)
	}
	return qv, nil
}

// QuestionView renders one question for a session.
func (s *Service) QuestionView(_ context.Context, sessionID string, questionID int) (view.QuestionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.QuestionView{}, ErrSessionNotFound
	}
	return session.QuestionView(questionID)
}

// SectionView renders one section for a session.
func (s *Service) SectionView(_ context.Context, sessionID string, sectionID int) (view.SectionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.SectionView{}, ErrSessionNotFound
	}
	return session.SectionView(sectionID)
}

// QuizView renders the whole session.
func (s *Service) QuizView(_ context.Context, sessionID string) (view.QuizView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return view.QuizView{}, ErrSessionNotFound
	}
	return session.QuizView(), nil
}

// ExportEventLog returns a copy of the session's event log.
func (s *Service) ExportEventLog(_ context.Context, sessionID string) (*event.Log, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.EventLog(), nil
}

// EndSession drops a live session; its persisted event log remains.
func (s *Service) EndSession(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}
