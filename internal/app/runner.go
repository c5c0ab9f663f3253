// Package app contains the quiz session use cases: the runner that drives a
// single session and the service that loads definitions, persists event logs
// and tracks live sessions.
package app

import (
	"fmt"

	"github.com/StruginiCrew/odyssey/internal/event"
	"github.com/StruginiCrew/odyssey/internal/state"
	"github.com/StruginiCrew/odyssey/internal/store"
	"github.com/StruginiCrew/odyssey/internal/view"
)

// Runner drives one quiz session: it applies events to the scoring engine,
// appends accepted events to the log, and serves views through the
// generation-keyed cache. It is not safe for concurrent use; Session wraps
// it with a lock.
type Runner struct {
	engine *state.Engine
	log    *event.Log
	cache  *view.Cache
}

// NewRunner starts a fresh session over a compiled quiz.
func NewRunner(quiz *store.Quiz) *Runner {
	return &Runner{
		engine: state.NewEngine(quiz),
		log:    event.NewLog(quiz.UID(), quiz.Version()),
		cache:  view.NewCache(),
	}
}

// NewRunnerFromLog reconstructs a session by replaying a persisted event log
// against a freshly compiled quiz. The log must carry the quiz's uid and
// version, and every event must apply cleanly; a mid-replay rejection means
// the log was produced under different rules and aborts the reconstruction.
func NewRunnerFromLog(quiz *store.Quiz, log *event.Log) (*Runner, error) {
	if log.UID != quiz.UID() || log.Version != quiz.Version() {
		return nil, fmt.Errorf("log %s v%d against quiz %s v%d: %w",
			log.UID, log.Version, quiz.UID(), quiz.Version(), ErrEventLogMismatch)
	}

	runner := NewRunner(quiz)
	for i, ev := range log.Events {
		if err := runner.apply(ev); err != nil {
			return nil, fmt.Errorf("replay event %d: %w", i, err)
		}
	}
	return runner, nil
}

// apply commits one event: the engine either fully accepts it, after which
// it is appended to the log and the generation advances, or rejects it and
// nothing changes.
func (r *Runner) apply(ev event.Event) error {
	if err := r.engine.Apply(ev); err != nil {
		return err
	}
	r.log.Push(ev)
	return nil
}

// SelectAnswers submits answer ids for a select-mode question and returns
// the question's fresh view.
func (r *Runner) SelectAnswers(questionID int, answerIDs []int) (view.QuestionView, error) {
	if err := r.apply(event.SelectAnswers(questionID, answerIDs)); err != nil {
		return view.QuestionView{}, err
	}
	return r.QuestionView(questionID)
}

// InputAnswers submits free-text entries for an input-mode question and
// returns the question's fresh view.
func (r *Runner) InputAnswers(questionID int, inputs []string) (view.QuestionView, error) {
	if err := r.apply(event.InputAnswers(questionID, inputs)); err != nil {
		return view.QuestionView{}, err
	}
	return r.QuestionView(questionID)
}

// ClearAnswers removes a question's state and returns its (pending) view.
func (r *Runner) ClearAnswers(questionID int) (view.QuestionView, error) {
	if err := r.apply(event.ClearAnswers(questionID)); err != nil {
		return view.QuestionView{}, err
	}
	return r.QuestionView(questionID)
}

// QuestionView renders one question, subject to the quiz mode's availability
// rule, reusing the cached view when its generation matches.
func (r *Runner) QuestionView(questionID int) (view.QuestionView, error) {
	question, err := r.engine.FindQuestion(questionID)
	if err != nil {
		return view.QuestionView{}, err
	}

	generation := r.log.Generation()
	if qv, ok := r.cache.Question(generation, questionID); ok {
		return qv, nil
	}
	qs, _ := r.engine.QuestionState(questionID)
	return r.cache.CacheQuestion(generation, view.NewQuestionView(question, qs)), nil
}

// SectionView renders one section, reusing the cached view when current.
func (r *Runner) SectionView(sectionID int) (view.SectionView, error) {
	section, err := r.engine.FindSection(sectionID)
	if err != nil {
		return view.SectionView{}, err
	}

	generation := r.log.Generation()
	if sv, ok := r.cache.Section(generation, sectionID); ok {
		return sv, nil
	}
	return r.cache.CacheSection(generation, view.NewSectionView(section, r.engine)), nil
}

// QuizView renders the whole session, reusing the cached view when current.
func (r *Runner) QuizView() view.QuizView {
	generation := r.log.Generation()
	if qv, ok := r.cache.Quiz(generation); ok {
		return qv
	}
	return r.cache.CacheQuiz(generation, view.NewQuizView(r.engine))
}

// QuizStatus reports the quiz-level verdict.
func (r *Runner) QuizStatus() state.QuizStatus {
	return r.engine.QuizStatus()
}

// Generation is the session's event count.
func (r *Runner) Generation() int {
	return r.log.Generation()
}

// EventLog exports a copy of the session's event log for persistence.
func (r *Runner) EventLog() *event.Log {
	events := make([]event.Event, len(r.log.Events))
	copy(events, r.log.Events)
	return &event.Log{UID: r.log.UID, Version: r.log.Version, Events: events}
}
