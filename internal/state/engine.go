// Package state owns the mutable per-session scoring state. The engine
// applies one event at a time against a compiled quiz; an event either fully
// commits or leaves state untouched.
package state

import (
	"fmt"

	"github.com/StruginiCrew/odyssey/internal/event"
	"github.com/StruginiCrew/odyssey/internal/input"
	"github.com/StruginiCrew/odyssey/internal/store"
)

// AnswerStatus is the verdict for one submitted entry.
type AnswerStatus string

// AnswerStatusAnswered means no matcher applied to the entry; the other two
// record the matcher's verdict.
const (
	AnswerStatusAnswered          AnswerStatus = "answered"
	AnswerStatusAnsweredCorrectly AnswerStatus = "answeredCorrectly"
	AnswerStatusAnsweredWrongly   AnswerStatus = "answeredWrongly"
)

// QuizStatus is the quiz-level verdict derived from per-question state.
type QuizStatus string

const (
	QuizStatusInProgress QuizStatus = "inProgress"
	QuizStatusCompleted  QuizStatus = "completed"
	QuizStatusFailed     QuizStatus = "failed"
)

// AnswerState records one submitted entry. ID is set for selections and nil
// for free-text inputs. MatchedRule identifies which correct rule was
// satisfied; two entries matching the same rule count once toward
// minCorrectEntries, so the aggregate keeps rule indices rather than a
// raw correct count.
type AnswerState struct {
	id          *int
	content     string
	status      AnswerStatus
	matchedRule int
}

func (a *AnswerState) ID() *int             { return a.id }
func (a *AnswerState) Content() string      { return a.content }
func (a *AnswerState) Status() AnswerStatus { return a.status }

// MatchedRule is only meaningful when Status is AnswerStatusAnsweredCorrectly.
func (a *AnswerState) MatchedRule() int { return a.matchedRule }

// QuestionState is the answer history of one question plus its derived status.
// It is replaced wholesale on every select/input event and removed on clear.
type QuestionState struct {
	answerStates []AnswerState
	status       input.QuestionStatus
}

func (q *QuestionState) AnswerStates() []AnswerState  { return q.answerStates }
func (q *QuestionState) Status() input.QuestionStatus { return q.status }

// Engine applies events to a single session's scoring state. The compiled
// quiz is shared read-only; the state map is owned exclusively by the engine.
type Engine struct {
	quiz          *store.Quiz
	questionState map[int]*QuestionState
}

// NewEngine starts an engine with empty state over a compiled quiz.
func NewEngine(quiz *store.Quiz) *Engine {
	return &Engine{
		quiz:          quiz,
		questionState: make(map[int]*QuestionState),
	}
}

// Quiz returns the compiled definition the engine scores against.
func (e *Engine) Quiz() *store.Quiz { return e.quiz }

// QuestionState returns the current state for a question, if any.
func (e *Engine) QuestionState(questionID int) (*QuestionState, bool) {
	qs, ok := e.questionState[questionID]
	return qs, ok
}

// Apply validates and commits one event. On error no state changes.
func (e *Engine) Apply(ev event.Event) error {
	switch ev.Kind {
	case event.KindSelectAnswers:
		return e.selectAnswers(ev.QuestionID, ev.AnswerIDs)
	case event.KindInputAnswers:
		return e.inputAnswers(ev.QuestionID, ev.Inputs)
	case event.KindClearAnswers:
		return e.clearAnswers(ev.QuestionID)
	default:
		return fmt.Errorf("%q: %w", ev.Kind, ErrUnknownEvent)
	}
}

// FindSection resolves a section id for reads.
func (e *Engine) FindSection(sectionID int) (*store.Section, error) {
	section, ok := e.quiz.Section(sectionID)
	if !ok {
		return nil, fmt.Errorf("section %d: %w", sectionID, ErrSectionNotFound)
	}
	return section, nil
}

// FindQuestion resolves a question id, applying the quiz mode's availability
// rule. Under linear mode a question is available only when the previous
// question in the flattened order is answered correctly; the first question
// is always available.
func (e *Engine) FindQuestion(questionID int) (*store.Question, error) {
	question, ok := e.quiz.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrQuestionNotFound)
	}

	if e.quiz.Mode() == input.QuizModeOpen {
		return question, nil
	}

	previousID, hasPrevious := e.previousQuestionID(questionID)
	if !hasPrevious {
		return question, nil
	}

	previous, ok := e.questionState[previousID]
	if !ok || previous.status != input.QuestionStatusAnsweredCorrectly {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrQuestionNotAvailable)
	}
	return question, nil
}

func (e *Engine) previousQuestionID(questionID int) (int, bool) {
	ids := e.quiz.QuestionIDs()
	for i, id := range ids {
		if id == questionID {
			if i == 0 {
				return 0, false
			}
			return ids[i-1], true
		}
	}
	return 0, false
}

// findQuestionForUpdate layers the mutation gates on top of availability:
// a finished quiz rejects every update, and a question whose current status
// is listed in blockAnswerUpdatesFor is locked.
func (e *Engine) findQuestionForUpdate(questionID int) (*store.Question, error) {
	if e.QuizStatus() != QuizStatusInProgress {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrQuizFinished)
	}

	question, err := e.FindQuestion(questionID)
	if err != nil {
		return nil, err
	}

	if qs, ok := e.questionState[questionID]; ok && e.quiz.BlocksUpdatesFor(qs.status) {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrQuestionCanNotBeUpdated)
	}
	return question, nil
}

func (e *Engine) selectAnswers(questionID int, answerIDs []int) error {
	question, err := e.findQuestionForUpdate(questionID)
	if err != nil {
		return err
	}

	answerIDs = truncateEntries(answerIDs, question.MaxEntries())

	answerStates := make([]AnswerState, 0, len(answerIDs))
	for _, answerID := range answerIDs {
		answerState, err := newSelectionState(question, answerID)
		if err != nil {
			return err
		}
		answerStates = append(answerStates, answerState)
	}

	e.questionState[questionID] = newQuestionState(question, answerStates)
	return nil
}

func (e *Engine) inputAnswers(questionID int, inputs []string) error {
	question, err := e.findQuestionForUpdate(questionID)
	if err != nil {
		return err
	}

	inputs = truncateEntries(inputs, question.MaxEntries())

	answerStates := make([]AnswerState, 0, len(inputs))
	for _, content := range inputs {
		answerStates = append(answerStates, newInputState(question, content))
	}

	e.questionState[questionID] = newQuestionState(question, answerStates)
	return nil
}

func (e *Engine) clearAnswers(questionID int) error {
	if _, err := e.findQuestionForUpdate(questionID); err != nil {
		return err
	}
	delete(e.questionState, questionID)
	return nil
}

// truncateEntries drops entries beyond the question's maxEntries cap.
// Overflow is dropped silently rather than rejected.
func truncateEntries[T any](entries []T, maxEntries *int) []T {
	if maxEntries != nil && len(entries) > *maxEntries {
		return entries[:*maxEntries]
	}
	return entries
}

func newSelectionState(question *store.Question, answerID int) (AnswerState, error) {
	answer, ok := question.Answer(answerID)
	if !ok {
		return AnswerState{}, fmt.Errorf("question %d answer %d: %w", question.ID(), answerID, ErrAnswerNotFound)
	}

	id := answerID
	answerState := AnswerState{id: &id, content: answer.Content()}

	match := question.Match()
	switch {
	case match == nil:
		answerState.status = AnswerStatusAnswered
	case match.ByID():
		if rule, ok := match.IDIndex(answerID); ok {
			answerState.status = AnswerStatusAnsweredCorrectly
			answerState.matchedRule = rule
		} else {
			answerState.status = AnswerStatusAnsweredWrongly
		}
	default:
		if rule, ok := match.ContentIndex(answer.Content()); ok {
			answerState.status = AnswerStatusAnsweredCorrectly
			answerState.matchedRule = rule
		} else {
			answerState.status = AnswerStatusAnsweredWrongly
		}
	}

	return answerState, nil
}

func newInputState(question *store.Question, content string) AnswerState {
	answerState := AnswerState{content: content}

	match := question.Match()
	switch {
	case match == nil:
		answerState.status = AnswerStatusAnswered
	case match.ByID():
		// Id rules cannot judge free text.
		answerState.status = AnswerStatusAnswered
	default:
		if rule, ok := match.ContentIndex(content); ok {
			answerState.status = AnswerStatusAnsweredCorrectly
			answerState.matchedRule = rule
		} else {
			answerState.status = AnswerStatusAnsweredWrongly
		}
	}

	return answerState
}

// newQuestionState derives a question's status from its submitted entries.
// Correct entries are counted by distinct matched rule, so repeat submissions
// satisfying the same rule do not inflate the correct count.
func newQuestionState(question *store.Question, answerStates []AnswerState) *QuestionState {
	minEntries := 0
	if question.MinEntries() != nil {
		minEntries = *question.MinEntries()
	}
	if len(answerStates) < minEntries {
		return &QuestionState{answerStates: answerStates, status: input.QuestionStatusInProgress}
	}

	neutralCount := 0
	wrongCount := 0
	matchedRules := make(map[int]struct{})
	for i := range answerStates {
		switch answerStates[i].status {
		case AnswerStatusAnswered:
			neutralCount++
		case AnswerStatusAnsweredCorrectly:
			matchedRules[answerStates[i].matchedRule] = struct{}{}
		case AnswerStatusAnsweredWrongly:
			wrongCount++
		}
	}
	correctCount := len(matchedRules)

	minCorrectEntries := 0
	if question.MinCorrectEntries() != nil {
		minCorrectEntries = *question.MinCorrectEntries()
	}
	maxWrongEntries := len(answerStates)
	if question.MaxWrongEntries() != nil {
		maxWrongEntries = *question.MaxWrongEntries()
	}

	status := input.QuestionStatusInProgress
	switch {
	case correctCount > 0:
		if correctCount >= minCorrectEntries && wrongCount <= maxWrongEntries {
			status = input.QuestionStatusAnsweredCorrectly
		} else {
			status = input.QuestionStatusAnsweredWrongly
		}
	case neutralCount > 0:
		status = input.QuestionStatusAnswered
	}

	return &QuestionState{answerStates: answerStates, status: status}
}

// StatusCounts aggregates question outcomes across the quiz. Answered counts
// every question with a resolved status, correct and wrong the respective
// verdicts.
type StatusCounts struct {
	Answered int
	Correct  int
	Wrong    int
}

// Counts tallies resolved question statuses across the whole quiz.
func (e *Engine) Counts() StatusCounts {
	var counts StatusCounts
	for _, questionID := range e.quiz.QuestionIDs() {
		qs, ok := e.questionState[questionID]
		if !ok {
			continue
		}
		switch qs.status {
		case input.QuestionStatusAnswered:
			counts.Answered++
		case input.QuestionStatusAnsweredCorrectly:
			counts.Answered++
			counts.Correct++
		case input.QuestionStatusAnsweredWrongly:
			counts.Answered++
			counts.Wrong++
		}
	}
	return counts
}

// QuizStatus derives the quiz-level verdict. Required questions must all be
// resolved (answered or answered correctly) before the global thresholds are
// considered; the thresholds then apply in fixed priority order.
func (e *Engine) QuizStatus() QuizStatus {
	for _, questionID := range e.quiz.QuestionIDs() {
		question, ok := e.quiz.Question(questionID)
		if !ok || question.Optional() {
			continue
		}
		qs, ok := e.questionState[questionID]
		if !ok || qs.status == input.QuestionStatusInProgress || qs.status == input.QuestionStatusAnsweredWrongly {
			return QuizStatusInProgress
		}
	}

	counts := e.Counts()
	quiz := e.quiz
	switch {
	case quiz.MinAnsweredQuestions() != nil && counts.Answered < *quiz.MinAnsweredQuestions():
		return QuizStatusInProgress
	case quiz.MaxWrongQuestions() != nil && counts.Wrong >= *quiz.MaxWrongQuestions():
		return QuizStatusFailed
	case quiz.MinCorrectQuestions() != nil && counts.Correct >= *quiz.MinCorrectQuestions():
		return QuizStatusCompleted
	case quiz.MaxAnsweredQuestions() != nil && counts.Answered >= *quiz.MaxAnsweredQuestions():
		return QuizStatusCompleted
	default:
		return QuizStatusCompleted
	}
}
