// Package view renders read-only snapshots of a session and memoizes them
// per generation. Rendering is a pure mapping from the compiled quiz and the
// current scoring state; nothing here mutates either.
package view

import (
	"github.com/StruginiCrew/odyssey/internal/input"
	"github.com/StruginiCrew/odyssey/internal/state"
	"github.com/StruginiCrew/odyssey/internal/store"
)

// AnswerStatus is the rendered status of a single answer slot.
type AnswerStatus string

const (
	AnswerStatusPending           AnswerStatus = "pending"
	AnswerStatusAnswered          AnswerStatus = "answered"
	AnswerStatusAnsweredCorrectly AnswerStatus = "answeredCorrectly"
	AnswerStatusAnsweredWrongly   AnswerStatus = "answeredWrongly"
)

// QuestionStatus is the rendered status of a question; Pending means the
// question has no state yet.
type QuestionStatus string

const (
	QuestionStatusPending           QuestionStatus = "pending"
	QuestionStatusInProgress        QuestionStatus = "inProgress"
	QuestionStatusAnswered          QuestionStatus = "answered"
	QuestionStatusAnsweredCorrectly QuestionStatus = "answeredCorrectly"
	QuestionStatusAnsweredWrongly   QuestionStatus = "answeredWrongly"
)

// AnswerView is one rendered answer slot. ID is nil for free-text entries.
type AnswerView struct {
	ID      *int         `json:"id"`
	Content string       `json:"content"`
	Status  AnswerStatus `json:"status"`
}

// QuestionView is the rendered snapshot of one question.
type QuestionView struct {
	ID         int                `json:"id"`
	Status     QuestionStatus     `json:"status"`
	Title      *string            `json:"title,omitempty"`
	Content    string             `json:"content"`
	Mode       input.QuestionMode `json:"mode"`
	MinEntries *int               `json:"minEntries,omitempty"`
	MaxEntries *int               `json:"maxEntries,omitempty"`
	Answers    []AnswerView       `json:"answers"`
}

// SectionView is the rendered snapshot of one section.
type SectionView struct {
	ID          int            `json:"id"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Questions   []QuestionView `json:"questions"`
}

// QuizView is the rendered snapshot of the whole session.
type QuizView struct {
	UID         string           `json:"uid"`
	Version     int              `json:"version"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Mode        input.QuizMode   `json:"mode"`
	Status      state.QuizStatus `json:"status"`
	Sections    []SectionView    `json:"sections"`
}

func questionStatus(qs *state.QuestionState) QuestionStatus {
	if qs == nil {
		return QuestionStatusPending
	}
	switch qs.Status() {
	case input.QuestionStatusInProgress:
		return QuestionStatusInProgress
	case input.QuestionStatusAnswered:
		return QuestionStatusAnswered
	case input.QuestionStatusAnsweredCorrectly:
		return QuestionStatusAnsweredCorrectly
	default:
		return QuestionStatusAnsweredWrongly
	}
}

func answerStatus(status state.AnswerStatus) AnswerStatus {
	switch status {
	case state.AnswerStatusAnswered:
		return AnswerStatusAnswered
	case state.AnswerStatusAnsweredCorrectly:
		return AnswerStatusAnsweredCorrectly
	default:
		return AnswerStatusAnsweredWrongly
	}
}

// NewQuestionView renders a question. Select-mode answers keep the question's
// declared order with unanswered slots marked pending; input-mode entries
// render in submission order with no placeholders.
func NewQuestionView(question *store.Question, qs *state.QuestionState) QuestionView {
	qv := QuestionView{
		ID:         question.ID(),
		Status:     questionStatus(qs),
		Title:      question.Title(),
		Content:    question.Content(),
		Mode:       question.Mode(),
		MinEntries: question.MinEntries(),
		MaxEntries: question.MaxEntries(),
		Answers:    []AnswerView{},
	}

	switch question.Mode() {
	case input.QuestionModeSelect:
		statusByID := make(map[int]AnswerStatus)
		if qs != nil {
			for _, answerState := range qs.AnswerStates() {
				if answerState.ID() != nil {
					statusByID[*answerState.ID()] = answerStatus(answerState.Status())
				}
			}
		}
		for _, answerID := range question.AnswerIDs() {
			answer, ok := question.Answer(answerID)
			if !ok {
				continue
			}
			status := AnswerStatusPending
			if s, ok := statusByID[answerID]; ok {
				status = s
			}
			id := answerID
			qv.Answers = append(qv.Answers, AnswerView{ID: &id, Content: answer.Content(), Status: status})
		}
	case input.QuestionModeInput:
		if qs != nil {
			for _, answerState := range qs.AnswerStates() {
				qv.Answers = append(qv.Answers, AnswerView{
					Content: answerState.Content(),
					Status:  answerStatus(answerState.Status()),
				})
			}
		}
	}

	return qv
}

// NewSectionView renders a section with each of its questions.
func NewSectionView(section *store.Section, engine *state.Engine) SectionView {
	sv := SectionView{
		ID:          section.ID(),
		Title:       section.Title(),
		Description: section.Description(),
		Questions:   []QuestionView{},
	}
	for _, questionID := range section.QuestionIDs() {
		question, ok := engine.Quiz().Question(questionID)
		if !ok {
			continue
		}
		qs, _ := engine.QuestionState(questionID)
		sv.Questions = append(sv.Questions, NewQuestionView(question, qs))
	}
	return sv
}

// NewQuizView renders the whole session, sections in declared order.
func NewQuizView(engine *state.Engine) QuizView {
	quiz := engine.Quiz()
	qv := QuizView{
		UID:         quiz.UID(),
		Version:     quiz.Version(),
		Title:       quiz.Title(),
		Description: quiz.Description(),
		Mode:        quiz.Mode(),
		Status:      engine.QuizStatus(),
		Sections:    []SectionView{},
	}
	for _, sectionID := range quiz.SectionIDs() {
		section, ok := quiz.Section(sectionID)
		if !ok {
			continue
		}
		qv.Sections = append(qv.Sections, NewSectionView(section, engine))
	}
	return qv
}
