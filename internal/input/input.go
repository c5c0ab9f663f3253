// Package input holds the raw quiz definition as it arrives from a loader.
// These shapes mirror the wire format; validation and lookup structures live
// in the store package.
package input

import (
	"encoding/json"
	"fmt"
)

// QuizMode controls question availability during a session.
type QuizMode string

const (
	// QuizModeOpen makes every question available at any time.
	QuizModeOpen QuizMode = "open"
	// QuizModeLinear requires the previous question to be answered correctly.
	QuizModeLinear QuizMode = "linear"
)

// QuestionMode selects how entries are submitted for a question.
type QuestionMode string

const (
	// QuestionModeSelect accepts answer ids from a declared answer list.
	QuestionModeSelect QuestionMode = "select"
	// QuestionModeInput accepts free text entries.
	QuestionModeInput QuestionMode = "input"
)

// QuestionStatus names the derived per-question states. It appears in the
// definition's blockAnswerUpdatesFor list and in rendered views.
type QuestionStatus string

const (
	QuestionStatusInProgress        QuestionStatus = "inProgress"
	QuestionStatusAnswered          QuestionStatus = "answered"
	QuestionStatusAnsweredCorrectly QuestionStatus = "answeredCorrectly"
	QuestionStatusAnsweredWrongly   QuestionStatus = "answeredWrongly"
)

// EntryMatch declares how submitted entries are judged. Exactly one of ID or
// Content may be set; the compiler rejects definitions that set both.
type EntryMatch struct {
	ID      []int    `json:"id,omitempty"`
	Content []string `json:"content,omitempty"`
}

// Answer is a selectable option of a select-mode question.
type Answer struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// Question is one raw question declaration.
type Question struct {
	ID                int          `json:"id"`
	Title             *string      `json:"title,omitempty"`
	Content           string       `json:"content"`
	Mode              QuestionMode `json:"mode"`
	Optional          bool         `json:"optional,omitempty"`
	MinEntries        *int         `json:"minEntries,omitempty"`
	MaxEntries        *int         `json:"maxEntries,omitempty"`
	MinCorrectEntries *int         `json:"minCorrectEntries,omitempty"`
	MaxWrongEntries   *int         `json:"maxWrongEntries,omitempty"`
	CorrectEntryMatch *EntryMatch  `json:"correctEntryMatch,omitempty"`
	Answers           []Answer     `json:"answers,omitempty"`
}

// Section groups questions in declaration order.
type Section struct {
	ID          int        `json:"id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Quiz is the raw quiz definition document.
type Quiz struct {
	UID                   string           `json:"uid"`
	Version               int              `json:"version"`
	Title                 *string          `json:"title,omitempty"`
	Description           *string          `json:"description,omitempty"`
	Mode                  QuizMode         `json:"mode"`
	BlockAnswerUpdatesFor []QuestionStatus `json:"blockAnswerUpdatesFor,omitempty"`
	MinAnsweredQuestions  *int             `json:"minAnsweredQuestions,omitempty"`
	MaxAnsweredQuestions  *int             `json:"maxAnsweredQuestions,omitempty"`
	MinCorrectQuestions   *int             `json:"minCorrectQuestions,omitempty"`
	MaxWrongQuestions     *int             `json:"maxWrongQuestions,omitempty"`
	Sections              []Section        `json:"sections"`
}

// ParseQuiz decodes a raw quiz definition document.
func ParseQuiz(data []byte) (Quiz, error) {
	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return Quiz{}, fmt.Errorf("parse quiz definition: %w", err)
	}
	return quiz, nil
}
