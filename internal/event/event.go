// Package event defines answer-submission events and the append-only log
// that records every accepted event for a session.
package event

import (
	"encoding/json"
	"fmt"
)

// Kind tags the event variant on the wire.
type Kind string

const (
	KindSelectAnswers Kind = "selectAnswers"
	KindInputAnswers  Kind = "inputAnswers"
	KindClearAnswers  Kind = "clearAnswers"
)

// Event is one answer-submission event. AnswerIDs is set for selectAnswers,
// Inputs for inputAnswers; clearAnswers carries only the question id.
type Event struct {
	Kind       Kind     `json:"event"`
	QuestionID int      `json:"questionId"`
	AnswerIDs  []int    `json:"answerIds,omitempty"`
	Inputs     []string `json:"inputs,omitempty"`
}

// SelectAnswers builds a selection event.
func SelectAnswers(questionID int, answerIDs []int) Event {
	return Event{Kind: KindSelectAnswers, QuestionID: questionID, AnswerIDs: answerIDs}
}

// InputAnswers builds a free-text entry event.
func InputAnswers(questionID int, inputs []string) Event {
	return Event{Kind: KindInputAnswers, QuestionID: questionID, Inputs: inputs}
}

// ClearAnswers builds an event that removes a question's state.
func ClearAnswers(questionID int) Event {
	return Event{Kind: KindClearAnswers, QuestionID: questionID}
}

// Log is the ordered record of accepted events for one session, tagged with
// the quiz uid/version it was produced against.
type Log struct {
	UID     string  `json:"uid"`
	Version int     `json:"version"`
	Events  []Event `json:"events"`
}

// NewLog starts an empty log for the given quiz identity.
func NewLog(uid string, version int) *Log {
	return &Log{UID: uid, Version: version}
}

// Generation is the count of accepted events. It only ever grows, by exactly
// one per accepted event, and doubles as the session's cache-invalidation
// clock.
func (l *Log) Generation() int {
	return len(l.Events)
}

// Push appends an event. Callers append only after the scoring engine has
// accepted the event.
func (l *Log) Push(ev Event) {
	l.Events = append(l.Events, ev)
}

// ParseLog decodes a persisted event log document.
func ParseLog(data []byte) (*Log, error) {
	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse event log: %w", err)
	}
	return &log, nil
}
