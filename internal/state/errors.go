package state

import "errors"

var (
	// ErrSectionNotFound is returned when a section id is not declared in the quiz.
	ErrSectionNotFound = errors.New("section not found")
	// ErrQuestionNotFound is returned when a question id is not declared in the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound is returned when a selected answer id is not declared on the question.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrQuestionNotAvailable is returned when linear-mode ordering gates the question.
	ErrQuestionNotAvailable = errors.New("question not available")
	// ErrQuestionCanNotBeUpdated is returned when the question's status blocks updates.
	ErrQuestionCanNotBeUpdated = errors.New("question can not be updated")
	// ErrQuizFinished is returned for any mutating event once the quiz is completed or failed.
	ErrQuizFinished = errors.New("quiz finished")
	// ErrUnknownEvent is returned for an event kind the engine does not recognize.
	ErrUnknownEvent = errors.New("unknown event kind")
)
