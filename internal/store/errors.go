package store

import "errors"

var (
	// ErrDuplicateSectionID is returned when two sections declare the same id.
	ErrDuplicateSectionID = errors.New("duplicate section id")
	// ErrDuplicateQuestionID is returned when a question id repeats anywhere in the quiz.
	ErrDuplicateQuestionID = errors.New("duplicate question id")
	// ErrDuplicateAnswerID is returned when an answer id repeats within a question.
	ErrDuplicateAnswerID = errors.New("duplicate answer id")
	// ErrAmbiguousEntryMatch is returned when a rule declares both id and content matching.
	ErrAmbiguousEntryMatch = errors.New("entry match declares both id and content rules")
	// ErrInvalidPattern is returned when a content match pattern fails to compile.
	ErrInvalidPattern = errors.New("invalid match pattern")
)
