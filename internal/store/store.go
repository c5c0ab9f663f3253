// Package store compiles raw quiz definitions into an immutable,
// lookup-optimized form. Compilation is a pure function of its input:
// the same definition always yields the same store, and a failed compile
// produces nothing.
package store

import (
	"fmt"
	"regexp"

	"github.com/StruginiCrew/odyssey/internal/input"
)

// EntryMatch is a precompiled correct-entry rule: either an ordered list of
// correct answer ids or an ordered list of case-insensitive content patterns.
// The raw rule shape is resolved exactly once, at compile time.
type EntryMatch struct {
	ids      []int
	patterns []*regexp.Regexp
}

// ByID reports whether the rule matches on answer ids rather than content.
func (m *EntryMatch) ByID() bool {
	return m.ids != nil
}

// IDIndex returns the position of answerID within the correct-id list.
func (m *EntryMatch) IDIndex(answerID int) (int, bool) {
	for i, id := range m.ids {
		if id == answerID {
			return i, true
		}
	}
	return 0, false
}

// ContentIndex returns the index of the first pattern matching content.
func (m *EntryMatch) ContentIndex(content string) (int, bool) {
	for i, pattern := range m.patterns {
		if pattern.MatchString(content) {
			return i, true
		}
	}
	return 0, false
}

// Answer is a compiled selectable option.
type Answer struct {
	id      int
	content string
}

func (a *Answer) ID() int { return a.id }
func (a *Answer) Content() string { return a.content }

// Question is a compiled question with its answer lookup and entry limits.
type Question struct {
	id                int
	title             *string
	content           string
	mode              input.QuestionMode
	optional          bool
	minEntries        *int
	maxEntries        *int
	minCorrectEntries *int
	maxWrongEntries   *int
	match             *EntryMatch
	answerIDs         []int
	answers           map[int]*Answer
}

func (q *Question) ID() int { return q.id }
func (q *Question) Title() *string { return q.title }
func (q *Question) Content() string { return q.content }
func (q *Question) Mode() input.QuestionMode { return q.mode }
func (q *Question) Optional() bool { return q.optional }
func (q *Question) MinEntries() *int { return q.minEntries }
func (q *Question) MaxEntries() *int { return q.maxEntries }
func (q *Question) MinCorrectEntries() *int { return q.minCorrectEntries }
func (q *Question) MaxWrongEntries() *int { return q.maxWrongEntries }
func (q *Question) Match() *EntryMatch { return q.match }

// AnswerIDs returns answer ids in their declared order.
func (q *Question) AnswerIDs() []int { return q.answerIDs }

// Answer resolves an answer id within this question.
func (q *Question) Answer(id int) (*Answer, bool) {
	answer, ok := q.answers[id]
	return answer, ok
}

// Section is a compiled section; its question ids reference the quiz-level
// question lookup rather than owning the questions.
type Section struct {
	id          int
	title       *string
	description *string
	questionIDs []int
}

func (s *Section) ID() int { return s.id }
func (s *Section) Title() *string { return s.title }
func (s *Section) Description() *string { return s.description }
func (s *Section) QuestionIDs() []int { return s.questionIDs }

// Quiz is the compiled definition shared read-only by the scoring engine,
// renderer and view cache for a session's lifetime.
type Quiz struct {
	uid                   string
	version               int
	title                 *string
	description           *string
	mode                  input.QuizMode
	blockAnswerUpdatesFor []input.QuestionStatus
	minAnsweredQuestions  *int
	maxAnsweredQuestions  *int
	minCorrectQuestions   *int
	maxWrongQuestions     *int
	sectionIDs            []int
	sections              map[int]*Section
	questionIDs           []int
	questions             map[int]*Question
}

func (q *Quiz) UID() string { return q.uid }
func (q *Quiz) Version() int { return q.version }
func (q *Quiz) Title() *string { return q.title }
func (q *Quiz) Description() *string { return q.description }
func (q *Quiz) Mode() input.QuizMode { return q.mode }
func (q *Quiz) SectionIDs() []int { return q.sectionIDs }
func (q *Quiz) QuestionIDs() []int { return q.questionIDs }
func (q *Quiz) MinAnsweredQuestions() *int { return q.minAnsweredQuestions }
func (q *Quiz) MaxAnsweredQuestions() *int { return q.maxAnsweredQuestions }
func (q *Quiz) MinCorrectQuestions() *int { return q.minCorrectQuestions }
func (q *Quiz) MaxWrongQuestions() *int { return q.maxWrongQuestions }

// Section resolves a section id.
func (q *Quiz) Section(id int) (*Section, bool) {
	section, ok := q.sections[id]
	return section, ok
}

// Question resolves a question id.
func (q *Quiz) Question(id int) (*Question, bool) {
	question, ok := q.questions[id]
	return question, ok
}

// BlocksUpdatesFor reports whether answer updates are blocked for questions
// currently in the given status.
func (q *Quiz) BlocksUpdatesFor(status input.QuestionStatus) bool {
	for _, blocked := range q.blockAnswerUpdatesFor {
		if blocked == status {
			return true
		}
	}
	return false
}

// Compile validates a raw definition and builds the immutable store,
// precompiling every correct-entry rule.
func Compile(raw input.Quiz) (*Quiz, error) {
	quiz := &Quiz{
		uid:                   raw.UID,
		version:               raw.Version,
		title:                 raw.Title,
		description:           raw.Description,
		mode:                  raw.Mode,
		blockAnswerUpdatesFor: raw.BlockAnswerUpdatesFor,
		minAnsweredQuestions:  raw.MinAnsweredQuestions,
		maxAnsweredQuestions:  raw.MaxAnsweredQuestions,
		minCorrectQuestions:   raw.MinCorrectQuestions,
		maxWrongQuestions:     raw.MaxWrongQuestions,
		sections:              make(map[int]*Section),
		questions:             make(map[int]*Question),
	}

	for i := range raw.Sections {
		rawSection := &raw.Sections[i]
		if _, ok := quiz.sections[rawSection.ID]; ok {
			return nil, fmt.Errorf("section %d: %w", rawSection.ID, ErrDuplicateSectionID)
		}

		section := &Section{
			id:          rawSection.ID,
			title:       rawSection.Title,
			description: rawSection.Description,
		}

		for j := range rawSection.Questions {
			rawQuestion := &rawSection.Questions[j]
			if _, ok := quiz.questions[rawQuestion.ID]; ok {
				return nil, fmt.Errorf("section %d question %d: %w", rawSection.ID, rawQuestion.ID, ErrDuplicateQuestionID)
			}

			question, err := compileQuestion(rawQuestion)
			if err != nil {
				return nil, err
			}

			section.questionIDs = append(section.questionIDs, question.id)
			quiz.questionIDs = append(quiz.questionIDs, question.id)
			quiz.questions[question.id] = question
		}

		quiz.sectionIDs = append(quiz.sectionIDs, section.id)
		quiz.sections[section.id] = section
	}

	return quiz, nil
}

func compileQuestion(raw *input.Question) (*Question, error) {
	question := &Question{
		id:                raw.ID,
		title:             raw.Title,
		content:           raw.Content,
		mode:              raw.Mode,
		optional:          raw.Optional,
		minEntries:        raw.MinEntries,
		maxEntries:        raw.MaxEntries,
		minCorrectEntries: raw.MinCorrectEntries,
		maxWrongEntries:   raw.MaxWrongEntries,
		answers:           make(map[int]*Answer),
	}

	for _, rawAnswer := range raw.Answers {
		if _, ok := question.answers[rawAnswer.ID]; ok {
			return nil, fmt.Errorf("question %d answer %d: %w", raw.ID, rawAnswer.ID, ErrDuplicateAnswerID)
		}
		question.answerIDs = append(question.answerIDs, rawAnswer.ID)
		question.answers[rawAnswer.ID] = &Answer{id: rawAnswer.ID, content: rawAnswer.Content}
	}

	if raw.CorrectEntryMatch != nil {
		match, err := compileEntryMatch(raw.ID, raw.CorrectEntryMatch)
		if err != nil {
			return nil, err
		}
		question.match = match
	}

	return question, nil
}

func compileEntryMatch(questionID int, raw *input.EntryMatch) (*EntryMatch, error) {
	if raw.ID != nil && raw.Content != nil {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrAmbiguousEntryMatch)
	}

	if raw.ID != nil {
		ids := make([]int, len(raw.ID))
		copy(ids, raw.ID)
		return &EntryMatch{ids: ids}, nil
	}

	patterns := make([]*regexp.Regexp, 0, len(raw.Content))
	for _, rawPattern := range raw.Content {
		pattern, err := regexp.Compile("(?i)" + rawPattern)
		if err != nil {
			return nil, fmt.Errorf("question %d pattern %q: %w: %v", questionID, rawPattern, ErrInvalidPattern, err)
		}
		patterns = append(patterns, pattern)
	}
	return &EntryMatch{patterns: patterns}, nil
}
