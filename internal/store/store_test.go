package store_test

import (
	"errors"
	"testing"

	"github.com/StruginiCrew/odyssey/internal/input"
	"github.com/StruginiCrew/odyssey/internal/store"
)

func strp(s string) *string { return &s }

func sampleQuiz() input.Quiz {
	return input.Quiz{
		UID:     "capitals",
		Version: 3,
		Title:   strp("Capitals"),
		Mode:    input.QuizModeOpen,
		Sections: []input.Section{
			{
				ID:    1,
				Title: strp("Europe"),
				Questions: []input.Question{
					{
						ID:                1,
						Content:           "Capital of France?",
						Mode:              input.QuestionModeSelect,
						CorrectEntryMatch: &input.EntryMatch{ID: []int{2}},
						Answers: []input.Answer{
							{ID: 1, Content: "Lyon"},
							{ID: 2, Content: "Paris"},
						},
					},
					{
						ID:                2,
						Content:           "Capital of Italy?",
						Mode:              input.QuestionModeInput,
						CorrectEntryMatch: &input.EntryMatch{Content: []string{"^rome$"}},
					},
				},
			},
			{
				ID:    2,
				Title: strp("Asia"),
				Questions: []input.Question{
					{
						ID:      3,
						Content: "Any thoughts?",
						Mode:    input.QuestionModeInput,
					},
				},
			},
		},
	}
}

func TestCompilePreservesDeclaredOrder(t *testing.T) {
	quiz, err := store.Compile(sampleQuiz())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if quiz.UID() != "capitals" || quiz.Version() != 3 {
		t.Fatalf("identity lost: %s v%d", quiz.UID(), quiz.Version())
	}

	sectionIDs := quiz.SectionIDs()
	if len(sectionIDs) != 2 || sectionIDs[0] != 1 || sectionIDs[1] != 2 {
		t.Fatalf("unexpected section order: %v", sectionIDs)
	}

	ids := quiz.QuestionIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected flattened question order: %v", ids)
	}

	question, ok := quiz.Question(1)
	if !ok {
		t.Fatalf("question 1 not indexed")
	}
	answerIDs := question.AnswerIDs()
	if len(answerIDs) != 2 || answerIDs[0] != 1 || answerIDs[1] != 2 {
		t.Fatalf("unexpected answer order: %v", answerIDs)
	}
}

func TestCompileRejectsDuplicateIDs(t *testing.T) {
	dupSection := sampleQuiz()
	dupSection.Sections[1].ID = 1
	if _, err := store.Compile(dupSection); !errors.Is(err, store.ErrDuplicateSectionID) {
		t.Fatalf("expected duplicate section id, got %v", err)
	}

	dupQuestion := sampleQuiz()
	dupQuestion.Sections[1].Questions[0].ID = 2
	if _, err := store.Compile(dupQuestion); !errors.Is(err, store.ErrDuplicateQuestionID) {
		t.Fatalf("expected duplicate question id, got %v", err)
	}

	dupAnswer := sampleQuiz()
	dupAnswer.Sections[0].Questions[0].Answers[1].ID = 1
	if _, err := store.Compile(dupAnswer); !errors.Is(err, store.ErrDuplicateAnswerID) {
		t.Fatalf("expected duplicate answer id, got %v", err)
	}
}

func TestCompileRejectsAmbiguousEntryMatch(t *testing.T) {
	raw := sampleQuiz()
	raw.Sections[0].Questions[0].CorrectEntryMatch = &input.EntryMatch{
		ID:      []int{2},
		Content: []string{"paris"},
	}
	if _, err := store.Compile(raw); !errors.Is(err, store.ErrAmbiguousEntryMatch) {
		t.Fatalf("expected ambiguous entry match, got %v", err)
	}
}

func TestCompileRejectsInvalidPattern(t *testing.T) {
	raw := sampleQuiz()
	raw.Sections[0].Questions[1].CorrectEntryMatch = &input.EntryMatch{Content: []string{"rome("}}
	if _, err := store.Compile(raw); !errors.Is(err, store.ErrInvalidPattern) {
		t.Fatalf("expected invalid pattern, got %v", err)
	}
}

func TestEntryMatchIndices(t *testing.T) {
	quiz, err := store.Compile(sampleQuiz())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	question, _ := quiz.Question(1)
	match := question.Match()
	if !match.ByID() {
		t.Fatalf("expected id matcher")
	}
	if rule, ok := match.IDIndex(2); !ok || rule != 0 {
		t.Fatalf("expected rule 0 for answer 2, got %d ok=%v", rule, ok)
	}
	if _, ok := match.IDIndex(1); ok {
		t.Fatalf("answer 1 must not match")
	}

	question, _ = quiz.Question(2)
	match = question.Match()
	if match.ByID() {
		t.Fatalf("expected content matcher")
	}
	if rule, ok := match.ContentIndex("Rome"); !ok || rule != 0 {
		t.Fatalf("expected case-insensitive rule 0, got %d ok=%v", rule, ok)
	}
	if _, ok := match.ContentIndex("milan"); ok {
		t.Fatalf("milan must not match")
	}
}

func TestBlocksUpdatesFor(t *testing.T) {
	raw := sampleQuiz()
	raw.BlockAnswerUpdatesFor = []input.QuestionStatus{input.QuestionStatusAnsweredCorrectly}
	quiz, err := store.Compile(raw)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !quiz.BlocksUpdatesFor(input.QuestionStatusAnsweredCorrectly) {
		t.Fatalf("expected answeredCorrectly to be blocked")
	}
	if quiz.BlocksUpdatesFor(input.QuestionStatusAnsweredWrongly) {
		t.Fatalf("answeredWrongly must not be blocked")
	}
}
