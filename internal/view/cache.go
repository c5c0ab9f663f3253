package view

// cached pairs a rendered view with the generation it was computed at.
type cached[T any] struct {
	generation int
	view       T
}

// Cache memoizes rendered views keyed by entity id and generation. An entry
// is valid only while its generation equals the session's current one; a
// mismatch is a miss and the next put simply replaces the entry. There is no
// eviction beyond replacement.
type Cache struct {
	quiz      *cached[QuizView]
	sections  map[int]cached[SectionView]
	questions map[int]cached[QuestionView]
}

// NewCache returns an empty view cache.
func NewCache() *Cache {
	return &Cache{
		sections:  make(map[int]cached[SectionView]),
		questions: make(map[int]cached[QuestionView]),
	}
}

// Question returns the cached question view if it was rendered at exactly
// this generation.
func (c *Cache) Question(generation, questionID int) (QuestionView, bool) {
	entry, ok := c.questions[questionID]
	if !ok || entry.generation != generation {
		return QuestionView{}, false
	}
	return entry.view, true
}

// CacheQuestion stores a freshly rendered question view and returns it.
func (c *Cache) CacheQuestion(generation int, qv QuestionView) QuestionView {
	c.questions[qv.ID] = cached[QuestionView]{generation: generation, view: qv}
	return qv
}

// Section returns the cached section view for this exact generation.
func (c *Cache) Section(generation, sectionID int) (SectionView, bool) {
	entry, ok := c.sections[sectionID]
	if !ok || entry.generation != generation {
		return SectionView{}, false
	}
	return entry.view, true
}

// CacheSection stores a freshly rendered section view and returns it.
func (c *Cache) CacheSection(generation int, sv SectionView) SectionView {
	c.sections[sv.ID] = cached[SectionView]{generation: generation, view: sv}
	return sv
}

// Quiz returns the cached quiz view for this exact generation.
func (c *Cache) Quiz(generation int) (QuizView, bool) {
	if c.quiz == nil || c.quiz.generation != generation {
		return QuizView{}, false
	}
	return c.quiz.view, true
}

// CacheQuiz stores a freshly rendered quiz view and returns it.
func (c *Cache) CacheQuiz(generation int, qv QuizView) QuizView {
	c.quiz = &cached[QuizView]{generation: generation, view: qv}
	return qv
}
