package domain

import "strings"

// Validate checks the authoring rules for a question: non-empty text, 2 or 4
// choices, every choice carrying text or an image, a 1-based correct index
// inside the choice list, and a positive duration.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrInvalidQuestion
	}
	if len(q.Choices) != 2 && len(q.Choices) != 4 {
		return ErrInvalidQuestion
	}
	for _, c := range q.Choices {
		if strings.TrimSpace(c.Text) == "" && c.ImageURL == "" {
			return ErrInvalidQuestion
		}
	}
	if q.Answer < 1 || q.Answer > len(q.Choices) {
		return ErrInvalidQuestion
	}
	if q.Duration <= 0 {
		return ErrInvalidQuestion
	}
	return nil
}

// CurrentQuestion resolves the control state's question pointer against an
// ordered question set. An out-of-range index is not an error: it means "no
// current question" (e.g. the host advanced past the last question).
func CurrentQuestion(c ControlState, questions []Question) (Question, bool) {
	i := c.CurrentQuestionIndex
	if i < 0 || i >= len(questions) {
		return Question{}, false
	}
	return questions[i], true
}
