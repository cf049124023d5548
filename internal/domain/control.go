package domain

import (
	"fmt"
	"time"
)

// ControlState is the shared per-quiz record every viewer synchronizes
// against. The booleans are not mutually exclusive in storage; the display
// phase is derived from them (see Phase). Mutated only through the
// transition methods below, which enforce the host action preconditions.
type ControlState struct {
	QuizID               string     `json:"quizId"`
	IsQuizStarted        bool       `json:"isQuizStarted"`
	IsAnswerStarted      bool       `json:"isAnswerStarted"`
	ShowAnswerCounts     bool       `json:"showAnswerCounts"`
	ShowAnswerCheck      bool       `json:"showAnswerCheck"`
	ShowResult           bool       `json:"showResult"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	AnswerStartAt        *time.Time `json:"answerStartAt,omitempty"`
}

// Phase is the derived, mutually exclusive display mode of a quiz session.
type Phase int

const (
	PhaseNone Phase = iota // quiz not started
	PhaseWaiting
	PhaseAnswering
	PhaseCounts
	PhaseCheck
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseAnswering:
		return "answering"
	case PhaseCounts:
		return "counts"
	case PhaseCheck:
		return "check"
	case PhaseResult:
		return "result"
	default:
		return "none"
	}
}

// Phase derives the display phase from the stored flags. Precedence, highest
// first: result, check, counts, answering, started. Every flag combination
// maps to exactly one phase.
func (c ControlState) Phase() Phase {
	switch {
	case c.ShowResult:
		return PhaseResult
	case c.ShowAnswerCheck:
		return PhaseCheck
	case c.ShowAnswerCounts:
		return PhaseCounts
	case c.IsAnswerStarted:
		return PhaseAnswering
	case c.IsQuizStarted:
		return PhaseWaiting
	default:
		return PhaseNone
	}
}

func transitionErr(action, reason string) error {
	return fmt.Errorf("%s: %s: %w", action, reason, ErrTransition)
}

// StartQuiz opens the session for participants.
func (c *ControlState) StartQuiz() error {
	if c.IsQuizStarted {
		return transitionErr("start quiz", "already started")
	}
	c.IsQuizStarted = true
	return nil
}

// StartAnswer opens the answering window for the current question and stamps
// the shared start instant. The timestamp must come from the server clock so
// every viewer derives the same countdown regardless of local clock skew.
func (c *ControlState) StartAnswer(now time.Time) error {
	if !c.IsQuizStarted {
		return transitionErr("start answer", "quiz not started")
	}
	if c.IsAnswerStarted {
		return transitionErr("start answer", "already answering")
	}
	c.IsAnswerStarted = true
	t := now
	c.AnswerStartAt = &t
	return nil
}

// ShowCounts reveals the live per-choice tallies.
func (c *ControlState) ShowCounts() error {
	if !c.IsAnswerStarted {
		return transitionErr("show counts", "answering not started")
	}
	if c.ShowAnswerCounts {
		return transitionErr("show counts", "already shown")
	}
	c.ShowAnswerCounts = true
	return nil
}

// ShowCheck reveals the correct choice.
func (c *ControlState) ShowCheck() error {
	if !c.IsAnswerStarted {
		return transitionErr("show check", "answering not started")
	}
	if c.ShowAnswerCheck {
		return transitionErr("show check", "already shown")
	}
	c.ShowAnswerCheck = true
	return nil
}

// NextQuestion advances the question pointer and clears the per-question
// flags in the same snapshot, so readers never see the previous question's
// counts against the new one.
func (c *ControlState) NextQuestion() error {
	if !c.IsQuizStarted {
		return transitionErr("next question", "quiz not started")
	}
	c.CurrentQuestionIndex++
	c.clearAnswerCycle()
	return nil
}

// FinishWithResult moves the session to the terminal result phase.
func (c *ControlState) FinishWithResult() error {
	if !c.IsQuizStarted {
		return transitionErr("show result", "quiz not started")
	}
	if c.ShowResult {
		return transitionErr("show result", "already shown")
	}
	c.ShowResult = true
	c.clearAnswerCycle()
	return nil
}

// Reset returns the session to its initial state. Always legal.
func (c *ControlState) Reset() {
	c.IsQuizStarted = false
	c.ShowResult = false
	c.CurrentQuestionIndex = 0
	c.clearAnswerCycle()
}

func (c *ControlState) clearAnswerCycle() {
	c.IsAnswerStarted = false
	c.ShowAnswerCounts = false
	c.ShowAnswerCheck = false
	c.AnswerStartAt = nil
}
