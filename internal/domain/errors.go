package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz (owner) id has no stored state.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question id does not belong to the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionNotCurrent is returned when a submission targets a question
	// other than the one the control state points at.
	ErrQuestionNotCurrent = errors.New("question is not the current question")
	// ErrNotJoined is returned when an action requires a prior join.
	ErrNotJoined = errors.New("participant has not joined")
	// ErrEmptyName rejects joins with a blank display name.
	ErrEmptyName = errors.New("display name must not be empty")
	// ErrNotAnswering is returned when a submission arrives outside the
	// answering phase.
	ErrNotAnswering = errors.New("answering is not open")
	// ErrAnswerClosed is returned when the countdown for the current question
	// has expired.
	ErrAnswerClosed = errors.New("answering time is over")
	// ErrChoiceOutOfRange rejects a choice outside [1, len(choices)].
	ErrChoiceOutOfRange = errors.New("choice out of range")
	// ErrQuestionLimit rejects creating more questions than MaxQuestions.
	ErrQuestionLimit = errors.New("question limit reached")
	// ErrInvalidQuestion rejects a question that fails validation.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrNotOwner rejects a mutation by anyone but the quiz owner.
	ErrNotOwner = errors.New("caller does not own this quiz")
	// ErrTransition is wrapped by the control-state methods when an action's
	// precondition does not hold.
	ErrTransition = errors.New("illegal phase transition")
)
