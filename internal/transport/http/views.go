package http

import (
	"context"
	"encoding/json"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

// controlView is the control snapshot pushed to every viewer, extended with
// the derived phase so clients never re-derive flag precedence.
type controlView struct {
	domain.ControlState
	Phase string `json:"phase"`
}

// choiceView hides nothing; choices are public once a question is current.
type choiceView struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// questionView is the current question as seen by a participant. The
// correct choice is withheld until the host reveals the answer check.
type questionView struct {
	ID            string       `json:"id"`
	Index         int          `json:"index"`
	Total         int          `json:"total"`
	Text          string       `json:"text"`
	Choices       []choiceView `json:"choices"`
	Duration      int          `json:"duration"`
	CorrectChoice int          `json:"correctChoice,omitempty"`
}

func newControlView(state domain.ControlState) controlView {
	return controlView{ControlState: state, Phase: state.Phase().String()}
}

func newQuestionView(state domain.ControlState, questions []domain.Question, revealAnswer bool) (questionView, bool) {
	q, ok := domain.CurrentQuestion(state, questions)
	if !ok {
		return questionView{}, false
	}
	view := questionView{
		ID:       q.ID,
		Index:    state.CurrentQuestionIndex,
		Total:    len(questions),
		Text:     q.Text,
		Duration: q.Duration,
	}
	// Choices stay hidden until answering opens; before that the view only
	// carries the question text.
	if state.IsAnswerStarted || revealAnswer {
		for _, c := range q.Choices {
			view.Choices = append(view.Choices, choiceView{Text: c.Text, ImageURL: c.ImageURL})
		}
	}
	if revealAnswer {
		view.CorrectChoice = q.Answer
	}
	return view, true
}

// phaseMessages assembles the outbound messages a control snapshot implies
// for a participant: the snapshot itself, the current question view, and the
// counts or ranking the phase calls for.
func phaseMessages(ctx context.Context, service *app.QuizService, state domain.ControlState) []outboundMessage[any] {
	msgs := []outboundMessage[any]{{Type: "control", Payload: newControlView(state)}}

	questions, err := service.Questions(ctx, state.QuizID)
	if err != nil {
		return append(msgs, errMsg("loading questions failed, please retry"))
	}

	reveal := state.ShowAnswerCheck || state.ShowResult
	if view, ok := newQuestionView(state, questions, reveal); ok {
		msgs = append(msgs, outboundMessage[any]{Type: "question", Payload: view})

		if state.ShowAnswerCounts {
			counts, err := service.LiveCounts(ctx, state.QuizID, view.ID)
			if err == nil {
				msgs = append(msgs, outboundMessage[any]{Type: "counts", Payload: counts})
			}
		}
	}

	if state.ShowResult {
		ranking, err := service.Ranking(ctx, state.QuizID)
		if err == nil {
			msgs = append(msgs, outboundMessage[any]{Type: "ranking", Payload: ranking})
		}
	}
	return msgs
}
