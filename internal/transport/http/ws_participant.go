package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/metrics"
)

// ParticipantHandler serves the participant websocket: join, control-state
// subscription, answer submission, and the phase-driven views (question,
// counts, ranking).
type ParticipantHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewParticipantHandler(service *app.QuizService, log *zap.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type joinPayload struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Choice     int    `json:"choice"`
}

type answerAck struct {
	QuestionID  string `json:"questionId"`
	Choice      int    `json:"choice"`
	SubmittedAt string `json:"submittedAt"`
}

// ServeWS upgrades the request and runs the participant session. The quiz id
// comes from the share link; a missing id is the terminal "invalid join
// link" case and is rejected before the upgrade.
func (h *ParticipantHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId: use the link shared by the host", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.ActiveConnections.WithLabelValues("participant").Inc()
	defer metrics.ActiveConnections.WithLabelValues("participant").Dec()

	ctx := r.Context()

	updates, cancel, err := h.service.SubscribeControl(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(errMsg(err.Error()))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				for _, msg := range phaseMessages(ctx, h.service, state) {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if title, err := h.service.Title(ctx, quizID); err == nil {
		send <- outboundMessage[any]{Type: "quizTitle", Payload: title}
	}

	var participantID string

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "join":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid join payload")
				continue
			}
			participant, err := h.service.Join(ctx, quizID, payload.ParticipantID, payload.Name)
			if err != nil {
				send <- errMsg(joinErrorMessage(err))
				continue
			}
			participantID = participant.ID
			send <- outboundMessage[any]{Type: "joined", Payload: participant}
			h.restoreAnswer(ctx, quizID, participantID, send)

		case "answer":
			if participantID == "" {
				send <- errMsg("join before answering")
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			answer, err := h.service.SubmitAnswer(ctx, quizID, participantID, payload.QuestionID, payload.Choice)
			if err != nil {
				send <- errMsg(submitErrorMessage(err))
				continue
			}
			metrics.AnswersSubmitted.Inc()
			send <- outboundMessage[any]{Type: "answerAck", Payload: answerAck{
				QuestionID:  answer.QuestionID,
				Choice:      answer.Choice,
				SubmittedAt: answer.SubmittedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			}}

		case "counts":
			state, err := h.service.Control(ctx, quizID)
			if err != nil || !state.ShowAnswerCounts {
				send <- errMsg("counts are not being shown")
				continue
			}
			for _, msg := range phaseMessages(ctx, h.service, state) {
				send <- msg
			}

		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// restoreAnswer replays an already-submitted answer for the current question
// so a reconnecting participant sees their choice instead of an open form.
func (h *ParticipantHandler) restoreAnswer(ctx context.Context, quizID, participantID string, send chan<- outboundMessage[any]) {
	state, err := h.service.Control(ctx, quizID)
	if err != nil {
		return
	}
	questions, err := h.service.Questions(ctx, quizID)
	if err != nil {
		return
	}
	current, ok := domain.CurrentQuestion(state, questions)
	if !ok {
		return
	}
	answer, ok, err := h.service.Answer(ctx, domain.AnswerKey{
		QuizID:        quizID,
		QuestionID:    current.ID,
		ParticipantID: participantID,
	})
	if err != nil || !ok {
		return
	}
	send <- outboundMessage[any]{Type: "answerAck", Payload: answerAck{
		QuestionID:  answer.QuestionID,
		Choice:      answer.Choice,
		SubmittedAt: answer.SubmittedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}}
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return "invalid join link: ask the host for a fresh one"
	case errors.Is(err, domain.ErrEmptyName):
		return "enter a display name to join"
	default:
		return "joining failed, please retry"
	}
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAnswering):
		return "answering is not open"
	case errors.Is(err, domain.ErrAnswerClosed):
		return "time is up for this question"
	case errors.Is(err, domain.ErrQuestionNotCurrent):
		return "this question is no longer current"
	case errors.Is(err, domain.ErrChoiceOutOfRange):
		return "invalid choice"
	case errors.Is(err, domain.ErrNotJoined):
		return "join before answering"
	default:
		return "submission failed, please retry"
	}
}
