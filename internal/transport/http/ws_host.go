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

// HostHandler serves the host dashboard websocket: progression actions,
// question CRUD, and the quiz title. The connection is scoped to the
// caller's own quiz (owner id doubles as quiz id); the service re-checks
// ownership on every mutation.
type HostHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHostHandler(service *app.QuizService, log *zap.Logger) *HostHandler {
	return &HostHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type actionPayload struct {
	Action string `json:"action"`
}

type deleteQuestionPayload struct {
	QuestionID string `json:"questionId"`
}

type titlePayload struct {
	Title string `json:"title"`
}

func (h *HostHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		http.Error(w, "missing ownerId", http.StatusBadRequest)
		return
	}
	quizID := ownerID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.ActiveConnections.WithLabelValues("host").Inc()
	defer metrics.ActiveConnections.WithLabelValues("host").Dec()

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

	h.sendQuestions(ctx, quizID, send)
	if title, err := h.service.Title(ctx, quizID); err == nil {
		send <- outboundMessage[any]{Type: "quizTitle", Payload: title}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "action":
			var payload actionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid action payload")
				continue
			}
			if err := h.applyAction(ctx, quizID, payload.Action); err != nil {
				send <- errMsg(err.Error())
				continue
			}
			metrics.TransitionsApplied.WithLabelValues(payload.Action).Inc()

		case "putQuestion":
			var question domain.Question
			if err := json.Unmarshal(inbound.Payload, &question); err != nil {
				send <- errMsg("invalid question payload")
				continue
			}
			question.QuizID = quizID
			saved, err := h.service.SaveQuestion(ctx, ownerID, question)
			if err != nil {
				send <- errMsg(authoringErrorMessage(err))
				continue
			}
			send <- outboundMessage[any]{Type: "questionSaved", Payload: saved}
			h.sendQuestions(ctx, quizID, send)

		case "deleteQuestion":
			var payload deleteQuestionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid delete payload")
				continue
			}
			if err := h.service.DeleteQuestion(ctx, ownerID, quizID, payload.QuestionID); err != nil {
				send <- errMsg(authoringErrorMessage(err))
				continue
			}
			h.sendQuestions(ctx, quizID, send)

		case "setTitle":
			var payload titlePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid title payload")
				continue
			}
			quiz, err := h.service.SetTitle(ctx, ownerID, payload.Title)
			if err != nil {
				send <- errMsg("saving title failed, please retry")
				continue
			}
			send <- outboundMessage[any]{Type: "quizTitle", Payload: quiz.DisplayTitle()}

		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// applyAction dispatches one progression action from the host dashboard.
func (h *HostHandler) applyAction(ctx context.Context, quizID, action string) error {
	var err error
	switch action {
	case "startQuiz":
		_, err = h.service.StartQuiz(ctx, quizID)
	case "startAnswer":
		_, err = h.service.StartAnswer(ctx, quizID)
	case "showCounts":
		_, err = h.service.ShowCounts(ctx, quizID)
	case "showCheck":
		_, err = h.service.ShowCheck(ctx, quizID)
	case "nextQuestion":
		_, err = h.service.NextQuestion(ctx, quizID)
	case "showResult":
		_, err = h.service.ShowResult(ctx, quizID)
	case "reset":
		_, err = h.service.Reset(ctx, quizID)
	case "clearAnswers":
		err = h.service.ClearAnswers(ctx, quizID)
	default:
		return errUnknownAction
	}
	return err
}

var errUnknownAction = errors.New("unknown action")

func (h *HostHandler) sendQuestions(ctx context.Context, quizID string, send chan<- outboundMessage[any]) {
	questions, err := h.service.Questions(ctx, quizID)
	if err != nil {
		send <- errMsg("loading questions failed, please retry")
		return
	}
	send <- outboundMessage[any]{Type: "questions", Payload: questions}
}

func authoringErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuestionLimit):
		return "question limit reached: delete one before adding another"
	case errors.Is(err, domain.ErrInvalidQuestion):
		return "question is incomplete"
	case errors.Is(err, domain.ErrNotOwner):
		return "only the quiz owner can do that"
	default:
		return "saving failed, please retry"
	}
}
