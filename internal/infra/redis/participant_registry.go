package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/domain"
)

// ParticipantRegistry stores joined participants in one hash per quiz.
// HSETNX keeps records write-once: a rejoin with a cached id never clobbers
// the original registration.
type ParticipantRegistry struct {
	client *redis.Client
}

func NewParticipantRegistry(client *redis.Client) *ParticipantRegistry {
	return &ParticipantRegistry{client: client}
}

func (r *ParticipantRegistry) Put(ctx context.Context, p domain.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	return r.client.HSetNX(ctx, r.key(p.QuizID), p.ID, data).Err()
}

func (r *ParticipantRegistry) Get(ctx context.Context, quizID, participantID string) (domain.Participant, bool, error) {
	raw, err := r.client.HGet(ctx, r.key(quizID), participantID).Result()
	if err == redis.Nil {
		return domain.Participant{}, false, nil
	}
	if err != nil {
		return domain.Participant{}, false, err
	}
	var p domain.Participant
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Participant{}, false, fmt.Errorf("unmarshal participant: %w", err)
	}
	return p, true, nil
}

func (r *ParticipantRegistry) ListByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error) {
	raw, err := r.client.HGetAll(ctx, r.key(quizID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Participant, 0, len(raw))
	for _, v := range raw {
		var p domain.Participant
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ParticipantRegistry) key(quizID string) string {
	return "quiz:" + quizID + ":participants"
}
