package storage

import (
	"context"
	"convention-scheduler-server/models"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const DraftTTL = 24 * time.Hour

// Draft is the unsaved state of an editor session.
type Draft struct {
	ConventionID uint                   `json:"conventionID"`
	Events       []models.ScheduleEvent `json:"events"`
	DirtyKeys    []string               `json:"dirtyKeys"`
	SavedAt      time.Time              `json:"savedAt"`
}

// ErrNoDraft is returned when a session has no stored draft.
var ErrNoDraft = errors.New("no draft stored")

// RedisDrafts snapshots editor sessions into Redis.
type RedisDrafts struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDrafts(client *redis.Client) *RedisDrafts {
	return &RedisDrafts{client: client, ttl: DraftTTL}
}

func draftKey(conventionID uint, sessionID string) string {
	return fmt.Sprintf("draft:convention:%d:session:%s", conventionID, sessionID)
}

func (d *RedisDrafts) SaveDraft(ctx context.Context, sessionID string, draft Draft) error {
	draft.SavedAt = time.Now()
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, draftKey(draft.ConventionID, sessionID), payload, d.ttl).Err()
}

func (d *RedisDrafts) LoadDraft(ctx context.Context, conventionID uint, sessionID string) (*Draft, error) {
	payload, err := d.client.Get(ctx, draftKey(conventionID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (d *RedisDrafts) ClearDraft(ctx context.Context, conventionID uint, sessionID string) error {
	return d.client.Del(ctx, draftKey(conventionID, sessionID)).Err()
}
