package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"nxtours/src/config"
	"nxtours/src/lib"

	"github.com/redis/go-redis/v9"
)

// ErrDraftNotFound means the session id matches no live draft; the draft
// either never existed or its TTL lapsed.
var ErrDraftNotFound = errors.New("checkout draft not found")

// DraftStore keeps in-progress checkout drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, s State) error
	Get(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
}

var draftStore DraftStore

func GetDraftStore() DraftStore {
	if draftStore != nil {
		return draftStore
	}
	draftStore = &RedisDraftStore{}
	return draftStore
}

// NewDraftStore replaces the store instance with a custom implementation.
func NewDraftStore(s DraftStore) DraftStore {
	draftStore = s
	return draftStore
}

// RedisDraftStore persists drafts as JSON values with the configured draft
// TTL, keyed by session id.
type RedisDraftStore struct{}

func draftKey(sessionID string) string {
	return fmt.Sprintf("checkout:draft:%s", sessionID)
}

func (r *RedisDraftStore) Save(ctx context.Context, s State) error {
	rd := lib.GetRedisClient()
	body, err := json.Marshal(&s)
	if err != nil {
		return err
	}
	if err := rd.Set(ctx, draftKey(s.SessionID), string(body), config.DraftTTL()).Err(); err != nil {
		log.Printf("Failed to save draft %s: %s\n", s.SessionID, err.Error())
		return err
	}
	return nil
}

func (r *RedisDraftStore) Get(ctx context.Context, sessionID string) (*State, error) {
	rd := lib.GetRedisClient()
	val, err := rd.Get(ctx, draftKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	} else if err != nil {
		log.Printf("Error reading draft %s from cache: %s\n", sessionID, err.Error())
		return nil, err
	}
	var s State
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisDraftStore) Delete(ctx context.Context, sessionID string) error {
	rd := lib.GetRedisClient()
	return rd.Del(ctx, draftKey(sessionID)).Err()
}
