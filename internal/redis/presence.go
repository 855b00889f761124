package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// PresenceStore mirrors online/last-seen state into Redis so other processes
// (and future horizontal replicas) can answer presence queries. The
// authoritative session bookkeeping stays in the in-process registry; this
// mirror is best-effort.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	presenceOnlineSet = "presence:online"
	lastSeenKeyPrefix = "presence:last_seen:"
	typingKeyPrefix   = "typing:"
)

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

func (p *PresenceStore) SetOnline(ctx context.Context, userID uuid.UUID) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, presenceOnlineSet, userID.String())
	pipe.Set(ctx, lastSeenKeyPrefix+userID.String(), time.Now().UTC().Format(time.RFC3339), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *PresenceStore) SetOffline(ctx context.Context, userID uuid.UUID) error {
	pipe := p.client.Pipeline()
	pipe.SRem(ctx, presenceOnlineSet, userID.String())
	pipe.Set(ctx, lastSeenKeyPrefix+userID.String(), time.Now().UTC().Format(time.RFC3339), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID.String()).Result()
}

func (p *PresenceStore) OnlineCount(ctx context.Context) (int64, error) {
	return p.client.SCard(ctx, presenceOnlineSet).Result()
}

func (p *PresenceStore) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	raw, err := p.client.Get(ctx, lastSeenKeyPrefix+userID.String()).Result()
	if err == goredis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// TrackTyping records a transient typing indicator. The key expires on its
// own so a crashed client cannot leave a peer "typing" forever.
func (p *PresenceStore) TrackTyping(ctx context.Context, from, to uuid.UUID, typing bool) error {
	key := fmt.Sprintf("%s%s:%s", typingKeyPrefix, from, to)
	if typing {
		return p.client.Set(ctx, key, "1", 10*time.Second).Err()
	}
	return p.client.Del(ctx, key).Err()
}

func (p *PresenceStore) IsTyping(ctx context.Context, from, to uuid.UUID) (bool, error) {
	key := fmt.Sprintf("%s%s:%s", typingKeyPrefix, from, to)
	n, err := p.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
