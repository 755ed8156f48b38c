package match

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const ttlToken = 7 * 24 * time.Hour

// RedisStore is the production Store: the live game record, the turn guard
// and token rows all live in redis. Guard acquisition maps to SetNX and the
// move commit runs as one WATCH transaction, so exclusivity and atomicity
// hold across processes.
type RedisStore struct {
    rdb *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL required for redis store")
    }
    opts, err := parseRedisURL(redisURL)
    if err != nil { return nil, err }
    rdb := redis.NewClient(opts)
    if err := rdb.Ping(context.Background()).Err(); err != nil {
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
    if s == nil || s.rdb == nil { return nil }
    return s.rdb.Close()
}

func keyGame(id string) string { return "wc:game:" + strings.TrimSpace(id) }
func keyActive() string        { return "wc:game:active" }
func keyGuard(gameID string, label TurnLabel) string {
    return "wc:guard:" + strings.TrimSpace(gameID) + ":" + string(label)
}
func keyToken(value string) string { return "wc:token:" + strings.TrimSpace(value) }
func keyTokenIdx(gameID string, purpose TokenPurpose) string {
    return "wc:token:index:" + strings.TrimSpace(gameID) + ":" + string(purpose)
}

func (s *RedisStore) ActiveGame(ctx context.Context) (*Game, error) {
    id, err := s.rdb.Get(ctx, keyActive()).Result()
    if err == redis.Nil { return nil, ErrNoActiveGame }
    if err != nil { return nil, err }
    g, err := s.GetGame(ctx, id)
    if err != nil { return nil, err }
    if g == nil { return nil, ErrNoActiveGame }
    return g, nil
}

func (s *RedisStore) GetGame(ctx context.Context, id string) (*Game, error) {
    raw, err := s.rdb.Get(ctx, keyGame(id)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var g Game
    if err := json.Unmarshal(raw, &g); err != nil { return nil, err }
    return &g, nil
}

func (s *RedisStore) CreateGame(ctx context.Context, g *Game) error {
    raw, err := json.Marshal(g)
    if err != nil { return err }
    pipe := s.rdb.TxPipeline()
    pipe.Set(ctx, keyGame(g.ID), raw, 0)
    pipe.Set(ctx, keyActive(), g.ID, 0)
    _, err = pipe.Exec(ctx)
    return err
}

// CommitGame writes the new game state, the optional guard release and the
// optional token consumption as a single transaction. Any concurrent writer
// or version mismatch aborts the whole commit.
func (s *RedisStore) CommitGame(ctx context.Context, c MoveCommit) error {
    if c.Game == nil { return fmt.Errorf("nil game in commit") }
    gameK := keyGame(c.Game.ID)
    watched := []string{gameK}
    if c.ConsumeToken != "" { watched = append(watched, keyToken(c.ConsumeToken)) }

    err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
        raw, err := tx.Get(ctx, gameK).Bytes()
        if err == redis.Nil { return fmt.Errorf("game %s not found", c.Game.ID) }
        if err != nil { return err }
        var cur Game
        if jerr := json.Unmarshal(raw, &cur); jerr != nil { return jerr }
        if cur.Version != c.ExpectVersion { return ErrVersionConflict }

        var spentToken []byte
        if c.ConsumeToken != "" {
            tokRaw, err := tx.Get(ctx, keyToken(c.ConsumeToken)).Bytes()
            if err == redis.Nil { return ErrTokenSpent }
            if err != nil { return err }
            var tok Token
            if jerr := json.Unmarshal(tokRaw, &tok); jerr != nil { return jerr }
            if tok.Used { return ErrTokenSpent }
            tok.Used = true
            spentToken, err = json.Marshal(&tok)
            if err != nil { return err }
        }

        newRaw, err := json.Marshal(c.Game)
        if err != nil { return err }

        pipe := tx.TxPipeline()
        pipe.Set(ctx, gameK, newRaw, 0)
        if c.ReleaseGuard != "" {
            pipe.Del(ctx, keyGuard(c.Game.ID, c.ReleaseGuard))
        }
        if spentToken != nil {
            pipe.Set(ctx, keyToken(c.ConsumeToken), spentToken, ttlToken)
        }
        _, err = pipe.Exec(ctx)
        return err
    }, watched...)

    if errors.Is(err, redis.TxFailedErr) {
        // concurrent update detected
        return ErrVersionConflict
    }
    return err
}

func (s *RedisStore) TryAcquireGuard(ctx context.Context, gameID string, label TurnLabel) (bool, error) {
    raw, err := json.Marshal(&Guard{GameID: gameID, Label: label, CreatedAt: time.Now()})
    if err != nil { return false, err }
    return s.rdb.SetNX(ctx, keyGuard(gameID, label), raw, 0).Result()
}

func (s *RedisStore) ReleaseGuard(ctx context.Context, gameID string, label TurnLabel) error {
    return s.rdb.Del(ctx, keyGuard(gameID, label)).Err()
}

func (s *RedisStore) GuardHeld(ctx context.Context, gameID string, label TurnLabel) (bool, error) {
    n, err := s.rdb.Exists(ctx, keyGuard(gameID, label)).Result()
    if err != nil { return false, err }
    return n > 0, nil
}

func (s *RedisStore) SaveToken(ctx context.Context, t *Token) error {
    if t == nil { return fmt.Errorf("nil token") }
    raw, err := json.Marshal(t)
    if err != nil { return err }
    pipe := s.rdb.TxPipeline()
    pipe.Set(ctx, keyToken(t.Value), raw, ttlToken)
    pipe.Set(ctx, keyTokenIdx(t.GameID, t.Purpose), t.Value, ttlToken)
    _, err = pipe.Exec(ctx)
    return err
}

func (s *RedisStore) GetToken(ctx context.Context, value string) (*Token, error) {
    raw, err := s.rdb.Get(ctx, keyToken(value)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var t Token
    if err := json.Unmarshal(raw, &t); err != nil { return nil, err }
    return &t, nil
}

func (s *RedisStore) TokenForGame(ctx context.Context, gameID string, purpose TokenPurpose) (*Token, error) {
    value, err := s.rdb.Get(ctx, keyTokenIdx(gameID, purpose)).Result()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    return s.GetToken(ctx, value)
}

func parseRedisURL(raw string) (*redis.Options, error) {
    u, err := url.Parse(raw)
    if err != nil { return nil, err }
    if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
    db := 0
    if p := strings.TrimPrefix(u.Path, "/"); p != "" { if n, err := strconv.Atoi(p); err == nil { db = n } }
    pass, _ := u.User.Password()
    return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
