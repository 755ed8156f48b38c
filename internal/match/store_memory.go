package match

import (
    "context"
    "sync"
    "time"
)

// MemoryStore is a development and test Store kept entirely in process
// memory. It honors the same atomicity contract as the redis store by
// serializing every mutation behind one mutex.
type MemoryStore struct {
    mu sync.Mutex

    games    map[string]*Game
    activeID string
    guards   map[string]Guard  // gameID|label
    tokens   map[string]*Token // value
    tokenIdx map[string]string // gameID|purpose -> value
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{
        games:    make(map[string]*Game),
        guards:   make(map[string]Guard),
        tokens:   make(map[string]*Token),
        tokenIdx: make(map[string]string),
    }
}

func (s *MemoryStore) Close() error { return nil }

func guardKey(gameID string, label TurnLabel) string { return gameID + "|" + string(label) }
func tokenIdxKey(gameID string, purpose TokenPurpose) string {
    return gameID + "|" + string(purpose)
}

func (s *MemoryStore) ActiveGame(ctx context.Context) (*Game, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.games[s.activeID]
    if s.activeID == "" || !ok { return nil, ErrNoActiveGame }
    cp := *g
    return &cp, nil
}

func (s *MemoryStore) GetGame(ctx context.Context, id string) (*Game, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.games[id]
    if !ok { return nil, nil }
    cp := *g
    return &cp, nil
}

func (s *MemoryStore) CreateGame(ctx context.Context, g *Game) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cp := *g
    s.games[g.ID] = &cp
    s.activeID = g.ID
    return nil
}

func (s *MemoryStore) CommitGame(ctx context.Context, c MoveCommit) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cur, ok := s.games[c.Game.ID]
    if !ok { return ErrNoActiveGame }
    if cur.Version != c.ExpectVersion { return ErrVersionConflict }

    var spent *Token
    if c.ConsumeToken != "" {
        tok, ok := s.tokens[c.ConsumeToken]
        if !ok || tok.Used { return ErrTokenSpent }
        cp := *tok
        cp.Used = true
        spent = &cp
    }

    cp := *c.Game
    s.games[c.Game.ID] = &cp
    if c.ReleaseGuard != "" {
        delete(s.guards, guardKey(c.Game.ID, c.ReleaseGuard))
    }
    if spent != nil {
        s.tokens[spent.Value] = spent
    }
    return nil
}

func (s *MemoryStore) TryAcquireGuard(ctx context.Context, gameID string, label TurnLabel) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    key := guardKey(gameID, label)
    if _, exists := s.guards[key]; exists { return false, nil }
    s.guards[key] = Guard{GameID: gameID, Label: label, CreatedAt: time.Now()}
    return true, nil
}

func (s *MemoryStore) ReleaseGuard(ctx context.Context, gameID string, label TurnLabel) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.guards, guardKey(gameID, label))
    return nil
}

func (s *MemoryStore) GuardHeld(ctx context.Context, gameID string, label TurnLabel) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    _, held := s.guards[guardKey(gameID, label)]
    return held, nil
}

func (s *MemoryStore) SaveToken(ctx context.Context, t *Token) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cp := *t
    s.tokens[t.Value] = &cp
    s.tokenIdx[tokenIdxKey(t.GameID, t.Purpose)] = t.Value
    return nil
}

func (s *MemoryStore) GetToken(ctx context.Context, value string) (*Token, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.tokens[value]
    if !ok { return nil, nil }
    cp := *t
    return &cp, nil
}

func (s *MemoryStore) TokenForGame(ctx context.Context, gameID string, purpose TokenPurpose) (*Token, error) {
    s.mu.Lock()
    value, ok := s.tokenIdx[tokenIdxKey(gameID, purpose)]
    s.mu.Unlock()
    if !ok { return nil, nil }
    return s.GetToken(ctx, value)
}
