package match

import (
    "context"
    "errors"
)

// ErrNoActiveGame is returned by stores when no game is currently active.
var ErrNoActiveGame = errors.New("no active game")

// ErrVersionConflict is returned by CommitGame when the stored game's version
// no longer matches the expected one. The manager translates it into the
// STALE_STATE rejection.
var ErrVersionConflict = errors.New("game version conflict")

// ErrTokenSpent is returned by CommitGame when the token to consume was
// already marked used. A spent token never revalidates, even when the
// surrounding transaction is retried.
var ErrTokenSpent = errors.New("token already used")

// MoveCommit is one atomic mutation of the game record plus its companions.
// Either everything in it is applied or nothing is: the new game state, the
// optional guard release, and the optional token consumption commit together.
type MoveCommit struct {
    Game          *Game
    ExpectVersion int64
    ReleaseGuard  TurnLabel // "" = leave guard state untouched
    ConsumeToken  string    // "" = no token involved
}

// Store is the storage handle every core operation receives explicitly, so
// tests can substitute an in-memory implementation for the redis one.
type Store interface {
    // ActiveGame returns the single active game or ErrNoActiveGame.
    ActiveGame(ctx context.Context) (*Game, error)
    GetGame(ctx context.Context, id string) (*Game, error)
    // CreateGame persists a new game and marks it as the active one.
    CreateGame(ctx context.Context, g *Game) error
    // CommitGame applies one MoveCommit atomically, failing with
    // ErrVersionConflict when ExpectVersion does not match the stored row.
    CommitGame(ctx context.Context, c MoveCommit) error

    // TryAcquireGuard atomically inserts the guard row if absent. Exactly
    // one concurrent caller for a given (game, label) observes true.
    TryAcquireGuard(ctx context.Context, gameID string, label TurnLabel) (bool, error)
    ReleaseGuard(ctx context.Context, gameID string, label TurnLabel) error
    GuardHeld(ctx context.Context, gameID string, label TurnLabel) (bool, error)

    SaveToken(ctx context.Context, t *Token) error
    // GetToken returns nil without error when the value is unknown.
    GetToken(ctx context.Context, value string) (*Token, error)
    // TokenForGame returns the current token for (game, purpose), nil when
    // none was issued.
    TokenForGame(ctx context.Context, gameID string, purpose TokenPurpose) (*Token, error)

    Close() error
}
