package match

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/kapu/world-chess-go/internal/board"
    "github.com/kapu/world-chess-go/internal/msgcat"
    "github.com/kapu/world-chess-go/internal/notify"
    "github.com/kapu/world-chess-go/internal/obslog"
    "github.com/kapu/world-chess-go/internal/oracle"
    "github.com/kapu/world-chess-go/pkg/gamedto"
)

// Manager is the turn state machine. It owns the authoritative game record
// and every transition on it: accept-move, finish, next-game creation and
// the admin operations. All collaborators arrive explicitly, so tests run it
// against an in-memory store and a deterministic oracle.
type Manager struct {
    store       Store
    rules       oracle.RulesOracle
    notifier    notify.Notifier
    archive     *Archive
    catalog     *msgcat.Catalog
    tokenTTL    time.Duration
    initialHost board.Color
}

type ManagerOption func(*Manager)

func WithNotifier(n notify.Notifier) ManagerOption {
    return func(m *Manager) { if n != nil { m.notifier = n } }
}

func WithArchive(a *Archive) ManagerOption {
    return func(m *Manager) { m.archive = a }
}

func WithCatalog(c *msgcat.Catalog) ManagerOption {
    return func(m *Manager) { m.catalog = c }
}

func WithTokenTTL(d time.Duration) ManagerOption {
    return func(m *Manager) { if d > 0 { m.tokenTTL = d } }
}

func WithInitialHostColor(c board.Color) ManagerOption {
    return func(m *Manager) { if c == board.White || c == board.Black { m.initialHost = c } }
}

func NewManager(store Store, rules oracle.RulesOracle, opts ...ManagerOption) *Manager {
    m := &Manager{
        store:       store,
        rules:       rules,
        notifier:    notify.Nop{},
        tokenTTL:    72 * time.Hour,
        initialHost: board.White,
    }
    for _, opt := range opts { opt(m) }
    return m
}

// MoveRequest is one inbound move submission.
type MoveRequest struct {
    From      string
    To        string
    Promotion string
    Version   int64
    Token     string // required for host moves
}

// MoveResult reports a committed move, and the follow-up game when the move
// ended the contest.
type MoveResult struct {
    Game     *Game
    SAN      string
    Finished bool
    NextGame *Game
}

// Bootstrap makes sure exactly one active game exists, creating the initial
// one on first start.
func (m *Manager) Bootstrap(ctx context.Context) (*Game, error) {
    g, err := m.store.ActiveGame(ctx)
    if err == nil { return g, nil }
    if !errors.Is(err, ErrNoActiveGame) { return nil, err }
    return m.newGame(ctx, m.initialHost)
}

// Current returns the active game. A game left with an unresolved game-over
// check (oracle unavailable at commit time) is re-checked here and settled
// retroactively.
func (m *Manager) Current(ctx context.Context) (*Game, error) {
    g, err := m.store.ActiveGame(ctx)
    if err != nil { return nil, err }
    if g.Status != StatusActive || !g.OraclePending { return g, nil }

    verdict, oerr := m.rules.Verdict(ctx, g.FEN)
    if oerr != nil {
        obslog.L().Warn("oracle_unavailable", zap.String("game_id", g.ID), zap.Error(oerr))
        return g, nil // still pending, try again on next access
    }

    ng := *g
    ng.OraclePending = false
    m.settleVerdict(&ng, verdict)
    ng.Version = g.Version + 1
    ng.UpdatedAt = time.Now()

    commit := MoveCommit{Game: &ng, ExpectVersion: g.Version}
    if ng.Status == StatusFinished { commit.ReleaseGuard = GuardVisitorTurn }
    if err := m.store.CommitGame(ctx, commit); err != nil {
        if errors.Is(err, ErrVersionConflict) {
            // someone else settled it first
            return m.store.ActiveGame(ctx)
        }
        return nil, err
    }
    obslog.L().Info("oracle_resolved",
        zap.String("game_id", ng.ID),
        zap.String("status", string(ng.Status)),
        zap.String("reason", ng.Reason),
    )
    if ng.Status == StatusFinished {
        if _, err := m.finishFollowUp(ctx, &ng); err != nil { return nil, err }
    }
    return &ng, nil
}

// AcceptMove runs the full accept-move transition for mover against the
// active game: optimistic version check, turn-guard or token exclusivity,
// structural move application, history append, oracle consultation and one
// atomic commit.
func (m *Manager) AcceptMove(ctx context.Context, mover board.Color, req MoveRequest) (*MoveResult, error) {
    g, err := m.store.ActiveGame(ctx)
    if err != nil { return nil, err }

    if g.Status != StatusActive {
        return nil, gamedto.Reject(gamedto.CodeGameOver, "the game is already over")
    }
    if mover != g.TurnColor {
        return nil, gamedto.Reject(gamedto.CodeNotYourTurn, fmt.Sprintf("it is %s's turn", g.TurnColor))
    }

    isHost := mover == g.HostColor

    var hostToken *Token
    if isHost {
        hostToken, err = m.ValidateToken(ctx, req.Token, false, false)
        if err != nil { return nil, err }
        if hostToken.GameID != g.ID || hostToken.Purpose != PurposeHostMove {
            return nil, gamedto.Reject(gamedto.CodeTokenInvalid, "token does not authorize a move in this game")
        }
    }

    guardAcquired := false
    if !isHost {
        won, gerr := m.store.TryAcquireGuard(ctx, g.ID, GuardVisitorTurn)
        if gerr != nil { return nil, gerr }
        if !won {
            obslog.L().Info("turn_guard_lost", zap.String("game_id", g.ID))
            return nil, gamedto.Race(gamedto.CodeTurnAlreadyTaken, "a move was already accepted for this turn")
        }
        guardAcquired = true
    }

    rollback := func() {
        if guardAcquired {
            if rerr := m.store.ReleaseGuard(ctx, g.ID, GuardVisitorTurn); rerr != nil {
                obslog.L().Error("turn_guard_release_error", zap.String("game_id", g.ID), zap.Error(rerr))
            }
        }
    }

    if req.Version != g.Version {
        rollback()
        return nil, gamedto.Race(gamedto.CodeStaleState, "the board changed since you last looked")
    }

    mv, err := parseMove(req)
    if err != nil { rollback(); return nil, err }

    pos, err := board.ParseFEN(g.FEN)
    if err != nil { rollback(); return nil, fmt.Errorf("stored position corrupt: %w", err) }

    next, err := board.Apply(pos, mv, mover)
    if err != nil { rollback(); return nil, err }

    san := board.SAN(pos, mv)

    ng := *g
    ng.FEN = next.FEN()
    ng.History = board.AppendHistory(g.History, mover, san, next)
    ng.LastMove = san
    ng.Version = g.Version + 1
    ng.UpdatedAt = time.Now()
    ng.OraclePending = false
    ng.TurnColor = mover.Opposite()

    verdict, oerr := m.rules.Verdict(ctx, ng.FEN)
    if oerr != nil {
        // Move still commits; the game-over question stays open and is
        // re-asked on next access rather than guessed either way.
        ng.OraclePending = true
        obslog.L().Warn("oracle_unavailable", zap.String("game_id", g.ID), zap.Error(oerr))
    } else {
        m.settleVerdict(&ng, verdict)
    }

    commit := MoveCommit{Game: &ng, ExpectVersion: g.Version}
    if isHost {
        commit.ReleaseGuard = GuardVisitorTurn
        commit.ConsumeToken = hostToken.Value
    }
    if ng.Status == StatusFinished { commit.ReleaseGuard = GuardVisitorTurn }

    if err := m.store.CommitGame(ctx, commit); err != nil {
        rollback()
        if errors.Is(err, ErrVersionConflict) {
            return nil, gamedto.Race(gamedto.CodeStaleState, "the board changed since you last looked")
        }
        if errors.Is(err, ErrTokenSpent) {
            return nil, gamedto.Reject(gamedto.CodeTokenUsed, "this move link was already used")
        }
        return nil, err
    }

    obslog.L().Info("move_accept",
        zap.String("game_id", ng.ID),
        zap.String("mover", mover.String()),
        zap.Bool("host", isHost),
        zap.String("san", san),
        zap.Int64("version", ng.Version),
        zap.String("status", string(ng.Status)),
    )

    res := &MoveResult{Game: &ng, SAN: san, Finished: ng.Status == StatusFinished}
    if res.Finished {
        nextGame, err := m.finishFollowUp(ctx, &ng)
        if err != nil { return nil, err }
        res.NextGame = nextGame
    } else if !isHost {
        // The world has moved; hand the host its single-use link.
        m.inviteHost(ctx, &ng, "notify.host_turn", san)
    }
    return res, nil
}

// CreateNextGame starts the successor contest: host color flipped, white to
// move from the standard start position.
func (m *Manager) CreateNextGame(ctx context.Context, finished *Game) (*Game, error) {
    if finished == nil || finished.Status != StatusFinished {
        return nil, fmt.Errorf("next game requires a finished game")
    }
    return m.newGame(ctx, finished.HostColor.Opposite())
}

// ResetToStart abandons the current game (if any) and seeds a fresh one with
// the same host color. Outstanding tokens and guards die with the old game.
func (m *Manager) ResetToStart(ctx context.Context) (*Game, error) {
    hostColor := m.initialHost
    g, err := m.store.ActiveGame(ctx)
    if err != nil && !errors.Is(err, ErrNoActiveGame) { return nil, err }
    if err == nil {
        hostColor = g.HostColor
        if g.Status == StatusActive {
            if _, err := m.closeGame(ctx, g, "reset", ""); err != nil { return nil, err }
        }
    }
    obslog.L().Info("admin_reset", zap.String("host_color", hostColor.String()))
    return m.newGame(ctx, hostColor)
}

// ForceFinish ends the active game by fiat and rolls the lifecycle forward
// exactly like a natural finish, including the flipped-color next game.
func (m *Manager) ForceFinish(ctx context.Context) (*MoveResult, error) {
    g, err := m.store.ActiveGame(ctx)
    if err != nil { return nil, err }
    if g.Status != StatusActive {
        return nil, gamedto.Reject(gamedto.CodeGameOver, "the game is already over")
    }
    ng, err := m.closeGame(ctx, g, "forced", "")
    if err != nil { return nil, err }
    obslog.L().Info("game_force_finish", zap.String("game_id", ng.ID))
    nextGame, err := m.finishFollowUp(ctx, ng)
    if err != nil { return nil, err }
    return &MoveResult{Game: ng, Finished: true, NextGame: nextGame}, nil
}

// closeGame commits the transition of g to FINISHED with the given reason,
// releasing the visitor guard in the same atomic unit.
func (m *Manager) closeGame(ctx context.Context, g *Game, reason, result string) (*Game, error) {
    ng := *g
    ng.Status = StatusFinished
    ng.Reason = reason
    ng.Result = result
    ng.OraclePending = false
    ng.Version = g.Version + 1
    ng.UpdatedAt = time.Now()
    commit := MoveCommit{Game: &ng, ExpectVersion: g.Version, ReleaseGuard: GuardVisitorTurn}
    if err := m.store.CommitGame(ctx, commit); err != nil {
        if errors.Is(err, ErrVersionConflict) {
            return nil, gamedto.Race(gamedto.CodeStaleState, "the board changed since you last looked")
        }
        return nil, err
    }
    return &ng, nil
}

// finishFollowUp archives the finished game (best effort) and creates its
// successor.
func (m *Manager) finishFollowUp(ctx context.Context, finished *Game) (*Game, error) {
    obslog.L().Info("game_finish",
        zap.String("game_id", finished.ID),
        zap.String("result", finished.Result),
        zap.String("reason", finished.Reason),
    )
    if m.archive != nil {
        if err := m.archive.SaveFinished(ctx, finished); err != nil {
            obslog.L().Error("archive_error", zap.String("game_id", finished.ID), zap.Error(err))
        }
    }
    return m.CreateNextGame(ctx, finished)
}

func (m *Manager) newGame(ctx context.Context, hostColor board.Color) (*Game, error) {
    now := time.Now()
    g := &Game{
        ID:        uuid.NewString(),
        HostColor: hostColor,
        TurnColor: board.White,
        Status:    StatusActive,
        FEN:       board.StartFEN,
        Version:   1,
        CreatedAt: now,
        UpdatedAt: now,
    }
    if err := m.store.CreateGame(ctx, g); err != nil { return nil, err }
    obslog.L().Info("game_create",
        zap.String("game_id", g.ID),
        zap.String("host_color", g.HostColor.String()),
    )
    if g.HostColor == board.White {
        // The host opens; pre-issue the link so play can start without a
        // notification round trip.
        m.inviteHost(ctx, g, "notify.host_opens", "")
    }
    return g, nil
}

func (m *Manager) settleVerdict(g *Game, v oracle.Verdict) {
    if !v.Over { return }
    g.Status = StatusFinished
    g.Reason = string(v.Reason)
    switch v.Winner {
    case board.White:
        g.Result = "white"
    case board.Black:
        g.Result = "black"
    default:
        g.Result = "draw"
    }
}

// inviteHost issues (or reuses) the host token and hands it to the delivery
// collaborator. Failures here are warning surfaces only.
func (m *Manager) inviteHost(ctx context.Context, g *Game, messageKey, lastMove string) {
    tok, err := m.EnsureHostToken(ctx, g.ID)
    if err != nil {
        obslog.L().Error("token_issue_error", zap.String("game_id", g.ID), zap.Error(err))
        return
    }
    link := notify.MoveLink{
        GameID:    g.ID,
        Token:     tok.Value,
        ExpiresAt: tok.ExpiresAt(m.tokenTTL),
        LastMove:  lastMove,
    }
    if m.catalog != nil {
        msg, rerr := m.catalog.Render(messageKey, map[string]any{
            "LastMove":  lastMove,
            "ExpiresAt": link.ExpiresAt.Format("2006-01-02 15:04 MST"),
        })
        if rerr == nil { link.Message = msg }
    }
    if err := m.notifier.SendMoveLink(ctx, link); err != nil {
        obslog.L().Warn("notify_fail", zap.String("game_id", g.ID), zap.Error(err))
    }
}

// EnsureHostToken returns the live host-move token for the game, minting one
// only when none exists or the existing one is used or expired.
func (m *Manager) EnsureHostToken(ctx context.Context, gameID string) (*Token, error) {
    existing, err := m.store.TokenForGame(ctx, gameID, PurposeHostMove)
    if err != nil { return nil, err }
    if existing != nil && !existing.Used && time.Now().Before(existing.ExpiresAt(m.tokenTTL)) {
        return existing, nil
    }
    tok := &Token{
        Value:     newTokenValue(),
        GameID:    gameID,
        Purpose:   PurposeHostMove,
        CreatedAt: time.Now(),
    }
    if err := m.store.SaveToken(ctx, tok); err != nil { return nil, err }
    obslog.L().Info("token_issue", zap.String("game_id", gameID))
    return tok, nil
}

// ValidateToken checks a presented token value. allowUsed and allowExpired
// widen the check for inspection surfaces; move submission uses the strict
// form.
func (m *Manager) ValidateToken(ctx context.Context, value string, allowUsed, allowExpired bool) (*Token, error) {
    if value == "" {
        return nil, gamedto.Reject(gamedto.CodeTokenMissing, "a move link token is required")
    }
    tok, err := m.store.GetToken(ctx, value)
    if err != nil { return nil, err }
    if tok == nil {
        return nil, gamedto.Reject(gamedto.CodeTokenMissing, "unknown move link token")
    }
    if tok.Purpose != PurposeHostMove {
        return nil, gamedto.Reject(gamedto.CodeTokenInvalid, "token purpose mismatch")
    }
    if tok.Used && !allowUsed {
        return nil, gamedto.Reject(gamedto.CodeTokenUsed, "this move link was already used")
    }
    if !allowExpired && time.Now().After(tok.ExpiresAt(m.tokenTTL)) {
        return nil, gamedto.Reject(gamedto.CodeTokenExpired, "this move link has expired")
    }
    return tok, nil
}

func parseMove(req MoveRequest) (board.Move, error) {
    from, err := board.ParseSquare(req.From)
    if err != nil {
        return board.Move{}, gamedto.Reject(gamedto.CodeIllegalGeometry, err.Error())
    }
    to, err := board.ParseSquare(req.To)
    if err != nil {
        return board.Move{}, gamedto.Reject(gamedto.CodeIllegalGeometry, err.Error())
    }
    promo := board.NoKind
    if req.Promotion != "" {
        kind, ok := board.ParsePromotion(req.Promotion)
        if !ok {
            return board.Move{}, gamedto.Reject(gamedto.CodeInvalidPromotion,
                fmt.Sprintf("cannot promote to %q", req.Promotion))
        }
        promo = kind
    }
    return board.Move{From: from, To: to, Promotion: promo}, nil
}

func newTokenValue() string {
    b := make([]byte, 16)
    if _, err := rand.Read(b); err == nil {
        return hex.EncodeToString(b)
    }
    // crypto/rand failing is effectively fatal; uuid keeps tokens unique.
    return uuid.NewString()
}
