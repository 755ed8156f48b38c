package match

import (
    "context"
    "database/sql"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"
)

// Archive keeps a permanent record of finished games in postgres. The live
// game never depends on it: archiving is fire-and-forget from the manager's
// point of view.
type Archive struct {
    db *sql.DB
}

func NewArchive(databaseURL string) (*Archive, error) {
    if strings.TrimSpace(databaseURL) == "" {
        return nil, fmt.Errorf("DATABASE_URL is required")
    }
    db, err := sql.Open("postgres", databaseURL)
    if err != nil { return nil, err }
    db.SetMaxOpenConns(8)
    db.SetMaxIdleConns(4)
    db.SetConnMaxLifetime(30 * time.Minute)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil { return nil, err }
    return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
    if a == nil || a.db == nil { return nil }
    return a.db.Close()
}

// EnsureSchema creates the archive table when it does not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
    const ddl = `CREATE TABLE IF NOT EXISTS finished_games (
        game_id     text PRIMARY KEY,
        host_color  text NOT NULL,
        result      text NOT NULL,
        reason      text NOT NULL,
        movetext    text NOT NULL,
        final_fen   text NOT NULL,
        started_at  timestamptz NOT NULL,
        finished_at timestamptz NOT NULL
    )`
    _, err := a.db.ExecContext(ctx, ddl)
    return err
}

// SaveFinished inserts the final state of a finished game. Replays of the
// same game id are ignored.
func (a *Archive) SaveFinished(ctx context.Context, g *Game) error {
    if a == nil || a.db == nil || g == nil { return nil }
    if g.Status != StatusFinished { return fmt.Errorf("game %s is not finished", g.ID) }

    const q = `INSERT INTO finished_games (
        game_id, host_color, result, reason, movetext, final_fen, started_at, finished_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
      ON CONFLICT (game_id) DO NOTHING`

    _, err := a.db.ExecContext(ctx, q,
        g.ID,
        g.HostColor.String(),
        g.Result,
        g.Reason,
        Movetext(g),
        g.FEN,
        g.CreatedAt,
        g.UpdatedAt,
    )
    return err
}

// Movetext renders the archived movetext: the accumulated history followed
// by the PGN result token.
func Movetext(g *Game) string {
    history := strings.TrimSpace(g.History)
    token := resultToken(g.Result)
    if history == "" { return token }
    return history + " " + token
}

func resultToken(result string) string {
    switch result {
    case "white":
        return "1-0"
    case "black":
        return "0-1"
    case "draw":
        return "1/2-1/2"
    default:
        return "*"
    }
}
