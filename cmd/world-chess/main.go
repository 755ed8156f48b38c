package main

import (
    "context"
    "encoding/json"
    "log"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/valyala/fasthttp"
    "go.uber.org/zap"

    "github.com/kapu/world-chess-go/internal/board"
    appcfg "github.com/kapu/world-chess-go/internal/config"
    "github.com/kapu/world-chess-go/internal/match"
    "github.com/kapu/world-chess-go/internal/msgcat"
    "github.com/kapu/world-chess-go/internal/notify"
    "github.com/kapu/world-chess-go/internal/obslog"
    "github.com/kapu/world-chess-go/internal/oracle"
    "github.com/kapu/world-chess-go/pkg/gamedto"
)

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }

    var store match.Store
    if strings.TrimSpace(cfg.RedisURL) != "" {
        store, err = match.NewRedisStore(cfg.RedisURL)
        if err != nil {
            log.Fatalf("redis store init error: %v", err)
        }
    } else {
        obslog.L().Warn("memory_store_active")
        store = match.NewMemoryStore()
    }

    catalog, err := msgcat.New(cfg.MessageDir)
    if err != nil {
        log.Fatalf("message catalog error: %v", err)
    }

    var notifier notify.Notifier = notify.Nop{}
    if strings.TrimSpace(cfg.NotifyWebhookURL) != "" {
        notifier = notify.NewWebhook(cfg.NotifyWebhookURL)
    }

    opts := []match.ManagerOption{
        match.WithNotifier(notifier),
        match.WithCatalog(catalog),
        match.WithTokenTTL(cfg.HostTokenTTL),
    }
    if cfg.InitialHostColor == "black" {
        opts = append(opts, match.WithInitialHostColor(board.Black))
    }

    var archive *match.Archive
    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        archive, err = match.NewArchive(cfg.DatabaseURL)
        if err != nil {
            log.Fatalf("archive init error: %v", err)
        }
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        if err := archive.EnsureSchema(ctx); err != nil {
            cancel()
            log.Fatalf("archive schema error: %v", err)
        }
        cancel()
        opts = append(opts, match.WithArchive(archive))
    }

    mgr := match.NewManager(store, oracle.NewLibraryOracle(), opts...)

    if _, err := mgr.Bootstrap(context.Background()); err != nil {
        log.Fatalf("bootstrap error: %v", err)
    }

    srv := &fasthttp.Server{
        Handler:      newHandler(mgr),
        ReadTimeout:  10 * time.Second,
        WriteTimeout: 10 * time.Second,
        Name:         "world-chess",
    }
    go func() {
        obslog.L().Info("server_start", zap.String("addr", cfg.ListenAddr))
        if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
            obslog.L().Fatal("server_error", zap.Error(err))
        }
    }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    <-sigCh

    obslog.L().Info("server_stop")
    _ = srv.Shutdown()
    _ = store.Close()
    _ = archive.Close()
}

func newHandler(mgr *match.Manager) fasthttp.RequestHandler {
    return func(ctx *fasthttp.RequestCtx) {
        path := string(ctx.Path())
        method := string(ctx.Method())
        switch {
        case path == "/game" && method == fasthttp.MethodGet:
            handleCurrent(ctx, mgr)
        case path == "/move" && method == fasthttp.MethodPost:
            handleMove(ctx, mgr, false)
        case path == "/host/move" && method == fasthttp.MethodPost:
            handleMove(ctx, mgr, true)
        case path == "/admin/reset" && method == fasthttp.MethodPost:
            handleReset(ctx, mgr)
        case path == "/admin/force-finish" && method == fasthttp.MethodPost:
            handleForceFinish(ctx, mgr)
        case path == "/healthz" && method == fasthttp.MethodGet:
            ctx.SetStatusCode(fasthttp.StatusOK)
            ctx.SetBodyString("ok")
        default:
            ctx.SetStatusCode(fasthttp.StatusNotFound)
        }
    }
}

func handleCurrent(ctx *fasthttp.RequestCtx, mgr *match.Manager) {
    g, err := mgr.Current(ctx)
    if err != nil {
        writeError(ctx, err)
        return
    }
    writeJSON(ctx, fasthttp.StatusOK, toState(g))
}

func handleMove(ctx *fasthttp.RequestCtx, mgr *match.Manager, host bool) {
    var req gamedto.MoveRequest
    if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
        writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "bad request body"})
        return
    }
    g, err := mgr.Current(ctx)
    if err != nil {
        writeError(ctx, err)
        return
    }
    mover := g.VisitorColor()
    if host {
        mover = g.HostColor
    }
    res, err := mgr.AcceptMove(ctx, mover, match.MoveRequest{
        From:      req.From,
        To:        req.To,
        Promotion: req.Promotion,
        Version:   req.Version,
        Token:     req.Token,
    })
    if err != nil {
        writeError(ctx, err)
        return
    }
    writeJSON(ctx, fasthttp.StatusOK, gamedto.MoveResponse{
        State:    toState(res.Game),
        SAN:      res.SAN,
        Finished: res.Finished,
    })
}

func handleReset(ctx *fasthttp.RequestCtx, mgr *match.Manager) {
    g, err := mgr.ResetToStart(ctx)
    if err != nil {
        writeError(ctx, err)
        return
    }
    writeJSON(ctx, fasthttp.StatusOK, toState(g))
}

func handleForceFinish(ctx *fasthttp.RequestCtx, mgr *match.Manager) {
    res, err := mgr.ForceFinish(ctx)
    if err != nil {
        writeError(ctx, err)
        return
    }
    writeJSON(ctx, fasthttp.StatusOK, gamedto.MoveResponse{State: toState(res.Game), Finished: true})
}

func toState(g *match.Game) *gamedto.GameState {
    return &gamedto.GameState{
        ID:           g.ID,
        FEN:          g.FEN,
        History:      g.History,
        LastMove:     g.LastMove,
        TurnColor:    g.TurnColor.String(),
        HostColor:    g.HostColor.String(),
        VisitorColor: g.VisitorColor().String(),
        Status:       string(g.Status),
        Result:       g.Result,
        Version:      g.Version,
        UpdatedAt:    g.UpdatedAt,
    }
}

func writeError(ctx *fasthttp.RequestCtx, err error) {
    code := gamedto.CodeOf(err)
    status := fasthttp.StatusInternalServerError
    switch code {
    case gamedto.CodeStaleState, gamedto.CodeTurnAlreadyTaken:
        status = fasthttp.StatusConflict
    case gamedto.CodeTokenMissing:
        status = fasthttp.StatusUnauthorized
    case gamedto.CodeTokenInvalid, gamedto.CodeTokenUsed, gamedto.CodeTokenExpired:
        status = fasthttp.StatusForbidden
    case gamedto.CodeGameOver, gamedto.CodeNotYourTurn:
        status = fasthttp.StatusConflict
    case "":
        status = fasthttp.StatusInternalServerError
    default:
        status = fasthttp.StatusUnprocessableEntity
    }
    body := map[string]string{"error": err.Error()}
    if code != "" {
        body["code"] = string(code)
    }
    writeJSON(ctx, status, body)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
    raw, err := json.Marshal(v)
    if err != nil {
        ctx.SetStatusCode(fasthttp.StatusInternalServerError)
        return
    }
    ctx.SetStatusCode(status)
    ctx.SetContentType("application/json")
    ctx.SetBody(raw)
}
