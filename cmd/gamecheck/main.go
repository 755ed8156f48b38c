package main

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kapu/world-chess-go/pkg/gamedto"
)

// gamecheck probes a running world-chess server: health endpoint first, then
// the current game snapshot. Exit code reflects reachability.
func main() {
	baseURL := strings.TrimRight(os.Getenv("GAME_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	client := &fasthttp.Client{
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 8 * time.Second,
	}

	status, _, err := doGet(client, baseURL+"/healthz")
	if err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	if status != fasthttp.StatusOK {
		log.Fatalf("/healthz status %d", status)
	}
	log.Printf("/healthz ok")

	status, body, err := doGet(client, baseURL+"/game")
	if err != nil {
		log.Fatalf("/game error: %v", err)
	}
	if status != fasthttp.StatusOK {
		log.Fatalf("/game status %d: %s", status, body)
	}

	var state gamedto.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		log.Fatalf("/game decode error: %v", err)
	}
	log.Printf("/game ok: id=%s status=%s turn=%s version=%d fen=%q",
		state.ID, state.Status, state.TurnColor, state.Version, state.FEN)
	if state.History != "" {
		log.Printf("history: %s", state.History)
	}
}

func doGet(client *fasthttp.Client, url string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := client.DoDeadline(req, resp, time.Now().Add(8*time.Second)); err != nil {
		return 0, nil, err
	}
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}
