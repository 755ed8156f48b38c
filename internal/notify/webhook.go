package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Webhook posts move links as JSON to a configured delivery endpoint.
type Webhook struct {
	url  string
	http *fasthttp.Client

	timeout  time.Duration
	retryMax int
}

type Option func(*Webhook)

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.timeout = d }
}

func WithRetry(max int) Option {
	return func(w *Webhook) { w.retryMax = max }
}

func NewWebhook(url string, opts ...Option) *Webhook {
	w := &Webhook{
		url:      strings.TrimSpace(url),
		http:     &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		timeout:  10 * time.Second,
		retryMax: 3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Webhook) SendMoveLink(ctx context.Context, link MoveLink) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal move link: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(w.url)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	attempts := w.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := w.http.DoDeadline(req, resp, w.deadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return nil
			}
			err = fmt.Errorf("notify webhook status=%d body=%s", status, truncate(string(resp.Body()), 256))
			if status >= 400 && status < 500 {
				return err // not retryable
			}
		}
		lastErr = err
		if attempt < attempts {
			if serr := sleepWithContext(ctx, time.Duration(attempt)*500*time.Millisecond); serr != nil {
				return lastErr
			}
		}
	}
	return lastErr
}

func (w *Webhook) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(w.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
