/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events and crash reports.
// Nothing leaves the machine unless SKF_TELEMETRY_OPT_IN is set and an
// endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	applog "skinforge/internal/log"
	"skinforge/internal/version"
)

// Config controls the client.
//
// Environment variables (read by FromEnv):
//   - SKF_TELEMETRY_OPT_IN: "1", "true", "yes" or "on" to enable events
//   - SKF_TELEMETRY_URL: endpoint that receives JSON events
//   - SKF_CRASH_UPLOAD_URL: endpoint that receives crash reports
//   - SKF_TELEMETRY_TIMEOUT_MS: request timeout, default 1500
//   - SKF_TELEMETRY_DEBUG: log every send attempt
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

const (
	defaultTimeout = 1500 * time.Millisecond
	queueSize      = 64
	eventsPerSec   = 4
	eventBurst     = 16
)

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("SKF_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("SKF_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("SKF_CRASH_UPLOAD_URL")),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv("SKF_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("SKF_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Client queues events and posts them from a single goroutine. Event never
// blocks: a full queue or an exhausted rate budget drops the event.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	lim    *rate.Limiter
	q      chan map[string]any
	once   sync.Once
	closed chan struct{}
	wg     sync.WaitGroup
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault installs a default client built from the environment.
func InitDefault() {
	defaultOnce.Do(func() {
		if defaultClient == nil {
			defaultClient = New(FromEnv())
		}
	})
}

// NewDefault replaces the default client with one built from cfg.
func NewDefault(cfg Config) {
	defaultOnce.Do(func() {})
	old := defaultClient
	defaultClient = New(cfg)
	old.Close()
}

// Default returns the package client, creating it from the environment if needed.
func Default() *Client {
	InitDefault()
	return defaultClient
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		lim:    rate.NewLimiter(rate.Limit(eventsPerSec), eventBurst),
		q:      make(chan map[string]any, queueSize),
		closed: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Enabled reports whether events will be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

func Enabled() bool { return Default().Enabled() }

// Event queues a named event. props must not carry user content such as
// project names or file paths.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	if !c.lim.Allow() {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		if _, reserved := payload[k]; reserved {
			continue
		}
		payload[k] = v
	}
	select {
	case <-c.closed:
	case c.q <- payload:
	default:
	}
}

func Event(name string, props map[string]any) { Default().Event(name, props) }

// Flush waits up to half a second for queued events to go out.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.q) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender. Queued events that were not sent are dropped.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.closed) })
	c.wg.Wait()
}

func (c *Client) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.closed:
			return
		case item := <-c.q:
			buf, err := json.Marshal(item)
			if err != nil {
				continue
			}
			c.post(c.cfg.EventsURL, "application/json", buf, "event")
		}
	}
}

func (c *Client) post(url, contentType string, body []byte, kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry send failed", slog.String("kind", kind), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry sent", slog.String("kind", kind), slog.Int("status", resp.StatusCode))
	}
}

// UploadCrash posts a crash report synchronously; the process is about to
// exit when this runs.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", report, "crash")
}

func UploadCrash(report []byte) { Default().UploadCrash(report) }
