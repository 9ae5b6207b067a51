package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/infrastructure/logging"
)

// DefaultSendTimeout bounds a fire-and-forget POST /send
const DefaultSendTimeout = 5 * time.Second

// RemoteError is a non-200 answer from the server. It unwraps to the
// matching bridge sentinel so errors.Is works across the transport.
type RemoteError struct {
	Status  int
	Message string
	kind    error
}

func (e *RemoteError) Error() string { return e.Message }
func (e *RemoteError) Unwrap() error { return e.kind }

// Client talks to a headless server. It implements bridge.Invoker and
// bridge.Events; pushes arrive once Listen is running.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
	local   *bridge.Bus

	connectedOnce sync.Once
	connected     chan struct{}
}

var (
	_ bridge.Invoker = (*Client)(nil)
	_ bridge.Events  = (*Client)(nil)
)

// NewClient creates a client for baseURL such as http://127.0.0.1:8787.
// A nil httpClient means a default one without an overall timeout so the
// event stream can stay open.
func NewClient(baseURL string, httpClient *http.Client, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      httpClient,
		logger:    logger,
		local:     bridge.NewBus(logger),
		connected: make(chan struct{}),
	}
}

// Invoke posts a command and returns the envelope as raw JSON
func (c *Client) Invoke(ctx context.Context, cmd bridge.Command, args ...any) (any, error) {
	body, status, err := c.post(ctx, "/invoke/"+cmd.String(), args)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, remoteError(status, body)
	}
	return json.RawMessage(body), nil
}

// Send posts a UI event; failures are logged, never returned
func (c *Client) Send(event bridge.Event, args ...any) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultSendTimeout)
	defer cancel()

	body, status, err := c.post(ctx, "/send/"+event.String(), args)
	if err != nil {
		c.logger.Warn("send failed", "event", event.String(), "error", err)
		return
	}
	if status != http.StatusAccepted {
		c.logger.Warn("send rejected", "event", event.String(), "status", status, "error", remoteError(status, body).Error())
	}
}

// On subscribes to a pushed event
func (c *Client) On(event bridge.Event, listener bridge.Listener) bridge.Subscription {
	return c.local.On(event, listener)
}

// Off removes a subscription
func (c *Client) Off(sub bridge.Subscription) {
	c.local.Off(sub)
}

// Connected is closed once the event stream has been established
func (c *Client) Connected() <-chan struct{} {
	return c.connected
}

// Ready checks /health/ready
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return remoteError(resp.StatusCode, body)
	}
	return nil
}

// Listen reads GET /events and dispatches pushes to On listeners until ctx
// is done or the server closes the stream
func (c *Client) Listen(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return remoteError(resp.StatusCode, body)
	}
	c.connectedOnce.Do(func() { close(c.connected) })

	err = readStream(resp.Body, func(name string, data []byte) {
		var args []any
		if len(data) > 0 {
			if err := json.Unmarshal(data, &args); err != nil {
				c.logger.Warn("bad event payload", "event", name, "error", err)
				return
			}
		}
		c.local.Send(bridge.Event(name), args...)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readStream parses text/event-stream frames
func readStream(r io.Reader, emit func(name string, data []byte)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)

	var name string
	var data bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name != "" || data.Len() > 0 {
				if name == "" {
					name = "message"
				}
				emit(name, data.Bytes())
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return sc.Err()
}

func (c *Client) post(ctx context.Context, path string, args []any) ([]byte, int, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(argsRequest{Args: args})
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func remoteError(status int, body []byte) error {
	var eb errResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	kind := kindForCode(eb.Code)
	if kind == nil {
		kind = kindForStatus(status)
	}
	return &RemoteError{Status: status, Message: msg, kind: kind}
}

func kindForCode(code string) error {
	switch code {
	case codeBadRequest:
		return ErrBadRequest
	case codeArity:
		return bridge.ErrArity
	case codeUnknownCommand:
		return bridge.ErrUnknownCommand
	case codeUnknownEvent:
		return bridge.ErrUnknownEvent
	case codeNotReady:
		return bridge.ErrNotReady
	case codePanic:
		return bridge.ErrHandlerPanic
	default:
		return nil
	}
}

// kindForStatus covers bodies without a code, such as proxy errors
func kindForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return bridge.ErrUnknownCommand
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusServiceUnavailable:
		return bridge.ErrNotReady
	default:
		return errors.New(http.StatusText(status))
	}
}
