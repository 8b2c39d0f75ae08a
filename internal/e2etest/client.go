package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/justinas/nosurf"
	"github.com/myrjola/murderai/internal/detective"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/models"
)

var ErrUnexpectedStatus = errors.NewSentinel("unexpected status code")

// Client plays the game through the JSON API. It keeps cookies so that the server can recognise the current game.
type Client struct {
	client    *http.Client
	url       string
	csrfToken string
}

// NewClient creates a cookie-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client:    &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine
		url:       url,
		csrfToken: "",
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetJSON fetches a URL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) error {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return errors.Wrap(err, "client get")
	}
	return decodeResponse(resp, out)
}

// PostJSON sends in as the JSON body and decodes the response into out. The CSRF token is fetched on first use.
func (c *Client) PostJSON(ctx context.Context, urlPath string, in, out any) error {
	if c.csrfToken == "" {
		var token struct {
			CSRFToken string `json:"csrf_token"`
		}
		if err := c.GetJSON(ctx, "/api/csrf", &token); err != nil {
			return errors.Wrap(err, "fetch CSRF token")
		}
		c.csrfToken = token.CSRFToken
	}
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}
	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, bytes.NewReader(body)); err != nil {
		return errors.Wrap(err, "create request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(nosurf.HeaderName, c.csrfToken)
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return errors.Wrap(err, "do request")
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return errors.Wrap(ErrUnexpectedStatus, "decode response", slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// StartGame opens a new game and makes it the current game of this client.
func (c *Client) StartGame(ctx context.Context, difficulty string) (game.Snapshot, error) {
	var s game.Snapshot
	err := c.PostJSON(ctx, "/api/games", map[string]string{"difficulty": difficulty}, &s)
	return s, errors.Wrap(err, "start game")
}

// CurrentGame returns the game this client started last.
func (c *Client) CurrentGame(ctx context.Context) (game.Snapshot, error) {
	var s game.Snapshot
	err := c.GetJSON(ctx, "/api/games/current", &s)
	return s, errors.Wrap(err, "get current game")
}

func (c *Client) Game(ctx context.Context, id string) (game.Snapshot, error) {
	var s game.Snapshot
	err := c.GetJSON(ctx, "/api/games/"+id, &s)
	return s, errors.Wrap(err, "get game")
}

// Question asks a suspect and returns the reply.
func (c *Client) Question(ctx context.Context, id, suspectID, question string) (string, error) {
	var reply struct {
		Response string `json:"response"`
	}
	err := c.PostJSON(ctx, "/api/games/"+id+"/questions",
		map[string]string{"suspect_id": suspectID, "question": question}, &reply)
	return reply.Response, errors.Wrap(err, "question suspect")
}

func (c *Client) UseTool(ctx context.Context, id string, tool game.Tool, args map[string]string) (game.ToolResult, error) {
	var result game.ToolResult
	err := c.PostJSON(ctx, "/api/games/"+id+"/tools/"+string(tool), args, &result)
	return result, errors.Wrap(err, "use tool")
}

func (c *Client) Accuse(ctx context.Context, id, suspectID string) (game.Outcome, error) {
	var outcome game.Outcome
	err := c.PostJSON(ctx, "/api/games/"+id+"/accusations", map[string]string{"suspect_id": suspectID}, &outcome)
	return outcome, errors.Wrap(err, "accuse")
}

// Autoplay lets the built-in detective play one turn.
func (c *Client) Autoplay(ctx context.Context, id string) (detective.Turn, error) {
	var turn detective.Turn
	err := c.PostJSON(ctx, "/api/games/"+id+"/autoplay", struct{}{}, &turn)
	return turn, errors.Wrap(err, "autoplay")
}

func (c *Client) Transcript(ctx context.Context, id string) (models.Transcript, error) {
	var t models.Transcript
	err := c.GetJSON(ctx, "/api/games/"+id+"/transcript", &t)
	return t, errors.Wrap(err, "get transcript")
}
