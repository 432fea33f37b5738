package entrez

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/httpclient"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

// Client resolves organism names and taxonomy ids to lineages through NCBI E-utilities.
// Calls are serialized through a Pacer; transient failures are retried with Backoff.
type Client struct {
	cfg     domain.DirectoryConfig
	exec    *httpclient.Executor
	pacer   *Pacer
	backoff Backoff
	sleep   SleepFunc
	logger  *slog.Logger
}

type Option func(*Client)

// WithExecutor replaces the HTTP executor (tests point it at httptest servers).
func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) {
		if e != nil {
			c.exec = e
		}
	}
}

// WithSleep overrides how the client waits for pacing and backoff.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates cfg before anything else; a missing contact email fails here,
// so no request is ever sent without it.
func New(cfg domain.DirectoryConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.Timeout
	if cfg.Tool != "" {
		hc.UserAgent = cfg.Tool
	}

	c := &Client{
		cfg:     cfg,
		exec:    httpclient.NewExecutor(httpclient.WithClient(httpclient.New(hc)), httpclient.WithTimeout(cfg.Timeout)),
		backoff: BackoffFrom(cfg.Backoff),
		sleep:   sleepContext,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pacer = NewPacer(cfg.MinInterval, time.Now, c.sleep)
	return c, nil
}

var _ ports.DirectoryClient = (*Client)(nil)

// Resolve returns the lineage for id. Names are first translated to a taxonomy id
// with esearch; ids go straight to efetch. Both steps draw on one attempt budget,
// so attempts counts every request sent for id.
func (c *Client) Resolve(ctx context.Context, id domain.Identifier) (domain.Lineage, int, error) {
	if _, err := domain.ParseIdentifier(string(id)); err != nil {
		return nil, 0, err
	}

	taxID := string(id)
	steps := 1
	if !id.IsTaxID() {
		steps = 2
	}
	b := newAttemptBudget(c.cfg.MaxRetries, steps)

	if !id.IsTaxID() {
		var ids []string
		err := c.withRetry(ctx, "esearch", id, b, func(ctx context.Context) error {
			body, err := c.get(ctx, "esearch.fcgi", id, url.Values{
				"db":      {"taxonomy"},
				"term":    {fmt.Sprintf("%q[Scientific Name]", string(id))},
				"retmode": {"json"},
				"retmax":  {"5"},
			})
			if err != nil {
				return err
			}
			ids, err = parseSearchIDs(id, body)
			return err
		})
		if err != nil {
			return nil, b.used, err
		}
		if len(ids) > 1 {
			c.logger.Debug("entrez.esearch.ambiguous", "id", string(id), "candidates", strings.Join(ids, ","))
		}
		taxID = ids[0]
	}

	var lineage domain.Lineage
	err := c.withRetry(ctx, "efetch", id, b, func(ctx context.Context) error {
		body, err := c.get(ctx, "efetch.fcgi", id, url.Values{
			"db":      {"taxonomy"},
			"id":      {taxID},
			"retmode": {"xml"},
		})
		if err != nil {
			return err
		}
		lineage, err = parseTaxonLineage(id, body)
		return err
	})
	if err != nil {
		return nil, b.used, err
	}
	return lineage, b.used, nil
}

// attemptBudget is shared by every request made for one identifier. The limit
// is MaxRetries+1, raised to the number of steps so a name lookup can always
// try each step once.
type attemptBudget struct {
	limit    int
	used     int
	failures int
	prev     time.Duration
}

func newAttemptBudget(maxRetries, steps int) *attemptBudget {
	limit := maxRetries + 1
	if limit < steps {
		limit = steps
	}
	return &attemptBudget{limit: limit}
}

// withRetry runs call until it succeeds, fails permanently, or the budget runs
// out. Retry delays continue the identifier's backoff schedule across steps.
func (c *Client) withRetry(ctx context.Context, op string, id domain.Identifier, b *attemptBudget, call func(context.Context) error) error {
	var lastErr error
	for {
		if b.used >= b.limit {
			if lastErr == nil {
				lastErr = &domain.OpError{
					Op:   "entrez." + op,
					Kind: domain.KindTransient,
					Path: string(id),
					Err:  fmt.Errorf("%w: attempt budget spent before %s", domain.ErrTransient, op),
				}
			}
			c.logger.Warn("entrez.retries_exhausted", "op", op, "id", string(id), "attempts", b.used)
			return lastErr
		}

		if b.failures > 0 && lastErr != nil {
			delay := c.backoff.Delay(b.failures - 1)
			var th *throttledError
			if errors.As(lastErr, &th) && th.wait > delay {
				delay = th.wait
			}
			// A short Retry-After never shrinks the schedule.
			if delay < b.prev {
				delay = b.prev
			}
			b.prev = delay
			c.logger.Info("entrez.retry",
				"op", op,
				"id", string(id),
				"attempt", b.used+1,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr.Error(),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return cancelled(op, id, err)
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return cancelled(op, id, err)
		}

		b.used++
		err := call(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !domain.IsKind(err, domain.KindTransient) {
			return err
		}
		b.failures++
		if ctx.Err() != nil {
			return cancelled(op, id, ctx.Err())
		}
	}
}

func (c *Client) get(ctx context.Context, endpoint string, id domain.Identifier, q url.Values) ([]byte, error) {
	q.Set("tool", c.cfg.Tool)
	q.Set("email", c.cfg.ContactEmail)
	if c.cfg.APIKey != "" {
		q.Set("api_key", c.cfg.APIKey)
	}

	req, err := httpclient.BuildGet(ctx, c.cfg.BaseURL, endpoint, q)
	if err != nil {
		return nil, err
	}

	resp, err := c.exec.Do(ctx, req)
	c.logger.Debug("entrez.request",
		"endpoint", endpoint,
		"id", string(id),
		"status", resp.Status,
		"duration_ms", resp.Duration.Milliseconds(),
	)
	if err != nil {
		kind := domain.ClassifyTransport(err)
		wrapped := err
		if kind == domain.KindTransient {
			wrapped = fmt.Errorf("%w: %v", domain.ErrTransient, err)
		}
		return nil, &domain.OpError{
			Op:   "entrez." + strings.TrimSuffix(endpoint, ".fcgi"),
			Kind: kind,
			Path: string(id),
			Err:  wrapped,
		}
	}

	if kind, failed := classifyStatus(resp.Status); failed {
		statusErr := fmt.Errorf("http status %d", resp.Status)
		if kind == domain.KindTransient {
			statusErr = &throttledError{
				wait: resp.RetryAfter,
				err:  fmt.Errorf("%w: http status %d", domain.ErrTransient, resp.Status),
			}
		}
		return nil, &domain.OpError{
			Op:   "entrez." + strings.TrimSuffix(endpoint, ".fcgi"),
			Kind: kind,
			Path: string(id),
			Err:  statusErr,
		}
	}
	if resp.Truncated {
		return nil, &domain.OpError{
			Op:   "entrez." + strings.TrimSuffix(endpoint, ".fcgi"),
			Kind: domain.KindExecution,
			Path: string(id),
			Err:  fmt.Errorf("response body exceeded limit"),
		}
	}
	return resp.Body, nil
}

func classifyStatus(status int) (domain.ErrorKind, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", false
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return domain.KindTransient, true
	case status >= 500:
		return domain.KindTransient, true
	case status == http.StatusBadRequest:
		return domain.KindInvalidIdentifier, true
	case status == http.StatusNotFound:
		return domain.KindNotFound, true
	default:
		// 401/403 and friends: a bad api key or a blocked tool/email.
		return domain.KindInvalidConfig, true
	}
}

func cancelled(op string, id domain.Identifier, err error) error {
	return &domain.OpError{
		Op:   "entrez." + op,
		Kind: domain.KindExecution,
		Path: string(id),
		Err:  err,
	}
}

// throttledError carries the server's Retry-After into the retry loop.
type throttledError struct {
	wait time.Duration
	err  error
}

func (e *throttledError) Error() string { return e.err.Error() }
func (e *throttledError) Unwrap() error { return e.err }
