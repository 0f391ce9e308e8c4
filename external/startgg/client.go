package startgg

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/riskibarqy/bracket-harvest/internal/platform/pagination"
	"github.com/riskibarqy/bracket-harvest/internal/platform/resilience"
	"github.com/riskibarqy/bracket-harvest/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL            = "https://api.start.gg/gql/alpha"
	DefaultVideogameID        = 1386
	DefaultTournamentsPerPage = 50
	DefaultSetsPerPage        = 40
	DefaultMaxAttempts        = 3
	DefaultRetryDelay         = 60 * time.Second
	DefaultRatePerMinute      = 80

	maxResponseBytes = 8 << 20
)

var bearerRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errStartGGTransient = crerr.New("start.gg transient failure")

// APIError is an application-level failure reported inside a GraphQL response.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("start.gg request unsuccessful (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("start.gg request unsuccessful (status=%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

type ClientConfig struct {
	HTTPClient         *http.Client
	BaseURL            string
	Token              string
	Timeout            time.Duration
	MaxAttempts        int
	RetryDelay         time.Duration
	RatePerMinute      int
	VideogameID        int64
	TournamentsPerPage int
	SetsPerPage        int
	Logger             *logging.Logger
	CircuitBreaker     resilience.CircuitBreakerConfig
}

// Client fetches tournaments and sets from the start.gg GraphQL API one page
// at a time. Every page request goes through the rate limiter, the circuit
// breaker and a fixed-delay retry policy.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	token              string
	videogameID        int64
	tournamentsPerPage int
	setsPerPage        int
	logger             *logging.Logger
	retry              resilience.RetryPolicy
	limiter            *rate.Limiter
	breaker            *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	c := &Client{
		httpClient:         httpClient,
		baseURL:            baseURL,
		token:              strings.TrimSpace(cfg.Token),
		videogameID:        positiveOr(cfg.VideogameID, DefaultVideogameID),
		tournamentsPerPage: int(positiveOr(int64(cfg.TournamentsPerPage), DefaultTournamentsPerPage)),
		setsPerPage:        int(positiveOr(int64(cfg.SetsPerPage), DefaultSetsPerPage)),
		logger:             logger,
		limiter:            limiter,
		breaker:            resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
	c.retry = resilience.RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       retryDelay,
		OnRetry: func(attempt int, err error) {
			logger.Warn("start.gg request failed, retrying",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"retry_in", retryDelay,
				"error", err,
			)
		},
	}
	return c
}

func (c *Client) FetchTournamentsPage(ctx context.Context, filter usecase.TournamentFilter, page int) (pagination.Page[usecase.ExternalTournament], error) {
	variables := map[string]any{
		"afterDate":    filter.AfterDate.Unix(),
		"beforeDate":   filter.BeforeDate.Unix(),
		"videogameIds": []int64{c.videogameID},
		"perPage":      c.tournamentsPerPage,
		"page":         page,
	}
	// a disabled filter is left out rather than sent as null
	if code := strings.TrimSpace(filter.CountryCode); code != "" {
		variables["countryCode"] = code
	}
	if state := strings.TrimSpace(filter.AddrState); state != "" {
		variables["addrState"] = state
	}

	resp, err := doGraphQL[tournamentsData](ctx, c, "tournaments", tournamentsQuery, variables)
	if err != nil {
		return pagination.Page[usecase.ExternalTournament]{}, err
	}
	if resp.Data.Tournaments == nil {
		return pagination.Page[usecase.ExternalTournament]{}, fmt.Errorf("start.gg tournaments response has no tournaments block")
	}

	nodes := resp.Data.Tournaments.Nodes
	out := make([]usecase.ExternalTournament, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, mapTournament(node))
	}
	return pagination.Page[usecase.ExternalTournament]{
		Items:           out,
		Info:            mapPageInfo(resp.Data.Tournaments.PageInfo),
		QueryComplexity: resp.Extensions.QueryComplexity,
	}, nil
}

func (c *Client) FetchEventSetsPage(ctx context.Context, eventID int64, page int) (pagination.Page[usecase.ExternalSet], error) {
	variables := map[string]any{
		"eventId": eventID,
		"perPage": c.setsPerPage,
		"page":    page,
	}

	resp, err := doGraphQL[eventSetsData](ctx, c, "sets", eventSetsQuery, variables)
	if err != nil {
		return pagination.Page[usecase.ExternalSet]{}, err
	}
	if resp.Data.Event == nil {
		return pagination.Page[usecase.ExternalSet]{}, fmt.Errorf("%w: start.gg event %d", usecase.ErrNotFound, eventID)
	}
	if resp.Data.Event.Sets == nil {
		return pagination.Page[usecase.ExternalSet]{}, fmt.Errorf("start.gg event %d response has no sets block", eventID)
	}

	nodes := resp.Data.Event.Sets.Nodes
	out := make([]usecase.ExternalSet, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, mapSet(node))
	}
	return pagination.Page[usecase.ExternalSet]{
		Items:           out,
		Info:            mapPageInfo(resp.Data.Event.Sets.PageInfo),
		QueryComplexity: resp.Extensions.QueryComplexity,
	}, nil
}

func doGraphQL[T any](ctx context.Context, c *Client, op, query string, variables map[string]any) (envelope[T], error) {
	body, err := sonic.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return envelope[T]{}, fmt.Errorf("encode %s request: %w", op, err)
	}

	var out envelope[T]
	err = c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		reqErr := c.breaker.Execute(func() error {
			resp, err := executeRequest[T](ctx, c, body)
			if err != nil {
				return err
			}
			out = resp
			return nil
		}, isStartGGCircuitFailure)
		if stderrors.Is(reqErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "start.gg circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: start.gg is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return reqErr
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrRetriesExhausted) {
			c.logger.ErrorContext(ctx, "request failed after retries", "query", op, "error", err)
		}
		return envelope[T]{}, fmt.Errorf("start.gg %s query: %w", op, err)
	}
	return out, nil
}

func executeRequest[T any](ctx context.Context, c *Client, body []byte) (envelope[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return envelope[T]{}, resilience.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope[T]{}, fmt.Errorf("%w: send request: %s", errStartGGTransient, sanitizeSensitiveText(err.Error(), c.token))
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return envelope[T]{}, fmt.Errorf("%w: read response body: %v", errStartGGTransient, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("start.gg status=%d body=%s", resp.StatusCode, abbreviateBody(raw, c.token))
		// every failed status uses the attempt budget; only throttling and
		// server errors count against the breaker
		if !isBreakerStatus(resp.StatusCode) {
			return envelope[T]{}, statusErr
		}
		return envelope[T]{}, fmt.Errorf("%w: %w", errStartGGTransient, statusErr)
	}

	var out envelope[T]
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return envelope[T]{}, fmt.Errorf("%w: decode response: %v", errStartGGTransient, err)
	}
	if apiErr := envelopeError(resp.StatusCode, out); apiErr != nil {
		return envelope[T]{}, fmt.Errorf("%w: %w", errStartGGTransient, apiErr)
	}
	return out, nil
}

func envelopeError[T any](status int, env envelope[T]) *APIError {
	if env.Success != nil && !*env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "success=false"
		}
		return &APIError{StatusCode: status, Messages: []string{msg}}
	}
	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			messages = append(messages, strings.TrimSpace(e.Message))
		}
		return &APIError{StatusCode: status, Messages: messages}
	}
	return nil
}

func mapPageInfo(info pageInfo) pagination.Info {
	return pagination.Info{
		Total:      info.Total,
		TotalPages: info.TotalPages,
		Page:       info.Page,
		PerPage:    info.PerPage,
	}
}

func mapTournament(node tournamentNode) usecase.ExternalTournament {
	out := usecase.ExternalTournament{
		ExternalID:  int64(node.ID),
		Name:        strings.TrimSpace(node.Name),
		URL:         strings.TrimSpace(node.URL),
		City:        derefString(node.City),
		CountryCode: derefString(node.CountryCode),
		AddrState:   derefString(node.AddrState),
		Events:      make([]usecase.ExternalEvent, 0, len(node.Events)),
	}
	for _, e := range node.Events {
		event := usecase.ExternalEvent{
			ExternalID: int64(e.ID),
			Name:       strings.TrimSpace(e.Name),
			Slug:       strings.TrimSpace(e.Slug),
			State:      derefString(e.State),
		}
		if e.NumEntrants != nil {
			event.NumEntrants = *e.NumEntrants
		}
		if e.StartAt != nil {
			event.StartAt = time.Unix(*e.StartAt, 0).UTC()
		}
		out.Events = append(out.Events, event)
	}
	return out
}

func mapSet(node setNode) usecase.ExternalSet {
	out := usecase.ExternalSet{
		ExternalID: int64(node.ID),
		Slots:      make([]usecase.ExternalSlot, 0, len(node.Slots)),
	}
	for _, s := range node.Slots {
		var slot usecase.ExternalSlot
		if s.Entrant != nil {
			slot.Seed = s.Entrant.InitialSeedNum
			for _, p := range s.Entrant.Participants {
				if p.Player == nil {
					slot.Participants = append(slot.Participants, usecase.ExternalParticipant{})
					continue
				}
				slot.Participants = append(slot.Participants, usecase.ExternalParticipant{
					PlayerExternalID: int64(p.Player.ID),
					GamerTag:         strings.TrimSpace(p.Player.GamerTag),
				})
			}
		}
		if s.Standing != nil && s.Standing.Stats != nil && s.Standing.Stats.Score != nil && s.Standing.Stats.Score.Value != nil {
			score := int(math.Round(*s.Standing.Stats.Score.Value))
			slot.Score = &score
		}
		out.Slots = append(out.Slots, slot)
	}
	return out
}

func isStartGGCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errStartGGTransient)
}

func isBreakerStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return bearerRegex.ReplaceAllString(value, "Bearer REDACTED")
}

func abbreviateBody(body []byte, token string) string {
	text := sanitizeSensitiveText(string(body), token)
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func positiveOr(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}
