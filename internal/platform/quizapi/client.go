// Package quizapi is the typed REST client for the quiz/recommendation API.
// It owns the wire format: callers hand it an identity and get domain types
// back, never raw payloads. Operations fail fast; nothing here retries.
package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	"github.com/dermatch/dermatch-go/internal/pkg/envutil"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/httpx"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

// headerAnonSession carries the client-generated anonymous session id on
// every anonymous request; /quiz/start additionally accepts it as the
// session_id query parameter.
const headerAnonSession = "X-Anon-Session"

type Client interface {
	ListQuestions(ctx context.Context, id identity.Identity) ([]domain.Question, error)
	StartSession(ctx context.Context, id identity.Identity) (domain.Session, error)
	SubmitAnswer(ctx context.Context, id identity.Identity, answer domain.Answer) error
	FinalizeSession(ctx context.Context, id identity.Identity, sessionID string) (domain.FinalizeResult, error)
	GetSession(ctx context.Context, id identity.Identity, sessionID string) (domain.SessionDetail, error)
	ListHistory(ctx context.Context, id identity.Identity) ([]domain.HistoryRecord, error)
	GetHistoryProfile(ctx context.Context, id identity.Identity, profileID string) (domain.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id identity.Identity, identifier string) (domain.DeleteReceipt, error)
	GetProduct(ctx context.Context, id identity.Identity, productID string) (domain.ProductDetail, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: strings.TrimSpace(envutil.String("QUIZ_API_BASE_URL", "")),
		Timeout: envutil.Duration("QUIZ_API_TIMEOUT", 15*time.Second),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &client{
		log:        log.With("client", "QuizAPIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// HTTPError is the raw non-2xx response, kept in the error chain underneath
// the kind-tagged error so callers can still reach the status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Body       string
}

var _ httpx.HTTPStatusCoder = (*HTTPError)(nil)

func (e *HTTPError) Error() string {
	if e == nil {
		return "quizapi: <nil error>"
	}
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("quizapi http %d: %s", e.StatusCode, httpx.Truncate(msg, 4000))
}

// HTTPStatusCode implements httpx.HTTPStatusCoder, letting callers recover
// the raw status from a wrapped error without naming this type.
func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) ListQuestions(ctx context.Context, id identity.Identity) ([]domain.Question, error) {
	var w wireQuestionList
	if err := c.do(ctx, id, "list questions", http.MethodGet, "/quiz/questions", nil, nil, &w); err != nil {
		return nil, err
	}
	return mapQuestions(w.Questions), nil
}

func (c *client) StartSession(ctx context.Context, id identity.Identity) (domain.Session, error) {
	query := url.Values{}
	if anon := id.AnonymousID(); anon != "" {
		query.Set("session_id", anon)
	}
	var w wireSession
	if err := c.do(ctx, id, "start session", http.MethodPost, "/quiz/start", query, nil, &w); err != nil {
		return domain.Session{}, err
	}
	return mapSession(w), nil
}

func (c *client) SubmitAnswer(ctx context.Context, id identity.Identity, answer domain.Answer) error {
	sessionID := strings.TrimSpace(answer.SessionID)
	questionID := strings.TrimSpace(answer.QuestionID)
	if sessionID == "" {
		return apperrors.New(apperrors.KindValidation, "submit answer: session id required")
	}
	if questionID == "" {
		return apperrors.New(apperrors.KindValidation, "submit answer: question id required")
	}
	choiceIDs := make([]string, 0, len(answer.ChoiceIDs))
	for _, choice := range answer.ChoiceIDs {
		if choice = strings.TrimSpace(choice); choice != "" {
			choiceIDs = append(choiceIDs, choice)
		}
	}
	body := submitAnswerRequest{
		SessionID:  sessionID,
		QuestionID: questionID,
		ChoiceIDs:  choiceIDs,
	}
	return c.do(ctx, id, "submit answer", http.MethodPost, "/quiz/answer", nil, body, nil)
}

func (c *client) FinalizeSession(ctx context.Context, id identity.Identity, sessionID string) (domain.FinalizeResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.FinalizeResult{}, apperrors.New(apperrors.KindValidation, "finalize: session id required")
	}
	query := url.Values{}
	query.Set("session_id", sessionID)
	var w wireFinalizeResult
	if err := c.do(ctx, id, "finalize session", http.MethodPost, "/quiz/submit", query, nil, &w); err != nil {
		return domain.FinalizeResult{}, err
	}
	return mapFinalize(w), nil
}

func (c *client) GetSession(ctx context.Context, id identity.Identity, sessionID string) (domain.SessionDetail, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.SessionDetail{}, apperrors.New(apperrors.KindValidation, "get session: session id required")
	}
	var w wireSessionDetail
	if err := c.do(ctx, id, "get session", http.MethodGet, "/quiz/session/"+url.PathEscape(sessionID), nil, nil, &w); err != nil {
		return domain.SessionDetail{}, err
	}
	return mapSessionDetail(w), nil
}

func (c *client) ListHistory(ctx context.Context, id identity.Identity) ([]domain.HistoryRecord, error) {
	var w wireHistoryList
	if err := c.do(ctx, id, "list history", http.MethodGet, "/quiz/history", nil, nil, &w); err != nil {
		return nil, err
	}
	return mapHistoryItems(w.Items), nil
}

func (c *client) GetHistoryProfile(ctx context.Context, id identity.Identity, profileID string) (domain.HistoryRecord, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return domain.HistoryRecord{}, apperrors.New(apperrors.KindValidation, "history detail: profile id required")
	}
	var w wireHistoryItem
	if err := c.do(ctx, id, "history detail", http.MethodGet, "/quiz/history/profile/"+url.PathEscape(profileID), nil, nil, &w); err != nil {
		return domain.HistoryRecord{}, err
	}
	return mapHistoryItem(w), nil
}

func (c *client) DeleteHistory(ctx context.Context, id identity.Identity, identifier string) (domain.DeleteReceipt, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.DeleteReceipt{}, apperrors.New(apperrors.KindValidation, "delete history: identifier required")
	}
	var w wireDeleteReceipt
	if err := c.do(ctx, id, "delete history", http.MethodDelete, "/quiz/history/"+url.PathEscape(identifier), nil, nil, &w); err != nil {
		return domain.DeleteReceipt{}, err
	}
	return mapDeleteReceipt(w), nil
}

func (c *client) GetProduct(ctx context.Context, id identity.Identity, productID string) (domain.ProductDetail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ProductDetail{}, apperrors.New(apperrors.KindValidation, "get product: product id required")
	}
	var w wireProductDetail
	if err := c.do(ctx, id, "get product", http.MethodGet, "/quiz/products/"+url.PathEscape(productID), nil, nil, &w); err != nil {
		return domain.ProductDetail{}, err
	}
	return mapProductDetail(w), nil
}

// do issues one request and decodes the response into out (when non-nil).
// Failures come back as kind-tagged errors: transport problems and 5xx map
// to network, 401 to auth_required, 404 to not_found, remaining 4xx to
// validation. There is no retry loop; surfacing the first failure is the
// contract, retrying is the caller's decision.
func (c *client) do(ctx context.Context, id identity.Identity, op, method, path string, query url.Values, body, out any) error {
	if c == nil || c.httpClient == nil {
		return apperrors.New(apperrors.KindNetwork, op+": client unavailable")
	}

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return apperrors.Wrap(apperrors.KindValidation, op+": encode request", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, endpoint, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, op+": build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyIdentity(req, id)

	c.log.Debug("quiz api request", "method", method, "path", path, "identity", id.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, op+" failed", err)
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return apperrors.Wrap(apperrors.KindNetwork, op+": read response", readErr)
	}

	if !httpx.IsSuccess(resp.StatusCode) {
		msg, code := httpx.ErrorMessage(raw)
		he := &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Code:       code,
			Body:       string(raw),
		}
		return c.kindFor(op, he)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, op+": undecodable response", err)
		}
	}
	return nil
}

func (c *client) kindFor(op string, he *HTTPError) *apperrors.Error {
	kind := apperrors.KindNetwork
	switch {
	case he.StatusCode == http.StatusUnauthorized:
		kind = apperrors.KindAuthRequired
	case he.StatusCode == http.StatusNotFound:
		kind = apperrors.KindNotFound
	case he.StatusCode >= 400 && he.StatusCode < 500:
		kind = apperrors.KindValidation
	}
	msg := he.Message
	if msg == "" {
		msg = fmt.Sprintf("%s failed (http %d)", op, he.StatusCode)
	}
	return apperrors.Wrap(kind, msg, he)
}

func applyIdentity(req *http.Request, id identity.Identity) {
	if id.IsAuthenticated() {
		req.Header.Set("Authorization", "Bearer "+id.BearerToken())
		return
	}
	if anon := id.AnonymousID(); anon != "" {
		req.Header.Set(headerAnonSession, anon)
	}
}
