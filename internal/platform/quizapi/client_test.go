package quizapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/httpx"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() {
		log.Sync()
	})
	return log
}

func newTestClient(t *testing.T, fn roundTripFunc) *client {
	t.Helper()
	return &client{
		log:        newTestLogger(t),
		cfg:        Config{BaseURL: "http://quiz.test"},
		httpClient: &http.Client{Transport: fn},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestStartSessionAnonymousIdentity(t *testing.T) {
	var captured *http.Request
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"id":"s1","started_at":"2024-01-01T00:00:00Z"}`), nil
	})

	got, err := c.StartSession(context.Background(), identity.Anonymous("anon-1"))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if got.ID != "s1" {
		t.Fatalf("session id: want=%q got=%q", "s1", got.ID)
	}
	if !got.StartedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("started at: got=%v", got.StartedAt)
	}
	if captured.Method != http.MethodPost || captured.URL.Path != "/quiz/start" {
		t.Fatalf("request: got %s %s", captured.Method, captured.URL.Path)
	}
	if q := captured.URL.Query().Get("session_id"); q != "anon-1" {
		t.Fatalf("session_id query: want=%q got=%q", "anon-1", q)
	}
	if h := captured.Header.Get(headerAnonSession); h != "anon-1" {
		t.Fatalf("anon header: want=%q got=%q", "anon-1", h)
	}
	if auth := captured.Header.Get("Authorization"); auth != "" {
		t.Fatalf("anonymous request must not carry Authorization, got %q", auth)
	}
}

func TestStartSessionAuthenticatedIdentity(t *testing.T) {
	var captured *http.Request
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"id":"s2","started_at":"2024-01-01T00:00:00Z"}`), nil
	})

	if _, err := c.StartSession(context.Background(), identity.Authenticated("tok-1")); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if auth := captured.Header.Get("Authorization"); auth != "Bearer tok-1" {
		t.Fatalf("Authorization: want=%q got=%q", "Bearer tok-1", auth)
	}
	if q := captured.URL.Query().Get("session_id"); q != "" {
		t.Fatalf("authenticated start must not send session_id query, got %q", q)
	}
	if h := captured.Header.Get(headerAnonSession); h != "" {
		t.Fatalf("authenticated request must not carry anon header, got %q", h)
	}
}

func TestSubmitAnswerBodyShape(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("request body not json: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})

	err := c.SubmitAnswer(context.Background(), identity.Anonymous("anon-1"), domain.Answer{
		SessionID:  " s1 ",
		QuestionID: "q1",
		ChoiceIDs:  []string{" c1 ", "", "c2"},
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if body["session_id"] != "s1" || body["question_id"] != "q1" {
		t.Fatalf("ids: got=%v", body)
	}
	choices, ok := body["choice_ids"].([]any)
	if !ok || len(choices) != 2 || choices[0] != "c1" || choices[1] != "c2" {
		t.Fatalf("choice_ids: want=[c1 c2] got=%v", body["choice_ids"])
	}
}

func TestSubmitAnswerRequiresIDs(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request should be issued")
		return nil, nil
	})

	err := c.SubmitAnswer(context.Background(), identity.Identity{}, domain.Answer{QuestionID: "q1"})
	if !apperrors.IsValidation(err) {
		t.Fatalf("missing session id: want validation kind got=%v", err)
	}
}

func TestErrorKindsByStatus(t *testing.T) {
	cases := []struct {
		status   int
		wantKind apperrors.Kind
	}{
		{http.StatusUnauthorized, apperrors.KindAuthRequired},
		{http.StatusNotFound, apperrors.KindNotFound},
		{http.StatusUnprocessableEntity, apperrors.KindValidation},
		{http.StatusBadRequest, apperrors.KindValidation},
		{http.StatusInternalServerError, apperrors.KindNetwork},
		{http.StatusBadGateway, apperrors.KindNetwork},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("http_%d", tc.status), func(t *testing.T) {
			c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, `{"error":{"message":"the server said no","code":"nope"}}`), nil
			})

			_, err := c.GetProduct(context.Background(), identity.Identity{}, "p1")
			if err == nil {
				t.Fatalf("want error for status %d", tc.status)
			}
			if got := apperrors.KindOf(err); got != tc.wantKind {
				t.Fatalf("kind: want=%q got=%q", tc.wantKind, got)
			}
			if !strings.Contains(err.Error(), "the server said no") {
				t.Fatalf("server message lost: %v", err)
			}
			var he *HTTPError
			if !errors.As(err, &he) || he.StatusCode != tc.status {
				t.Fatalf("HTTPError not in chain: %v", err)
			}
			if he.Code != "nope" {
				t.Fatalf("code: want=%q got=%q", "nope", he.Code)
			}
			// Callers that want the raw status branch on the interface,
			// not the concrete type.
			var sc httpx.HTTPStatusCoder
			if !errors.As(err, &sc) || sc.HTTPStatusCode() != tc.status {
				t.Fatalf("status not recoverable via HTTPStatusCoder: %v", err)
			}
		})
	}
}

func TestTransportFailureMapsToNetwork(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := c.ListQuestions(context.Background(), identity.Identity{})
	if !apperrors.IsNetwork(err) {
		t.Fatalf("transport failure: want network kind got=%v", err)
	}
}

func TestUndecodableSuccessBodyMapsToNetwork(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `<!doctype html><html>boom</html>`), nil
	})

	_, err := c.FinalizeSession(context.Background(), identity.Identity{}, "s1")
	if !apperrors.IsNetwork(err) {
		t.Fatalf("undecodable body: want network kind got=%v", err)
	}
}

func TestFinalizeScenarioPreservesRankOrder(t *testing.T) {
	envelope := `{
		"session": {"id":"s1","started_at":"2024-01-01T00:00:00Z"},
		"completed_at": "2024-01-01T00:05:00Z",
		"requires_auth": false,
		"profile": null,
		"summary": {
			"primary_concerns": ["acne"],
			"top_ingredients": ["niacinamide"],
			"prioritize": [{"ingredient":"niacinamide","reason":"calms breakouts"}],
			"avoid": [],
			"category_breakdown": {"cleanser": 1, "moisturizer": 1},
			"generated_at": "2024-01-01T00:05:00Z",
			"algorithm_version": "dev-scorer/1"
		},
		"strategy_notes": ["introduce actives slowly"],
		"recommendations": [
			{"product_id":"p1","rank":1,"score":0.92,"product":{"id":"p1","name":"Gel Cleanser","brand":"Dermalab","category":"cleanser","price":19.99},"ingredients":["niacinamide"],"rationale":{"concerns":["targets acne"]}},
			{"product_id":"p2","rank":2,"score":0.81,"product":{"id":"p2","name":"Light Moisturizer","brand":"Dermalab","category":"moisturizer","price":"24.50"},"ingredients":[],"rationale":{}}
		]
	}`
	var captured *http.Request
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, envelope), nil
	})

	got, err := c.FinalizeSession(context.Background(), identity.Anonymous("anon-1"), "s1")
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	if captured.URL.Path != "/quiz/submit" || captured.URL.Query().Get("session_id") != "s1" {
		t.Fatalf("request: got %s?%s", captured.URL.Path, captured.URL.RawQuery)
	}
	if got.RequiresAuth {
		t.Fatalf("RequiresAuth: want=false got=true")
	}
	if len(got.Recommendations) != 2 {
		t.Fatalf("recommendations: want=2 got=%d", len(got.Recommendations))
	}
	first, second := got.Recommendations[0], got.Recommendations[1]
	if first.ProductID != "p1" || first.Rank != 1 || first.Score != 0.92 {
		t.Fatalf("first recommendation: got=%+v", first)
	}
	if second.ProductID != "p2" || second.Rank != 2 || second.Score != 0.81 {
		t.Fatalf("second recommendation: got=%+v", second)
	}
	if second.Product.Price == nil || *second.Product.Price != 24.50 {
		t.Fatalf("string price not coerced: got=%v", second.Product.Price)
	}
	if got.Summary.AlgorithmVersion != "dev-scorer/1" {
		t.Fatalf("algorithm version: got=%q", got.Summary.AlgorithmVersion)
	}
}

func TestDeleteHistoryReceipt(t *testing.T) {
	var captured *http.Request
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"ok":true,"was_latest":true}`), nil
	})

	got, err := c.DeleteHistory(context.Background(), identity.Authenticated("tok"), "prof-1")
	if err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}
	if captured.Method != http.MethodDelete || captured.URL.Path != "/quiz/history/prof-1" {
		t.Fatalf("request: got %s %s", captured.Method, captured.URL.Path)
	}
	if !got.OK || !got.WasLatest {
		t.Fatalf("receipt: want ok+wasLatest got=%+v", got)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	log := newTestLogger(t)

	cl, err := New(log, Config{BaseURL: " http://quiz.test/// "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	impl, ok := cl.(*client)
	if !ok {
		t.Fatalf("New should return *client")
	}
	if impl.cfg.BaseURL != "http://quiz.test" {
		t.Fatalf("BaseURL: want=%q got=%q", "http://quiz.test", impl.cfg.BaseURL)
	}
	if impl.cfg.Timeout != 15*time.Second {
		t.Fatalf("Timeout default: want=15s got=%v", impl.cfg.Timeout)
	}

	if _, err := New(nil, Config{}); err == nil {
		t.Fatalf("New without logger should fail")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZ_API_BASE_URL", "http://dermatch.test")
	t.Setenv("QUIZ_API_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.BaseURL != "http://dermatch.test" {
		t.Fatalf("BaseURL: want=%q got=%q", "http://dermatch.test", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout: want=5s got=%v", cfg.Timeout)
	}
}
