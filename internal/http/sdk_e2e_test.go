package http

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/history"
	"github.com/dermatch/dermatch-go/internal/identity"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/platform/quizapi"
	"github.com/dermatch/dermatch-go/internal/products"
	"github.com/dermatch/dermatch-go/internal/quiz"
)

// The SDK and the dev server are developed against each other; these tests
// run the real client stack against the real router over a loopback server.

func newSDKClient(t *testing.T) quizapi.Client {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	api, err := quizapi.New(logger.NewNop(), quizapi.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("quizapi.New: %v", err)
	}
	return api
}

var fullAnswers = quiz.AnswerMap{
	"skin-type":     {"combination"},
	"concerns":      {"acne", "dark-spots"},
	"sensitivities": {"fragrance"},
	"budget":        {"budget-mid"},
	"restrictions":  {"no-retinoids"},
}

func TestSDKAnonymousRun(t *testing.T) {
	api := newSDKClient(t)
	ctx := context.Background()
	id := identity.Anonymous(identity.NewAnonymousID())

	orch, err := quiz.NewOrchestrator(logger.NewNop(), api, id, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	questions, err := api.ListQuestions(ctx, id)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	result, err := orch.Run(ctx, questions, fullAnswers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if orch.State() != quiz.StateCompleted {
		t.Fatalf("state: want completed, got %s", orch.State())
	}
	if !result.RequiresAuth {
		t.Fatal("anonymous run should report requires_auth")
	}
	if result.Profile != nil {
		t.Fatal("anonymous run must not return a profile")
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("run returned no recommendations")
	}
	for _, rec := range result.Recommendations {
		if rec.Product.ID == "" {
			t.Fatalf("rank %d missing product summary", rec.Rank)
		}
	}

	// The session is replayable: finalizing again returns the same picks.
	session, ok := orch.Current()
	if !ok {
		t.Fatal("orchestrator lost its session")
	}
	replay, err := api.FinalizeSession(ctx, id, session.ID)
	if err != nil {
		t.Fatalf("replay finalize: %v", err)
	}
	if len(replay.Recommendations) != len(result.Recommendations) {
		t.Fatalf("replay differs: %d vs %d recommendations", len(replay.Recommendations), len(result.Recommendations))
	}
	for i := range result.Recommendations {
		if replay.Recommendations[i].ProductID != result.Recommendations[i].ProductID {
			t.Fatalf("replay rank %d: %s vs %s", i+1,
				replay.Recommendations[i].ProductID, result.Recommendations[i].ProductID)
		}
	}
}

func TestSDKAuthenticatedHistoryRoundTrip(t *testing.T) {
	api := newSDKClient(t)
	ctx := context.Background()
	id := identity.Authenticated(mintUserToken(t, uuid.New()))

	orch, err := quiz.NewOrchestrator(logger.NewNop(), api, id, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	questions, err := api.ListQuestions(ctx, id)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	result, err := orch.Run(ctx, questions, fullAnswers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RequiresAuth {
		t.Fatal("authenticated run should not report requires_auth")
	}
	if result.Profile == nil || !result.Profile.IsLatest {
		t.Fatalf("profile: %+v", result.Profile)
	}

	invalidated := false
	manager, err := history.NewManager(logger.NewNop(), api, func() { invalidated = true })
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	records, err := manager.List(ctx, id)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	record := records[0]
	if record.ProfileID != result.Profile.ID {
		t.Fatalf("record profile: want %s, got %s", result.Profile.ID, record.ProfileID)
	}
	if len(record.Answers) != len(fullAnswers) {
		t.Fatalf("answer snapshot: want %d entries, got %d", len(fullAnswers), len(record.Answers))
	}

	detail, err := manager.GetDetail(ctx, id, record.ProfileID)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.SessionID != record.SessionID {
		t.Fatalf("detail session: want %s, got %s", record.SessionID, detail.SessionID)
	}

	receipt, err := manager.Delete(ctx, id, record)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !receipt.OK || !receipt.WasLatest {
		t.Fatalf("receipt: %+v", receipt)
	}
	if !invalidated {
		t.Fatal("deleting the latest record should fire the invalidation hook")
	}

	records, err = manager.List(ctx, id)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("history should be empty, got %d records", len(records))
	}
}

func TestSDKHistoryAnonymousDegradesToEmpty(t *testing.T) {
	api := newSDKClient(t)
	ctx := context.Background()
	id := identity.Anonymous(identity.NewAnonymousID())

	// The raw endpoint rejects anonymous callers.
	if _, err := api.ListHistory(ctx, id); apperrors.KindOf(err) != apperrors.KindAuthRequired {
		t.Fatalf("raw list: want auth_required, got %v", err)
	}

	// The manager treats that as "no history" instead of surfacing it.
	manager, err := history.NewManager(logger.NewNop(), api, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	records, err := manager.List(ctx, id)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("want empty list, got %d records", len(records))
	}
}

func TestSDKProductResolver(t *testing.T) {
	api := newSDKClient(t)
	ctx := context.Background()
	id := identity.Anonymous(identity.NewAnonymousID())

	resolver, err := products.NewResolver(logger.NewNop(), api)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	detail, err := resolver.GetDetail(ctx, id, "gentle-gel-cleanser")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.Name == "" || len(detail.Ingredients) == 0 {
		t.Fatalf("detail incomplete: %+v", detail)
	}

	cached, ok := resolver.Cached("gentle-gel-cleanser")
	if !ok || cached.ID != detail.ID {
		t.Fatal("detail should be served from cache after a fetch")
	}

	if _, err := resolver.GetDetail(ctx, id, "rich-balm-unreleased"); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("unpublished product: want not_found, got %v", err)
	}
}
