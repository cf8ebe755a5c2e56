package history

import (
	"context"
	"sync"
	"testing"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type fakeHistoryAPI struct {
	mu sync.Mutex

	listCalls   int
	listRecords []domain.HistoryRecord
	listErr     error
	listFn      func(ctx context.Context) ([]domain.HistoryRecord, error)

	detailCalls  int
	detailRecord domain.HistoryRecord
	detailErr    error

	deleteCalls       int
	deletedIdentifier string
	deleteReceipt     domain.DeleteReceipt
	deleteErr         error
}

func (f *fakeHistoryAPI) ListHistory(ctx context.Context, id identity.Identity) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	records := f.listRecords
	err := f.listErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return records, err
}

func (f *fakeHistoryAPI) GetHistoryProfile(ctx context.Context, id identity.Identity, profileID string) (domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.detailRecord, f.detailErr
}

func (f *fakeHistoryAPI) DeleteHistory(ctx context.Context, id identity.Identity, identifier string) (domain.DeleteReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	f.deletedIdentifier = identifier
	return f.deleteReceipt, f.deleteErr
}

func (f *fakeHistoryAPI) counts() (list, detail, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.detailCalls, f.deleteCalls
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestManager(t *testing.T, api *fakeHistoryAPI, hook func()) *Manager {
	t.Helper()
	m, err := NewManager(newTestLogger(t), api, hook)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestListAnonymousSkipsNetwork(t *testing.T) {
	api := &fakeHistoryAPI{listRecords: []domain.HistoryRecord{{SessionID: "s1"}}}
	m := newTestManager(t, api, nil)

	records, err := m.List(context.Background(), identity.Anonymous("anon-1"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records == nil {
		t.Fatalf("records: want empty slice, got nil")
	}
	if len(records) != 0 {
		t.Fatalf("records: want 0, got %d", len(records))
	}
	if list, _, _ := api.counts(); list != 0 {
		t.Fatalf("list calls: want 0, got %d", list)
	}
}

func TestListRejectedTokenDegradesToEmpty(t *testing.T) {
	api := &fakeHistoryAPI{listErr: apperrors.New(apperrors.KindAuthRequired, "token expired")}
	m := newTestManager(t, api, nil)

	records, err := m.List(context.Background(), identity.Authenticated("stale-token"))
	if err != nil {
		t.Fatalf("List: want nil error, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records: want 0, got %d", len(records))
	}
	if list, _, _ := api.counts(); list != 1 {
		t.Fatalf("list calls: want 1, got %d", list)
	}
}

func TestListPreservesServerOrder(t *testing.T) {
	api := &fakeHistoryAPI{listRecords: []domain.HistoryRecord{
		{Kind: domain.RecordLinked, SessionID: "s3", ProfileID: "p3"},
		{Kind: domain.RecordLinked, SessionID: "s2", ProfileID: "p2"},
		{Kind: domain.RecordLegacy},
	}}
	m := newTestManager(t, api, nil)

	records, err := m.List(context.Background(), identity.Authenticated("token"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records: want 3, got %d", len(records))
	}
	if records[0].ProfileID != "p3" || records[1].ProfileID != "p2" {
		t.Fatalf("order changed: got %q then %q", records[0].ProfileID, records[1].ProfileID)
	}
	if records[2].Kind != domain.RecordLegacy {
		t.Fatalf("records[2].Kind: want %q, got %q", domain.RecordLegacy, records[2].Kind)
	}
}

func TestListPassesThroughOtherErrors(t *testing.T) {
	api := &fakeHistoryAPI{listErr: apperrors.New(apperrors.KindNetwork, "connection refused")}
	m := newTestManager(t, api, nil)

	_, err := m.List(context.Background(), identity.Authenticated("token"))
	if !apperrors.IsNetwork(err) {
		t.Fatalf("error kind: want %q, got %v", apperrors.KindNetwork, err)
	}
}

func TestGetDetailPassesThroughNotFound(t *testing.T) {
	api := &fakeHistoryAPI{detailErr: apperrors.New(apperrors.KindNotFound, "profile not found")}
	m := newTestManager(t, api, nil)

	_, err := m.GetDetail(context.Background(), identity.Authenticated("token"), "p-missing")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("error kind: want %q, got %v", apperrors.KindNotFound, err)
	}
}

func TestDeleteLegacyRecordFailsBeforeNetwork(t *testing.T) {
	api := &fakeHistoryAPI{deleteReceipt: domain.DeleteReceipt{OK: true}}
	m := newTestManager(t, api, nil)

	legacy := domain.HistoryRecord{Kind: domain.RecordLegacy, Answers: []domain.AnswerEntry{{QuestionID: "q1"}}}
	_, err := m.Delete(context.Background(), identity.Authenticated("token"), legacy)
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("error kind: want %q, got %v", apperrors.KindUnsupported, err)
	}
	if _, _, del := api.counts(); del != 0 {
		t.Fatalf("delete calls: want 0, got %d", del)
	}
}

func TestDeletePrefersProfileID(t *testing.T) {
	api := &fakeHistoryAPI{deleteReceipt: domain.DeleteReceipt{OK: true}}
	m := newTestManager(t, api, nil)

	record := domain.HistoryRecord{Kind: domain.RecordLinked, SessionID: "s1", ProfileID: "p1"}
	receipt, err := m.Delete(context.Background(), identity.Authenticated("token"), record)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !receipt.OK {
		t.Fatalf("receipt.OK: want true")
	}
	if api.deletedIdentifier != "p1" {
		t.Fatalf("identifier: want %q, got %q", "p1", api.deletedIdentifier)
	}
}

func TestDeleteFallsBackToSessionID(t *testing.T) {
	api := &fakeHistoryAPI{deleteReceipt: domain.DeleteReceipt{OK: true}}
	m := newTestManager(t, api, nil)

	record := domain.HistoryRecord{Kind: domain.RecordLinked, SessionID: "s1"}
	if _, err := m.Delete(context.Background(), identity.Authenticated("token"), record); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if api.deletedIdentifier != "s1" {
		t.Fatalf("identifier: want %q, got %q", "s1", api.deletedIdentifier)
	}
}

func TestDeleteByIdentifierRejectsEmpty(t *testing.T) {
	api := &fakeHistoryAPI{}
	m := newTestManager(t, api, nil)

	_, err := m.DeleteByIdentifier(context.Background(), identity.Authenticated("token"), "   ")
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("error kind: want %q, got %v", apperrors.KindUnsupported, err)
	}
	if _, _, del := api.counts(); del != 0 {
		t.Fatalf("delete calls: want 0, got %d", del)
	}
}

func TestDeleteWasLatestFiresInvalidation(t *testing.T) {
	api := &fakeHistoryAPI{deleteReceipt: domain.DeleteReceipt{OK: true, WasLatest: true}}
	invalidations := 0
	m := newTestManager(t, api, func() { invalidations++ })

	record := domain.HistoryRecord{Kind: domain.RecordLinked, ProfileID: "p1"}
	receipt, err := m.Delete(context.Background(), identity.Authenticated("token"), record)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !receipt.WasLatest {
		t.Fatalf("receipt.WasLatest: want true")
	}
	if invalidations != 1 {
		t.Fatalf("invalidations: want 1, got %d", invalidations)
	}
}

func TestDeleteNotLatestKeepsCache(t *testing.T) {
	api := &fakeHistoryAPI{deleteReceipt: domain.DeleteReceipt{OK: true, WasLatest: false}}
	invalidations := 0
	m := newTestManager(t, api, func() { invalidations++ })

	record := domain.HistoryRecord{Kind: domain.RecordLinked, ProfileID: "p2"}
	if _, err := m.Delete(context.Background(), identity.Authenticated("token"), record); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if invalidations != 0 {
		t.Fatalf("invalidations: want 0, got %d", invalidations)
	}
}

func TestDeleteErrorDoesNotFireInvalidation(t *testing.T) {
	api := &fakeHistoryAPI{deleteErr: apperrors.New(apperrors.KindNetwork, "connection reset")}
	invalidations := 0
	m := newTestManager(t, api, func() { invalidations++ })

	record := domain.HistoryRecord{Kind: domain.RecordLinked, ProfileID: "p1"}
	_, err := m.Delete(context.Background(), identity.Authenticated("token"), record)
	if !apperrors.IsNetwork(err) {
		t.Fatalf("error kind: want %q, got %v", apperrors.KindNetwork, err)
	}
	if invalidations != 0 {
		t.Fatalf("invalidations: want 0, got %d", invalidations)
	}
}

func TestNewManagerValidatesInputs(t *testing.T) {
	log := newTestLogger(t)
	if _, err := NewManager(nil, &fakeHistoryAPI{}, nil); err == nil {
		t.Fatalf("NewManager without logger: want error")
	}
	if _, err := NewManager(log, nil, nil); err == nil {
		t.Fatalf("NewManager without api: want error")
	}
}
