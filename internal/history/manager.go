// Package history lists, inspects and deletes completed quiz sessions for
// the current identity, and keeps downstream "latest profile" caches honest
// when a delete changes which record is latest.
package history

import (
	"context"
	"strings"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

// API is the slice of the quiz API the manager needs.
type API interface {
	ListHistory(ctx context.Context, id identity.Identity) ([]domain.HistoryRecord, error)
	GetHistoryProfile(ctx context.Context, id identity.Identity, profileID string) (domain.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id identity.Identity, identifier string) (domain.DeleteReceipt, error)
}

type Manager struct {
	log *logger.Logger
	api API

	// onLatestInvalidated fires when a delete removed the latest profile.
	// The new latest is unknown at that point; holders of a cached latest
	// must re-fetch, not guess.
	onLatestInvalidated func()
}

func NewManager(log *logger.Logger, api API, onLatestInvalidated func()) (*Manager, error) {
	if log == nil {
		return nil, apperrors.New(apperrors.KindValidation, "logger required")
	}
	if api == nil {
		return nil, apperrors.New(apperrors.KindValidation, "quiz api client required")
	}
	return &Manager{
		log:                 log.With("component", "HistoryManager"),
		api:                 api,
		onLatestInvalidated: onLatestInvalidated,
	}, nil
}

// List returns the identity's completed sessions in server order, newest
// first. History requires authentication by contract: anonymous identities
// get an empty list with no network round trip, and a 401 (expired token)
// degrades to an empty list rather than an error.
func (m *Manager) List(ctx context.Context, id identity.Identity) ([]domain.HistoryRecord, error) {
	if !id.IsAuthenticated() {
		return []domain.HistoryRecord{}, nil
	}
	records, err := m.api.ListHistory(ctxutil.Default(ctx), id)
	if err != nil {
		if apperrors.IsAuthRequired(err) {
			m.log.Debug("history list degraded to empty, token rejected")
			return []domain.HistoryRecord{}, nil
		}
		return nil, err
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

// GetDetail fetches one record in full, including the answer snapshot. A
// not_found error passes through; the caller treats it as "refresh the
// list", not a fatal condition.
func (m *Manager) GetDetail(ctx context.Context, id identity.Identity, profileID string) (domain.HistoryRecord, error) {
	return m.api.GetHistoryProfile(ctxutil.Default(ctx), id, profileID)
}

// Delete removes the record, using its profile id when present and its
// session id otherwise. Legacy records expose neither and fail before the
// network with unsupported_operation.
func (m *Manager) Delete(ctx context.Context, id identity.Identity, record domain.HistoryRecord) (domain.DeleteReceipt, error) {
	identifier, ok := record.DeleteIdentifier()
	if !ok {
		return domain.DeleteReceipt{}, apperrors.New(apperrors.KindUnsupported, "legacy record has no deletable identifier")
	}
	return m.DeleteByIdentifier(ctx, id, identifier)
}

// DeleteByIdentifier deletes by a raw identifier. An empty identifier
// short-circuits with unsupported_operation and issues no network call.
// When the receipt reports the deleted record was the latest, the
// invalidation hook fires.
func (m *Manager) DeleteByIdentifier(ctx context.Context, id identity.Identity, identifier string) (domain.DeleteReceipt, error) {
	if strings.TrimSpace(identifier) == "" {
		return domain.DeleteReceipt{}, apperrors.New(apperrors.KindUnsupported, "delete requires an identifier")
	}
	receipt, err := m.api.DeleteHistory(ctxutil.Default(ctx), id, identifier)
	if err != nil {
		return domain.DeleteReceipt{}, err
	}
	if receipt.WasLatest {
		m.log.Info("deleted record was the latest profile", "identifier", identifier)
		if m.onLatestInvalidated != nil {
			m.onLatestInvalidated()
		}
	}
	return receipt, nil
}
