package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/repos"
	"github.com/dermatch/dermatch-go/internal/types"
)

type HistoryService interface {
	List(ctx context.Context, userID uuid.UUID) (*HistoryListView, error)
	GetDetailByProfile(ctx context.Context, userID uuid.UUID, profileID string) (*HistoryItemView, error)
	Delete(ctx context.Context, userID uuid.UUID, identifier string) (*DeleteReceiptView, error)
}

type historyService struct {
	db          *gorm.DB
	log         *logger.Logger
	notifier    Notifier
	sessionRepo repos.QuizSessionRepo
	answerRepo  repos.QuizAnswerRepo
	profileRepo repos.SkinProfileRepo
	resultRepo  repos.QuizResultRepo
	recRepo     repos.SessionRecommendationRepo
	productRepo repos.ProductRepo
}

func NewHistoryService(
	db *gorm.DB,
	log *logger.Logger,
	notifier Notifier,
	sessionRepo repos.QuizSessionRepo,
	answerRepo repos.QuizAnswerRepo,
	profileRepo repos.SkinProfileRepo,
	resultRepo repos.QuizResultRepo,
	recRepo repos.SessionRecommendationRepo,
	productRepo repos.ProductRepo,
) HistoryService {
	return &historyService{
		db:          db,
		log:         log.With("service", "HistoryService"),
		notifier:    notifier,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		profileRepo: profileRepo,
		resultRepo:  resultRepo,
		recRepo:     recRepo,
		productRepo: productRepo,
	}
}

// List returns the user's completed sessions newest first, fully nested.
// Sessions finalized before profile linkage existed (or whose profile row is
// gone) come back without a profile id: the answer snapshot is all that
// identifies them.
func (s *historyService) List(ctx context.Context, userID uuid.UUID) (*HistoryListView, error) {
	sessions, err := s.sessionRepo.GetCompletedByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "list sessions", err)
	}

	sessionIDs := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	results, err := s.resultRepo.GetBySessionIDs(ctx, nil, sessionIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "list results", err)
	}
	resultsBySession := make(map[uuid.UUID]*types.QuizResult, len(results))
	for _, result := range results {
		resultsBySession[result.SessionID] = result
	}

	profiles, err := s.profileRepo.GetBySessionIDs(ctx, nil, sessionIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "list profiles", err)
	}
	profilesBySession := make(map[uuid.UUID]*types.SkinProfile, len(profiles))
	for _, profile := range profiles {
		if profile.SessionID != nil {
			profilesBySession[*profile.SessionID] = profile
		}
	}

	recRows, err := s.recRepo.GetBySessionIDs(ctx, nil, sessionIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "list recommendations", err)
	}
	if err := s.attachProducts(ctx, recRows); err != nil {
		return nil, err
	}
	recsBySession := make(map[uuid.UUID][]*types.SessionRecommendation)
	for _, row := range recRows {
		recsBySession[row.SessionID] = append(recsBySession[row.SessionID], row)
	}

	items := make([]HistoryItemView, 0, len(sessions))
	for _, session := range sessions {
		item, err := s.buildItem(ctx, session,
			profilesBySession[session.ID],
			resultsBySession[session.ID],
			recsBySession[session.ID])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return &HistoryListView{Items: items}, nil
}

func (s *historyService) GetDetailByProfile(ctx context.Context, userID uuid.UUID, profileID string) (*HistoryItemView, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
	}
	profile, err := s.profileRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load profile", err)
	}
	if profile == nil || profile.UserID != userID || profile.SessionID == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
	}
	session, err := s.sessionRepo.GetByID(ctx, nil, *profile.SessionID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load session", err)
	}
	if session == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
	}

	result, err := s.resultRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load result", err)
	}
	recRows, err := s.recRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load recommendations", err)
	}
	if err := s.attachProducts(ctx, recRows); err != nil {
		return nil, err
	}
	return s.buildItem(ctx, session, profile, result, recRows)
}

// Delete removes one history record. The identifier is a profile id when
// the record is linked, else a session id. The receipt reports whether the
// latest profile was removed; when it was, the newest remaining profile is
// promoted in the same transaction, but the receipt deliberately does not
// say which; callers re-fetch.
func (s *historyService) Delete(ctx context.Context, userID uuid.UUID, identifier string) (*DeleteReceiptView, error) {
	id, err := uuid.Parse(identifier)
	if err != nil {
		return nil, apperrors.New(apperrors.KindNotFound, "history record not found")
	}

	wasLatest := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessionIDs []uuid.UUID
		var profileIDs []uuid.UUID

		profile, err := s.profileRepo.GetByID(ctx, tx, id)
		if err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "load profile", err)
		}
		switch {
		case profile != nil && profile.UserID == userID:
			wasLatest = profile.IsLatest
			profileIDs = append(profileIDs, profile.ID)
			if profile.SessionID != nil {
				sessionIDs = append(sessionIDs, *profile.SessionID)
			}
		default:
			session, err := s.sessionRepo.GetByID(ctx, tx, id)
			if err != nil {
				return apperrors.Wrap(apperrors.KindNetwork, "load session", err)
			}
			if session == nil || session.UserID == nil || *session.UserID != userID {
				return apperrors.New(apperrors.KindNotFound, "history record not found")
			}
			sessionIDs = append(sessionIDs, session.ID)
			if linked, err := s.profileRepo.GetBySessionID(ctx, tx, session.ID); err != nil {
				return apperrors.Wrap(apperrors.KindNetwork, "load linked profile", err)
			} else if linked != nil {
				wasLatest = linked.IsLatest
				profileIDs = append(profileIDs, linked.ID)
			}
		}

		if err := s.recRepo.FullDeleteBySessionIDs(ctx, tx, sessionIDs); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "delete recommendations", err)
		}
		if err := s.resultRepo.FullDeleteBySessionIDs(ctx, tx, sessionIDs); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "delete results", err)
		}
		if err := s.answerRepo.FullDeleteBySessionIDs(ctx, tx, sessionIDs); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "delete answers", err)
		}
		if err := s.profileRepo.FullDeleteByIDs(ctx, tx, profileIDs); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "delete profile", err)
		}
		if err := s.sessionRepo.FullDeleteByIDs(ctx, tx, sessionIDs); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "delete session", err)
		}

		if wasLatest {
			newest, err := s.profileRepo.GetNewestByUserID(ctx, tx, userID)
			if err != nil {
				return apperrors.Wrap(apperrors.KindNetwork, "find next latest", err)
			}
			if newest != nil {
				if err := s.profileRepo.SetLatest(ctx, tx, newest.ID); err != nil {
					return apperrors.Wrap(apperrors.KindNetwork, "promote latest", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			return nil, apperrors.Wrap(apperrors.KindNetwork, "delete history", err)
		}
		return nil, err
	}

	if wasLatest {
		s.notifier.LatestProfileChanged(ctx, userID)
	}
	s.log.Info("history record deleted", "identifier", identifier, "was_latest", wasLatest)
	return &DeleteReceiptView{OK: true, WasLatest: wasLatest}, nil
}

func (s *historyService) buildItem(ctx context.Context, session *types.QuizSession, profile *types.SkinProfile, result *types.QuizResult, recRows []*types.SessionRecommendation) (*HistoryItemView, error) {
	answers, err := s.answerRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load answer snapshot", err)
	}

	item := &HistoryItemView{
		SessionID:       session.ID.String(),
		Profile:         profileViewFromRow(profile),
		ResultSummary:   summaryViewFromRow(result),
		Recommendations: recommendationViewsFromRows(recRows),
		AnswerSnapshot:  answerEntryViewsFromRows(answers),
	}
	if profile != nil {
		item.ProfileID = profile.ID.String()
	}
	if session.CompletedAt != nil {
		item.CompletedAt = session.CompletedAt.UTC()
	}
	return item, nil
}

func (s *historyService) attachProducts(ctx context.Context, rows []*types.SessionRecommendation) error {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, "load recommended products", err)
	}
	byID := make(map[string]*types.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, row := range rows {
		row.Product = byID[row.ProductID]
	}
	return nil
}
