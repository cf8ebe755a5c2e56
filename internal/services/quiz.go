package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/pkg/pointers"
	"github.com/dermatch/dermatch-go/internal/repos"
	"github.com/dermatch/dermatch-go/internal/types"
)

// Caller is the resolved identity of one request: a verified user id for
// bearer callers, or the client-generated anonymous id. Both may be empty
// on endpoints that allow fully unidentified access.
type Caller struct {
	UserID uuid.UUID
	AnonID string
}

func (c Caller) Authenticated() bool { return c.UserID != uuid.Nil }

type QuizService interface {
	StartSession(ctx context.Context, caller Caller) (*SessionView, error)
	SubmitAnswer(ctx context.Context, caller Caller, sessionID, questionID string, choiceIDs []string) error
	FinalizeSession(ctx context.Context, caller Caller, sessionID string) (*FinalizeView, error)
	GetSession(ctx context.Context, caller Caller, sessionID string) (*SessionDetailView, error)
}

type quizService struct {
	db          *gorm.DB
	log         *logger.Logger
	catalog     CatalogService
	notifier    Notifier
	sessionRepo repos.QuizSessionRepo
	answerRepo  repos.QuizAnswerRepo
	profileRepo repos.SkinProfileRepo
	resultRepo  repos.QuizResultRepo
	recRepo     repos.SessionRecommendationRepo
	productRepo repos.ProductRepo
}

func NewQuizService(
	db *gorm.DB,
	log *logger.Logger,
	catalog CatalogService,
	notifier Notifier,
	sessionRepo repos.QuizSessionRepo,
	answerRepo repos.QuizAnswerRepo,
	profileRepo repos.SkinProfileRepo,
	resultRepo repos.QuizResultRepo,
	recRepo repos.SessionRecommendationRepo,
	productRepo repos.ProductRepo,
) QuizService {
	return &quizService{
		db:          db,
		log:         log.With("service", "QuizService"),
		catalog:     catalog,
		notifier:    notifier,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		profileRepo: profileRepo,
		resultRepo:  resultRepo,
		recRepo:     recRepo,
		productRepo: productRepo,
	}
}

func (s *quizService) StartSession(ctx context.Context, caller Caller) (*SessionView, error) {
	session := &types.QuizSession{
		ID:        uuid.New(),
		Status:    types.SessionStatusOpen,
		StartedAt: time.Now().UTC(),
	}
	if caller.Authenticated() {
		session.UserID = pointers.Ptr(caller.UserID)
	} else {
		session.AnonToken = caller.AnonID
	}

	created, err := s.sessionRepo.Create(ctx, nil, session)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "start session", err)
	}
	s.log.Info("session started", "session_id", created.ID, "authenticated", caller.Authenticated())
	view := sessionViewFromRow(created)
	return &view, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, caller Caller, sessionID, questionID string, choiceIDs []string) error {
	session, err := s.ownedSession(ctx, nil, caller, sessionID)
	if err != nil {
		return err
	}
	if session.Status != types.SessionStatusOpen {
		return apperrors.New(apperrors.KindValidation, "session already completed")
	}
	if len(choiceIDs) == 0 {
		return apperrors.New(apperrors.KindValidation, "at least one choice is required")
	}

	questions, err := s.catalog.QuestionsByID(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, "load questions", err)
	}
	question, ok := questions[questionID]
	if !ok {
		return apperrors.Newf(apperrors.KindValidation, "unknown question %q", questionID)
	}
	if !question.IsMulti && len(choiceIDs) > 1 {
		return apperrors.Newf(apperrors.KindValidation, "question %q accepts a single choice", questionID)
	}

	valid := map[string]bool{}
	var catalogChoices []types.QuestionChoice
	if len(question.Choices) > 0 {
		_ = json.Unmarshal(question.Choices, &catalogChoices)
	}
	for _, ch := range catalogChoices {
		valid[ch.ID] = true
	}
	for _, choiceID := range choiceIDs {
		if !valid[choiceID] {
			return apperrors.Newf(apperrors.KindValidation, "choice %q is not part of question %q", choiceID, questionID)
		}
	}

	raw, err := json.Marshal(choiceIDs)
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "encode choices", err)
	}
	// Last write wins on (session, question): resubmitting replaces the row.
	if _, err := s.answerRepo.Upsert(ctx, nil, &types.QuizAnswer{
		ID:         uuid.New(),
		SessionID:  session.ID,
		QuestionID: questionID,
		ChoiceIDs:  datatypes.JSON(raw),
	}); err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, "store answer", err)
	}
	return nil
}

// FinalizeSession scores the session and persists the outcome. Finalizing a
// completed session replays the stored result instead of rescoring, so one
// session never produces two result sets.
func (s *quizService) FinalizeSession(ctx context.Context, caller Caller, sessionID string) (*FinalizeView, error) {
	var view *FinalizeView
	var completedUserID uuid.UUID
	var completedSessionID uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.ownedSession(ctx, tx, caller, sessionID)
		if err != nil {
			return err
		}

		if session.Status == types.SessionStatusCompleted {
			view, err = s.buildStoredFinalize(ctx, tx, session, caller)
			return err
		}

		answers, err := s.answerRepo.GetBySessionID(ctx, tx, session.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "load answers", err)
		}
		questions, err := s.catalog.QuestionsByID(ctx, tx)
		if err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "load questions", err)
		}
		if err := requireAnswered(questions, answers); err != nil {
			return err
		}

		draft := deriveDraft(questions, answers)
		products, err := s.productRepo.GetPublished(ctx, tx)
		if err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "load products", err)
		}
		ranked := scoreProducts(draft, products)

		now := time.Now().UTC()
		summary := buildSummary(draft, ranked, now)
		notes := buildStrategyNotes(draft, ranked)

		var profile *types.SkinProfile
		if caller.Authenticated() {
			profile, err = s.createLatestProfile(ctx, tx, caller.UserID, session.ID, draft, now)
			if err != nil {
				return err
			}
		}

		result, err := s.persistResult(ctx, tx, session.ID, profile, summary, notes, now)
		if err != nil {
			return err
		}
		recRows, err := s.persistRecommendations(ctx, tx, session.ID, ranked)
		if err != nil {
			return err
		}
		if err := s.sessionRepo.MarkCompleted(ctx, tx, session.ID, now); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, "complete session", err)
		}

		summaryView := summaryViewFromRow(result)
		view = &FinalizeView{
			Session:         sessionViewFromRow(session),
			CompletedAt:     now,
			RequiresAuth:    !caller.Authenticated(),
			Profile:         profileViewFromRow(profile),
			Summary:         summaryView,
			StrategyNotes:   notes,
			Recommendations: recommendationViewsFromRows(recRows),
		}
		if caller.Authenticated() {
			completedUserID = caller.UserID
			completedSessionID = session.ID
		}
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			return nil, apperrors.Wrap(apperrors.KindNetwork, "finalize session", err)
		}
		return nil, err
	}

	if completedUserID != uuid.Nil {
		s.notifier.QuizCompleted(ctx, completedUserID, completedSessionID)
	}
	return view, nil
}

func (s *quizService) GetSession(ctx context.Context, caller Caller, sessionID string) (*SessionDetailView, error) {
	session, err := s.ownedSession(ctx, nil, caller, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load answers", err)
	}
	view := &SessionDetailView{
		ID:        session.ID.String(),
		StartedAt: session.StartedAt.UTC(),
		Status:    session.Status,
		Answers:   answerEntryViewsFromRows(answers),
	}
	if session.CompletedAt != nil {
		at := session.CompletedAt.UTC()
		view.CompletedAt = &at
	}
	return view, nil
}

// ownedSession loads the session and enforces ownership. A session bound to
// another identity reads as missing rather than forbidden.
func (s *quizService) ownedSession(ctx context.Context, tx *gorm.DB, caller Caller, sessionID string) (*types.QuizSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid session id")
	}
	session, err := s.sessionRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load session", err)
	}
	if session == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "session not found")
	}
	switch {
	case session.UserID != nil:
		if *session.UserID != caller.UserID {
			return nil, apperrors.New(apperrors.KindNotFound, "session not found")
		}
	case session.AnonToken != "":
		if session.AnonToken != caller.AnonID {
			return nil, apperrors.New(apperrors.KindNotFound, "session not found")
		}
	}
	return session, nil
}

func requireAnswered(questions map[string]*types.QuizQuestion, answers []*types.QuizAnswer) error {
	answered := map[string]bool{}
	for _, answer := range answers {
		answered[answer.QuestionID] = true
	}
	var missing []string
	for id, question := range questions {
		if question.Required && !answered[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.Newf(apperrors.KindValidation, "required questions unanswered: %v", missing)
	}
	return nil
}

// createLatestProfile snapshots the draft as the user's latest profile,
// clearing the previous latest inside the same transaction.
func (s *quizService) createLatestProfile(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID, draft profileDraft, now time.Time) (*types.SkinProfile, error) {
	if err := s.profileRepo.UnsetLatestForUser(ctx, tx, userID); err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "unset latest profile", err)
	}
	profile := &types.SkinProfile{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: pointers.Ptr(sessionID),
		SkinType:  draft.SkinType,
		Budget:    draft.Budget,
		IsLatest:  true,
	}
	var err error
	if profile.Concerns, err = encodeJSON(draft.Concerns); err != nil {
		return nil, err
	}
	if profile.Sensitivities, err = encodeJSON(draft.Sensitivities); err != nil {
		return nil, err
	}
	if profile.Restrictions, err = encodeJSON(draft.Restrictions); err != nil {
		return nil, err
	}
	created, err := s.profileRepo.Create(ctx, tx, profile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "create profile", err)
	}
	return created, nil
}

func (s *quizService) persistResult(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, profile *types.SkinProfile, summary SummaryView, notes []string, now time.Time) (*types.QuizResult, error) {
	result := &types.QuizResult{
		ID:               uuid.New(),
		SessionID:        sessionID,
		AlgorithmVersion: AlgorithmVersion,
		GeneratedAt:      now,
	}
	if profile != nil {
		result.ProfileID = pointers.Ptr(profile.ID)
	}
	var err error
	if result.Summary, err = encodeJSON(summary); err != nil {
		return nil, err
	}
	if result.StrategyNotes, err = encodeJSON(notes); err != nil {
		return nil, err
	}
	created, err := s.resultRepo.Create(ctx, tx, result)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "store result", err)
	}
	return created, nil
}

func (s *quizService) persistRecommendations(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, ranked []scoredProduct) ([]*types.SessionRecommendation, error) {
	rows := make([]*types.SessionRecommendation, 0, len(ranked))
	for i, entry := range ranked {
		row := &types.SessionRecommendation{
			ID:        uuid.New(),
			SessionID: sessionID,
			ProductID: entry.Product.ID,
			Rank:      i + 1,
			Score:     entry.Score,
			Product:   entry.Product,
		}
		var err error
		if row.Ingredients, err = encodeJSON(ingredientNames(entry.Product)); err != nil {
			return nil, err
		}
		if row.Rationale, err = encodeJSON(entry.Rationale); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := s.recRepo.CreateMany(ctx, tx, rows); err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "store recommendations", err)
	}
	return rows, nil
}

// buildStoredFinalize replays a completed session's persisted result.
func (s *quizService) buildStoredFinalize(ctx context.Context, tx *gorm.DB, session *types.QuizSession, caller Caller) (*FinalizeView, error) {
	result, err := s.resultRepo.GetBySessionID(ctx, tx, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load result", err)
	}
	if result == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "session has no stored result")
	}
	recRows, err := s.recRepo.GetBySessionID(ctx, tx, session.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "load recommendations", err)
	}
	if err := s.attachProducts(ctx, tx, recRows); err != nil {
		return nil, err
	}

	var profile *types.SkinProfile
	if result.ProfileID != nil {
		profile, err = s.profileRepo.GetByID(ctx, tx, *result.ProfileID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindNetwork, "load profile", err)
		}
	}

	completedAt := result.GeneratedAt.UTC()
	if session.CompletedAt != nil {
		completedAt = session.CompletedAt.UTC()
	}
	return &FinalizeView{
		Session:         sessionViewFromRow(session),
		CompletedAt:     completedAt,
		RequiresAuth:    !caller.Authenticated(),
		Profile:         profileViewFromRow(profile),
		Summary:         summaryViewFromRow(result),
		StrategyNotes:   decodeStringList(result.StrategyNotes),
		Recommendations: recommendationViewsFromRows(recRows),
	}, nil
}

// attachProducts backfills the nested product summaries on stored
// recommendation rows.
func (s *quizService) attachProducts(ctx context.Context, tx *gorm.DB, rows []*types.SessionRecommendation) error {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, tx, ids)
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

func encodeJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "encode json", err)
	}
	return datatypes.JSON(raw), nil
}
