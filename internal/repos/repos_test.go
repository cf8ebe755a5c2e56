package repos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/db"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

func newTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)

	svc, err := db.NewSQLite(":memory:", log)
	if err != nil {
		t.Fatalf("db.NewSQLite: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	return svc.DB(), log
}

func mustJSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func createSession(t *testing.T, conn *gorm.DB, log *logger.Logger, userID *uuid.UUID) *types.QuizSession {
	t.Helper()
	repo := NewQuizSessionRepo(conn, log)
	session, err := repo.Create(context.Background(), nil, &types.QuizSession{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    types.SessionStatusOpen,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestQuizAnswerUpsertLastWriteWins(t *testing.T) {
	conn, log := newTestDB(t)
	session := createSession(t, conn, log, nil)
	repo := NewQuizAnswerRepo(conn, log)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, nil, &types.QuizAnswer{
		ID:         uuid.New(),
		SessionID:  session.ID,
		QuestionID: "skin-type",
		ChoiceIDs:  mustJSON(t, []string{"oily"}),
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, nil, &types.QuizAnswer{
		ID:         uuid.New(),
		SessionID:  session.ID,
		QuestionID: "skin-type",
		ChoiceIDs:  mustJSON(t, []string{"dry"}),
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	answers, err := repo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("answers: want 1 row, got %d", len(answers))
	}
	var choices []string
	if err := json.Unmarshal(answers[0].ChoiceIDs, &choices); err != nil {
		t.Fatalf("unmarshal choices: %v", err)
	}
	if len(choices) != 1 || choices[0] != "dry" {
		t.Fatalf("choices: want [dry], got %v", choices)
	}
}

func TestQuizAnswerDistinctQuestionsKeepRows(t *testing.T) {
	conn, log := newTestDB(t)
	session := createSession(t, conn, log, nil)
	repo := NewQuizAnswerRepo(conn, log)
	ctx := context.Background()

	for _, questionID := range []string{"skin-type", "concerns"} {
		if _, err := repo.Upsert(ctx, nil, &types.QuizAnswer{
			ID:         uuid.New(),
			SessionID:  session.ID,
			QuestionID: questionID,
			ChoiceIDs:  mustJSON(t, []string{"x"}),
		}); err != nil {
			t.Fatalf("upsert %s: %v", questionID, err)
		}
	}

	answers, err := repo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("answers: want 2 rows, got %d", len(answers))
	}
}

func TestSkinProfileLatestBookkeeping(t *testing.T) {
	conn, log := newTestDB(t)
	repo := NewSkinProfileRepo(conn, log)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.Create(ctx, nil, &types.SkinProfile{
		ID:       uuid.New(),
		UserID:   userID,
		SkinType: "oily",
		IsLatest: true,
	})
	if err != nil {
		t.Fatalf("create first profile: %v", err)
	}

	// Second finalize: unset then create, as the service does inside one
	// transaction.
	if err := conn.Transaction(func(tx *gorm.DB) error {
		if err := repo.UnsetLatestForUser(ctx, tx, userID); err != nil {
			return err
		}
		_, err := repo.Create(ctx, tx, &types.SkinProfile{
			ID:       uuid.New(),
			UserID:   userID,
			SkinType: "dry",
			IsLatest: true,
		})
		return err
	}); err != nil {
		t.Fatalf("second finalize tx: %v", err)
	}

	var latestCount int64
	if err := conn.Model(&types.SkinProfile{}).
		Where("user_id = ? AND is_latest = ?", userID, true).
		Count(&latestCount).Error; err != nil {
		t.Fatalf("count latest: %v", err)
	}
	if latestCount != 1 {
		t.Fatalf("latest profiles: want 1, got %d", latestCount)
	}

	refetched, err := repo.GetByID(ctx, nil, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refetched == nil || refetched.IsLatest {
		t.Fatalf("first profile: want demoted, got %+v", refetched)
	}
}

func TestSkinProfilePromoteNewestAfterDelete(t *testing.T) {
	conn, log := newTestDB(t)
	repo := NewSkinProfileRepo(conn, log)
	ctx := context.Background()
	userID := uuid.New()

	older, err := repo.Create(ctx, nil, &types.SkinProfile{
		ID:        uuid.New(),
		UserID:    userID,
		SkinType:  "combination",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	latest, err := repo.Create(ctx, nil, &types.SkinProfile{
		ID:       uuid.New(),
		UserID:   userID,
		SkinType: "dry",
		IsLatest: true,
	})
	if err != nil {
		t.Fatalf("create latest: %v", err)
	}

	if err := repo.FullDeleteByIDs(ctx, nil, []uuid.UUID{latest.ID}); err != nil {
		t.Fatalf("delete latest: %v", err)
	}

	newest, err := repo.GetNewestByUserID(ctx, nil, userID)
	if err != nil {
		t.Fatalf("GetNewestByUserID: %v", err)
	}
	if newest == nil || newest.ID != older.ID {
		t.Fatalf("newest remaining: want %s, got %+v", older.ID, newest)
	}
	if err := repo.SetLatest(ctx, nil, newest.ID); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}

	promoted, err := repo.GetByID(ctx, nil, newest.ID)
	if err != nil {
		t.Fatalf("GetByID promoted: %v", err)
	}
	if promoted == nil || !promoted.IsLatest {
		t.Fatalf("promoted profile: want is_latest=true, got %+v", promoted)
	}
}

func TestSessionRecommendationRankOrder(t *testing.T) {
	conn, log := newTestDB(t)
	session := createSession(t, conn, log, nil)
	repo := NewSessionRecommendationRepo(conn, log)
	ctx := context.Background()

	// Insert out of rank order on purpose.
	if err := repo.CreateMany(ctx, nil, []*types.SessionRecommendation{
		{ID: uuid.New(), SessionID: session.ID, ProductID: "p2", Rank: 2, Score: 0.81},
		{ID: uuid.New(), SessionID: session.ID, ProductID: "p1", Rank: 1, Score: 0.92},
	}); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	rows, err := repo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want 2, got %d", len(rows))
	}
	if rows[0].Rank != 1 || rows[0].ProductID != "p1" {
		t.Fatalf("rows[0]: want rank 1 p1, got rank %d %s", rows[0].Rank, rows[0].ProductID)
	}
	if rows[1].Rank != 2 || rows[1].ProductID != "p2" {
		t.Fatalf("rows[1]: want rank 2 p2, got rank %d %s", rows[1].Rank, rows[1].ProductID)
	}
}
