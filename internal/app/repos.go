package app

import (
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/repos"
)

type Repos struct {
	Questions       repos.QuizQuestionRepo
	Products        repos.ProductRepo
	Sessions        repos.QuizSessionRepo
	Answers         repos.QuizAnswerRepo
	Profiles        repos.SkinProfileRepo
	Results         repos.QuizResultRepo
	Recommendations repos.SessionRecommendationRepo
}

func wireRepos(conn *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Questions:       repos.NewQuizQuestionRepo(conn, log),
		Products:        repos.NewProductRepo(conn, log),
		Sessions:        repos.NewQuizSessionRepo(conn, log),
		Answers:         repos.NewQuizAnswerRepo(conn, log),
		Profiles:        repos.NewSkinProfileRepo(conn, log),
		Results:         repos.NewQuizResultRepo(conn, log),
		Recommendations: repos.NewSessionRecommendationRepo(conn, log),
	}
}
