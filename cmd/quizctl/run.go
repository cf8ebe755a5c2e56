package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/platform/quizapi"
	"github.com/dermatch/dermatch-go/internal/products"
	"github.com/dermatch/dermatch-go/internal/quiz"
)

// firstChoiceSource answers every question with its first choice. It keeps
// `quizctl run` usable without flags; real answers come via --answer.
type firstChoiceSource struct{}

func (firstChoiceSource) Choices(q domain.Question) ([]string, bool) {
	if len(q.Choices) == 0 {
		return nil, false
	}
	return []string{q.Choices[0].ID}, true
}

func newRunCmd() *cobra.Command {
	var answers []string
	var expand bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Take the quiz: start, answer every question, finalize",
		Long: `Runs the full session lifecycle against the API and prints the ranked
recommendations. Answers default to each question's first choice; override
per question with --answer question-id=choice-id[,choice-id].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			api, err := quizapi.New(log, quizapi.Config{BaseURL: flagBaseURL})
			if err != nil {
				return err
			}
			id := buildIdentity()

			questions, err := api.ListQuestions(ctx, id)
			if err != nil {
				return err
			}

			source, err := buildAnswerSource(answers, questions)
			if err != nil {
				return err
			}

			orchestrator, err := quiz.NewOrchestrator(log, api, id, nil)
			if err != nil {
				return err
			}
			result, err := orchestrator.Run(ctx, questions, source)
			if err != nil {
				return err
			}

			printResult(result)
			if result.RequiresAuth {
				fmt.Println("\nSign in to keep this result in your match history.")
			}
			if expand {
				if err := printProductDetails(ctx, log, api, id, result.Recommendations); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "answer override, question-id=choice-id[,choice-id]")
	cmd.Flags().BoolVar(&expand, "expand", false, "fetch full product details for every recommendation")
	return cmd
}

func buildIdentity() identity.Identity {
	if flagToken != "" {
		return identity.Authenticated(flagToken)
	}
	anonID := flagAnonID
	if anonID == "" {
		anonID = identity.NewAnonymousID()
	}
	return identity.Anonymous(anonID)
}

func buildAnswerSource(overrides []string, questions []domain.Question) (quiz.AnswerSource, error) {
	if len(overrides) == 0 {
		return firstChoiceSource{}, nil
	}
	known := map[string]bool{}
	for _, q := range questions {
		known[q.ID] = true
	}
	answerMap := quiz.AnswerMap{}
	for _, override := range overrides {
		questionID, choices, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --answer %q, want question-id=choice-id[,choice-id]", override)
		}
		if !known[questionID] {
			return nil, fmt.Errorf("unknown question %q", questionID)
		}
		answerMap[questionID] = strings.Split(choices, ",")
	}
	return answerMap, nil
}

func printResult(result domain.FinalizeResult) {
	fmt.Printf("Session %s finalized at %s\n\n", result.Session.ID, result.CompletedAt.Format("2006-01-02 15:04"))

	if len(result.Summary.PrimaryConcerns) > 0 {
		fmt.Printf("Concerns: %s\n", strings.Join(result.Summary.PrimaryConcerns, ", "))
	}
	if len(result.Summary.TopIngredients) > 0 {
		fmt.Printf("Look for: %s\n", strings.Join(result.Summary.TopIngredients, ", "))
	}
	for _, note := range result.StrategyNotes {
		fmt.Printf("  - %s\n", note)
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range result.Recommendations {
		fmt.Printf("%2d. %-28s score %.2f", rec.Rank, rec.Product.Name, rec.Score)
		if rec.Product.Brand != "" {
			fmt.Printf("  (%s)", rec.Product.Brand)
		}
		fmt.Println()
		categories := make([]string, 0, len(rec.Rationale))
		for category := range rec.Rationale {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Printf("      %s: %s\n", category, strings.Join(rec.Rationale[category], "; "))
		}
	}
}

// printProductDetails expands every recommendation concurrently; the
// resolver collapses duplicate ids into one request each.
func printProductDetails(ctx context.Context, log *logger.Logger, api quizapi.Client, id identity.Identity, recs []domain.Recommendation) error {
	resolver, err := products.NewResolver(log, api)
	if err != nil {
		return err
	}

	details := make([]domain.ProductDetail, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range recs {
		g.Go(func() error {
			detail, err := resolver.GetDetail(gctx, id, rec.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", rec.ProductID, err)
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("\nDetails:")
	for _, detail := range details {
		fmt.Printf("\n%s - %s\n", detail.Name, detail.Description)
		for _, ing := range detail.Ingredients {
			marker := " "
			if ing.Highlight {
				marker = "*"
			}
			fmt.Printf("  %s %s", marker, ing.Name)
			if ing.Purpose != "" {
				fmt.Printf(" (%s)", ing.Purpose)
			}
			fmt.Println()
		}
	}
	return nil
}
