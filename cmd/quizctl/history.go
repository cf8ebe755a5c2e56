package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/history"
	"github.com/dermatch/dermatch-go/internal/platform/quizapi"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage match history (requires --token)",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	return cmd
}

func newHistoryManager() (*history.Manager, quizapi.Client, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	api, err := quizapi.New(log, quizapi.Config{BaseURL: flagBaseURL})
	if err != nil {
		return nil, nil, err
	}
	manager, err := history.NewManager(log, api, func() {
		fmt.Println("Note: your latest profile changed; re-fetch before relying on it.")
	})
	if err != nil {
		return nil, nil, err
	}
	return manager, api, nil
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List completed sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := newHistoryManager()
			if err != nil {
				return err
			}
			records, err := manager.List(cmd.Context(), buildIdentity())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No history. Anonymous sessions are not kept; sign in and retake the quiz.")
				return nil
			}
			for _, record := range records {
				printHistoryLine(record)
			}
			return nil
		},
	}
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile-id>",
		Short: "Show one record in full, including the answer snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := newHistoryManager()
			if err != nil {
				return err
			}
			record, err := manager.GetDetail(cmd.Context(), buildIdentity(), args[0])
			if err != nil {
				return err
			}
			printHistoryLine(record)
			if record.Profile != nil {
				fmt.Printf("  skin type: %s  budget: %s\n", record.Profile.SkinType, record.Profile.Budget)
				fmt.Printf("  concerns: %s\n", strings.Join(record.Profile.Concerns, ", "))
			}
			fmt.Println("  answers:")
			for _, answer := range record.Answers {
				fmt.Printf("    %s = %s\n", answer.QuestionID, strings.Join(answer.ChoiceIDs, ", "))
			}
			for _, rec := range record.Recommendations {
				fmt.Printf("  %2d. %s (%.2f)\n", rec.Rank, rec.ProductID, rec.Score)
			}
			return nil
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile-or-session-id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := newHistoryManager()
			if err != nil {
				return err
			}
			receipt, err := manager.DeleteByIdentifier(cmd.Context(), buildIdentity(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted. was latest: %v\n", receipt.WasLatest)
			return nil
		},
	}
}

func printHistoryLine(record domain.HistoryRecord) {
	label := record.ProfileID
	if record.Kind == domain.RecordLegacy {
		label = "(legacy, answers only)"
	}
	fmt.Printf("%s  session %s  %s\n",
		record.CompletedAt.Format("2006-01-02 15:04"), record.SessionID, label)
}
