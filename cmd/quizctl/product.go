package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dermatch/dermatch-go/internal/platform/quizapi"
	"github.com/dermatch/dermatch-go/internal/products"
)

func newProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <product-id>",
		Short: "Show one product's full detail record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			api, err := quizapi.New(log, quizapi.Config{BaseURL: flagBaseURL})
			if err != nil {
				return err
			}
			resolver, err := products.NewResolver(log, api)
			if err != nil {
				return err
			}

			detail, err := resolver.GetDetail(cmd.Context(), buildIdentity(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s", detail.Name)
			if detail.Brand != "" {
				fmt.Printf(" - %s", detail.Brand)
			}
			fmt.Printf(" [%s]\n", detail.Category)
			if detail.Description != "" {
				fmt.Println(detail.Description)
			}
			if detail.Price != nil {
				fmt.Printf("Price: $%.2f\n", *detail.Price)
			}
			if detail.Rating != nil {
				fmt.Printf("Rating: %.1f\n", *detail.Rating)
			}
			fmt.Println("Ingredients:")
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
			return nil
		},
	}
}
