// Command validate_catalog lints a catalog seed file before it is shipped:
// structural validation plus cross-reference checks the server only
// discovers at scoring time (scorer inputs referencing choices that no
// question offers).
//
// Usage: go run scripts/validate_catalog.go <catalog.yaml>
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dermatch/dermatch-go/internal/seed"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: validate_catalog <catalog.yaml>")
		os.Exit(2)
	}

	catalog, err := seed.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid catalog: %v\n", err)
		os.Exit(1)
	}

	warnings := crossReference(catalog)
	for _, warning := range warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	published := 0
	for _, product := range catalog.Products {
		if product.IsPublished() {
			published++
		}
	}
	fmt.Printf("ok: %d questions, %d products (%d published), %d warnings\n",
		len(catalog.Questions), len(catalog.Products), published, len(warnings))
}

// crossReference flags scorer inputs that reference choice ids no question
// offers; those silently never match at scoring time.
func crossReference(catalog seed.Catalog) []string {
	choicesByCategory := map[string]map[string]bool{}
	for _, question := range catalog.Questions {
		set := choicesByCategory[question.Category]
		if set == nil {
			set = map[string]bool{}
			choicesByCategory[question.Category] = set
		}
		for _, choice := range question.Choices {
			set[choice.ID] = true
		}
	}

	var warnings []string
	check := func(productID, field, category string, values []string) {
		for _, value := range values {
			if !choicesByCategory[category][value] {
				warnings = append(warnings,
					fmt.Sprintf("product %q %s value %q matches no %s choice", productID, field, value, category))
			}
		}
	}
	for _, product := range catalog.Products {
		check(product.ID, "concerns", "concerns", product.Concerns)
		check(product.ID, "skin_types", "skin_type", product.SkinTypes)
		check(product.ID, "avoid_for", "sensitivity", product.AvoidFor)
	}
	sort.Strings(warnings)
	return warnings
}
