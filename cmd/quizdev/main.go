// quizdev runs the reference quiz/recommendation API server backed by
// postgres (or sqlite via DB_DRIVER=sqlite) and the seeded dev catalog.
package main

import (
	"fmt"
	"os"

	"github.com/dermatch/dermatch-go/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()
	if err := a.Run(); err != nil {
		a.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
