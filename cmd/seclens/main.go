package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/seclens/seclens-go/internal/cli"
	"github.com/seclens/seclens-go/internal/domain/task"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode formats the error for the user and picks the exit status:
// validation and not-found failures are user errors (2), everything else
// is an operational failure (1).
func exitCode(err error) int {
	fmt.Fprintf(os.Stderr, "seclens: %v\n", err)

	var validationErr *task.ValidationError
	var notFoundErr *task.NotFoundError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) {
		return 2
	}
	return 1
}
