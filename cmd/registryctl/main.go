package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Command completed
	ExitParityFailed = 1 // The dataset disagrees with models.dev
	ExitError        = 2 // Configuration or runtime error
)

// ParityFailureError indicates that the parity check ran but found issues.
type ParityFailureError struct {
	Issues int
}

func (e *ParityFailureError) Error() string {
	return fmt.Sprintf("parity check failed: %d issue(s)", e.Issues)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var parityErr *ParityFailureError
		if errors.As(err, &parityErr) {
			os.Exit(ExitParityFailed)
		}
		os.Exit(ExitError)
	}
}
