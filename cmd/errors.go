package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/agentify-dev/agentify/internal/ui"
)

// HandleFatalError handles unrecoverable errors that should terminate the
// application.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// PrintError prints an error without exiting, allowing for recovery. With
// --verbose the underlying technical error is shown instead of the clean
// user-facing message.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.StylePrefixError.Render("Error:"), technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, ui.StyleError.Render(userMsg))
	}
}

// LogError logs a debug message to stderr only in verbose mode.
func LogError(msg string, err error) {
	if !viper.GetBool("verbose") {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
	}
}
