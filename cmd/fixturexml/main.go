// Command fixturexml converts fixture spreadsheets to fixture library XML
// without running the web server.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/fixturelib/internal/core"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorText(err))
		os.Exit(1)
	}
}

// errorText prints known failures with their support code and suggested
// action, and anything else as the raw error.
func errorText(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}
