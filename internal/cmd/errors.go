package cmd

import (
	"errors"
	"strconv"
)

// exitStatus is returned by a subcommand whose output is already complete and
// whose answer is the process exit code, like status with a run in progress.
// Execute returns the code without printing the error.
type exitStatus int

func (e exitStatus) Error() string {
	return "exit status " + strconv.Itoa(int(e))
}

// exitCode reports the code carried by err, if it wraps an exitStatus.
func exitCode(err error) (int, bool) {
	var es exitStatus
	if errors.As(err, &es) {
		return int(es), true
	}
	return 0, false
}
