// terminate tags or kills long-running processes on managed Windows clients.
package main

import (
	"os"

	"github.com/hostops/terminate/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
