package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"github.com/abhisek/strandwise/cmd"
	"github.com/abhisek/strandwise/internal/logging"
)

func main() {
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		err := xerrors.New(err)
		logging.Err(err).Msg("command failed")
		if logging.DebugEnabled() {
			fmt.Fprint(os.Stderr, xerrors.Sprint(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
