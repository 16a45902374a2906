package main

import (
	"fmt"
	"os"

	"github.com/ncobase/recruit/cmd/recruit/commands"

	_ "github.com/ncobase/recruit/data/postgres"
	_ "github.com/ncobase/recruit/data/redis"
	_ "github.com/ncobase/recruit/data/sqlite"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
