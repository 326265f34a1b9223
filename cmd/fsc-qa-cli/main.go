package main

import (
	"os"

	"github.com/fscqa/fsc-qa/internal/builder"
	"github.com/fscqa/fsc-qa/internal/cli"
)

func main() {
	os.Exit(cli.Execute(func(environment string) (cli.Relay, func(), error) {
		return builder.BuildCLIRelay(environment)
	}))
}
