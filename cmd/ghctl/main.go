// Command ghctl drives the GitHub issues and notifications endpoints from the shell
// and can run a long lived notification watcher.
package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

var version = "dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("ghctl exited with an error")
		os.Exit(1)
	}
}
