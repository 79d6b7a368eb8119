package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
