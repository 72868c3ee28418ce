package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.SetFormat("console")

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("spivot failed")
	}
}
