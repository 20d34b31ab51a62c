package main

import (
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arhyth/bankxlive"
)

// seeder creates the journal schema the server writes to.
func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfp := flag.String("config", "config.yml", "path to configuration file")
	envf := flag.String("env", ".env", "optional dotenv file with secrets")
	flag.Parse()

	if err := godotenv.Load(*envf); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal().Err(err).Msg("error loading env file")
	}
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	connStr, err := bankxlive.LoadDatabaseConfig(cfgfl)
	cfgfl.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading database config")
	}

	lh, err := bankxlive.NewLocalHelper(connStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting local helper")
	}
	defer lh.Close()
	if _, err = lh.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("error initializing database")
	}
	logger.Info().Msg("journal schema ready")
}
