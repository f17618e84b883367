package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"clinic-scheduler/internal/configs"
	"clinic-scheduler/internal/database"
	"clinic-scheduler/internal/logging"
	"clinic-scheduler/migrations"

	"github.com/joho/godotenv"
)

var configPath = flag.String("config", os.Getenv("CLINIC_CONFIG"), "Config file path")

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal(err)
	}
	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(config.LogLevel(), os.Stdout)
	if config.Store() != configs.StorePostgres {
		logger.Fatal().Str("store", config.Store()).Msg("migrations only apply to the postgres store")
	}

	dbConn, err := database.NewConnection(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to the database")
	}
	defer dbConn.Close()

	version, err := database.Migrate(dbConn, migrations.FS)
	if err != nil {
		logger.Error().Err(err).Msg("could not migrate the database")
		return
	}
	logging.PrintlnInfo(logger, fmt.Sprint("database schema at version ", version))
}
