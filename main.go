package main

import (
	"github.com/wfunc/guessdex/config"
	"github.com/wfunc/guessdex/logger"
	"github.com/wfunc/guessdex/persistence"
	"github.com/wfunc/guessdex/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize round-record store
	db, err := openDatabase(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open round-record store: %v", err)
	}
	defer db.Close()

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, db)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg *config.Config) (persistence.Database, error) {
	if !cfg.Database.Enabled {
		logger.Log.Info("Round-record store: in-memory (database disabled)")
		return persistence.NewMemory(), nil
	}

	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "sql":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
}
