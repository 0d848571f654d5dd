package main

import (
	"alcyxob/weekly-routines/internal/config"
	"alcyxob/weekly-routines/internal/repository"
	"alcyxob/weekly-routines/internal/repository/mongo"
	"alcyxob/weekly-routines/internal/repository/sqlite"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// stores is the set of repositories for the configured backend.
type stores struct {
	users    repository.UserRepository
	routines repository.RoutineRepository
	schedule repository.ScheduleRepository
	pinger   repository.Pinger
	close    func()
}

func openStores(cfg config.DatabaseConfig, logger *zap.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		appDB := client.Database(cfg.Name)

		// The unique (ownerId, dayOfWeek) index is what makes assign atomic,
		// so unlike the other indexes it is not optional.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("MongoDB ready", zap.String("database", cfg.Name))

		return &stores{
			users:    mongo.NewMongoUserRepository(appDB),
			routines: mongo.NewMongoRoutineRepository(appDB),
			schedule: mongo.NewMongoScheduleRepository(appDB),
			pinger:   mongo.Pinger{Client: client},
			close: func() {
				if err := mongo.DisconnectDB(client); err != nil {
					logger.Error("failed to disconnect MongoDB", zap.Error(err))
				}
			},
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite ready", zap.String("path", cfg.Path))

		return &stores{
			users:    sqlite.NewUserRepository(db),
			routines: sqlite.NewRoutineRepository(db),
			schedule: sqlite.NewScheduleRepository(db),
			pinger:   db,
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close SQLite", zap.Error(err))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
