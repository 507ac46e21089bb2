package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/config"
	"github.com/Veraticus/spice-recurring/internal/service"
	"github.com/Veraticus/spice-recurring/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the spice database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parsePatternID parses a pattern record id argument.
func parsePatternID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("%q is not a pattern id", arg), err)
	}
	return id, nil
}
