package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/tableorder/pkg/db"
	"github.com/angelmondragon/tableorder/pkg/logger"
)

// Apply brings the history schema up to date before the sql driver serves reads.
func Apply(ctx context.Context, logg *logger.Logger, client *db.Client) error {
	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "dialect", client.Dialect())
	logg.Info(ctx, "running history migrations")

	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	version, err := Version(ctx, sqlDB, client.Dialect())
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	logg.Info(logg.WithField(ctx, "version", version), "history migrations completed")
	return nil
}
