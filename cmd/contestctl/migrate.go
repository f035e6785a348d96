package main

import (
	"errors"
	"fmt"

	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/repository"
)

var migrateFunc = repository.Migrate // mockable

// migrate applies the embedded SQL migrations on postgres. sqlite has no
// versioned schema and is brought up with gorm's auto-migration instead.
func (cli *commandLine) migrate(direction string) error {
	if cli.cfg.Database.Driver == config.DriverSQLite {
		if direction != repository.MigrateUp {
			return errors.New("sqlite only supports migrate up")
		}
		if err := cli.db.AutoMigrate(); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Schema auto-migrated.")
		return nil
	}

	version, err := migrateFunc(cli.cfg.Database.Postgres.URL(), direction)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Schema at version %d.\n", version)
	return nil
}
