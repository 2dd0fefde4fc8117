// Package dbwait blocks until the database behind the resolved
// settings becomes reachable, with a bounded number of attempts.
// Exhausting the attempts is fatal for the run: nothing may be written
// to the configuration file before the database answered once.
package dbwait

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/wpstrap/wpstrap/pkg/envconf"
	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// Driver is the database driver tag exported for hook scripts.
const Driver = "mysql"

// Pinger performs a single reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MySQLPinger checks reachability over a real MySQL connection. When
// the settings carry a verification query it is executed instead of a
// protocol-level ping.
type MySQLPinger struct {
	settings envconf.Settings
}

// NewMySQLPinger builds a pinger for the resolved settings.
func NewMySQLPinger(settings envconf.Settings) *MySQLPinger {
	return &MySQLPinger{settings: settings}
}

func (p *MySQLPinger) Ping(ctx context.Context) error {
	cfg := mysql.NewConfig()
	cfg.User = p.settings.User
	cfg.Passwd = p.settings.Password
	cfg.Net = "tcp"
	cfg.Addr = p.settings.HostPort()
	cfg.DBName = p.settings.Name
	cfg.Timeout = 5 * time.Second

	db, err := sql.Open(Driver, cfg.FormatDSN())
	if err != nil {
		return wperrors.Wrap(err, wperrors.ErrDBConfig, "opening database handle")
	}
	defer func() { _ = db.Close() }()

	if q := p.settings.PingQuery; q != "" {
		rows, err := db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
		}
		return rows.Err()
	}
	return db.PingContext(ctx)
}

// Wait pings until success, up to attempts tries spaced by interval.
func Wait(ctx context.Context, p Pinger, attempts int, interval time.Duration) error {
	logger := logging.GetLogger("dbwait")

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := p.Ping(ctx); err == nil {
			logger.Info().Int("attempt", attempt).Msg("Database is reachable")
			return nil
		} else {
			lastErr = err
			logger.Debug().Err(err).
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Msg("Database not reachable yet")
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return wperrors.Wrap(ctx.Err(), wperrors.ErrDBUnavailable, "canceled while waiting for database")
		case <-time.After(interval):
		}
	}

	return wperrors.Wrapf(lastErr, wperrors.ErrDBUnavailable,
		"database not reachable after %d attempts", attempts)
}
