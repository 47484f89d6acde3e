package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/lookbook/backend/internal/infrastructure/config"
	"github.com/lookbook/backend/internal/infrastructure/logger"
	"github.com/lookbook/backend/internal/infrastructure/migration"
	"github.com/lookbook/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Lookbook schema migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [arguments]

Commands that need the database:
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations, negative n rolls back
  version               print the applied version
  force <version>       mark version as applied after a failed run

Commands on files only:
  create <name> [desc]  write the next up/down file pair into -path
  list                  list migrations in -path or the embedded set

Without -path the migrations embedded in the binary are used.
Database settings come from config.toml and LOOKBOOK_DATABASE_* variables.
`

// dbCommand runs against an open migrator with the command's arguments.
type dbCommand func(m *migration.Migrator, args []string, log *zap.Logger) error

var dbCommands = map[string]dbCommand{
	"up":   func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"step": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing %s", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func main() {
	path := flag.String("path", "", "migrations directory (default: embedded)")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command, args := flag.Arg(0), flag.Args()[1:]

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch command {
	case "create":
		err = create(*path, args, log)
	case "list":
		err = list(*path, log)
	default:
		run, ok := dbCommands[command]
		if !ok {
			log.Error("Unknown command", zap.String("command", command))
			flag.Usage()
			os.Exit(2)
		}
		err = withMigrator(*path, log, func(m *migration.Migrator) error {
			return run(m, args, log)
		})
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("missing migration name")
	}
	if dir == "" {
		dir = "migrations"
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(dir string, log *zap.Logger) error {
	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	names, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	log.Info("Migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// withMigrator opens the configured database, hands a migrator to fn and
// closes both afterwards.
func withMigrator(path string, log *zap.Logger, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
