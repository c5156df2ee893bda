package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"github.com/rentalcore/backend/internal/infrastructure/migration"
	"github.com/rentalcore/backend/migrations"
	"go.uber.org/zap"
)

// create writes here unless -path is given
const defaultCreateDir = "migrations"

var errUsage = errors.New("invalid arguments")

// env is what a command runs against. migrator is nil for commands that
// do not touch the database.
type env struct {
	log      *zap.Logger
	dir      string
	source   fs.FS
	migrator *migration.Migrator
}

type command struct {
	args    string
	help    string
	needsDB bool
	run     func(e *env, args []string) error
}

var commands = map[string]command{
	"up": {help: "Apply all pending migrations", needsDB: true,
		run: func(e *env, _ []string) error { return e.migrator.Up() }},
	"down": {help: "Roll back all migrations", needsDB: true,
		run: func(e *env, _ []string) error { return e.migrator.Down() }},
	"step": {args: "<n>", help: "Apply n migrations, negative rolls back", needsDB: true,
		run: func(e *env, args []string) error {
			n, err := intArg(args)
			if err != nil {
				return err
			}
			return e.migrator.Steps(n)
		}},
	"goto": {args: "<version>", help: "Migrate up or down to a version", needsDB: true,
		run: func(e *env, args []string) error {
			v, err := intArg(args)
			if err != nil || v < 0 {
				return errUsage
			}
			return e.migrator.GoTo(uint(v))
		}},
	"version": {help: "Show the applied version", needsDB: true, run: showVersion},
	"force": {args: "<version>", help: "Mark a version applied without running it", needsDB: true,
		run: func(e *env, args []string) error {
			v, err := intArg(args)
			if err != nil {
				return err
			}
			e.log.Warn("Forcing migration version", zap.Int("version", v))
			return e.migrator.Force(v)
		}},
	"drop": {args: "-confirm", help: "Drop every table in the database", needsDB: true,
		run: func(e *env, args []string) error {
			if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
				return fmt.Errorf("%w: drop needs -confirm", errUsage)
			}
			return e.migrator.Drop()
		}},
	"create": {args: "<name> [description]", help: "Write a new up/down file pair", run: createMigration},
	"list":   {help: "List the migrations in the source", run: listMigrations},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	e := &env{log: log, dir: *dir}
	if err := run(e, cmd, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "usage: migrate %s %s\n", args[0], cmd.args)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(e *env, cmd command, args []string) error {
	source, name, err := migrationSource(e.dir)
	if err != nil {
		return err
	}
	e.source = source
	e.log.Debug("Using migrations", zap.String("source", name))

	if !cmd.needsDB {
		return cmd.run(e, args[1:])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	e.migrator, err = migration.New(db, source, e.log)
	if err != nil {
		return err
	}
	defer e.migrator.Close()
	return cmd.run(e, args[1:])
}

// migrationSource picks the embedded migrations unless a directory is given
func migrationSource(dir string) (fs.FS, string, error) {
	if dir == "" {
		return migrations.FS, "embedded", nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, "", fmt.Errorf("migrations directory: %w", err)
	}
	return os.DirFS(abs), abs, nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func showVersion(e *env, _ []string) error {
	version, dirty, err := e.migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		e.log.Info("No migrations applied")
		return nil
	}
	e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func createMigration(e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	dir := e.dir
	if dir == "" {
		dir = defaultCreateDir
	}
	description := strings.Join(args[1:], " ")
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	e.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(e *env, _ []string) error {
	names, err := migration.ListMigrations(e.source)
	if err != nil {
		return err
	}
	e.log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Rental Core database migrations")
	fmt.Fprintln(out, "\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(out, "  %-28s %s\n", strings.TrimSpace(name+" "+c.args), c.help)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nThe database comes from RENTAL_DATABASE_HOST, _PORT, _USER, _PASSWORD, _NAME and _SSLMODE.")
}
