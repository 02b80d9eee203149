package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.SourceDir, "source directory for create and validate")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := logg.WithField(context.Background(), "cmd", opts.cmd)

	// create and validate work on the source tree and never touch the database
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			fail(ctx, logg, errors.New("missing -name for create"))
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			fail(ctx, logg, err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			fail(ctx, logg, err)
		}
		fmt.Println("migrations valid")
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fail(ctx, logg, err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{"cmd": opts.cmd, "env": cfg.App.Env})

	if err := run(ctx, cfg, logg, opts); err != nil {
		fail(ctx, logg, err)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) (err error) {
	if cfg.DB.IsSQLite() {
		return errors.New("goose migrations target postgres; sqlite schemas come from BACKOFFICE_AUTO_MIGRATE")
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	runner, err := migrate.NewRunner(sqlDB, nil, logg)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "version":
		target, convErr := strconv.ParseInt(opts.version, 10, 64)
		if convErr != nil {
			return fmt.Errorf("invalid -version %q (expected YYYYMMDDHHMMSS): %w", opts.version, convErr)
		}
		return runner.To(ctx, target)
	case "status":
		statuses, statusErr := runner.Status(ctx)
		if statusErr != nil {
			return statusErr
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, st := range statuses {
			applied := "-"
			if !st.AppliedAt.IsZero() {
				applied = st.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
}

func fail(ctx context.Context, logg *logger.Logger, err error) {
	logg.Error(ctx, "migrate.failed", err)
	os.Exit(1)
}
