package cmd

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/declpg/declpg/cmd/util"
	"github.com/declpg/declpg/internal/archive"
	"github.com/declpg/declpg/internal/introspect"
	"github.com/declpg/declpg/internal/plan"
	"github.com/declpg/declpg/internal/schema"
)

// connectionFlags holds the database connection flags shared by publish,
// script and report.
type connectionFlags struct {
	host            string
	port            int
	db              string
	user            string
	password        string
	sslmode         string
	applicationName string
	schemas         []string
	profilePath     string
	packagePath     string
	driver          string
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "localhost", "database host")
	cmd.Flags().IntVar(&f.port, "port", 5432, "database port")
	cmd.Flags().StringVar(&f.db, "db", "", "database name (or PGDATABASE)")
	cmd.Flags().StringVar(&f.user, "user", "", "database user (or PGUSER)")
	cmd.Flags().StringVar(&f.password, "password", "", "database password (or PGPASSWORD)")
	cmd.Flags().StringVar(&f.sslmode, "sslmode", "prefer", "SSL mode")
	cmd.Flags().StringVar(&f.applicationName, "application-name", "declpg", "application_name reported to the server")
	cmd.Flags().StringSliceVar(&f.schemas, "schema", nil, "schemas to introspect (default: every non-system schema)")
	cmd.Flags().StringVar(&f.profilePath, "profile", "", "path to a publish profile JSON file")
	cmd.Flags().StringVar(&f.packagePath, "package", "package.zip", "path to the package artifact to publish")
	cmd.Flags().StringVar(&f.driver, "driver", "pgx", "database/sql driver to connect with: pgx or postgres (lib/pq)")
	cmd.PreRunE = util.PreRunEWithEnvVarsAndConnectionAndApp(&f.db, &f.user, &f.host, &f.port, &f.applicationName)
}

func (f *connectionFlags) loadProfile() (*plan.Profile, error) {
	if f.profilePath == "" {
		return plan.DefaultProfile(), nil
	}
	return plan.LoadProfile(f.profilePath)
}

func (f *connectionFlags) connect() (*sql.DB, error) {
	return util.Connect(&util.ConnectionConfig{
		Host:            f.host,
		Port:            f.port,
		Database:        f.db,
		User:            f.user,
		Password:        f.password,
		SSLMode:         f.sslmode,
		ApplicationName: f.applicationName,
		Driver:          f.driver,
	})
}

// buildPlan loads the package artifact, introspects the live database, and
// computes the ordered change-set plan.
func buildPlan(ctx context.Context, f *connectionFlags) ([]*plan.Instruction, *schema.Package, error) {
	declared, err := archive.FromPath(f.packagePath)
	if err != nil {
		return nil, nil, err
	}

	db, err := f.connect()
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	profile, err := f.loadProfile()
	if err != nil {
		return nil, nil, err
	}

	live, err := introspect.New(introspect.FromDB(db)).BuildPackage(ctx, f.schemas)
	if err != nil {
		return nil, nil, err
	}

	instrs, err := plan.Plan(declared, live, profile)
	if err != nil {
		return nil, nil, err
	}
	return instrs, declared, nil
}
