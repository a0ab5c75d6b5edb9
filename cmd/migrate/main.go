package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/inventory-service/internal/config"
	"github.com/light-bringer/inventory-service/internal/pkg/logger"
)

var migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")

// dbPath is a parsed projects/P/instances/I/databases/D name.
type dbPath struct {
	Project  string
	Instance string
	Database string
}

func (p dbPath) instanceName() string {
	return fmt.Sprintf("projects/%s/instances/%s", p.Project, p.Instance)
}

func (p dbPath) String() string {
	return fmt.Sprintf("%s/databases/%s", p.instanceName(), p.Database)
}

func parseDBPath(name string) (dbPath, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return dbPath{}, fmt.Errorf("invalid database name %q: want projects/P/instances/I/databases/D", name)
	}
	for _, p := range []string{parts[1], parts[3], parts[5]} {
		if p == "" {
			return dbPath{}, fmt.Errorf("invalid database name %q: empty segment", name)
		}
	}
	return dbPath{Project: parts[1], Instance: parts[3], Database: parts[5]}, nil
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Must(cfg.Logger).With(zap.String("component", "migrate"))
	defer func() { _ = log.Sync() }()

	path, err := parseDBPath(cfg.Spanner.Database)
	if err != nil {
		log.Fatal("bad SPANNER_DATABASE", zap.Error(err))
	}

	emulator := os.Getenv("SPANNER_EMULATOR_HOST")
	if emulator != "" {
		log.Info("using Spanner emulator", zap.String("host", emulator))
	}

	m := &migrator{path: path, dir: *migrateDir, emulator: emulator != "", log: log}
	if err := m.run(context.Background()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations completed", zap.String("database", path.String()))
}

type migrator struct {
	path     dbPath
	dir      string
	emulator bool
	log      *zap.Logger
}

func (m *migrator) run(ctx context.Context) error {
	// Only the emulator lets us create instances on the fly.
	if m.emulator {
		if err := m.ensureInstance(ctx); err != nil {
			return fmt.Errorf("failed to ensure instance: %w", err)
		}
	}

	dbAdmin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer dbAdmin.Close()

	if err := m.ensureDatabase(ctx, dbAdmin); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	return m.applyMigrations(ctx, dbAdmin)
}

func (m *migrator) ensureInstance(ctx context.Context) error {
	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: m.path.instanceName()})
	if err == nil {
		m.log.Debug("instance exists", zap.String("instance", m.path.Instance))
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return err
	}

	m.log.Info("creating instance", zap.String("instance", m.path.Instance))
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + m.path.Project,
		InstanceId: m.path.Instance,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", m.path.Project),
			DisplayName: "Inventory development",
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		m.log.Warn("instance creation did not report completion", zap.Error(err))
	}
	return nil
}

func (m *migrator) ensureDatabase(ctx context.Context, admin *database.DatabaseAdminClient) error {
	_, err := admin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: m.path.String()})
	if err == nil {
		m.log.Debug("database exists", zap.String("database", m.path.Database))
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check database: %w", err)
	}

	m.log.Info("creating database", zap.String("database", m.path.Database))
	op, err := admin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          m.path.instanceName(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", m.path.Database),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	return nil
}

// applyMigrations runs every *.sql file in lexical order. Each file is one DDL batch.
func (m *migrator) applyMigrations(ctx context.Context, admin *database.DatabaseAdminClient) error {
	files, err := filepath.Glob(filepath.Join(m.dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		m.log.Warn("no migration files found", zap.String("dir", m.dir))
		return nil
	}

	for _, file := range files {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		statements := splitDDLStatements(string(content))
		if len(statements) == 0 {
			continue
		}

		op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   m.path.String(),
			Statements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", name, err)
		}
		m.log.Info("applied migration", zap.String("file", name), zap.Int("statements", len(statements)))
	}
	return nil
}

// splitDDLStatements drops comment lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
