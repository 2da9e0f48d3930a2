package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeacademy/internal/catalog"
	"nodeacademy/internal/config"
	"nodeacademy/internal/database"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Node Academy database backup tool",
	Long: `Export accounts, lesson progress and achievements to a portable JSON file,
or import such a file into any supported database.

The database is selected with DB_TYPE (sqlite, postgres, mysql), DB_PATH and
DATABASE_URL, the same variables the server reads.`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(output); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		return withBackupService(cmd.Context(), func(ctx context.Context, svc *service.BackupService) error {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			backup, err := svc.Export(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users to %s\n", len(backup.Users), output)
			return file.Close()
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		clearData, _ := cmd.Flags().GetBool("clear")
		yes, _ := cmd.Flags().GetBool("yes")

		file, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()

		if clearData && !yes {
			fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
				return nil
			}
		}

		return withBackupService(cmd.Context(), func(ctx context.Context, svc *service.BackupService) error {
			stats, err := svc.Import(ctx, file, clearData)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Import complete: %d users created, %d matched, %d progress rows, %d new achievements\n",
				stats.UsersCreated, stats.UsersMatched, stats.ProgressRows, stats.Achievements)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	importCmd.Flags().StringP("input", "i", "", "Input file path")
	importCmd.Flags().Bool("clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().Bool("yes", false, "Skip the confirmation prompt for --clear")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// withBackupService opens the configured database, brings the schema up to
// date and hands a backup service to fn.
func withBackupService(ctx context.Context, fn func(context.Context, *service.BackupService) error) error {
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.NewContext(ctx, log)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if _, err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debug("database ready", zap.String("type", cfg.DatabaseType))

	lessons, err := catalog.Load(cfg.LessonsPath)
	if err != nil {
		return fmt.Errorf("failed to load lessons: %w", err)
	}

	return fn(ctx, service.NewBackupService(db, lessons))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
