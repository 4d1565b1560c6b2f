package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/service/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every sale line to a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "csv" && exportFormat != "xlsx" {
			return fmt.Errorf("unsupported format %q (want csv or xlsx)", exportFormat)
		}

		ctx := cmd.Context()
		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.close(ctx)

		loc, err := env.cfg.Reporting.Location()
		if err != nil {
			return err
		}
		svc := export.NewService(env.store, nil, loc, env.logger.Named("svc.export"))
		write := svc.WriteCSV
		if exportFormat == "xlsx" {
			write = svc.WriteXLSX
		}

		path := exportOut
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, svc.FileName(time.Now(), exportFormat))
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := write(ctx, f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		env.logger.Info("export written", zap.String("path", path), zap.String("format", exportFormat))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "output file, or a directory for a timestamped file name")
	rootCmd.AddCommand(exportCmd)
}
