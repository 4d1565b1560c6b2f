package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/service/catalog"
)

var seedFile string

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the store schema and seed the default bottle types",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.close(ctx)

		// Opening the store applies the schema.
		svc := catalog.NewService(env.store, env.logger.Named("svc.catalog"))
		if err := svc.SeedDefaults(ctx); err != nil {
			return err
		}
		env.logger.Info("store initialized", zap.String("driver", env.cfg.Store.Driver))
		fmt.Fprintln(cmd.OutOrStdout(), "database ready")
		return nil
	},
}

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Upsert bottle types by label from a YAML file or the built-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		items := catalog.DefaultSeed()
		if seedFile != "" {
			loaded, err := catalog.LoadSeedFile(seedFile)
			if err != nil {
				return err
			}
			items = loaded
		}

		ctx := cmd.Context()
		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.close(ctx)

		svc := catalog.NewService(env.store, env.logger.Named("svc.catalog"))
		result, err := svc.Seed(ctx, items)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bottle types: %d created, %d updated\n", result.Created, result.Updated)
		return nil
	},
}

func init() {
	seedCatalogCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file with a bottle_types list")
	rootCmd.AddCommand(initDBCmd, seedCatalogCmd)
}
