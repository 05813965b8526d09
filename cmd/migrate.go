package cmd

import (
	"fmt"

	"simpleink/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := db.Open(cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		fmt.Printf("Schema up to date (%s)\n", pool.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
