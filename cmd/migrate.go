package cmd

import (
	"poolmanager/pkg/sysversion"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// command for migrating database
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate database tables and seed the pool config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate database error:", err)
			return
		}

		properties := providePropertyStore(database)
		from, err := sysversion.ReadSysVersion(ctx, properties)
		if err != nil {
			cmd.PrintErrln("read sysversion error:", err)
			return
		}

		if err := seedPoolConfig(ctx, providePoolStore(database)); err != nil {
			cmd.PrintErrln("seed pool config error:", err)
			return
		}

		if err := sysversion.Upgrade(ctx, properties); err != nil {
			cmd.PrintErrln("save sysversion error:", err)
			return
		}

		cmd.Println("migrated, schema version", from, "->", sysversion.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
