package main

import (
	"log"

	"switchseed/db"

	"github.com/spf13/cobra"
)

func main() {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "init_demo_db",
		Short: "Create the switch schema without loading any switches",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := db.BootstrapSQLite(dbPath); err != nil {
				log.Fatalf("Failed to initialize database: %v", err)
			}

			log.Printf("Demo database initialized successfully at %s", dbPath)
			log.Println("Schema created. No switches loaded.")
		},
	}
	rootCmd.Flags().StringVar(&dbPath, "db", "switches.db", "Path to SQLite database file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}
