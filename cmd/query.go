package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/chloe1331/typeorm/core/config"
	"github.com/chloe1331/typeorm/core/database"

	"github.com/spf13/cobra"
)

// queryCmd runs a raw SQL statement through the configured connection.
// Useful for inspecting junction tables while debugging a plan.
var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run a raw SQL query against the configured database",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	RootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	rows, err := db.Raw(args[0]).Rows()
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}

	count := 0
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			// Drivers hand back []byte for text columns; widen for JSON.
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}

		encoded, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		fmt.Println(string(encoded))
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query iteration failed: %w", err)
	}

	fmt.Printf("%d row(s)\n", count)
	return nil
}
