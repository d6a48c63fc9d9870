package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/chloe1331/typeorm/core/config"
	"github.com/chloe1331/typeorm/core/database"
	"github.com/chloe1331/typeorm/core/executor"
	"github.com/chloe1331/typeorm/core/logger"
	"github.com/chloe1331/typeorm/core/metadata"
	"github.com/chloe1331/typeorm/core/reconcile"
	"github.com/chloe1331/typeorm/core/subject"
	"github.com/chloe1331/typeorm/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planFilePath string
	planApply    bool
)

// planCmd diffs an entity snapshot pair from a JSON file and reports the
// junction operations needed to reconcile the relation.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute junction row operations for a many-to-many relation",
	Long: `Plan reads a JSON file describing one entity, its persisted snapshot, and
one many-to-many relation, then prints the junction row inserts and deletes
needed to reconcile them.

Examples:
  # Report only
  typeorm plan --file change.json

  # Compute and execute against the configured database
  typeorm plan --file change.json --apply`,
	RunE: runPlan,
}

func init() {
	RootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFilePath, "file", "f", "", "JSON file describing the entity pair and relation (required)")
	planCmd.Flags().BoolVar(&planApply, "apply", false, "Execute the planned operations against the configured database")
	_ = planCmd.MarkFlagRequired("file")
}

// planColumn maps one junction column to the identifying column it copies.
type planColumn struct {
	Name       string `json:"name"`
	Referenced string `json:"referenced"`
}

type planJunction struct {
	Table          string       `json:"table"`
	OwnerColumns   []planColumn `json:"ownerColumns"`
	InverseColumns []planColumn `json:"inverseColumns"`
}

type planRelation struct {
	Property         string       `json:"property"`
	PropertyPath     string       `json:"propertyPath"`
	Owning           bool         `json:"owning"`
	InverseIDColumns []string     `json:"inverseIdColumns"`
	Junction         planJunction `json:"junction"`
}

// planFile is the on-disk description of one reconciliation request.
type planFile struct {
	Table          string         `json:"table"`
	Relation       planRelation   `json:"relation"`
	Entity         map[string]any `json:"entity"`
	DatabaseEntity map[string]any `json:"databaseEntity"`
	// Remove plans deletion of every junction row bound to the entity
	// instead of diffing the in-memory value.
	Remove bool `json:"remove"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	file, err := readPlanFile(planFilePath)
	if err != nil {
		return err
	}

	rel := buildRelation(file.Relation)
	meta := &metadata.Entity{
		TableName:           file.Table,
		ManyToManyRelations: []*metadata.Relation{rel},
	}

	reg := subject.NewRegistry()
	builder := reconcile.NewBuilder(reg, log)

	if file.Remove {
		unit := subject.NewChangeUnit(meta, nil, anyMap(file.DatabaseEntity))
		unit.MustRemove = true
		builder.PlanRemovalOfAllJoins(unit)
		printPlan(reg)
	} else {
		unit := subject.NewChangeUnit(meta, anyMap(file.Entity), anyMap(file.DatabaseEntity))
		reg.Append(unit)
		if err := builder.Build(); err != nil {
			return err
		}
		printPlan(reg)
	}

	if !planApply {
		return nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Only the synthetic junction units are executed; the entity unit
	// itself carries no insert/remove request here.
	executed, err := executor.New(db, log).Apply(context.Background(), reg, executor.Options{})
	if err != nil {
		return err
	}
	log.Info("plan applied", zap.Int("executed", executed))
	return nil
}

func readPlanFile(path string) (*planFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var file planFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	return &file, nil
}

// buildRelation turns the on-disk relation description into engine
// metadata with map-backed accessors.
func buildRelation(pr planRelation) *metadata.Relation {
	propertyPath := pr.PropertyPath
	if propertyPath == "" {
		propertyPath = pr.Property
	}
	return &metadata.Relation{
		PropertyPath:       propertyPath,
		IsOwning:           pr.Owning,
		PersistenceEnabled: true,
		Junction: &metadata.Junction{
			TableName:      pr.Junction.Table,
			OwnerColumns:   buildColumns(pr.Junction.OwnerColumns),
			InverseColumns: buildColumns(pr.Junction.InverseColumns),
		},
		Value:        metadata.MapValue(pr.Property),
		InverseIDMap: metadata.MapIDMap(pr.InverseIDColumns...),
	}
}

func buildColumns(pcs []planColumn) []*metadata.Column {
	columns := make([]*metadata.Column, 0, len(pcs))
	for _, pc := range pcs {
		columns = append(columns, &metadata.Column{
			DatabaseName:     pc.Name,
			ReferencedColumn: pc.Referenced,
		})
	}
	return columns
}

// anyMap widens a decoded JSON object so nil stays nil-typed.
func anyMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// printPlan reports the planned operations in execution order.
func printPlan(reg *subject.Registry) {
	planned := 0
	for _, unit := range reg.Ordered() {
		switch {
		case unit.MustRemove && unit.Metadata == nil:
			fmt.Printf("DELETE  %-20s %s\n", unit.Table, formatIdentifier(unit.Identifier))
			planned++
		case unit.MustInsert && unit.Metadata == nil:
			fmt.Printf("INSERT  %-20s %s\n", unit.Table, formatChanges(unit.Changes))
			planned++
		}
	}
	fmt.Printf("%d operation(s) planned\n", planned)
}

func formatIdentifier(id metadata.IDMap) string {
	columns := make([]string, 0, len(id))
	for column := range id {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, column+"="+utils.ToString(id[column]))
	}
	return strings.Join(parts, " ")
}

func formatChanges(changes []subject.ColumnChange) string {
	parts := make([]string, 0, len(changes))
	for _, change := range changes {
		operand := change.Value
		if unit, ok := operand.(*subject.ChangeUnit); ok {
			operand = unit.Entity
		}
		value := change.Column.Resolve(operand)
		if value == nil {
			parts = append(parts, change.Column.DatabaseName+"=<pending>")
			continue
		}
		parts = append(parts, change.Column.DatabaseName+"="+utils.ToString(value))
	}
	return strings.Join(parts, " ")
}
