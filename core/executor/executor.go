package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chloe1331/typeorm/core/subject"
)

// Options controls execution behavior.
type Options struct {
	// DryRun logs every operation without touching the database.
	DryRun bool
}

// Executor applies planned change units against the database. It consumes
// the registry in its documented order, so junction row removals always
// execute before entity removals queued in the main list.
type Executor struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates an executor over the given connection. A nil logger
// disables logging.
func New(db *gorm.DB, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{db: db, log: log}
}

// Apply executes every unit in the registry in order and returns the
// number of operations performed. Execution stops at the first failure.
func (e *Executor) Apply(ctx context.Context, registry *subject.Registry, opts Options) (executed int, err error) {
	for _, unit := range registry.Ordered() {
		switch {
		case unit.MustRemove:
			err = e.applyRemoval(ctx, unit, opts)
		case unit.MustInsert:
			err = e.applyInsert(ctx, unit, opts)
		default:
			continue
		}
		if err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// applyRemoval deletes one row addressed by the unit's identifier map.
// Columns are sorted so the generated statement is deterministic.
func (e *Executor) applyRemoval(ctx context.Context, unit *subject.ChangeUnit, opts Options) error {
	if len(unit.Identifier) == 0 {
		return fmt.Errorf("removal unit %s for table %s has no identifier", unit.ID, unit.Table)
	}

	columns := make([]string, 0, len(unit.Identifier))
	for column := range unit.Identifier {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	conditions := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf("`%s` = ?", column))
		args = append(args, unit.Identifier[column])
	}

	query := fmt.Sprintf("DELETE FROM `%s` WHERE %s", unit.Table, strings.Join(conditions, " AND "))

	e.log.Debug("executing removal",
		zap.String("unit_id", unit.ID.String()),
		zap.String("table", unit.Table),
		zap.Bool("dry_run", opts.DryRun),
	)
	if opts.DryRun {
		return nil
	}

	if err := e.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to delete row from %s: %w", unit.Table, err)
	}
	return nil
}

// applyInsert inserts one row built from the unit's column assignments.
func (e *Executor) applyInsert(ctx context.Context, unit *subject.ChangeUnit, opts Options) error {
	if len(unit.Changes) == 0 {
		return fmt.Errorf("insert unit %s for table %s has no column assignments", unit.ID, unit.Table)
	}

	columns := make([]string, 0, len(unit.Changes))
	placeholders := make([]string, 0, len(unit.Changes))
	args := make([]any, 0, len(unit.Changes))
	for _, change := range unit.Changes {
		columns = append(columns, fmt.Sprintf("`%s`", change.Column.DatabaseName))
		placeholders = append(placeholders, "?")
		args = append(args, resolveValue(change))
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		unit.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	e.log.Debug("executing insert",
		zap.String("unit_id", unit.ID.String()),
		zap.String("table", unit.Table),
		zap.Bool("dry_run", opts.DryRun),
	)
	if opts.DryRun {
		return nil
	}

	if err := e.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to insert row into %s: %w", unit.Table, err)
	}
	return nil
}

// resolveValue resolves one column assignment to a scalar. An assignment
// may carry a pending change unit instead of an entity; by the time a
// junction insert runs, the referenced unit has executed and its entity
// carries a durable identity.
func resolveValue(change subject.ColumnChange) any {
	operand := change.Value
	if unit, ok := operand.(*subject.ChangeUnit); ok {
		operand = unit.Entity
	}
	return change.Column.Resolve(operand)
}
