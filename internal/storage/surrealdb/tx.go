package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/holdings/internal/models"
)

// txBuilder accumulates statements that SurrealDB runs inside a single
// BEGIN/COMMIT block. Either every statement applies or none does.
type txBuilder struct {
	stmts []string
	vars  map[string]any
}

func newTx() *txBuilder {
	return &txBuilder{vars: map[string]any{}}
}

// upsert writes record as the full content of table:id.
func (b *txBuilder) upsert(table, id string, record any) {
	n := len(b.stmts)
	rid := fmt.Sprintf("rid_%d", n)
	rec := fmt.Sprintf("rec_%d", n)
	b.stmts = append(b.stmts, fmt.Sprintf("UPSERT $%s CONTENT $%s", rid, rec))
	b.vars[rid] = surrealmodels.NewRecordID(table, id)
	b.vars[rec] = record
}

// stmt appends a raw statement. Variable names must be unique within the builder.
func (b *txBuilder) stmt(sql string, vars map[string]any) {
	b.stmts = append(b.stmts, sql)
	for k, v := range vars {
		b.vars[k] = v
	}
}

func (b *txBuilder) empty() bool {
	return len(b.stmts) == 0
}

func (b *txBuilder) sql() string {
	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, s := range b.stmts {
		sb.WriteString(s)
		sb.WriteString(";\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")
	return sb.String()
}

// commit executes the accumulated statements. It is never retried.
func (b *txBuilder) commit(ctx context.Context, db *surrealdb.DB) error {
	if b.empty() {
		return nil
	}
	if _, err := surrealdb.Query[any](ctx, db, b.sql(), b.vars); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// isNotFoundError reports whether err is SurrealDB's error for a missing record or table.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

func isModelNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// firstResult flattens the first statement result of a Query call.
func firstResult[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}
