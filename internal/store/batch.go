package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Statement パラメータ未束縛の SQL 文
type Statement struct {
	store *Store
	query string
}

// BoundStatement パラメータを束縛した実行可能な SQL 文
type BoundStatement struct {
	Query string
	Args  []interface{}

	store *Store
}

// Prepare SQL 文を用意する
func (s *Store) Prepare(query string) *Statement {
	return &Statement{store: s, query: query}
}

// Bind パラメータを位置順に束縛する
func (st *Statement) Bind(args ...interface{}) BoundStatement {
	return BoundStatement{
		Query: st.query,
		Args:  args,
		store: st.store,
	}
}

// Execute 単独で実行する
func (b BoundStatement) Execute(ctx context.Context) (sql.Result, error) {
	if b.store == nil {
		return nil, fmt.Errorf("statement is not bound to a store")
	}
	res, err := b.store.db.ExecContext(ctx, b.Query, b.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return res, nil
}

// Batch 全ての文を 1 トランザクションで実行する
// 1 文でも失敗したらロールバックしてそのエラーを返す
func (s *Store) Batch(ctx context.Context, stmts []BoundStatement) error {
	if len(stmts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.Query, st.Args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
