package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
)

// The stub driver below backs the SQL store tests with a recording
// in-memory connection, so transactional behavior is observable
// without a live database.

type stubExec struct {
	query string
	args  []driver.Value
}

type stubConn struct {
	execs     []stubExec
	commits   int
	rollbacks int

	// failAt is the 1-based statement execution that errors; 0 never fails.
	failAt    int
	execCount int

	rows *stubRows
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{conn: c, query: query}, nil
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return &stubTx{conn: c}, nil
}

type stubTx struct{ conn *stubConn }

func (t *stubTx) Commit() error {
	t.conn.commits++
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.rollbacks++
	return nil
}

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error { return nil }

func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.execCount++
	if s.conn.failAt > 0 && s.conn.execCount == s.conn.failAt {
		return nil, errors.New("exec refused")
	}
	s.conn.execs = append(s.conn.execs, stubExec{query: s.query, args: args})
	return driver.RowsAffected(0), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	if s.conn.rows == nil {
		return &stubRows{}, nil
	}
	return s.conn.rows, nil
}

type stubRows struct {
	cols []string
	data [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return r.cols }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type stubProvider struct{ db *sql.DB }

func (p *stubProvider) DB() *sql.DB { return p.db }

func newStubStore(conn *stubConn) *SQLStore {
	db := sql.OpenDB(stubConnector{conn: conn})
	db.SetMaxOpenConns(1)
	return NewSQLStore(&stubProvider{db: db})
}
