package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/model"
)

const dumpHeader = "-- pocs SQL dump"

// Dump writes every model row as INSERT statements wrapped in a
// transaction. The output can be fed back to Restore.
func (s *Store) Dump(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, dumpHeader)
	fmt.Fprintln(bw, "BEGIN TRANSACTION;")

	for _, meta := range model.All() {
		if err := s.dumpTable(ctx, bw, meta); err != nil {
			return err
		}
	}

	fmt.Fprintln(bw, "COMMIT;")
	return bw.Flush()
}

func (s *Store) dumpTable(ctx context.Context, w io.Writer, meta model.Meta) error {
	columns := make([]string, len(meta.Fields))
	quoted := make([]string, len(meta.Fields))
	for i, f := range meta.Fields {
		columns[i] = f.Name
		quoted[i] = `"` + f.Name + `"`
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+strings.Join(quoted, ", ")+` FROM "`+meta.Table+`" ORDER BY id`)
	if err != nil {
		return fmt.Errorf("dump %s: %w", meta.Table, err)
	}
	defer rows.Close()

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("dump %s: %w", meta.Table, err)
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		fmt.Fprintf(w, "INSERT INTO \"%s\" (%s) VALUES (%s);\n",
			meta.Table, strings.Join(quoted, ","), strings.Join(literals, ","))
	}
	return rows.Err()
}

func sqlLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case []byte:
		return quoteString(string(v))
	case string:
		return quoteString(v)
	default:
		return quoteString(fmt.Sprint(v))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Restore replaces the model tables' contents with the statements read
// from r, all inside one transaction. Transaction control statements in
// the dump are ignored. A failing statement aborts the restore and returns
// a *DumpError; the database is left unchanged.
func (s *Store) Restore(ctx context.Context, r io.Reader) error {
	stmts, err := splitStatements(r)
	if err != nil {
		return err
	}

	applied := 0
	err = s.Tx(ctx, func(tx *Store) error {
		if err := tx.Flush(ctx); err != nil {
			return err
		}
		applied = 0
		for _, st := range stmts {
			if isTransactionControl(st.sql) {
				continue
			}
			if _, err := tx.q.ExecContext(ctx, st.sql); err != nil {
				return &DumpError{Line: st.line, Err: err}
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("restored database dump", "statements", applied, "path", s.path)
	return nil
}

type statement struct {
	line int
	sql  string
}

// splitStatements splits a SQL script on semicolons that are outside
// string literals, dropping "--" comments. Each statement records the line
// it starts on.
func splitStatements(r io.Reader) ([]statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	var (
		out       []statement
		buf       strings.Builder
		line      = 1
		startLine = 0
		inString  bool
	)
	src := string(data)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString:
			buf.WriteByte(c)
			if c == '\'' {
				if i+1 < len(src) && src[i+1] == '\'' {
					buf.WriteByte('\'')
					i++
				} else {
					inString = false
				}
			}
		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				line++
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
			}
			continue
		case c == '\'':
			inString = true
			buf.WriteByte(c)
		case c == ';':
			if stmt := strings.TrimSpace(buf.String()); stmt != "" {
				out = append(out, statement{line: startLine, sql: stmt})
			}
			buf.Reset()
			startLine = 0
			continue
		default:
			buf.WriteByte(c)
		}

		if startLine == 0 && !isSpace(c) {
			startLine = line
		}
		if c == '\n' {
			line++
		}
	}

	if inString {
		return nil, &DumpError{Line: startLine, Err: errors.New("unterminated string literal")}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		out = append(out, statement{line: startLine, sql: rest})
	}
	return out, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTransactionControl(stmt string) bool {
	fields := strings.Fields(strings.ToUpper(stmt))
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "BEGIN", "COMMIT", "END", "ROLLBACK", "SAVEPOINT", "RELEASE":
		return true
	}
	return false
}
