package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/query"
)

// mapping describes how one entity type is laid out in its table.
type mapping[T any] struct {
	entity  string   // singular, lowercase
	table   string
	columns []string // every column except id, in values() order
	scan    func(rowScanner) (T, error)
	values  func(*T) []any
	getID   func(*T) int64
	setID   func(*T, int64)
}

func (m mapping[T]) selectList() string {
	return "id, " + strings.Join(m.columns, ", ")
}

// Repo implements the CRUD operations shared by every entity.
type Repo[T any] struct {
	db *DB
	m  mapping[T]
}

func newRepo[T any](db *DB, m mapping[T]) *Repo[T] {
	return &Repo[T]{db: db, m: m}
}

// Name is the lowercase plural entity name ("certificates", "tags", ...).
func (r *Repo[T]) Name() string {
	return plural(r.m.entity)
}

// FindByID returns the entity with the given id.
func (r *Repo[T]) FindByID(ctx context.Context, id int64) (T, error) {
	return r.findByID(ctx, r.db.conn, id)
}

// Create inserts e and stores the generated id back into it.
func (r *Repo[T]) Create(ctx context.Context, e *T) error {
	return r.insert(ctx, r.db.conn, e)
}

// Update overwrites every column of the row identified by e's id.
func (r *Repo[T]) Update(ctx context.Context, e *T) error {
	return r.update(ctx, r.db.conn, e)
}

// DeleteByID removes the row with the given id.
func (r *Repo[T]) DeleteByID(ctx context.Context, id int64) error {
	if err := checkID(r.m.entity, id); err != nil {
		return err
	}
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM `+r.m.table+` WHERE id = ?`, id)
	if err != nil {
		return classify("delete "+r.m.entity, err)
	}
	return r.expectOne(res, id)
}

// FindAllByPage returns one page of entities ordered by id.
func (r *Repo[T]) FindAllByPage(ctx context.Context, p query.Pagination) ([]T, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: pagination is required", apperr.ErrInvalidArgument)
	}
	return r.list(ctx, r.db.conn, p)
}

// FindPage is FindAllByPage plus the total row count, read in one transaction.
func (r *Repo[T]) FindPage(ctx context.Context, p query.Pagination) (query.Page[T], error) {
	if !p.Valid() {
		return query.Page[T]{}, fmt.Errorf("%w: pagination is required", apperr.ErrInvalidArgument)
	}
	var page query.Page[T]
	err := r.db.inTx(ctx, "page "+r.m.entity, func(tx *sql.Tx) error {
		total, err := r.count(ctx, tx)
		if err != nil {
			return err
		}
		if int64(p.Offset()) >= total {
			page = query.NewPage[T](nil, total, p)
			return nil
		}
		items, err := r.list(ctx, tx, p)
		if err != nil {
			return err
		}
		page = query.NewPage(items, total, p)
		return nil
	})
	return page, err
}

// FindTotalNumber counts every row of the table.
func (r *Repo[T]) FindTotalNumber(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.conn)
}

func (r *Repo[T]) findByID(ctx context.Context, ex executor, id int64) (T, error) {
	var zero T
	if err := checkID(r.m.entity, id); err != nil {
		return zero, err
	}
	row := ex.QueryRowContext(ctx, `SELECT `+r.m.selectList()+` FROM `+r.m.table+` WHERE id = ?`, id)
	e, err := r.m.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.m.entity, id)
	}
	if err != nil {
		return zero, classify("find "+r.m.entity, err)
	}
	return e, nil
}

func (r *Repo[T]) insert(ctx context.Context, ex executor, e *T) error {
	q := `INSERT INTO ` + r.m.table + ` (` + strings.Join(r.m.columns, ", ") + `) VALUES (` + placeholders(len(r.m.columns)) + `)`
	res, err := ex.ExecContext(ctx, q, r.m.values(e)...)
	if err != nil {
		return classify("create "+r.m.entity, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("create "+r.m.entity, err)
	}
	r.m.setID(e, id)
	return nil
}

func (r *Repo[T]) update(ctx context.Context, ex executor, e *T) error {
	id := r.m.getID(e)
	if err := checkID(r.m.entity, id); err != nil {
		return err
	}
	sets := make([]string, len(r.m.columns))
	for i, c := range r.m.columns {
		sets[i] = c + " = ?"
	}
	args := append(r.m.values(e), id)
	res, err := ex.ExecContext(ctx, `UPDATE `+r.m.table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return classify("update "+r.m.entity, err)
	}
	return r.expectOne(res, id)
}

func (r *Repo[T]) list(ctx context.Context, ex executor, p query.Pagination) ([]T, error) {
	rows, err := ex.QueryContext(ctx,
		`SELECT `+r.m.selectList()+` FROM `+r.m.table+` ORDER BY id ASC LIMIT ? OFFSET ?`,
		p.Limit(), p.Offset())
	if err != nil {
		return nil, classify("list "+plural(r.m.entity), err)
	}
	return r.collect(rows)
}

func (r *Repo[T]) collect(rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		e, err := r.m.scan(rows)
		if err != nil {
			return nil, classify("scan "+r.m.entity, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate "+plural(r.m.entity), err)
	}
	return out, nil
}

func (r *Repo[T]) count(ctx context.Context, ex executor) (int64, error) {
	var n int64
	if err := ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+r.m.table).Scan(&n); err != nil {
		return 0, classify("count "+plural(r.m.entity), err)
	}
	return n, nil
}

func (r *Repo[T]) expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(r.m.entity+" rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.m.entity, id)
	}
	return nil
}

func checkID(entity string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s id must be positive, got %d", apperr.ErrInvalidArgument, entity, id)
	}
	return nil
}

func plural(s string) string {
	switch {
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	}
	return s + "s"
}
