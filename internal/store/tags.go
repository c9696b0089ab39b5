package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/models"
)

var tagMapping = mapping[models.Tag]{
	entity:  "tag",
	table:   "tags",
	columns: []string{"name"},
	scan: func(s rowScanner) (models.Tag, error) {
		var t models.Tag
		err := s.Scan(&t.ID, &t.Name)
		return t, err
	},
	values: func(t *models.Tag) []any { return []any{t.Name} },
	getID:  func(t *models.Tag) int64 { return t.ID },
	setID:  func(t *models.Tag, id int64) { t.ID = id },
}

// TagRepo stores tags.
type TagRepo struct {
	*Repo[models.Tag]
}

// NewTagRepo creates a tag repository.
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{Repo: newRepo(db, tagMapping)}
}

// FindByName returns the tag with exactly the given name.
func (r *TagRepo) FindByName(ctx context.Context, name string) (models.Tag, error) {
	return r.findByName(ctx, r.db.conn, name)
}

// ResolveNames maps tag names to identifiers. Names that do not exist are
// skipped, so the result may be shorter than names.
func (r *TagRepo) ResolveNames(ctx context.Context, names []string) ([]int64, error) {
	return r.resolveNames(ctx, r.db.conn, names)
}

// FindOrCreate returns the tag named name, creating it when missing.
func (r *TagRepo) FindOrCreate(ctx context.Context, name string) (models.Tag, error) {
	var t models.Tag
	err := r.db.inTx(ctx, "find or create tag", func(tx *sql.Tx) error {
		var err error
		t, err = r.findOrCreate(ctx, tx, name)
		return err
	})
	return t, err
}

func (r *TagRepo) findByName(ctx context.Context, ex executor, name string) (models.Tag, error) {
	row := ex.QueryRowContext(ctx, `SELECT `+r.m.selectList()+` FROM tags WHERE name = ?`, name)
	t, err := r.m.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, fmt.Errorf("%w: tag %q", apperr.ErrNotFound, name)
	}
	if err != nil {
		return models.Tag{}, classify("find tag by name", err)
	}
	return t, nil
}

func (r *TagRepo) resolveNames(ctx context.Context, ex executor, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := ex.QueryContext(ctx, `SELECT id FROM tags WHERE name IN (`+placeholders(len(names))+`) ORDER BY id`, args...)
	if err != nil {
		return nil, classify("resolve tag names", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify("resolve tag names", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("resolve tag names", err)
	}
	return ids, nil
}

func (r *TagRepo) findOrCreate(ctx context.Context, ex executor, name string) (models.Tag, error) {
	t, err := r.findByName(ctx, ex, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return models.Tag{}, err
	}
	t = models.Tag{Name: name}
	if err := r.insert(ctx, ex, &t); err != nil {
		return models.Tag{}, err
	}
	return t, nil
}
