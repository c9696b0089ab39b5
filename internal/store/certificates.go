package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/models"
	"github.com/starford/giftcert/internal/query"
)

var certificateMapping = mapping[models.Certificate]{
	entity:  "certificate",
	table:   "certificates",
	columns: []string{"name", "description", "price", "duration", "create_date", "last_update_date"},
	scan: func(s rowScanner) (models.Certificate, error) {
		var c models.Certificate
		err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.Duration, &c.CreateDate, &c.LastUpdateDate)
		return c, err
	},
	values: func(c *models.Certificate) []any {
		return []any{c.Name, c.Description, c.Price, c.Duration, c.CreateDate.UTC(), c.LastUpdateDate.UTC()}
	},
	getID: func(c *models.Certificate) int64 { return c.ID },
	setID: func(c *models.Certificate, id int64) { c.ID = id },
}

// CertificateRepo stores certificates together with their tag links.
type CertificateRepo struct {
	*Repo[models.Certificate]
	tags *TagRepo
}

// NewCertificateRepo creates a certificate repository. Tags referenced by
// name on create/update are looked up (or created) through tags.
func NewCertificateRepo(db *DB, tags *TagRepo) *CertificateRepo {
	return &CertificateRepo{Repo: newRepo(db, certificateMapping), tags: tags}
}

// FindByID returns the certificate with its tags.
func (r *CertificateRepo) FindByID(ctx context.Context, id int64) (models.Certificate, error) {
	c, err := r.findByID(ctx, r.db.conn, id)
	if err != nil {
		return models.Certificate{}, err
	}
	certs := []models.Certificate{c}
	if err := attachTags(ctx, r.db.conn, certs); err != nil {
		return models.Certificate{}, err
	}
	return certs[0], nil
}

// FindAllByPage returns one page of certificates, ordered by id, with tags.
func (r *CertificateRepo) FindAllByPage(ctx context.Context, p query.Pagination) ([]models.Certificate, error) {
	certs, err := r.Repo.FindAllByPage(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, r.db.conn, certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// FindPage returns one page of certificates ordered by id, with the total count.
func (r *CertificateRepo) FindPage(ctx context.Context, p query.Pagination) (query.Page[models.Certificate], error) {
	f, err := query.NewSearchFilter(query.FilterParams{Pagination: p})
	if err != nil {
		return query.Page[models.Certificate]{}, err
	}
	return r.FindByFilterAndPage(ctx, f)
}

// Create inserts c and links its tags by name, creating missing tags. The
// resolved tags (with ids) are written back into c.
func (r *CertificateRepo) Create(ctx context.Context, c *models.Certificate) error {
	return r.db.inTx(ctx, "create certificate", func(tx *sql.Tx) error {
		if err := r.insert(ctx, tx, c); err != nil {
			return err
		}
		return r.linkTags(ctx, tx, c)
	})
}

// Update overwrites c's columns and replaces its tag links.
func (r *CertificateRepo) Update(ctx context.Context, c *models.Certificate) error {
	return r.db.inTx(ctx, "update certificate", func(tx *sql.Tx) error {
		return r.replace(ctx, tx, c)
	})
}

// UpdateIf re-reads the stored certificate inside the write transaction and
// passes it to check. A non-nil error from check aborts the update and is
// returned unchanged. check may adjust c before it is written.
func (r *CertificateRepo) UpdateIf(ctx context.Context, c *models.Certificate, check func(current models.Certificate) error) error {
	return r.db.inTx(ctx, "update certificate", func(tx *sql.Tx) error {
		current, err := r.findByID(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		certs := []models.Certificate{current}
		if err := attachTags(ctx, tx, certs); err != nil {
			return err
		}
		if err := check(certs[0]); err != nil {
			return err
		}
		return r.replace(ctx, tx, c)
	})
}

func (r *CertificateRepo) replace(ctx context.Context, tx *sql.Tx, c *models.Certificate) error {
	if err := r.update(ctx, tx, c); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM certificate_tags WHERE certificate_id = ?`, c.ID); err != nil {
		return classify("unlink certificate tags", err)
	}
	return r.linkTags(ctx, tx, c)
}

func (r *CertificateRepo) linkTags(ctx context.Context, tx *sql.Tx, c *models.Certificate) error {
	linked := make([]models.Tag, 0, len(c.Tags))
	seen := make(map[int64]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		tag, err := r.tags.findOrCreate(ctx, tx, t.Name)
		if err != nil {
			return err
		}
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO certificate_tags (certificate_id, tag_id) VALUES (?, ?)`, c.ID, tag.ID); err != nil {
			return classify("link certificate tag", err)
		}
		linked = append(linked, tag)
	}
	c.Tags = linked
	return nil
}

// FindByFilterAndPage runs a certificate search. The tag lookup, the count
// and the page query share one read transaction so the page and its total
// come from the same snapshot.
func (r *CertificateRepo) FindByFilterAndPage(ctx context.Context, f query.SearchFilter) (query.Page[models.Certificate], error) {
	p := f.Pagination()
	if !p.Valid() {
		return query.Page[models.Certificate]{}, fmt.Errorf("%w: pagination is required", apperr.ErrInvalidArgument)
	}

	var page query.Page[models.Certificate]
	err := r.db.inTx(ctx, "search certificates", func(tx *sql.Tx) error {
		if f.HasTags() && !f.Resolved() {
			ids, err := r.tags.resolveNames(ctx, tx, f.TagNames())
			if err != nil {
				return err
			}
			f = f.WithResolvedTags(ids)
		}

		plan, err := composeCertificateQuery(f)
		if err != nil {
			return err
		}
		if plan.empty {
			page = query.EmptyPage[models.Certificate](p)
			return nil
		}

		var total int64
		countQ, countArgs := plan.countSQL()
		if err := tx.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
			return classify("count certificates", err)
		}
		if total == 0 || int64(p.Offset()) >= total {
			page = query.NewPage[models.Certificate](nil, total, p)
			return nil
		}

		pageQ, pageArgs := plan.pageSQL()
		rows, err := tx.QueryContext(ctx, pageQ, pageArgs...)
		if err != nil {
			return classify("search certificates", err)
		}
		items, err := r.collect(rows)
		if err != nil {
			return err
		}
		if err := attachTags(ctx, tx, items); err != nil {
			return err
		}
		page = query.NewPage(items, total, p)
		return nil
	})
	return page, err
}

// attachTags loads the tags of every certificate in certs with one query.
func attachTags(ctx context.Context, ex executor, certs []models.Certificate) error {
	if len(certs) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(certs))
	args := make([]any, len(certs))
	for i := range certs {
		certs[i].Tags = []models.Tag{}
		idx[certs[i].ID] = i
		args[i] = certs[i].ID
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT ct.certificate_id, t.id, t.name
		FROM certificate_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.certificate_id IN (`+placeholders(len(certs))+`)
		ORDER BY t.name, t.id`, args...)
	if err != nil {
		return classify("load certificate tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var certID int64
		var t models.Tag
		if err := rows.Scan(&certID, &t.ID, &t.Name); err != nil {
			return classify("load certificate tags", err)
		}
		if i, ok := idx[certID]; ok {
			certs[i].Tags = append(certs[i].Tags, t)
		}
	}
	if err := rows.Err(); err != nil {
		return classify("load certificate tags", err)
	}
	return nil
}
