package store

import (
	"fmt"
	"strings"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/query"
)

const certificateSelectList = "c.id, c.name, c.description, c.price, c.duration, c.create_date, c.last_update_date"

// sortColumns is the allowlist of ORDER BY expressions per sort type.
var sortColumns = map[query.SortType]string{
	query.SortByName:  "c.name COLLATE NOCASE",
	query.SortByDate:  "c.create_date",
	query.SortByPrice: "c.price",
}

// certificatePlan is the SQL shape of one certificate search. It is built
// per call and discarded after execution.
type certificatePlan struct {
	where   []string
	args    []any
	orderBy string
	limit   int
	offset  int

	// empty is set when the filter can match no row at all (a requested
	// tag does not exist), so no SQL needs to run.
	empty bool
}

// composeCertificateQuery translates a filter into a plan. Tag names must
// already be resolved to identifiers.
func composeCertificateQuery(f query.SearchFilter) (*certificatePlan, error) {
	p := &certificatePlan{
		limit:  f.Pagination().Limit(),
		offset: f.Pagination().Offset(),
	}

	if name, ok := f.Name(); ok {
		p.and("ulower(c.name) LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if desc, ok := f.Description(); ok {
		p.and("ulower(c.description) LIKE ? ESCAPE '\\'", containsPattern(desc))
	}

	if f.HasTags() {
		if !f.Resolved() {
			return nil, fmt.Errorf("%w: tag names must be resolved before composing a query", apperr.ErrInvalidArgument)
		}
		ids := f.TagIDs()
		if len(ids) < len(f.TagNames()) {
			p.empty = true
			return p, nil
		}
		args := make([]any, 0, len(ids)+1)
		for _, id := range ids {
			args = append(args, id)
		}
		args = append(args, len(ids))
		p.and(`c.id IN (
			SELECT ct.certificate_id FROM certificate_tags ct
			WHERE ct.tag_id IN (`+placeholders(len(ids))+`)
			GROUP BY ct.certificate_id
			HAVING COUNT(DISTINCT ct.tag_id) = ?)`, args...)
	}

	p.orderBy = orderBy(f)
	return p, nil
}

func (p *certificatePlan) and(clause string, args ...any) {
	p.where = append(p.where, clause)
	p.args = append(p.args, args...)
}

func (p *certificatePlan) whereSQL() string {
	if len(p.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.where, " AND ")
}

// countSQL counts every row the predicates admit; no ordering or window.
func (p *certificatePlan) countSQL() (string, []any) {
	return `SELECT COUNT(*) FROM certificates c` + p.whereSQL(), cloneArgs(p.args)
}

// pageSQL selects the requested window of the filtered, sorted set.
func (p *certificatePlan) pageSQL() (string, []any) {
	q := `SELECT ` + certificateSelectList + ` FROM certificates c` + p.whereSQL() +
		` ORDER BY ` + p.orderBy + ` LIMIT ? OFFSET ?`
	args := append(cloneArgs(p.args), p.limit, p.offset)
	return q, args
}

// orderBy always ends with the primary key so equal sort keys page stably.
func orderBy(f query.SearchFilter) string {
	st, so, ok := f.Sort()
	if !ok {
		return "c.id ASC"
	}
	dir := "ASC"
	if so == query.Desc {
		dir = "DESC"
	}
	return sortColumns[st] + " " + dir + ", c.id ASC"
}

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere,
// with LIKE wildcards in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func cloneArgs(args []any) []any {
	out := make([]any, len(args), len(args)+2)
	copy(out, args)
	return out
}
