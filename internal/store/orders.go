package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/models"
	"github.com/starford/giftcert/internal/query"
)

var orderMapping = mapping[models.Order]{
	entity:  "order",
	table:   "orders",
	columns: []string{"number", "user_id", "certificate_id", "cost", "purchase_date"},
	scan: func(s rowScanner) (models.Order, error) {
		var o models.Order
		err := s.Scan(&o.ID, &o.Number, &o.UserID, &o.CertificateID, &o.Cost, &o.PurchaseDate)
		return o, err
	},
	values: func(o *models.Order) []any {
		return []any{o.Number, o.UserID, o.CertificateID, o.Cost, o.PurchaseDate.UTC()}
	},
	getID: func(o *models.Order) int64 { return o.ID },
	setID: func(o *models.Order, id int64) { o.ID = id },
}

// OrderRepo stores orders.
type OrderRepo struct {
	*Repo[models.Order]
}

// NewOrderRepo creates an order repository.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{Repo: newRepo(db, orderMapping)}
}

// CountByUser counts the orders placed by userID.
func (r *OrderRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return r.countByUser(ctx, r.db.conn, userID)
}

// FindByUserAndPage returns one page of a user's orders, newest id last.
func (r *OrderRepo) FindByUserAndPage(ctx context.Context, userID int64, p query.Pagination) (query.Page[models.Order], error) {
	if err := checkID("user", userID); err != nil {
		return query.Page[models.Order]{}, err
	}
	if !p.Valid() {
		return query.Page[models.Order]{}, fmt.Errorf("%w: pagination is required", apperr.ErrInvalidArgument)
	}

	var page query.Page[models.Order]
	err := r.db.inTx(ctx, "page user orders", func(tx *sql.Tx) error {
		total, err := r.countByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if int64(p.Offset()) >= total {
			page = query.NewPage[models.Order](nil, total, p)
			return nil
		}
		rows, err := tx.QueryContext(ctx,
			`SELECT `+r.m.selectList()+` FROM orders WHERE user_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`,
			userID, p.Limit(), p.Offset())
		if err != nil {
			return classify("list user orders", err)
		}
		items, err := r.collect(rows)
		if err != nil {
			return err
		}
		page = query.NewPage(items, total, p)
		return nil
	})
	return page, err
}

func (r *OrderRepo) countByUser(ctx context.Context, ex executor, userID int64) (int64, error) {
	var n int64
	if err := ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, classify("count user orders", err)
	}
	return n, nil
}
