package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/CMPHP00100/cetera-storefront/pkg/database"
	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// The ledger is append-only; there are no update or delete paths.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts an order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, status, subtotal_amount, discount_percent, coupon_code, shipping_method, shipping_amount, tax_amount, total_amount, currency, customer_name, customer_email, shipping_address, masked_card, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.Subtotal,
		o.DiscountPercent,
		o.CouponCode,
		o.ShippingMethod,
		o.ShippingCost,
		o.Tax,
		o.GrandTotal,
		o.Currency,
		o.CustomerName,
		o.CustomerEmail,
		o.ShippingAddress,
		o.MaskedCard,
		o.TransactionID,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, color, tier_qty, unit_price, count, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			o.ID,
			item.ProductID,
			item.Name,
			item.Color,
			item.TierQty,
			item.UnitPrice,
			item.Count,
			item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, status, subtotal_amount, discount_percent, coupon_code, shipping_method, shipping_amount, tax_amount, total_amount, currency, customer_name, customer_email, shipping_address, masked_card, transaction_id, created_at`

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.DiscountPercent,
		&o.CouponCode,
		&o.ShippingMethod,
		&o.ShippingCost,
		&o.Tax,
		&o.GrandTotal,
		&o.Currency,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.ShippingAddress,
		&o.MaskedCard,
		&o.TransactionID,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListByUser returns a user's orders newest first, with items loaded in one
// batch query.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.Subtotal,
			&o.DiscountPercent,
			&o.CouponCode,
			&o.ShippingMethod,
			&o.ShippingCost,
			&o.Tax,
			&o.GrandTotal,
			&o.Currency,
			&o.CustomerName,
			&o.CustomerEmail,
			&o.ShippingAddress,
			&o.MaskedCard,
			&o.TransactionID,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		byID[o.ID] = o
	}

	itemsQuery := `
		SELECT order_id, product_id, name, color, tier_qty, unit_price, count, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`

	itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("batch load order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := itemRows.Scan(
			&orderID,
			&item.ProductID,
			&item.Name,
			&item.Color,
			&item.TierQty,
			&item.UnitPrice,
			&item.Count,
			&item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT product_id, name, color, tier_qty, unit_price, count, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Color,
			&item.TierQty,
			&item.UnitPrice,
			&item.Count,
			&item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}
