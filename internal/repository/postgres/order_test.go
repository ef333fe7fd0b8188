package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMPHP00100/cetera-storefront/pkg/database"
	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// --- Test Helpers ---

func newTestRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:              "ORD-1724800000000",
		UserID:          "user-001",
		Status:          domain.OrderStatusPaid,
		Subtotal:        8000,
		DiscountPercent: 20,
		CouponCode:      "DISCOUNT20",
		ShippingMethod:  "standard",
		ShippingCost:    999,
		Tax:             765,
		GrandTotal:      9764,
		Currency:        "USD",
		CustomerName:    "Jane Smith",
		CustomerEmail:   "jane@example.com",
		ShippingAddress: "742 Evergreen Terrace, Springfield, IL 62704, US",
		MaskedCard:      "**** **** **** 1111",
		TransactionID:   "TXN_AB12CD34EF56",
		CreatedAt:       now,
		Items: []domain.OrderItem{
			{
				ProductID: "business-cards",
				Name:      "Business Cards",
				Color:     "Navy",
				TierQty:   50,
				UnitPrice: 200,
				Count:     1,
				LineTotal: 10000,
			},
			{
				ProductID: "flyers",
				Name:      "Flyers",
				Color:     "",
				TierQty:   1,
				UnitPrice: 75,
				Count:     2,
				LineTotal: 150,
			},
		},
	}
}

func orderRowValues(o *domain.Order) []any {
	return []any{
		o.ID, o.UserID, o.Status,
		o.Subtotal, o.DiscountPercent, o.CouponCode,
		o.ShippingMethod, o.ShippingCost, o.Tax, o.GrandTotal,
		o.Currency, o.CustomerName, o.CustomerEmail, o.ShippingAddress,
		o.MaskedCard, o.TransactionID, o.CreatedAt,
	}
}

var orderRowColumns = []string{
	"id", "user_id", "status", "subtotal_amount", "discount_percent",
	"coupon_code", "shipping_method", "shipping_amount", "tax_amount",
	"total_amount", "currency", "customer_name", "customer_email",
	"shipping_address", "masked_card", "transaction_id", "created_at",
}

var itemRowColumns = []string{
	"product_id", "name", "color", "tier_qty", "unit_price", "count", "line_total",
}

// --- Create Tests ---

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(orderRowValues(o)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	for _, item := range o.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(
				o.ID, item.ProductID, item.Name, item.Color,
				item.TierQty, item.UnitPrice, item.Count, item.LineTotal,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_BeginError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleOrder())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_OrderInsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(orderRowValues(o)...).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_ItemInsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(orderRowValues(o)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	item0 := o.Items[0]
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(
			o.ID, item0.ProductID, item0.Name, item0.Color,
			item0.TierQty, item0.UnitPrice, item0.Count, item0.LineTotal,
		).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order item")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID Tests ---

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectQuery("SELECT").
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(orderRowColumns).AddRow(orderRowValues(o)...))

	itemRows := pgxmock.NewRows(itemRowColumns)
	for _, item := range o.Items {
		itemRows.AddRow(
			item.ProductID, item.Name, item.Color,
			item.TierQty, item.UnitPrice, item.Count, item.LineTotal,
		)
	}
	mock.ExpectQuery("SELECT").
		WithArgs(o.ID).
		WillReturnRows(itemRows)

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.UserID, got.UserID)
	assert.Equal(t, int64(9764), got.GrandTotal)
	assert.Equal(t, "**** **** **** 1111", got.MaskedCard)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "business-cards", got.Items[0].ProductID)
	assert.Equal(t, int64(150), got.Items[1].LineTotal)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs("ORD-0").
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	_, err := repo.GetByID(context.Background(), "ORD-0")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ListByUser Tests ---

func TestOrderRepository_ListByUser_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectQuery("SELECT").
		WithArgs(o.UserID).
		WillReturnRows(pgxmock.NewRows(orderRowColumns).AddRow(orderRowValues(o)...))

	itemRows := pgxmock.NewRows(append([]string{"order_id"}, itemRowColumns...))
	for _, item := range o.Items {
		itemRows.AddRow(
			o.ID, item.ProductID, item.Name, item.Color,
			item.TierQty, item.UnitPrice, item.Count, item.LineTotal,
		)
	}
	mock.ExpectQuery("SELECT").
		WithArgs([]string{o.ID}).
		WillReturnRows(itemRows)

	orders, err := repo.ListByUser(context.Background(), o.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "flyers", orders[0].Items[1].ProductID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs("user-404").
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	orders, err := repo.ListByUser(context.Background(), "user-404")
	require.NoError(t, err)
	assert.Empty(t, orders)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser_QueryError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs("user-001").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByUser(context.Background(), "user-001")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
