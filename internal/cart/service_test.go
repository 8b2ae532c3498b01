package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/internal/accounts"
	"github.com/angelmondragon/resellerhub-backend/internal/products"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	svc, err := NewService(NewRepository(conn), client, accounts.NewRepository(conn), products.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestAddItemLocksTierPrice(t *testing.T) {
	svc, conn := newTestService(t)
	levels := dbtest.SeedLevels(t, conn)
	platinum := levels[4]
	reseller := dbtest.CreateAccount(t, conn, "reseller", &platinum, nil)
	product := dbtest.CreateProduct(t, conn, "SKU-A", 100_000, 10)

	view, err := svc.AddItem(context.Background(), reseller.ID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.True(t, view.Items[0].UnitPrice.Equal(decimal.NewFromInt(85_000)))
	require.True(t, view.Subtotal.Equal(decimal.NewFromInt(170_000)))

	// A later price change does not touch the locked line.
	require.NoError(t, conn.Model(&product).Update("price", decimal.NewFromInt(200_000)).Error)
	view, err = svc.AddItem(context.Background(), reseller.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 3, view.Items[0].Quantity)
	require.True(t, view.Items[0].UnitPrice.Equal(decimal.NewFromInt(85_000)))
}

func TestAddItemBuyerPaysListPrice(t *testing.T) {
	svc, conn := newTestService(t)
	buyer := dbtest.CreateAccount(t, conn, "buyer", nil, nil)
	product := dbtest.CreateProduct(t, conn, "SKU-B", 100_000, 10)

	view, err := svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.True(t, view.Items[0].UnitPrice.Equal(decimal.NewFromInt(100_000)))
}

func TestAddItemRejectsBeyondStock(t *testing.T) {
	svc, conn := newTestService(t)
	buyer := dbtest.CreateAccount(t, conn, "buyer", nil, nil)
	product := dbtest.CreateProduct(t, conn, "SKU-C", 5_000, 2)

	_, err := svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestAddItemValidatesInput(t *testing.T) {
	svc, conn := newTestService(t)
	buyer := dbtest.CreateAccount(t, conn, "buyer", nil, nil)
	inactive := dbtest.CreateProduct(t, conn, "SKU-D", 5_000, 2)
	require.NoError(t, conn.Model(&inactive).Update("is_active", false).Error)

	_, err := svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: inactive.ID, Quantity: 0})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: inactive.ID, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(context.Background(), buyer.ID, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateRemoveAndClear(t *testing.T) {
	svc, conn := newTestService(t)
	buyer := dbtest.CreateAccount(t, conn, "buyer", nil, nil)
	first := dbtest.CreateProduct(t, conn, "SKU-E", 1_000, 10)
	second := dbtest.CreateProduct(t, conn, "SKU-F", 2_000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, AddItemInput{ProductID: first.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, AddItemInput{ProductID: second.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, buyer.ID, first.ID, 4)
	require.NoError(t, err)
	require.True(t, view.Subtotal.Equal(decimal.NewFromInt(6_000)))

	_, err = svc.UpdateQuantity(ctx, buyer.ID, first.ID, 11)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	view, err = svc.UpdateQuantity(ctx, buyer.ID, second.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	_, err = svc.RemoveItem(ctx, buyer.ID, second.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Clear(ctx, buyer.ID))
	view, err = svc.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.True(t, view.Subtotal.IsZero())
}
