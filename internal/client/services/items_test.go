package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pantrysync/restock/internal/client/maintenance"
	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/client/store"
	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeNotifier struct{ notified int }

func (f *fakeNotifier) Notify() { f.notified++ }

type fakeIdentifier struct {
	result models.ScanResult
	err    error
	calls  int
}

func (f *fakeIdentifier) Identify(ctx context.Context, barcode string) (models.ScanResult, error) {
	f.calls++
	return f.result, f.err
}

var testNow = time.UnixMilli(1_700_000_000_000)

func setupService(t *testing.T) (*ItemService, *store.Store, *fakeNotifier, *fakeIdentifier) {
	t.Helper()

	db, err := store.OpenDatabase(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.NewJSON(io.Discard)
	st := store.New(store.NewSQLiteKV(db), logger)
	notifier := &fakeNotifier{}
	identifier := &fakeIdentifier{}

	svc := NewItemService(st, notifier, identifier, logger)
	svc.now = func() time.Time { return testNow }
	return svc, st, notifier, identifier
}

func TestAdd_NewItem(t *testing.T) {
	svc, st, notifier, _ := setupService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddParams{Name: "Milk", Category: "Dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)

	assert.NotEmpty(t, added.ID)
	assert.Equal(t, models.StatusActive, added.Status)
	assert.Equal(t, testNow.UnixMilli(), added.AddedDate)

	items := st.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, added, items[0])
	assert.Equal(t, 1, notifier.notified)
}

func TestAdd_BarcodeMatchAccumulatesActiveQuantity(t *testing.T) {
	svc, st, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddParams{Name: "Beans", Category: "Pantry", Quantity: 2, Unit: "can", Barcode: "123"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddParams{Name: "Other", Category: "Other", Quantity: 1, Unit: "item"})
	require.NoError(t, err)

	again, err := svc.Add(ctx, AddParams{Name: "Beans", Category: "Pantry", Quantity: 3, Unit: "can", Barcode: "123"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID, "barcode match must reuse the record id")
	assert.Equal(t, 5.0, again.Quantity)

	// the re-added record moved to the front
	items := st.Items(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, again, items[0])
}

func TestAdd_BarcodeMatchOnHistoryResetsQuantity(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddParams{Name: "Beans", Category: "Pantry", Quantity: 2, Unit: "can", Barcode: "123"})
	require.NoError(t, err)
	require.NoError(t, svc.Restock(ctx, first.ID))

	again, err := svc.Add(ctx, AddParams{Name: "Beans", Category: "Pantry", Quantity: 3, Unit: "can", Barcode: "123"})
	require.NoError(t, err)

	assert.Equal(t, 3.0, again.Quantity, "history quantity must not accumulate")
	assert.Equal(t, models.StatusActive, again.Status)
}

func TestRestockAndUnrestock(t *testing.T) {
	svc, st, _, _ := setupService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddParams{Name: "Milk", Category: "Dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)

	later := testNow.Add(time.Minute)
	svc.now = func() time.Time { return later }

	require.NoError(t, svc.Restock(ctx, added.ID))
	items := st.Items(ctx)
	assert.Equal(t, models.StatusHistory, items[0].Status)
	assert.Equal(t, later.UnixMilli(), items[0].AddedDate, "restock must refresh the timestamp")

	require.NoError(t, svc.Unrestock(ctx, added.ID))
	assert.Equal(t, models.StatusActive, st.Items(ctx)[0].Status)

	assert.ErrorIs(t, svc.Restock(ctx, "missing"), common.ErrorNotFound)
}

func TestEdit(t *testing.T) {
	svc, st, _, _ := setupService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddParams{Name: "Milk", Category: "Dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)

	name := "Oat Milk"
	quantity := 2.5
	require.NoError(t, svc.Edit(ctx, added.ID, ItemChanges{Name: &name, Quantity: &quantity}))

	got := st.Items(ctx)[0]
	assert.Equal(t, "Oat Milk", got.Name)
	assert.Equal(t, 2.5, got.Quantity)
	assert.Equal(t, "Dairy", got.Category, "unset fields stay")

	assert.ErrorIs(t, svc.Edit(ctx, "missing", ItemChanges{}), common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	svc, st, _, _ := setupService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddParams{Name: "Milk", Category: "Dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, added.ID))
	assert.Empty(t, st.Items(ctx))

	assert.ErrorIs(t, svc.Delete(ctx, added.ID), common.ErrorNotFound)
}

func TestList_FiltersByStatusAndTerm(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	milk, err := svc.Add(ctx, AddParams{Name: "Oat Milk", Category: "Dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddParams{Name: "Bread", Category: "Bakery", Quantity: 1, Unit: "loaf"})
	require.NoError(t, err)
	require.NoError(t, svc.Restock(ctx, milk.ID))

	active := svc.List(ctx, models.StatusActive, "")
	require.Len(t, active, 1)
	assert.Equal(t, "Bread", active[0].Name)

	history := svc.List(ctx, models.StatusHistory, "milk")
	require.Len(t, history, 1)
	assert.Equal(t, "Oat Milk", history[0].Name)

	assert.Empty(t, svc.List(ctx, models.StatusHistory, "cheese"))
}

func TestLoad_RunsMaintenance(t *testing.T) {
	svc, st, _, _ := setupService(t)
	ctx := context.Background()

	expired := models.Item{
		ID:        "old",
		AddedDate: testNow.UnixMilli() - maintenance.RecordRetention.Milliseconds() - 1,
		Status:    models.StatusActive,
	}
	fresh := models.Item{ID: "new", AddedDate: testNow.UnixMilli(), Status: models.StatusActive}
	require.NoError(t, st.SaveItems(ctx, []models.Item{expired, fresh}))

	items := svc.Load(ctx)

	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)

	// the swept collection was persisted
	assert.Equal(t, items, st.Items(ctx))
}

func TestCategories(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddCategory(ctx, "Garage"))
	assert.Contains(t, svc.Categories(ctx), "Garage")

	// duplicates are a no-op
	require.NoError(t, svc.AddCategory(ctx, "Garage"))
	count := 0
	for _, c := range svc.Categories(ctx) {
		if c == "Garage" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	require.NoError(t, svc.RemoveCategory(ctx, "Garage"))
	assert.NotContains(t, svc.Categories(ctx), "Garage")
}

func TestScan_UsesCacheBeforeIdentifier(t *testing.T) {
	svc, _, _, identifier := setupService(t)
	ctx := context.Background()

	identifier.result = models.ScanResult{ProductName: "Oat Milk", Category: "Dairy", QuantityUnit: "l", Barcode: "456"}

	got, err := svc.Scan(ctx, "456")
	require.NoError(t, err)
	assert.Equal(t, identifier.result, got)
	assert.Equal(t, 1, identifier.calls)

	// second scan is served from the known-products cache
	got, err = svc.Scan(ctx, "456")
	require.NoError(t, err)
	assert.Equal(t, identifier.result, got)
	assert.Equal(t, 1, identifier.calls)
}

func TestScan_IdentifierFailure(t *testing.T) {
	svc, _, _, identifier := setupService(t)
	identifier.err = errors.New("catalog unreachable")

	_, err := svc.Scan(context.Background(), "789")
	assert.Error(t, err)
}

func TestSetSyncCode_NotifiesOrchestrator(t *testing.T) {
	svc, st, notifier, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetSyncCode(ctx, "kitchen-42"))
	assert.Equal(t, "kitchen-42", st.SyncCode(ctx))
	assert.Equal(t, 1, notifier.notified)

	// clearing does not trigger a sync
	require.NoError(t, svc.SetSyncCode(ctx, ""))
	assert.Equal(t, 1, notifier.notified)

	assert.ErrorIs(t, svc.SetSyncCode(ctx, "NOPE"), common.ErrInvalidSyncCode)
}
