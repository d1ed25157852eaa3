package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type memInventory struct {
	records map[string]*entity.InventoryRecord
	units   map[string]*entity.InventoryUnit // serial
}

func (m *memInventory) CreateRecord(r *entity.InventoryRecord) error {
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memInventory) AddBatch(recordID string, b *entity.Batch) error {
	r, ok := m.records[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	r.Batches = append(r.Batches, *b)
	r.TotalQuantity = r.TotalQuantity.Add(b.Quantity)
	return nil
}

func (m *memInventory) GetRecord(companyID, productID, vendorID string) (*entity.InventoryRecord, error) {
	for _, r := range m.records {
		if r.CompanyID == companyID && r.ProductID == productID && r.VendorID == vendorID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memInventory) GetRecordByID(id string) (*entity.InventoryRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memInventory) GetBatch(batchID string) (*entity.Batch, error) {
	for _, r := range m.records {
		for i := range r.Batches {
			if r.Batches[i].ID == batchID {
				cp := r.Batches[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (m *memInventory) ReserveAndDecrement(_, _, _ string, _ decimal.Decimal) error { return nil }
func (m *memInventory) Restore(_, _, _ string, _ decimal.Decimal) error             { return nil }

func (m *memInventory) FindAvailable(companyID string, includeBatches bool) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, r := range m.records {
		if r.CompanyID != companyID || r.IsDeleted || !r.TotalQuantity.GreaterThan(decimal.Zero) {
			continue
		}
		cp := *r
		if !includeBatches {
			cp.Batches = nil
		} else {
			cp.Batches = nil
			for _, b := range r.Batches {
				if b.Quantity.GreaterThan(decimal.Zero) {
					cp.Batches = append(cp.Batches, b)
				}
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memInventory) CreateInStock(unit *entity.InventoryUnit) error {
	if _, exists := m.units[unit.SerialNumber]; exists {
		return &domain.DuplicateSerialError{SerialNumber: unit.SerialNumber}
	}
	cp := *unit
	m.units[unit.SerialNumber] = &cp
	return nil
}

func (m *memInventory) CreateSold(unit *entity.InventoryUnit) error {
	cp := *unit
	m.units[unit.SerialNumber] = &cp
	return nil
}

func (m *memInventory) ReturnUnit(_, _, _, _ string) error { return nil }
func (m *memInventory) GetBySerial(_, serial string) (*entity.InventoryUnit, error) {
	u, ok := m.units[serial]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
func (m *memInventory) ListByBatch(_ string) ([]*entity.InventoryUnit, error) { return nil, nil }

type memInvTxRunner struct{ inv *memInventory }

func (r *memInvTxRunner) RunInventory(_ context.Context, fn func(inv repository.InventoryRepository, units repository.InventoryUnitRepository) error) error {
	return fn(r.inv, r.inv)
}

type memProducts struct{ products map[string]*entity.Product }

func (m *memProducts) Create(_ *entity.Product) error { return nil }
func (m *memProducts) GetByID(id string) (*entity.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (m *memProducts) GetByCompanyAndSKU(_, _ string) (*entity.Product, error) { return nil, nil }
func (m *memProducts) Update(_ *entity.Product) error                          { return nil }
func (m *memProducts) ListByCompany(_ string, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}

func inventoryFixture() (*memInventory, *InventoryUseCase) {
	inv := &memInventory{
		records: make(map[string]*entity.InventoryRecord),
		units:   make(map[string]*entity.InventoryUnit),
	}
	products := &memProducts{products: map[string]*entity.Product{
		"prod-1":   {ID: "prod-1", CompanyID: "co-1", SKU: "SKU-1", Name: "Harina"},
		"prod-ser": {ID: "prod-ser", CompanyID: "co-1", SKU: "SKU-S", Name: "Router", IsSerialized: true},
	}}
	uc := NewInventoryUseCase(&memInvTxRunner{inv: inv}, inv, products)
	return inv, uc
}

func TestCreateInventory_NewRecordWithBatches(t *testing.T) {
	inv, uc := inventoryFixture()

	resp, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Barcode:   "750000001",
		Batches: []dto.BatchRequest{
			{Quantity: dec("20"), PurchasePrice: dec("5"), SellingPrice: dec("8")},
			{Quantity: dec("10"), PurchasePrice: dec("5.50"), SellingPrice: dec("8")},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalQuantity.Equal(dec("30")))
	require.Len(t, resp.Batches, 2)

	record := inv.records[resp.ID]
	require.NotNil(t, record)
	assert.True(t, record.TotalQuantity.Equal(dec("30")))
}

func TestCreateInventory_AppendsToExistingRecord(t *testing.T) {
	inv, uc := inventoryFixture()

	first, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Batches:   []dto.BatchRequest{{Quantity: dec("20"), PurchasePrice: dec("5"), SellingPrice: dec("8")}},
	})
	require.NoError(t, err)

	second, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Batches:   []dto.BatchRequest{{Quantity: dec("5"), PurchasePrice: dec("5"), SellingPrice: dec("8")}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, inv.records, 1)
	assert.True(t, inv.records[first.ID].TotalQuantity.Equal(dec("25")))
}

func TestCreateInventory_SerializedRegistersUnits(t *testing.T) {
	inv, uc := inventoryFixture()

	_, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-ser",
		Batches: []dto.BatchRequest{
			{
				Quantity: dec("2"), PurchasePrice: dec("100"), SellingPrice: dec("150"),
				SerialNumbers: []string{"RT-01", "RT-02"},
			},
		},
	})
	require.NoError(t, err)

	for _, serial := range []string{"RT-01", "RT-02"} {
		unit := inv.units[serial]
		require.NotNil(t, unit, "unidad %s", serial)
		assert.Equal(t, entity.UnitInStock, unit.Status)
	}
}

func TestCreateInventory_SerialCountMismatch(t *testing.T) {
	_, uc := inventoryFixture()

	_, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-ser",
		Batches: []dto.BatchRequest{
			{
				Quantity: dec("3"), PurchasePrice: dec("100"), SellingPrice: dec("150"),
				SerialNumbers: []string{"RT-01"},
			},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInventory_ProductOfAnotherCompany(t *testing.T) {
	_, uc := inventoryFixture()

	_, err := uc.CreateInventory(context.Background(), "co-2", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Batches:   []dto.BatchRequest{{Quantity: dec("1"), PurchasePrice: dec("1"), SellingPrice: dec("2")}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAddBatch_ToExistingRecord(t *testing.T) {
	inv, uc := inventoryFixture()
	created, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Batches:   []dto.BatchRequest{{Quantity: dec("20"), PurchasePrice: dec("5"), SellingPrice: dec("8")}},
	})
	require.NoError(t, err)

	batch, err := uc.AddBatch(context.Background(), "co-1", "user-1", created.ID, dto.BatchRequest{
		Quantity: dec("7"), PurchasePrice: dec("5.20"), SellingPrice: dec("8.50"),
	})
	require.NoError(t, err)
	assert.True(t, batch.Quantity.Equal(dec("7")))
	assert.True(t, inv.records[created.ID].TotalQuantity.Equal(dec("27")))
}

func TestListAvailable_ExcludesEmptyBatches(t *testing.T) {
	inv, uc := inventoryFixture()
	created, err := uc.CreateInventory(context.Background(), "co-1", "user-1", dto.CreateInventoryRequest{
		ProductID: "prod-1",
		Batches: []dto.BatchRequest{
			{Quantity: dec("20"), PurchasePrice: dec("5"), SellingPrice: dec("8")},
		},
	})
	require.NoError(t, err)

	// Vaciar el lote manualmente: debe desaparecer del listado disponible.
	record := inv.records[created.ID]
	record.Batches[0].Quantity = decimal.Zero
	record.TotalQuantity = decimal.Zero

	out, err := uc.ListAvailable(context.Background(), "co-1", true)
	require.NoError(t, err)
	assert.Empty(t, out)
}
