package pos

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// fakeState es el almacén en memoria compartido por los fakes. El runner lo
// clona antes de cada transacción para simular rollback real: si el callback
// falla, el estado vuelve byte a byte al snapshot.
type fakeState struct {
	products map[string]*entity.Product
	company  *entity.Company
	batches  map[string]*entity.Batch
	units    map[string]*entity.InventoryUnit // companyID|serial
	sales    map[string]*entity.SaleTransaction
	returns  map[string]*entity.ReturnTransaction
	payments []*entity.Payment
	entries  []*entity.LedgerEntry
	accounts map[string]*entity.Account // partyID|companyID
	counters map[string]int64           // companyID|name
}

func newFakeState() *fakeState {
	return &fakeState{
		products: make(map[string]*entity.Product),
		batches:  make(map[string]*entity.Batch),
		units:    make(map[string]*entity.InventoryUnit),
		sales:    make(map[string]*entity.SaleTransaction),
		returns:  make(map[string]*entity.ReturnTransaction),
		accounts: make(map[string]*entity.Account),
		counters: make(map[string]int64),
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	c.company = s.company
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.batches {
		cp := *v
		c.batches[k] = &cp
	}
	for k, v := range s.units {
		cp := *v
		c.units[k] = &cp
	}
	for k, v := range s.sales {
		cp := *v
		c.sales[k] = &cp
	}
	for k, v := range s.returns {
		cp := *v
		c.returns[k] = &cp
	}
	c.payments = append([]*entity.Payment(nil), s.payments...)
	c.entries = append([]*entity.LedgerEntry(nil), s.entries...)
	for k, v := range s.accounts {
		cp := *v
		c.accounts[k] = &cp
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// fakeTxRunner ejecuta el callback sobre el estado y lo revierte si falla.
type fakeTxRunner struct {
	state *fakeState
}

func (r *fakeTxRunner) RunPOS(_ context.Context, fn func(repos TxRepos) error) error {
	snapshot := r.state.clone()
	repos := TxRepos{
		Inventory: &fakeInventoryRepo{state: r.state},
		Units:     &fakeUnitRepo{state: r.state},
		Sales:     &fakeSaleRepo{state: r.state},
		Returns:   &fakeReturnRepo{state: r.state},
		Payments:  &fakePaymentRepo{state: r.state},
		Ledger:    &fakeLedgerRepo{state: r.state},
		Accounts:  &fakeAccountRepo{state: r.state},
		Counters:  &fakeCounterRepo{state: r.state},
	}
	if err := fn(repos); err != nil {
		*r.state = *snapshot
		return err
	}
	return nil
}

// lockedTxRunner serializa las transacciones concurrentes igual que lo haría
// la base con el update condicional sobre la misma fila: los callbacks corren
// uno a la vez sobre el estado compartido.
type lockedTxRunner struct {
	mu    *sync.Mutex
	inner *fakeTxRunner
}

func (r *lockedTxRunner) RunPOS(ctx context.Context, fn func(repos TxRepos) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.RunPOS(ctx, fn)
}

// lockedProductRepo comparte el mutex del runner para que las lecturas fuera
// de transacción no corran contra un rollback.
type lockedProductRepo struct {
	*fakeProductRepo
	mu *sync.Mutex
}

func (r *lockedProductRepo) GetByID(id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fakeProductRepo.GetByID(id)
}

type fakeInventoryRepo struct{ state *fakeState }

func (f *fakeInventoryRepo) CreateRecord(_ *entity.InventoryRecord) error { return nil }
func (f *fakeInventoryRepo) AddBatch(_ string, _ *entity.Batch) error     { return nil }
func (f *fakeInventoryRepo) GetRecord(_, _, _ string) (*entity.InventoryRecord, error) {
	return nil, nil
}
func (f *fakeInventoryRepo) GetRecordByID(_ string) (*entity.InventoryRecord, error) {
	return nil, nil
}
func (f *fakeInventoryRepo) GetBatch(batchID string) (*entity.Batch, error) {
	b, ok := f.state.batches[batchID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeInventoryRepo) ReserveAndDecrement(_, productID, batchID string, qty decimal.Decimal) error {
	b, ok := f.state.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Quantity.LessThan(qty) {
		return &domain.InsufficientStockError{
			ProductID: productID,
			BatchID:   batchID,
			Requested: qty,
			Available: b.Quantity,
		}
	}
	b.Quantity = b.Quantity.Sub(qty)
	return nil
}

func (f *fakeInventoryRepo) Restore(_, _, batchID string, qty decimal.Decimal) error {
	b, ok := f.state.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Quantity = b.Quantity.Add(qty)
	return nil
}

func (f *fakeInventoryRepo) FindAvailable(_ string, _ bool) ([]*entity.InventoryRecord, error) {
	return nil, nil
}

type fakeUnitRepo struct{ state *fakeState }

func (f *fakeUnitRepo) CreateInStock(unit *entity.InventoryUnit) error {
	key := unit.CompanyID + "|" + unit.SerialNumber
	if _, exists := f.state.units[key]; exists {
		return &domain.DuplicateSerialError{SerialNumber: unit.SerialNumber}
	}
	cp := *unit
	cp.Status = entity.UnitInStock
	f.state.units[key] = &cp
	return nil
}

func (f *fakeUnitRepo) CreateSold(unit *entity.InventoryUnit) error {
	key := unit.CompanyID + "|" + unit.SerialNumber
	if existing, ok := f.state.units[key]; ok {
		if existing.Status != entity.UnitInStock {
			return &domain.DuplicateSerialError{SerialNumber: unit.SerialNumber}
		}
		existing.Status = entity.UnitSold
		existing.SoldOn = unit.SoldOn
		return nil
	}
	cp := *unit
	f.state.units[key] = &cp
	return nil
}

func (f *fakeUnitRepo) ReturnUnit(companyID, _, _, serialNumber string) error {
	key := companyID + "|" + serialNumber
	unit, ok := f.state.units[key]
	if !ok || unit.Status != entity.UnitSold {
		return &domain.InvalidReturnStateError{SerialNumber: serialNumber}
	}
	now := time.Now()
	unit.Status = entity.UnitInStock
	unit.ReturnedOn = &now
	unit.SoldOn = nil
	return nil
}

func (f *fakeUnitRepo) GetBySerial(companyID, serialNumber string) (*entity.InventoryUnit, error) {
	unit, ok := f.state.units[companyID+"|"+serialNumber]
	if !ok {
		return nil, nil
	}
	cp := *unit
	return &cp, nil
}

func (f *fakeUnitRepo) ListByBatch(batchID string) ([]*entity.InventoryUnit, error) {
	var out []*entity.InventoryUnit
	for _, unit := range f.state.units {
		if unit.BatchID == batchID {
			cp := *unit
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSaleRepo struct{ state *fakeState }

func (f *fakeSaleRepo) Create(sale *entity.SaleTransaction) error {
	cp := *sale
	f.state.sales[sale.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) GetByID(id string) (*entity.SaleTransaction, error) {
	sale, ok := f.state.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (f *fakeSaleRepo) ListByCompany(_ string, _, _ int) ([]*entity.SaleTransaction, int, error) {
	return nil, 0, nil
}

type fakeReturnRepo struct{ state *fakeState }

func (f *fakeReturnRepo) Create(ret *entity.ReturnTransaction) error {
	cp := *ret
	f.state.returns[ret.ID] = &cp
	return nil
}

func (f *fakeReturnRepo) GetByID(id string) (*entity.ReturnTransaction, error) {
	ret, ok := f.state.returns[id]
	if !ok {
		return nil, nil
	}
	cp := *ret
	return &cp, nil
}

func (f *fakeReturnRepo) ListByCompany(_ string, _, _ int) ([]*entity.ReturnTransaction, int, error) {
	return nil, 0, nil
}

func (f *fakeReturnRepo) SumReturnedByLine(originalSaleID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, ret := range f.state.returns {
		if ret.OriginalSaleID != originalSaleID {
			continue
		}
		for _, line := range ret.Lines {
			key := line.ProductID + "|" + line.BatchID
			out[key] = out[key].Add(line.Quantity)
		}
	}
	return out, nil
}

type fakePaymentRepo struct{ state *fakeState }

func (f *fakePaymentRepo) Create(payment *entity.Payment) error {
	cp := *payment
	f.state.payments = append(f.state.payments, &cp)
	return nil
}

func (f *fakePaymentRepo) ListBySale(saleID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range f.state.payments {
		if p.SaleID == saleID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeLedgerRepo struct{ state *fakeState }

func (f *fakeLedgerRepo) InsertPair(debit, credit *entity.LedgerEntry) error {
	d, c := *debit, *credit
	f.state.entries = append(f.state.entries, &d, &c)
	return nil
}

func (f *fakeLedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var out []*entity.LedgerEntry
	for _, e := range f.state.entries {
		if filter.CompanyID != "" && e.CompanyID != filter.CompanyID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeLedgerRepo) ListByParty(companyID, partyID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range f.state.entries {
		if e.CompanyID == companyID && e.LinkedPartyID == partyID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) SumByAccount(_ string, _ ledger.AccountKind, _, _ *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

func (f *fakeLedgerRepo) CountByParty(companyID, partyID string) (int64, error) {
	var n int64
	for _, e := range f.state.entries {
		if e.CompanyID == companyID && e.LinkedPartyID == partyID {
			n++
		}
	}
	return n, nil
}

type fakeAccountRepo struct{ state *fakeState }

func (f *fakeAccountRepo) FindOrCreate(partyID, companyID, kind, createdBy string) (*entity.Account, error) {
	key := partyID + "|" + companyID
	if acc, ok := f.state.accounts[key]; ok {
		cp := *acc
		return &cp, nil
	}
	acc := &entity.Account{
		ID:        "acc-" + partyID,
		PartyID:   partyID,
		CompanyID: companyID,
		Kind:      kind,
		Status:    entity.AccountActive,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	f.state.accounts[key] = acc
	cp := *acc
	return &cp, nil
}

func (f *fakeAccountRepo) GetByID(id string) (*entity.Account, error) {
	for _, acc := range f.state.accounts {
		if acc.ID == id {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) GetByParty(partyID, companyID string) (*entity.Account, error) {
	acc, ok := f.state.accounts[partyID+"|"+companyID]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccountRepo) UpdateStatus(_, _, _ string) error { return nil }
func (f *fakeAccountRepo) SoftDelete(_, _ string) error      { return nil }
func (f *fakeAccountRepo) ListByCompany(_, _ string, _, _ int) ([]*entity.Account, int, error) {
	return nil, 0, nil
}

type fakeCounterRepo struct{ state *fakeState }

func (f *fakeCounterRepo) Next(companyID, name string) (int64, error) {
	key := companyID + "|" + name
	f.state.counters[key]++
	return f.state.counters[key], nil
}

// fakeProductRepo y fakeCompanyRepo son repos de solo lectura fuera de la tx.
type fakeProductRepo struct{ state *fakeState }

func (f *fakeProductRepo) Create(_ *entity.Product) error { return nil }
func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := f.state.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (f *fakeProductRepo) GetByCompanyAndSKU(_, _ string) (*entity.Product, error) { return nil, nil }
func (f *fakeProductRepo) Update(_ *entity.Product) error                          { return nil }
func (f *fakeProductRepo) ListByCompany(_ string, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}

type fakeCompanyRepo struct{ state *fakeState }

func (f *fakeCompanyRepo) Create(_ *entity.Company) error { return nil }
func (f *fakeCompanyRepo) GetByID(_ string) (*entity.Company, error) {
	if f.state.company == nil {
		return nil, nil
	}
	cp := *f.state.company
	return &cp, nil
}
func (f *fakeCompanyRepo) Update(_ *entity.Company) error           { return nil }
func (f *fakeCompanyRepo) List(_, _ int) ([]*entity.Company, error) { return nil, nil }
