package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo entrega consecutivos por (empresa, nombre) con un upsert
// atómico: el RETURNING del incremento hace imposible repetir número incluso
// entre transacciones concurrentes.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next retorna el siguiente valor del consecutivo, creándolo en 1 si no
// existe.
func (r *CounterRepo) Next(companyID, name string) (int64, error) {
	query := `
		INSERT INTO counters (company_id, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, name)
		DO UPDATE SET value = counters.value + 1
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(context.Background(), query, companyID, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("next counter %s: %w", name, err)
	}
	return value, nil
}
