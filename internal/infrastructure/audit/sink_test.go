package audit

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
)

type memAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *memAuditRepo) Create(log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memAuditRepo) ListByCompany(_ string, _, _ int) ([]*entity.AuditLog, error) {
	return nil, nil
}

func (r *memAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}

func TestSink_PersistsQueuedEvents(t *testing.T) {
	repo := &memAuditRepo{}
	sink := NewSink(repo, 8, zerolog.Nop())

	sink.Notify(entity.AuditLog{ID: "a-1", EntityType: "Sale", EntityID: "sale-1"})
	sink.Notify(entity.AuditLog{ID: "a-2", EntityType: "Return", EntityID: "ret-1"})
	sink.Close()

	require.Equal(t, 2, repo.count())
	assert.Equal(t, "a-1", repo.logs[0].ID)
	assert.Equal(t, "a-2", repo.logs[1].ID)
}

func TestSink_NotifyAfterCloseDropsEvent(t *testing.T) {
	repo := &memAuditRepo{}
	sink := NewSink(repo, 8, zerolog.Nop())
	sink.Close()

	// Un efecto post-commit tardío durante el apagado se descarta sin pánico.
	assert.NotPanics(t, func() {
		sink.Notify(entity.AuditLog{ID: "a-late", EntityType: "Sale", EntityID: "sale-9"})
	})
	assert.Equal(t, 0, repo.count())
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	sink := NewSink(&memAuditRepo{}, 8, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		sink.Close()
		sink.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close no retornó")
	}
}
