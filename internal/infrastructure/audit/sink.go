// Package audit implementa el sink de auditoría fire-and-forget. Los eventos
// se encolan en un canal y un worker los persiste en segundo plano; la venta
// nunca espera ni falla por la auditoría.
package audit

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ pos.AuditSink = (*Sink)(nil)

// Sink persiste eventos de auditoría de forma asíncrona.
type Sink struct {
	repo   repository.AuditLogRepository
	events chan entity.AuditLog
	done   chan struct{}
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewSink arranca el worker de persistencia. bufferSize acota la cola; si se
// llena, los eventos nuevos se descartan con un warning en vez de bloquear.
func NewSink(repo repository.AuditLogRepository, bufferSize int, log zerolog.Logger) *Sink {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &Sink{
		repo:   repo,
		events: make(chan entity.AuditLog, bufferSize),
		done:   make(chan struct{}),
		log:    log,
	}
	go s.run()
	return s
}

// Notify encola el evento sin bloquear. Tras Close los eventos se descartan;
// un efecto post-commit tardío durante el apagado no puede tumbar el proceso.
func (s *Sink) Notify(event entity.AuditLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn().
			Str("entity_type", event.EntityType).
			Str("entity_id", event.EntityID).
			Msg("sink de auditoría cerrado, evento descartado")
		return
	}
	select {
	case s.events <- event:
	default:
		s.log.Warn().
			Str("entity_type", event.EntityType).
			Str("entity_id", event.EntityID).
			Msg("cola de auditoría llena, evento descartado")
	}
}

// Close drena la cola y detiene el worker. Idempotente.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	<-s.done
}

func (s *Sink) run() {
	defer close(s.done)
	for event := range s.events {
		if err := s.repo.Create(&event); err != nil {
			s.log.Error().Err(err).
				Str("entity_type", event.EntityType).
				Str("entity_id", event.EntityID).
				Msg("no se pudo persistir el evento de auditoría")
		}
	}
}
