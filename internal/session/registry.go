package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry owns the in-memory session arena. Create/read/update/delete are
// serialized per session key: the outer lock only guards the map, each entry
// carries its own mutex. Expiry is driven by the surrounding scheduler
// calling ExpireBefore, not by per-session timers.
type Registry interface {
	Create(ctx context.Context, question string, maxIterations int) (*IterativeQuerySession, error)
	Get(ctx context.Context, sessionId string) (*IterativeQuerySession, error)
	AppendRound(ctx context.Context, sessionId string, entry DataRequestLog) (*IterativeQuerySession, error)
	Complete(ctx context.Context, sessionId string, status, errorKind string) (*IterativeQuerySession, error)
	Delete(ctx context.Context, sessionId string) error
	ExpireBefore(ctx context.Context, cutoff time.Time) int
}

type sessionEntry struct {
	mu      sync.Mutex
	sess    *IterativeQuerySession
	touched time.Time
}

type inMemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func NewInMemoryRegistry() Registry {
	return &inMemoryRegistry{
		entries: make(map[string]*sessionEntry),
	}
}

func (r *inMemoryRegistry) Create(ctx context.Context, question string, maxIterations int) (*IterativeQuerySession, error) {
	now := time.Now().UTC()
	sess := &IterativeQuerySession{
		SessionId:     uuid.NewString(),
		Question:      question,
		StartTime:     now,
		MaxIterations: maxIterations,
		RequestLog:    make([]DataRequestLog, 0),
		Status:        StatusActive,
	}

	r.mu.Lock()
	r.entries[sess.SessionId] = &sessionEntry{sess: sess, touched: now}
	r.mu.Unlock()

	return sess.clone(), nil
}

func (r *inMemoryRegistry) lookup(sessionId string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[sessionId]
	return entry, ok
}

func (r *inMemoryRegistry) Get(ctx context.Context, sessionId string) (*IterativeQuerySession, error) {
	entry, ok := r.lookup(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.sess.clone(), nil
}

// AppendRound appends one round to the audit log, incrementing the
// iteration count and accumulating processing time. The log is append-only;
// existing entries are never rewritten.
func (r *inMemoryRegistry) AppendRound(ctx context.Context, sessionId string, logEntry DataRequestLog) (*IterativeQuerySession, error) {
	entry, ok := r.lookup(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.sess.Terminal() {
		return nil, errors.New("session already terminal")
	}
	entry.sess.RequestLog = append(entry.sess.RequestLog, logEntry)
	entry.sess.IterationCount++
	entry.sess.TotalProcessingTimeMs += logEntry.LatencyMs
	entry.touched = time.Now().UTC()
	return entry.sess.clone(), nil
}

// Complete moves a session to a terminal status. Terminal states are final:
// completing an already-terminal session is a no-op returning its state.
func (r *inMemoryRegistry) Complete(ctx context.Context, sessionId string, status, errorKind string) (*IterativeQuerySession, error) {
	entry, ok := r.lookup(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.sess.Terminal() {
		entry.sess.Status = status
		entry.sess.ErrorKind = errorKind
		entry.sess.EndTime = time.Now().UTC()
		entry.touched = entry.sess.EndTime
	}
	return entry.sess.clone(), nil
}

func (r *inMemoryRegistry) Delete(ctx context.Context, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[sessionId]; !ok {
		return ErrSessionNotFound
	}
	delete(r.entries, sessionId)
	return nil
}

// ExpireBefore removes sessions not touched since the cutoff and returns how
// many were dropped.
func (r *inMemoryRegistry) ExpireBefore(ctx context.Context, cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for id, entry := range r.entries {
		entry.mu.Lock()
		stale := entry.touched.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			delete(r.entries, id)
			expired++
		}
	}
	if expired > 0 {
		log.Info().Int("expired", expired).Time("cutoff", cutoff).Msg("Expired idle query sessions")
	}
	return expired
}
