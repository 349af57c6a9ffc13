package usecase

import (
	"context"
	"sync"

	"github.com/vanguardcontact/data-server/internal/entity"
)

type queueKey struct {
	Reason entity.ContactReason
	Method entity.ContactMethod
}

// QueuePool owns one prefetch queue per (reason, method) pair. It is
// constructed once at startup and shared by the allocation path; there is
// no other queue state in the process.
type QueuePool struct {
	mu     sync.Mutex
	queues map[queueKey]*prefetchQueue
	repo   ContactRepositoryInterface
	batch  int
}

func NewQueuePool(repo ContactRepositoryInterface, batchSize int) *QueuePool {
	return &QueuePool{
		queues: make(map[queueKey]*prefetchQueue),
		repo:   repo,
		batch:  batchSize,
	}
}

func (p *QueuePool) queue(reason entity.ContactReason, method entity.ContactMethod) *prefetchQueue {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := queueKey{Reason: reason, Method: method}
	q, ok := p.queues[key]
	if !ok {
		q = newPrefetchQueue()
		p.queues[key] = q
	}
	return q
}

// Pop dequeues the next candidate. It never refills; ok is false when the
// queue is empty.
func (p *QueuePool) Pop(reason entity.ContactReason, method entity.ContactMethod) (*entity.Contact, bool) {
	return p.queue(reason, method).pop()
}

func (p *QueuePool) IsEmpty(reason entity.ContactReason, method entity.ContactMethod) bool {
	return p.queue(reason, method).isEmpty()
}

// Refill bulk-fetches the next batch of candidates, best-rated first. Only
// one refill per queue is ever in flight: callers that arrive while a
// refill is running wait for it instead of starting another.
func (p *QueuePool) Refill(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod) error {
	return p.queue(reason, method).refill(func() ([]entity.Contact, error) {
		return p.repo.FetchCandidates(ctx, reason, method, p.batch)
	})
}

// prefetchQueue is a FIFO of contact snapshots. Entries are never
// requeued; a discarded entry comes back naturally on a later refill.
type prefetchQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	entries   []entity.Contact
	refilling bool
}

func newPrefetchQueue() *prefetchQueue {
	q := &prefetchQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *prefetchQueue) pop() (*entity.Contact, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil, false
	}
	c := q.entries[0]
	q.entries = q.entries[1:]
	return &c, true
}

func (q *prefetchQueue) isEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) == 0
}

func (q *prefetchQueue) refill(fetch func() ([]entity.Contact, error)) error {
	q.mu.Lock()
	if q.refilling {
		// Another caller is already refilling; wait for it and report
		// success. The waiter's next pop sees whatever that refill found.
		for q.refilling {
			q.cond.Wait()
		}
		q.mu.Unlock()
		return nil
	}
	q.refilling = true
	q.mu.Unlock()

	rows, err := fetch()

	q.mu.Lock()
	q.refilling = false
	if err == nil {
		q.entries = append(q.entries, rows...)
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	return err
}
