package tracking

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketplace-delivery/internal/domain"
)

type scriptedGateway struct {
	mu       sync.Mutex
	statuses []domain.JobStatus
	errs     []error
	calls    int
	cancelFn func(string) (domain.CancelAck, error)
}

func (g *scriptedGateway) GetStatus(_ context.Context, jobID string) (domain.JobStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return domain.JobStatus{}, g.errs[i]
	}
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	st := g.statuses[i]
	st.JobID = jobID
	return st, nil
}

func (g *scriptedGateway) Cancel(_ context.Context, jobID string) (domain.CancelAck, error) {
	if g.cancelFn == nil {
		return domain.CancelAck{JobID: jobID, Status: domain.JobStatusCanceled}, nil
	}
	return g.cancelFn(jobID)
}

func (g *scriptedGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type statusWrite struct {
	JobID, Status, Description string
	At                         time.Time
}

// fakeRepo mirrors the order store queries: open jobs come back least
// recently checked first and writes older than updated_at are ignored.
type fakeRepo struct {
	mu      sync.Mutex
	known   map[string]bool
	open    []domain.CourierJob
	err     error
	markErr error
	writes  []statusWrite
	checked map[string]time.Time
}

func (r *fakeRepo) UpdateJobStatus(_ context.Context, jobID, status, description string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if !r.known[jobID] {
		return false, nil
	}
	for i := range r.open {
		if r.open[i].JobID != jobID {
			continue
		}
		if at.Before(r.open[i].UpdatedAt) {
			return true, nil
		}
		r.open[i].Status, r.open[i].StatusDescription, r.open[i].UpdatedAt = status, description, at
	}
	r.writes = append(r.writes, statusWrite{JobID: jobID, Status: status, Description: description, At: at})
	return true, nil
}

func (r *fakeRepo) ListOpenJobs(_ context.Context, limit int) ([]domain.CourierJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var open []domain.CourierJob
	for _, j := range r.open {
		if !domain.IsTerminalStatus(j.Status) {
			open = append(open, j)
		}
	}
	sort.SliceStable(open, func(a, b int) bool {
		ca, okA := r.checked[open[a].JobID]
		cb, okB := r.checked[open[b].JobID]
		switch {
		case okA != okB:
			return !okA
		case !ca.Equal(cb):
			return ca.Before(cb)
		default:
			return open[a].JobID < open[b].JobID
		}
	})
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (r *fakeRepo) MarkChecked(_ context.Context, jobIDs []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	if r.checked == nil {
		r.checked = map[string]time.Time{}
	}
	for _, id := range jobIDs {
		r.checked[id] = at
	}
	return nil
}

func (r *fakeRepo) Job(jobID string) domain.CourierJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.open {
		if j.JobID == jobID {
			return j
		}
	}
	return domain.CourierJob{}
}

func (r *fakeRepo) Writes() []statusWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]statusWrite(nil), r.writes...)
}

type mapCache struct {
	mu      sync.Mutex
	m       map[string]domain.JobStatus
	deleted []string
}

func newMapCache() *mapCache { return &mapCache{m: map[string]domain.JobStatus{}} }

func (c *mapCache) Get(_ context.Context, jobID string) (domain.JobStatus, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.m[jobID]
	return st, ok, nil
}

func (c *mapCache) Set(_ context.Context, st domain.JobStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[st.JobID] = st
	return nil
}

func (c *mapCache) Delete(_ context.Context, jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, jobID)
	c.deleted = append(c.deleted, jobID)
	return nil
}

// instantAfter records requested delays and fires immediately.
type instantAfter struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (a *instantAfter) After(d time.Duration) <-chan time.Time {
	a.mu.Lock()
	a.delays = append(a.delays, d)
	a.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func (a *instantAfter) Delays() []time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]time.Duration(nil), a.delays...)
}
