package service

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
)

// OutcomeSource produces the result of a completed scan. The shipped
// implementation is a fixed constant; a real QR decoder plugs in here.
type OutcomeSource interface {
	Outcome() model.ScanOutcome
}

// FixedOutcome always yields the reference material: PET plastic, 50 points.
type FixedOutcome struct{}

// Outcome returns a fresh outcome with a new ID and timestamp.
func (FixedOutcome) Outcome() model.ScanOutcome {
	return model.ScanOutcome{
		ID:            uuid.Must(uuid.NewV4()),
		MaterialType:  "Plástico PET",
		Category:      "Botellas",
		WeightKg:      0.5,
		PointsAwarded: 50,
		CO2SavedKg:    1.2,
		RawCode:       "RECYCLE-PLASTIC-001",
		ScannedAt:     time.Now(),
	}
}

// ScanSession drives the simulated scan lifecycle:
//
//	Idle -> Scanning -> Detected(payload) -> Completed(outcome) -> Idle
//
// The two hops after Start are timer driven. Cancel stops the pending
// timers and bumps a generation counter so a timer callback that already
// fired can never mutate state belonging to a cancelled run; this is the
// race the design guards against explicitly. Exactly one outcome is
// delivered per Start.
type ScanSession struct {
	mu           sync.Mutex
	state        model.ScanState
	payload      string
	outcome      *model.ScanOutcome
	gen          uint64
	detectTimer  *time.Timer
	processTimer *time.Timer

	detectDelay  time.Duration
	processDelay time.Duration
	source       OutcomeSource
	log          *zap.Logger

	// onDetected and onCompleted run outside the session lock.
	onDetected  func(payload string)
	onCompleted func(model.ScanOutcome)
}

// NewScanSession constructs an idle session. Callbacks may be nil.
func NewScanSession(detectDelay, processDelay time.Duration, source OutcomeSource, log *zap.Logger) *ScanSession {
	if source == nil {
		source = FixedOutcome{}
	}
	return &ScanSession{
		state:        model.ScanIdle,
		detectDelay:  detectDelay,
		processDelay: processDelay,
		source:       source,
		log:          log,
	}
}

// OnDetected registers the detection callback. Must be set before Start.
func (s *ScanSession) OnDetected(fn func(payload string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDetected = fn
}

// OnCompleted registers the completion callback. Must be set before Start.
func (s *ScanSession) OnCompleted(fn func(model.ScanOutcome)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCompleted = fn
}

// State returns the current lifecycle state.
func (s *ScanSession) State() model.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the completed outcome, or nil before completion.
func (s *ScanSession) Outcome() *model.ScanOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return nil
	}
	cpy := *s.outcome
	return &cpy
}

// Start enters Scanning and schedules the detection hop. Returns
// errs.ErrScanActive unless the session is Idle.
func (s *ScanSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.ScanIdle {
		return errs.ErrScanActive
	}
	s.state = model.ScanScanning
	s.outcome = nil
	s.payload = ""
	gen := s.gen

	s.log.Debug("scan started", zap.Duration("detect_in", s.detectDelay))
	s.detectTimer = time.AfterFunc(s.detectDelay, func() { s.detect(gen) })
	return nil
}

// Cancel aborts a running scan. Pending timers are stopped and the
// generation bumped; no outcome will ever be delivered for this run.
// Cancelling an Idle or Completed session is a no-op.
func (s *ScanSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.ScanScanning && s.state != model.ScanDetected {
		return
	}
	s.invalidate()
	s.state = model.ScanIdle
	s.payload = ""
	s.outcome = nil
	s.log.Debug("scan cancelled")
}

// Reset returns a Completed session to Idle once the outcome is consumed.
func (s *ScanSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.ScanCompleted {
		return
	}
	s.invalidate()
	s.state = model.ScanIdle
	s.payload = ""
	s.outcome = nil
}

// invalidate must be called with the lock held.
func (s *ScanSession) invalidate() {
	s.gen++
	if s.detectTimer != nil {
		s.detectTimer.Stop()
		s.detectTimer = nil
	}
	if s.processTimer != nil {
		s.processTimer.Stop()
		s.processTimer = nil
	}
}

func (s *ScanSession) detect(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != model.ScanScanning {
		s.mu.Unlock()
		return
	}
	out := s.source.Outcome()
	s.outcome = &out
	s.payload = out.RawCode
	s.state = model.ScanDetected
	s.processTimer = time.AfterFunc(s.processDelay, func() { s.complete(gen) })
	cb := s.onDetected
	payload := s.payload
	s.mu.Unlock()

	s.log.Debug("scan detected", zap.String("payload", payload))
	if cb != nil {
		cb(payload)
	}
}

func (s *ScanSession) complete(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != model.ScanDetected {
		s.mu.Unlock()
		return
	}
	s.state = model.ScanCompleted
	out := *s.outcome
	cb := s.onCompleted
	s.mu.Unlock()

	s.log.Debug("scan completed", zap.Int("points", out.PointsAwarded))
	if cb != nil {
		cb(out)
	}
}
