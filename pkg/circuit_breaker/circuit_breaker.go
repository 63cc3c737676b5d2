package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

type circuitBreaker struct {
	mu sync.Mutex
	// Closed passes calls, Open rejects them, HalfOpen passes them until one fails.
	state Status
	// how long the breaker stays open before a trial call
	timeout  time.Duration
	openedAt time.Time
	// share of failed tracked calls that opens the breaker
	percentile float64
	// ring of the most recent call results, true = failed
	buffer []bool
	pos    int
	fails  int
	// consecutive successes in HalfOpen needed to close
	recoveryRequests int
	successCount     int
}

type CircuitBreaker interface {
	Call(service func() error) error
	State() Status
	Reset()
}

func New(recordLength int, timeout time.Duration, percentile float64, recoveryRequests int) CircuitBreaker {
	if recordLength < 1 {
		recordLength = 1
	}
	if recoveryRequests < 1 {
		recoveryRequests = 1
	}
	return &circuitBreaker{
		state:            Closed,
		timeout:          timeout,
		percentile:       percentile,
		buffer:           make([]bool, recordLength),
		recoveryRequests: recoveryRequests,
	}
}

var (
	ErrOpenCB = errors.New("circuit breaker is open")
)

func (cb *circuitBreaker) Call(service func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if time.Since(cb.openedAt) <= cb.timeout {
			cb.mu.Unlock()
			return ErrOpenCB
		}
		cb.state = HalfOpen
		cb.successCount = 0
	}
	cb.mu.Unlock()

	err := service()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.record(err != nil)

	if cb.state == HalfOpen {
		if err != nil {
			cb.open()
			return err
		}
		cb.successCount++
		if cb.successCount >= cb.recoveryRequests {
			cb.reset()
		}
		return err
	}

	if float64(cb.fails)/float64(len(cb.buffer)) >= cb.percentile {
		cb.open()
	}
	return err
}

// record overwrites the oldest tracked result.
func (cb *circuitBreaker) record(failed bool) {
	if cb.buffer[cb.pos] {
		cb.fails--
	}
	if failed {
		cb.fails++
	}
	cb.buffer[cb.pos] = failed
	cb.pos = (cb.pos + 1) % len(cb.buffer)
}

func (cb *circuitBreaker) open() {
	cb.state = Open
	cb.successCount = 0
	cb.openedAt = time.Now()
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.buffer {
		cb.buffer[i] = false
	}
	cb.fails = 0
	cb.successCount = 0
	cb.pos = 0
	cb.state = Closed
}
