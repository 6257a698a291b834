package breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker tracks the failure ratio over a sliding window of calls.
// Closed lets calls through; Open short-circuits with ErrOpen until the
// cooldown passes; HalfOpen closes again after enough consecutive successes.
type Breaker struct {
	mu        sync.Mutex
	state     State
	window    []bool // true marks a failed call
	pos       int
	cooldown  time.Duration
	threshold float64
	recovery  int
	successes int
	openedAt  time.Time
}

func New(windowSize int, cooldown time.Duration, threshold float64, recovery int) *Breaker {
	return &Breaker{
		state:     Closed,
		window:    make([]bool, windowSize),
		cooldown:  cooldown,
		threshold: threshold,
		recovery:  recovery,
	}
}

func (b *Breaker) Do(call func() error) error {
	b.mu.Lock()
	if b.state == Open {
		if time.Since(b.openedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = HalfOpen
		b.successes = 0
	}
	b.mu.Unlock()

	err := call()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.window)

	if b.state == HalfOpen {
		if err != nil {
			b.trip()
			return err
		}
		b.successes++
		if b.successes >= b.recovery {
			b.reset()
		}
		return err
	}

	fails := 0
	for _, failed := range b.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.threshold {
		b.trip()
	}

	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) trip() {
	b.state = Open
	b.successes = 0
	b.openedAt = time.Now()
}

func (b *Breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.pos = 0
	b.successes = 0
	b.state = Closed
}
