package availability

import (
	"context"
	"time"

	"voyara/pkg/logger"
)

// Sweeper periodically reclaims expired holds. The Mongo TTL index on
// the holds collection is the backstop; the sweeper keeps reclamation
// prompt so abandoned holds do not block bookings for up to a minute.
type Sweeper struct {
	index    *Index
	interval time.Duration
	log      *logger.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(index *Index, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		index:    index,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := s.index.SweepExpired(ctx); err != nil {
				s.log.Error("hold sweep failed", "error", err)
			}
			cancel()
		}
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
