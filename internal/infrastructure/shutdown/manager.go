package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Manager runs the registered close functions in reverse order once the
// process receives SIGINT or SIGTERM.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.Mutex
	funcs   []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger.Named("shutdown")}
}

func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, closer{name: name, fn: fn})
}

// Wait blocks until a termination signal arrives, then calls Run.
func (m *Manager) Wait() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	m.logger.Info("[shutdown][manager] signal received")
	m.Run()
}

// Run executes every close function with its own timeout, last registered first.
func (m *Manager) Run() {
	m.mu.Lock()
	funcs := make([]closer, len(m.funcs))
	copy(funcs, m.funcs)
	m.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		c := funcs[i]
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := c.fn(ctx)
		cancel()

		if err != nil {
			m.logger.Error("[shutdown][manager] close failed",
				zap.String("name", c.name), zap.Duration("duration", time.Since(start)), zap.Error(err))
			continue
		}
		m.logger.Info("[shutdown][manager] closed", zap.String("name", c.name), zap.Duration("duration", time.Since(start)))
	}
}
