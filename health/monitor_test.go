package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

func TestMonitor_UpdateAndGet(t *testing.T) {
	m := NewMonitor()
	m.Update("storage", Status{Status: StateHealthy, Healthy: true})

	got, ok := m.Get("storage")
	require.True(t, ok)
	assert.Equal(t, "storage", got.Component, "name is stamped on the status")
	assert.False(t, got.Timestamp.IsZero(), "timestamp is filled in")

	m.Update("storage", NewUnhealthy("other-name", "down"))
	got, _ = m.Get("storage")
	assert.Equal(t, "storage", got.Component)
	assert.True(t, got.IsUnhealthy())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMonitor_Run(t *testing.T) {
	m := NewMonitor()
	m.AddCheck("storage", PingCheck("storage", fakePinger{}))
	m.AddCheck("gateway", func(context.Context) Status { return NewDegraded("gateway", "errors rising") })

	status := m.Run(context.Background(), "coworking")
	assert.True(t, status.IsDegraded())
	require.Len(t, status.SubStatuses, 2)
	assert.Equal(t, "gateway", status.SubStatuses[0].Component, "sub-statuses are sorted by name")
	assert.Equal(t, "storage", status.SubStatuses[1].Component)

	m.AddCheck("storage", PingCheck("storage", fakePinger{err: errors.New("database is closed")}))
	status = m.Run(context.Background(), "coworking")
	assert.True(t, status.IsUnhealthy())
	storage, _ := m.Get("storage")
	assert.Equal(t, "database is closed", storage.Message)
}

func TestMonitor_Remove(t *testing.T) {
	m := NewMonitor()
	m.AddCheck("a", func(context.Context) Status { return NewUnhealthy("a", "down") })
	m.Run(context.Background(), "system")
	assert.Equal(t, []string{"a"}, m.ListComponents())

	m.Remove("a")
	assert.Empty(t, m.ListComponents())
	assert.True(t, m.Run(context.Background(), "system").IsHealthy())
}

func TestMonitor_ListComponents(t *testing.T) {
	m := NewMonitor()
	m.Update("zeta", NewHealthy("zeta", ""))
	m.AddCheck("alpha", func(context.Context) Status { return NewHealthy("alpha", "") })
	m.Update("alpha", NewHealthy("alpha", ""))
	m.AddCheck("mid", func(context.Context) Status { return NewHealthy("mid", "") })

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, m.ListComponents())
}

func TestMonitor_RunsChecksConcurrently(t *testing.T) {
	m := NewMonitor()
	var calls atomic.Int32
	release := make(chan struct{})
	var started sync.WaitGroup

	for i := 0; i < 5; i++ {
		started.Add(1)
		name := fmt.Sprintf("check-%d", i)
		m.AddCheck(name, func(context.Context) Status {
			calls.Add(1)
			started.Done()
			<-release
			return NewHealthy(name, "")
		})
	}

	done := make(chan Status)
	go func() { done <- m.Run(context.Background(), "system") }()

	// Every check is blocked at the same time, so they run in parallel
	started.Wait()
	close(release)

	status := <-done
	assert.True(t, status.IsHealthy())
	assert.Equal(t, int32(5), calls.Load())
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("component-%d", id)
			for j := 0; j < 100; j++ {
				m.Update(name, NewHealthy(name, "ok"))
				m.Get(name)
				m.AggregateHealth("system")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.ListComponents(), 10)
}
