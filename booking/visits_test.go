package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordVisit(route string) {
	m.Called(route)
}

func TestVisitCounter(t *testing.T) {
	recorder := &mockRecorder{}
	recorder.On("RecordVisit", "/api/spaces/{id}").Return().Twice()
	recorder.On("RecordVisit", "/api/users").Return().Once()

	counter := NewVisitCounter(recorder)
	counter.Register("/api/spaces/{id}", "/api/spaces/1")
	counter.Register("/api/spaces/{id}", "/api/spaces/2")
	counter.Register("/api/users", "/api/users")

	assert.Equal(t, int64(1), counter.Count("/api/spaces/1"))
	assert.Equal(t, int64(1), counter.Count("/api/spaces/2"))
	assert.Equal(t, int64(1), counter.Count("/api/users"))
	assert.Equal(t, int64(0), counter.Count("/api/spaces/{id}"))
	assert.Equal(t, int64(0), counter.Count("/never"))
	assert.Equal(t, map[string]int64{"/api/spaces/1": 1, "/api/spaces/2": 1, "/api/users": 1}, counter.All())
	recorder.AssertExpectations(t)
}

func TestVisitCounter_Concurrent(t *testing.T) {
	counter := NewVisitCounter(nil)
	paths := []string{"/a", "/b", "/c"}

	const perPath = 500
	var wg sync.WaitGroup
	for _, path := range paths {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				for j := 0; j < perPath; j++ {
					counter.Register(p, p)
				}
			}(path)
		}
	}
	wg.Wait()

	for _, path := range paths {
		assert.Equal(t, int64(4*perPath), counter.Count(path))
	}
	assert.Len(t, counter.All(), len(paths))
}
