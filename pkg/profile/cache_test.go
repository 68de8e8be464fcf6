package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

func TestEnsureCachesOnce(t *testing.T) {
	var calls int32
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		atomic.AddInt32(&calls, 1)
		return model.Profile{ID: userID, FullName: "Ada Lovelace"}, nil
	})

	c.Ensure(context.Background(), "u1")
	c.Ensure(context.Background(), "u1")
	c.Ensure(context.Background(), "u1")

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	p, ok := c.Get("u1")
	if !ok || p.FullName != "Ada Lovelace" {
		t.Errorf("Get(u1) = (%v, %v), want cached profile", p, ok)
	}
}

func TestEnsureEmptyIDIsNoop(t *testing.T) {
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		t.Error("fetch should not run for an empty id")
		return model.Profile{}, nil
	})
	c.Ensure(context.Background(), "")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

// Concurrent callers asking for the same uncached id must collapse into a
// single fetch.
func TestEnsureConcurrentDedup(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		atomic.AddInt32(&calls, 1)
		<-gate // hold every caller in flight
		return model.Profile{ID: userID, Name: "worker"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Ensure(context.Background(), "u1")
		}()
	}
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch called %d times for one id, want 1", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestEnsureDistinctIDsFetchIndependently(t *testing.T) {
	var calls int32
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		atomic.AddInt32(&calls, 1)
		return model.Profile{ID: userID}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("u%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Ensure(context.Background(), id)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 10 {
		t.Errorf("fetch called %d times, want 10", got)
	}
}

func TestEnsureFailureStaysUncachedAndRetries(t *testing.T) {
	var calls int32
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return model.Profile{}, errors.New("backend down")
		}
		return model.Profile{ID: userID, Name: "recovered"}, nil
	})

	c.Ensure(context.Background(), "u1")
	if _, ok := c.Get("u1"); ok {
		t.Fatal("failed fetch must not cache an entry")
	}

	c.Ensure(context.Background(), "u1")
	p, ok := c.Get("u1")
	if !ok || p.Name != "recovered" {
		t.Errorf("retry did not cache: (%v, %v)", p, ok)
	}
}

func TestDisplayName(t *testing.T) {
	c := NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		return model.Profile{}, errors.New("unused")
	})
	c.entries["u1"] = model.Profile{ID: "u1", FullName: "Grace Hopper"}

	tests := []struct {
		name  string
		issue model.Issue
		want  string
	}{
		{"inline full name", model.Issue{Assignee: &model.Assignee{FullName: "Ada"}}, "Ada"},
		{"inline short name", model.Issue{Assignee: &model.Assignee{Name: "ada"}}, "ada"},
		{"no assignee at all", model.Issue{}, Unassigned},
		{"cached profile", model.Issue{AssigneeID: "u1"}, "Grace Hopper"},
		{"unresolved yet", model.Issue{AssigneeID: "u2"}, LoadingPlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.DisplayName(tt.issue); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
