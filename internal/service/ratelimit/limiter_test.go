package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New()
	for i := 0; i < int(DefaultBurst); i++ {
		if !l.AllowUser("whale") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if l.AllowUser("whale") {
		t.Fatalf("request past burst capacity was allowed")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	// drain a fast-refilling bucket, then wait out one token
	for i := 0; i < 3; i++ {
		l.Allow("whale", 3, 50)
	}
	if l.Allow("whale", 3, 50) {
		t.Fatalf("drained bucket allowed a request")
	}
	time.Sleep(40 * time.Millisecond)
	if !l.Allow("whale", 3, 50) {
		t.Fatalf("bucket did not refill")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	l := New()
	for i := 0; i < int(DefaultBurst); i++ {
		l.AllowUser("greedy")
	}
	if l.AllowUser("greedy") {
		t.Fatalf("greedy should be throttled")
	}
	if !l.AllowUser("patient") {
		t.Fatalf("fresh user throttled by someone else's bucket")
	}
}

func TestIdleEviction(t *testing.T) {
	l := New()
	for i := 0; i < 10; i++ {
		l.AllowUser(fmt.Sprintf("user-%d", i))
	}
	l.mu.Lock()
	for _, b := range l.m {
		b.last = time.Now().Add(-idleEviction - time.Minute)
	}
	l.mu.Unlock()

	l.AllowUser("newcomer")

	l.mu.Lock()
	n := len(l.m)
	l.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected only the new bucket after eviction, got %d", n)
	}
}
