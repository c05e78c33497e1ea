package engagement

import (
	"sync"
	"testing"
)

func TestUserLocks_SerializesSameUser(t *testing.T) {
	l := newUserLocks()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("u1")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50, got %d", counter)
	}
	if n := l.size(); n != 0 {
		t.Errorf("expected map drained, got %d entries", n)
	}
}

func TestUserLocks_IndependentUsers(t *testing.T) {
	l := newUserLocks()
	unlockA := l.lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.lock("b")
		unlock()
		close(done)
	}()
	<-done
	if n := l.size(); n != 1 {
		t.Errorf("expected 1 held lock, got %d", n)
	}
	unlockA()
	if n := l.size(); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}
