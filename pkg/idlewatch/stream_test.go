package idlewatch

import (
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan bool, n int) []bool {
	t.Helper()
	var got []bool
	for i := 0; i < n; i++ {
		select {
		case v := <-ch:
			got = append(got, v)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d values", i, n)
		}
	}
	return got
}

func TestStream_AllSubscribersSeeSameSequence(t *testing.T) {
	s := NewStream()

	ch1, cancel1 := s.Subscribe()
	ch2, cancel2 := s.Subscribe()
	defer cancel1()
	defer cancel2()

	for _, v := range []bool{true, false, true} {
		s.Publish(v)
	}

	want := []bool{true, false, true}
	for i, ch := range []<-chan bool{ch1, ch2} {
		got := collect(t, ch, 3)
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("subscriber %d: got[%d] = %v, want %v", i, j, got[j], want[j])
			}
		}
	}
}

func TestStream_NoHistoryReplay(t *testing.T) {
	s := NewStream()

	s.Publish(true)
	s.Publish(false)

	ch, cancel := s.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		t.Errorf("late subscriber received replayed value %v", v)
	case <-time.After(50 * time.Millisecond):
	}

	// Live values still arrive.
	s.Publish(true)
	if got := collect(t, ch, 1); !got[0] {
		t.Errorf("got %v, want true", got[0])
	}
}

func TestStream_CancelIsIdempotent(t *testing.T) {
	s := NewStream()

	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected channel closed after cancel")
	}
	if n := s.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", n)
	}

	// Publishing with no subscribers must not panic.
	s.Publish(true)
}

func TestStream_PublishNeverBlocksOnAbandonedSubscriber(t *testing.T) {
	s := NewStream()

	_, cancel := s.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < streamBuffer*2; i++ {
			s.Publish(true)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on an abandoned subscriber")
	}
}
