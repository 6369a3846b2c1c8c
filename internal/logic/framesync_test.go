package logic

import (
	"sync"
	"testing"
)

func TestFrameSyncTakeClears(t *testing.T) {
	var f FrameSync
	if _, ok := f.Take(); ok {
		t.Fatal("expected nothing pending")
	}
	f.Signal(100)
	f.Signal(133)
	at, ok := f.Take()
	if !ok || at != 133 {
		t.Errorf("expected latest pulse 133, got %d %v", at, ok)
	}
	if _, ok := f.Take(); ok {
		t.Error("pulse must be consumed by Take")
	}
}

func TestFrameSyncConcurrent(t *testing.T) {
	var f FrameSync
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.Signal(Millis(i*100 + j))
			}
		}(i)
	}
	done := make(chan struct{})
	result := make(chan int)
	go func() {
		taken := 0
		for {
			select {
			case <-done:
				result <- taken
				return
			default:
				if _, ok := f.Take(); ok {
					taken++
				}
			}
		}
	}()
	wg.Wait()
	close(done)
	taken := <-result
	if taken > 800 {
		t.Errorf("took more pulses than were signaled: %d", taken)
	}
}

func TestFrameRecordsOnlyWhenCollecting(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)
	if err := s.Start(1000); err != nil {
		t.Fatal(err)
	}

	s.Frames.Signal(1500)
	if recs := s.Tick(IdleInputs(), 1510); len(recs) != 0 {
		t.Fatalf("expected no frame record while not collecting, got %v", recs)
	}

	s.SetCollectFrames(true)
	s.Frames.Signal(1600)
	recs := s.Tick(IdleInputs(), 1610)
	if len(recs) != 1 || recs[0].String() != "FRAME_TIMESTAMP,600" {
		t.Errorf("unexpected records %v", recs)
	}
	if s.Counts().Frames != 1 {
		t.Errorf("expected 1 frame counted, got %d", s.Counts().Frames)
	}
}

func TestFrameStampedWhenSignaled(t *testing.T) {
	s := NewSession(DefaultConfig(), nil)
	s.SetCollectFrames(true)

	// A pulse arriving before START keeps its raw time.
	s.Frames.Signal(900)
	if err := s.Start(1000); err != nil {
		t.Fatal(err)
	}
	recs := s.Tick(IdleInputs(), 1010)
	if len(recs) != 1 || recs[0].String() != "FRAME_TIMESTAMP,900" {
		t.Fatalf("unexpected records %v", recs)
	}

	// A pulse from the first session taken after the second START keeps
	// the first session's origin.
	s.End(2000)
	s.Frames.Signal(2500)
	if err := s.Start(3000); err != nil {
		t.Fatal(err)
	}
	recs = s.Tick(IdleInputs(), 3010)
	if len(recs) != 1 || recs[0].String() != "FRAME_TIMESTAMP,1500" {
		t.Errorf("unexpected records %v", recs)
	}
}

func TestFrameSyncOrigin(t *testing.T) {
	var f FrameSync
	f.SetOrigin(250)
	f.Signal(400)
	if at, ok := f.Take(); !ok || at != 150 {
		t.Errorf("expected 150, got %d %v", at, ok)
	}
}
