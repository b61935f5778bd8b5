package player

import (
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
)

// Stop and OnEnded share state with the speaker callback; both must be safe
// to call from different goroutines.
func TestStopAndHandlerRegistrationConcurrent(t *testing.T) {
	d := &BeepDevice{outRate: beep.SampleRate(44100), bufferMs: 100}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.OnEnded(func() {})
		}()
		go func() {
			defer wg.Done()
			d.Stop()
		}()
	}
	wg.Wait()

	if d.ctrl != nil || d.streamer != nil {
		t.Errorf("expected stopped device to hold no stream")
	}
}
