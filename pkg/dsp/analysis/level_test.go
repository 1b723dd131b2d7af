package analysis

import (
	"math"
	"sync"
	"testing"

	"github.com/justyntemme/harmonicfx/pkg/dsp/gain"
)

func TestLevel(t *testing.T) {
	var l Level
	l.Reset()
	if l.Load() != gain.MinDB {
		t.Errorf("Reset level = %f, want %f", l.Load(), gain.MinDB)
	}

	tests := []struct {
		name      string
		amplitude float32
		want      float64
	}{
		{"Unity", 1, 0},
		{"Half", 0.5, -6.0206},
		{"Negative", -0.5, -6.0206},
		{"Silence", 0, gain.MinDB},
		{"Denormal", 1e-30, gain.MinDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l.StoreLinear(tt.amplitude)
			if math.Abs(float64(l.Load())-tt.want) > 1e-3 {
				t.Errorf("StoreLinear(%g) read %f, want %f", tt.amplitude, l.Load(), tt.want)
			}
		})
	}
}

func TestLevelConcurrentAccess(t *testing.T) {
	var l Level
	l.Store(-12)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				l.Store(-12)
			} else {
				l.Store(-24)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if v := l.Load(); v != -12 && v != -24 {
				t.Errorf("Torn read: %f", v)
				return
			}
		}
	}()
	wg.Wait()
}
