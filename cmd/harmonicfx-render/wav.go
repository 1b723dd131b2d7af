package main

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// pcm is interleaved float audio
type pcm struct {
	Data       []float32
	Channels   int
	SampleRate int
}

func (p pcm) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Data) / p.Channels
}

func readWAV(path string) (pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return pcm{}, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return pcm{}, fmt.Errorf("invalid wav buffer: %s", path)
	}

	// FullPCMBuffer already scales to [-1, 1].
	data := make([]float32, len(buf.Data))
	copy(data, buf.Data)
	return pcm{Data: data, Channels: buf.Format.NumChannels, SampleRate: buf.Format.SampleRate}, nil
}

// resample converts every channel of p to rate.
func resample(p pcm, rate int) (pcm, error) {
	if p.SampleRate == rate || p.Channels == 0 {
		return p, nil
	}

	frames := p.Frames()
	channels := make([][]float64, p.Channels)
	outFrames := -1
	for ch := range channels {
		r, err := dspresample.NewForRates(
			float64(p.SampleRate),
			float64(rate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return pcm{}, fmt.Errorf("failed to resample %d Hz to %d Hz: %w", p.SampleRate, rate, err)
		}
		in := make([]float64, frames)
		for i := range in {
			in[i] = float64(p.Data[i*p.Channels+ch])
		}
		channels[ch] = r.Process(in)
		if outFrames < 0 || len(channels[ch]) < outFrames {
			outFrames = len(channels[ch])
		}
	}

	out := pcm{Data: make([]float32, outFrames*p.Channels), Channels: p.Channels, SampleRate: rate}
	for ch, data := range channels {
		for i := 0; i < outFrames; i++ {
			out.Data[i*p.Channels+ch] = float32(data[i])
		}
	}
	return out, nil
}

func writeWAV(path string, p pcm) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// 16-bit PCM (audioFormat = 1)
	enc := wav.NewEncoder(f, p.SampleRate, 16, p.Channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  p.SampleRate,
			NumChannels: p.Channels,
		},
		Data:           p.Data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("error writing WAV file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error finalizing WAV file: %w", err)
	}
	return nil
}
