package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// clip holds interleaved samples scaled to [-1, 1).
type clip struct {
	sampleRate int
	channels   int
	samples    []float64
}

func (c *clip) frames() int {
	if c.channels == 0 {
		return 0
	}
	return len(c.samples) / c.channels
}

// readWAV decodes a PCM WAV file with one or two channels.
func readWAV(path string) (*clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, err
	}

	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 {
		return nil, fmt.Errorf("unknown bit depth for WAV file: %s", path)
	}
	if format.NumChannels != 1 && format.NumChannels != 2 {
		return nil, fmt.Errorf("%s: %d channels, want mono or stereo", path, format.NumChannels)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(dec.PCMLen()) / bytesPerSample
	nsamples -= nsamples % format.NumChannels

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return nil, err
	}

	factor := math.Pow(2, float64(bitDepth-1))
	fb := buf.AsFloatBuffer()

	c := &clip{
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		samples:    make([]float64, n-n%format.NumChannels),
	}
	for i := range c.samples {
		c.samples[i] = fb.Data[i] / factor
	}

	return c, nil
}

// writeWAV encodes c as 16-bit PCM, clipping every sample to [-1, 1).
func writeWAV(path string, c *clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, c.sampleRate, 16, c.channels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: c.channels,
			SampleRate:  c.sampleRate,
		},
		Data:           make([]int, len(c.samples)),
		SourceBitDepth: 16,
	}
	for i, x := range c.samples {
		buf.Data[i] = toPCM16(x)
	}

	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	return f.Close()
}

func toPCM16(x float64) int {
	v := math.Round(x * 32768)
	switch {
	case v >= 32767:
		return 32767
	case v <= -32768:
		return -32768
	case math.IsNaN(v):
		return 0
	}
	return int(v)
}
