// Package alarm provides the audible step alarm: a repeating tone through
// the system audio device, a terminal bell fallback, and a silent no-op.
package alarm

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Audio format for the generated tone.
const (
	SampleRate    = 44100
	ChannelCount  = 1
	bytesPerFrame = 2 * ChannelCount
)

// Compile-time interface check.
var _ domain.AlarmPlayer = (*TonePlayer)(nil)

// Tone describes the repeating beep pattern.
type Tone struct {
	Frequency float64 // Hz
	OnFrames  int     // frames of sound per beep
	OffFrames int     // frames of silence between beeps
	Volume    float64 // 0..1
}

// DefaultTone is a short 880 Hz beep, 300ms on and 200ms off.
var DefaultTone = Tone{
	Frequency: 880,
	OnFrames:  SampleRate * 3 / 10,
	OffFrames: SampleRate * 2 / 10,
	Volume:    0.4,
}

// TonePlayer plays a repeating tone until stopped, via oto.
type TonePlayer struct {
	ctx  *oto.Context
	tone Tone
	log  *logger.Logger

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when silent
}

// NewTonePlayer initializes the system audio context. Returns an error if
// the audio device is unavailable.
func NewTonePlayer(log *logger.Logger, tone Tone) (*TonePlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("alarm player initialized (rate=%d, channels=%d, %.0fHz)", SampleRate, ChannelCount, tone.Frequency)
	return &TonePlayer{ctx: ctx, tone: tone, log: log}, nil
}

// Start begins the repeating tone. No-op while already playing.
func (p *TonePlayer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		return
	}
	p.active = p.ctx.NewPlayer(newBeepReader(p.tone))
	p.active.Play()
	p.log.Debug("alarm: playing")
}

// Stop silences the tone. Safe to call concurrently and when silent.
func (p *TonePlayer) Stop() {
	p.mu.Lock()
	active := p.active
	p.active = nil
	p.mu.Unlock()

	if active == nil {
		return
	}
	active.Pause()
	if err := active.Close(); err != nil {
		p.log.Warn("alarm: closing player: %v", err)
	}
	p.log.Debug("alarm: stopped")
}

// Playing reports whether the tone is on.
func (p *TonePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

// beepReader is an endless stream of signed 16-bit little-endian PCM
// alternating between tone and silence.
type beepReader struct {
	tone  Tone
	frame int // position within one on+off period
}

func newBeepReader(t Tone) *beepReader {
	return &beepReader{tone: t}
}

var _ io.Reader = (*beepReader)(nil)

func (b *beepReader) Read(buf []byte) (int, error) {
	period := b.tone.OnFrames + b.tone.OffFrames
	if period <= 0 {
		return 0, io.EOF
	}

	n := 0
	for n+bytesPerFrame <= len(buf) {
		var sample int16
		if b.frame < b.tone.OnFrames {
			t := float64(b.frame) / SampleRate
			v := math.Sin(2*math.Pi*b.tone.Frequency*t) * b.tone.Volume
			sample = int16(v * math.MaxInt16)
		}
		for c := 0; c < ChannelCount; c++ {
			binary.LittleEndian.PutUint16(buf[n:], uint16(sample))
			n += 2
		}
		b.frame = (b.frame + 1) % period
	}
	return n, nil
}
