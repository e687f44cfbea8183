package player

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// BeepSink is a PCM AudioSink backed by the beep speaker. It only
// supports the 16-bit PCM path; compressed offload opens fail, which
// sends the coordinator down its PCM fallback.
type BeepSink struct {
	streamType AudioStreamType

	mu      sync.Mutex
	open    bool
	started bool
	queue   *pcmQueue
}

// NewBeepSink creates a sink for the given stream type.
func NewBeepSink(streamType AudioStreamType) *BeepSink {
	return &BeepSink{streamType: streamType}
}

func (s *BeepSink) Open(cfg SinkConfig) error {
	if cfg.Offload != nil || cfg.Flags&AudioOutputFlagCompressOffload != 0 {
		return ErrInvalidOperation
	}
	if cfg.Format != AudioFormatPCM16 {
		return ErrInvalidOperation
	}
	if cfg.SampleRate <= 0 || cfg.ChannelCount <= 0 || cfg.ChannelCount > 2 {
		return ErrInvalidOperation
	}

	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Millisecond*100)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = &pcmQueue{channels: int(cfg.ChannelCount)}
	s.open = true
	s.started = false
	return nil
}

func (s *BeepSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrInvalidOperation
	}
	if s.started {
		return nil
	}
	speaker.Play(s.queue)
	s.started = true
	return nil
}

func (s *BeepSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	speaker.Clear()
	s.open = false
	s.started = false
	s.queue = nil
}

func (s *BeepSink) StreamType() AudioStreamType {
	return s.streamType
}

// Write queues interleaved 16-bit little-endian PCM for playback.
func (s *BeepSink) Write(pcm []byte) (int, error) {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()
	if queue == nil {
		return 0, ErrInvalidOperation
	}

	frameBytes := 2 * queue.channels
	n := len(pcm) / frameBytes * frameBytes

	samples := make([][2]float64, 0, n/frameBytes)
	for off := 0; off < n; off += frameBytes {
		var frame [2]float64
		for ch := 0; ch < queue.channels; ch++ {
			v := int16(binary.LittleEndian.Uint16(pcm[off+2*ch:]))
			frame[ch] = float64(v) / 32768.0
		}
		if queue.channels == 1 {
			frame[1] = frame[0]
		}
		samples = append(samples, frame)
	}

	speaker.Lock()
	queue.pending = append(queue.pending, samples...)
	speaker.Unlock()

	return n, nil
}

// pcmQueue streams queued samples and plays silence when drained, so
// the speaker never stops pulling.
type pcmQueue struct {
	channels int
	pending  [][2]float64
}

func (q *pcmQueue) Stream(samples [][2]float64) (int, bool) {
	n := copy(samples, q.pending)
	q.pending = q.pending[n:]
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (q *pcmQueue) Err() error {
	return nil
}
