package player

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeepSinkRejectsOffload(t *testing.T) {
	sink := NewBeepSink(AudioStreamMusic)

	err := sink.Open(SinkConfig{
		SampleRate:   48000,
		ChannelCount: 2,
		Format:       AudioFormatAAC,
		Flags:        AudioOutputFlagCompressOffload,
		Offload:      &OffloadInfo{},
	})
	require.ErrorIs(t, err, ErrInvalidOperation)

	err = sink.Open(SinkConfig{
		SampleRate:   48000,
		ChannelCount: 2,
		Format:       AudioFormatAAC,
	})
	require.ErrorIs(t, err, ErrInvalidOperation)

	require.Equal(t, AudioStreamMusic, sink.StreamType())
}

func TestBeepSinkStartWithoutOpen(t *testing.T) {
	sink := NewBeepSink(AudioStreamMusic)
	require.ErrorIs(t, sink.Start(), ErrInvalidOperation)

	_, err := sink.Write([]byte{0, 0})
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestPCMQueueStreamsAndPadsWithSilence(t *testing.T) {
	q := &pcmQueue{channels: 2}
	q.pending = [][2]float64{{0.5, -0.5}, {0.25, 0.25}}

	out := make([][2]float64, 4)
	n, ok := q.Stream(out)
	require.True(t, ok)
	require.Equal(t, 4, n)
	require.Equal(t, [2]float64{0.5, -0.5}, out[0])
	require.Equal(t, [2]float64{0.25, 0.25}, out[1])
	require.Equal(t, [2]float64{}, out[2])
	require.Equal(t, [2]float64{}, out[3])
	require.Empty(t, q.pending)
	require.NoError(t, q.Err())
}
