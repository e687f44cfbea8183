package player

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapMimeToAudioFormat(t *testing.T) {
	cases := []struct {
		mime   string
		format AudioFormat
		ok     bool
	}{
		{MimeAudioAAC, AudioFormatAAC, true},
		{MimeAudioMPEG, AudioFormatMP3, true},
		{MimeAudioOpus, AudioFormatOpus, true},
		{MimeAudioVorbis, AudioFormatVorbis, true},
		{MimeVideoAVC, AudioFormatInvalid, false},
		{"audio/unknown", AudioFormatInvalid, false},
	}
	for _, tc := range cases {
		format, err := mapMimeToAudioFormat(tc.mime)
		if tc.ok {
			require.NoError(t, err, tc.mime)
			require.Equal(t, tc.format, format, tc.mime)
		} else {
			require.Error(t, err, tc.mime)
		}
	}
}

func TestRefineAACFormat(t *testing.T) {
	require.Equal(t, AudioFormatAACLC, refineAACFormat(2))
	require.Equal(t, AudioFormatAACHEv1, refineAACFormat(5))
	require.Equal(t, AudioFormatAACHEv2, refineAACFormat(29))
	require.Equal(t, AudioFormatAAC, refineAACFormat(0))
	require.Equal(t, AudioFormatAAC, refineAACFormat(17))
}

func TestCanOffloadStream(t *testing.T) {
	longAAC := &Format{Mime: MimeAudioAAC, DurationUs: 120_000_000}

	require.True(t, canOffloadStream(longAAC, false, true, AudioStreamMusic))

	// Any video keeps audio on the PCM path.
	require.False(t, canOffloadStream(longAAC, true, true, AudioStreamMusic))
	// Only the music stream offloads.
	require.False(t, canOffloadStream(longAAC, false, true, AudioStreamAlarm))
	// Unknown format.
	require.False(t, canOffloadStream(nil, false, true, AudioStreamMusic))
	// Unmappable codec.
	require.False(t, canOffloadStream(
		&Format{Mime: "audio/unknown", DurationUs: 120_000_000},
		false, true, AudioStreamMusic))
	// Short content is not worth the session setup.
	require.False(t, canOffloadStream(
		&Format{Mime: MimeAudioAAC, DurationUs: 30_000_000},
		false, true, AudioStreamMusic))
}

// Reopening the sink with identical offload parameters must be a
// no-op; a changed parameter reopens.
func TestOpenAudioSinkOffloadChangeDetection(t *testing.T) {
	h := newHarness(t)
	audioFormat := &Format{
		Mime:         MimeAudioAAC,
		ChannelCount: 2,
		SampleRate:   48000,
		BitRate:      128_000,
		DurationUs:   120_000_000,
	}
	h.source.setFormats(audioFormat, nil)
	h.source.durationUs = 120_000_000

	h.player.SetDataSource(h.source)
	h.player.SetAudioSink(h.sink)
	h.sync()
	h.player.Start()

	require.Eventually(t, func() bool {
		return h.audioDecoderCount() == 1
	}, eventuallyTimeout, eventuallyTick)
	h.sync()

	h.sink.mu.Lock()
	opensBefore := len(h.sink.opens)
	h.sink.mu.Unlock()

	// Same format again: no reopen.
	h.player.looper.Post(newMessage(kindAudioNotify).
		set("what", decoderOutputFormatChanged).
		set("generation", h.player.audioDecoderGen).
		set("format", audioFormat))
	h.sync()

	h.sink.mu.Lock()
	opensAfter := len(h.sink.opens)
	h.sink.mu.Unlock()
	require.Equal(t, opensBefore, opensAfter)
}

// A failing offload open falls back to PCM and disables offload on
// the renderer.
func TestOpenAudioSinkOffloadFailureFallsBackToPCM(t *testing.T) {
	h := newHarness(t)
	h.sink.failOffload = true
	audioFormat := &Format{
		Mime:         MimeAudioAAC,
		ChannelCount: 2,
		SampleRate:   48000,
		DurationUs:   120_000_000,
	}
	h.source.setFormats(audioFormat, nil)
	h.source.durationUs = 120_000_000

	h.player.SetDataSource(h.source)
	h.player.SetAudioSink(h.sink)
	h.sync()
	h.player.Start()

	require.Eventually(t, func() bool {
		return h.audioDecoderCount() == 1
	}, eventuallyTimeout, eventuallyTick)
	h.sync()

	require.False(t, h.player.offloadAudio)

	renderer := h.renderer()
	renderer.mu.Lock()
	offloadDisables := renderer.offloadDisables
	renderer.mu.Unlock()
	require.GreaterOrEqual(t, offloadDisables, 1)

	// The scan opened the sink before building the decoder, so the
	// decoder was built after the fallback, without pass-through; its
	// output format change now opens the sink in PCM.
	h.player.looper.Post(newMessage(kindAudioNotify).
		set("what", decoderOutputFormatChanged).
		set("generation", h.player.audioDecoderGen).
		set("format", audioFormat))
	h.sync()

	cfg, ok := h.sink.lastOpen()
	require.True(t, ok)
	require.Equal(t, AudioFormatPCM16, cfg.Format)
	require.Nil(t, cfg.Offload)
}
