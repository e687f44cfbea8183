package player

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetTrackInfo(t *testing.T) {
	h := newHarness(t)
	h.source.mu.Lock()
	h.source.trackInfos = []*TrackInfo{
		{Type: TrackTypeVideo, Language: "und"},
		{Type: TrackTypeAudio, Language: "en"},
		{Type: TrackTypeSubtitle, Language: "sv", Mime: "text/vtt", Default: true},
	}
	h.source.mu.Unlock()

	h.player.SetDataSource(h.source)
	h.sync()

	parcel, err := h.player.GetTrackInfo()
	require.NoError(t, err)
	require.Equal(t, int32(3), parcel.ReadInt32())

	// Video track.
	require.Equal(t, int32(2), parcel.ReadInt32())
	require.Equal(t, int32(TrackTypeVideo), parcel.ReadInt32())
	require.Equal(t, "und", parcel.ReadString16())
	// Audio track.
	require.Equal(t, int32(2), parcel.ReadInt32())
	require.Equal(t, int32(TrackTypeAudio), parcel.ReadInt32())
	require.Equal(t, "en", parcel.ReadString16())
	// Subtitle track with the extended fields.
	require.Equal(t, int32(2), parcel.ReadInt32())
	require.Equal(t, int32(TrackTypeSubtitle), parcel.ReadInt32())
	require.Equal(t, "sv", parcel.ReadString16())
	require.Equal(t, "text/vtt", parcel.ReadString16())
	require.Equal(t, int32(0), parcel.ReadInt32())
	require.Equal(t, int32(1), parcel.ReadInt32())
	require.Equal(t, int32(0), parcel.ReadInt32())
}

func TestGetSelectedTrackWithoutSource(t *testing.T) {
	h := newHarness(t)

	_, err := h.player.GetSelectedTrack(TrackTypeAudio)
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestGetSelectedTrack(t *testing.T) {
	h := newHarness(t)
	h.source.mu.Lock()
	h.source.selectedAudio = 1
	h.source.mu.Unlock()

	h.player.SetDataSource(h.source)
	h.sync()

	index, err := h.player.GetSelectedTrack(TrackTypeAudio)
	require.NoError(t, err)
	require.Equal(t, int32(1), index)
}

func TestSelectTrackDeselectTimedTextBumpsGeneration(t *testing.T) {
	h := newHarness(t)
	h.source.mu.Lock()
	h.source.trackInfos = []*TrackInfo{
		{Type: TrackTypeAudio, Language: "en"},
		{Type: TrackTypeTimedText, Language: "en"},
	}
	h.source.mu.Unlock()

	h.player.SetDataSource(h.source)
	h.sync()
	genBefore := h.player.timedTextGen

	require.NoError(t, h.player.SelectTrack(1, false))
	h.sync()
	require.Equal(t, genBefore+1, h.player.timedTextGen)

	// Deselecting a non-timed-text track leaves the generation alone.
	require.NoError(t, h.player.SelectTrack(0, false))
	h.sync()
	require.Equal(t, genBefore+1, h.player.timedTextGen)
}

func TestSelectTrackOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.source.mu.Lock()
	h.source.trackInfos = []*TrackInfo{{Type: TrackTypeAudio, Language: "en"}}
	h.source.mu.Unlock()

	h.player.SetDataSource(h.source)
	h.sync()

	err := h.player.SelectTrack(5, true)
	require.ErrorIs(t, err, ErrInvalidOperation)
}
