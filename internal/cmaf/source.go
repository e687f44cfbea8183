// Package cmaf provides a file-backed Source reading CMAF tracks
// (fragmented MP4, one track per file) for local playback.
package cmaf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Eyevinn/mp4ff/aac"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/BTLG-IDK/playengine/internal/player"
)

// track is one loaded CMAF track with its demuxed samples.
type track struct {
	name        string
	contentType string // "audio" or "video"
	language    string
	timeScale   uint32
	sampleDur   uint32
	durationUs  int64
	bitrate     int32
	format      *player.Format
	samples     []mp4.FullSample

	cursor int
	// pendingDiscontinuity is emitted before the next access unit
	// after a track switch. SeekTo does not set it.
	pendingDiscontinuity player.DiscontinuityType
}

// Source implements player.Source over a directory of CMAF track
// files. All methods are driven from the coordinator loop.
type Source struct {
	logger *slog.Logger
	events *player.SourceEvents

	tracks      []*track
	activeAudio int
	activeVideo int

	started bool
	paused  bool

	secureBuffers [][]byte
}

// Load reads all *.mp4 files in dirPath as single-track fragmented
// MP4 files and builds a Source from them. The lowest-bitrate track
// of each content type starts out selected.
func Load(dirPath string) (*Source, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("could not read directory: %w", err)
	}
	s := &Source{
		logger:      slog.Default(),
		activeAudio: -1,
		activeVideo: -1,
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp4" {
			continue
		}
		filePath := filepath.Join(dirPath, entry.Name())
		fh, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("could not open file %s: %w", filePath, err)
		}
		t, err := loadTrack(fh, entry.Name())
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("could not load track from %s: %w", filePath, err)
		}
		s.tracks = append(s.tracks, t)
	}
	if len(s.tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in %s", dirPath)
	}

	sort.SliceStable(s.tracks, func(i, j int) bool {
		if s.tracks[i].contentType != s.tracks[j].contentType {
			return s.tracks[i].contentType > s.tracks[j].contentType // video first
		}
		return s.tracks[i].bitrate < s.tracks[j].bitrate
	})
	for i, t := range s.tracks {
		switch t.contentType {
		case "video":
			if s.activeVideo < 0 {
				s.activeVideo = i
			}
		case "audio":
			if s.activeAudio < 0 {
				s.activeAudio = i
			}
		}
	}
	return s, nil
}

// loadTrack initializes a track from an io.Reader (expects a
// fragmented MP4 with exactly one track). The name is stripped of any
// extension.
func loadTrack(r io.Reader, name string) (*track, error) {
	m, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode file: %w", err)
	}
	if !m.IsFragmented() {
		return nil, fmt.Errorf("file is not fragmented")
	}
	if len(m.Moov.Traks) != 1 {
		return nil, fmt.Errorf("file has not exactly one track")
	}
	init := m.Init
	trak := init.Moov.Trak
	mdia := trak.Mdia
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	t := &track{
		name:      name,
		timeScale: mdia.Mdhd.Timescale,
		language:  mdia.Mdhd.GetLanguage(),
	}

	sampleDesc, err := mdia.Minf.Stbl.Stsd.GetSampleDescription(0)
	if err != nil {
		return nil, fmt.Errorf("could not get sample description: %w", err)
	}

	trex := init.Moov.Mvex.Trex
	for _, seg := range m.Segments {
		for _, frag := range seg.Fragments {
			fs, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, fmt.Errorf("could not get full samples: %w", err)
			}
			t.samples = append(t.samples, fs...)
		}
	}
	if len(t.samples) == 0 {
		return nil, fmt.Errorf("track has no samples")
	}
	for i, smp := range t.samples {
		if t.sampleDur == 0 {
			t.sampleDur = smp.Dur
		} else if smp.Dur != t.sampleDur && i != len(t.samples)-1 {
			// Last sample may differ; all others should match.
			return nil, fmt.Errorf("sample duration is not consistent")
		}
	}

	format := &player.Format{}
	switch sampleDesc.Type() {
	case "avc1", "avc3":
		t.contentType = "video"
		format.Mime = player.MimeVideoAVC
	case "hvc1", "hev1":
		t.contentType = "video"
		format.Mime = player.MimeVideoHEVC
	case "mp4a":
		t.contentType = "audio"
		format.Mime = player.MimeAudioAAC
	case "Opus":
		t.contentType = "audio"
		format.Mime = player.MimeAudioOpus
	default:
		return nil, fmt.Errorf("unsupported sample description type: %s", sampleDesc.Type())
	}

	switch t.contentType {
	case "video":
		// Track header dimensions are 16.16 fixed point.
		format.Width = int32(trak.Tkhd.Width >> 16)
		format.Height = int32(trak.Tkhd.Height >> 16)
	case "audio":
		if sampleDesc.Type() == "mp4a" {
			mp4a := mdia.Minf.Stbl.Stsd.Mp4a
			if mp4a != nil && mp4a.Esds != nil {
				ascBytes := mp4a.Esds.DecConfigDescriptor.DecSpecificInfo.DecConfig
				if profile, err := player.AACProfileFromASC(ascBytes); err == nil {
					format.AACProfile = profile
				}
				asc, err := decodeASC(ascBytes)
				if err == nil {
					format.SampleRate = asc.sampleRate
					format.ChannelCount = asc.channels
				}
			}
			if format.SampleRate == 0 && mp4a != nil {
				format.SampleRate = int32(mp4a.SampleRate)
			}
			if format.ChannelCount == 0 && mp4a != nil {
				format.ChannelCount = int32(mp4a.ChannelCount)
			}
		}
	}

	totalBytes := 0
	for _, smp := range t.samples {
		totalBytes += int(smp.Size)
	}
	t.durationUs = int64(len(t.samples)) * int64(t.sampleDur) * 1_000_000 / int64(t.timeScale)
	if t.durationUs > 0 {
		t.bitrate = int32(int64(totalBytes) * 8 * 1_000_000 / t.durationUs)
	}
	format.BitRate = t.bitrate
	format.DurationUs = t.durationUs
	t.format = format

	return t, nil
}

func (s *Source) SetEvents(events *player.SourceEvents) {
	s.events = events
}

func (s *Source) Prepare() {
	if s.events == nil {
		return
	}
	if videoFormat := s.Format(false); videoFormat != nil {
		s.events.VideoSizeChanged(videoFormat)
	}
	s.events.FlagsChanged(player.SourceFlagCanPause | player.SourceFlagCanSeek)
	s.events.Prepared(nil)
}

func (s *Source) Start() {
	s.started = true
	s.paused = false
}

func (s *Source) Stop() {
	s.started = false
}

func (s *Source) Pause() {
	s.paused = true
}

func (s *Source) Resume() {
	s.paused = false
}

// SeekTo repositions both active tracks. Video snaps back to the
// preceding sync sample so decoding can restart cleanly.
func (s *Source) SeekTo(timeUs int64) error {
	for _, idx := range []int{s.activeAudio, s.activeVideo} {
		if idx < 0 {
			continue
		}
		t := s.tracks[idx]
		target := len(t.samples)
		for i := range t.samples {
			if t.timeUs(i) >= timeUs {
				target = i
				break
			}
		}
		if t.contentType == "video" {
			for target > 0 && target < len(t.samples) && !t.samples[target].IsSync() {
				target--
			}
		}
		t.cursor = target
	}
	return nil
}

func (s *Source) Duration() (int64, error) {
	var durationUs int64
	for _, t := range s.tracks {
		if t.durationUs > durationUs {
			durationUs = t.durationUs
		}
	}
	return durationUs, nil
}

func (s *Source) Format(audio bool) *player.Format {
	t := s.activeTrack(audio)
	if t == nil {
		return nil
	}
	return t.format
}

func (s *Source) FormatMeta(audio bool) *player.Format {
	return s.Format(audio)
}

func (s *Source) TrackCount() int {
	return len(s.tracks)
}

func (s *Source) TrackInfo(i int) *player.TrackInfo {
	if i < 0 || i >= len(s.tracks) {
		return nil
	}
	t := s.tracks[i]
	info := &player.TrackInfo{
		Language: t.language,
		Mime:     t.format.Mime,
	}
	switch t.contentType {
	case "video":
		info.Type = player.TrackTypeVideo
	case "audio":
		info.Type = player.TrackTypeAudio
	}
	return info
}

func (s *Source) SelectedTrack(trackType player.MediaTrackType) int32 {
	switch trackType {
	case player.TrackTypeAudio:
		return int32(s.activeAudio)
	case player.TrackTypeVideo:
		return int32(s.activeVideo)
	default:
		return -1
	}
}

// SelectTrack switches the active track of the given content type.
// The newly selected track resumes at the old track's position and a
// format discontinuity is queued so the decoder gets rebuilt.
func (s *Source) SelectTrack(i int, selected bool) error {
	if i < 0 || i >= len(s.tracks) {
		return player.ErrInvalidOperation
	}
	t := s.tracks[i]
	audio := t.contentType == "audio"
	active := &s.activeVideo
	discontinuity := player.DiscontinuityVideoFormat
	if audio {
		active = &s.activeAudio
		discontinuity = player.DiscontinuityAudioFormat
	}

	if !selected {
		if *active != i {
			return player.ErrInvalidOperation
		}
		*active = -1
		return nil
	}

	if *active == i {
		return nil
	}
	if *active >= 0 {
		old := s.tracks[*active]
		if old.cursor < len(old.samples) {
			t.cursor = 0
			resumeUs := old.timeUs(old.cursor)
			for t.cursor < len(t.samples) && t.timeUs(t.cursor) < resumeUs {
				t.cursor++
			}
		}
	}
	*active = i
	t.pendingDiscontinuity = discontinuity | player.DiscontinuityTime
	return nil
}

func (s *Source) DequeueAccessUnit(audio bool) (*player.AccessUnit, error) {
	t := s.activeTrack(audio)
	if t == nil {
		return nil, player.ErrWouldBlock
	}
	if t.pendingDiscontinuity != 0 {
		dtype := t.pendingDiscontinuity
		t.pendingDiscontinuity = 0
		accessUnit := &player.AccessUnit{Discontinuity: dtype}
		if dtype&player.DiscontinuityTime != 0 && t.cursor < len(t.samples) {
			accessUnit.ResumeAtUs = t.timeUs(t.cursor)
			accessUnit.HasResumeAt = true
		}
		return accessUnit, player.InfoDiscontinuity
	}
	if t.cursor >= len(t.samples) {
		return nil, player.ErrEndOfStream
	}
	smp := t.samples[t.cursor]
	accessUnit := &player.AccessUnit{
		Data:       smp.Data,
		TimeUs:     t.timeUs(t.cursor),
		DurationUs: int64(smp.Dur) * 1_000_000 / int64(t.timeScale),
		Mime:       t.format.Mime,
	}
	t.cursor++
	return accessUnit, nil
}

func (s *Source) FeedMoreTSData() error {
	for _, idx := range []int{s.activeAudio, s.activeVideo} {
		if idx < 0 {
			continue
		}
		if s.tracks[idx].cursor < len(s.tracks[idx].samples) {
			return nil
		}
	}
	return player.ErrEndOfStream
}

func (s *Source) IsRealTime() bool {
	return false
}

func (s *Source) SetBuffers(audio bool, buffers [][]byte) error {
	if audio {
		return player.ErrInvalidOperation
	}
	s.secureBuffers = buffers
	return nil
}

func (s *Source) activeTrack(audio bool) *track {
	idx := s.activeVideo
	if audio {
		idx = s.activeAudio
	}
	if idx < 0 {
		return nil
	}
	return s.tracks[idx]
}

// timeUs converts a sample's presentation time to microseconds.
func (t *track) timeUs(i int) int64 {
	return int64(t.samples[i].PresentationTime()) * 1_000_000 / int64(t.timeScale)
}

// ascInfo is the subset of the AudioSpecificConfig the source needs.
type ascInfo struct {
	sampleRate int32
	channels   int32
}

func decodeASC(ascBytes []byte) (*ascInfo, error) {
	asc, err := aac.DecodeAudioSpecificConfig(bytes.NewBuffer(ascBytes))
	if err != nil {
		return nil, fmt.Errorf("could not decode audio specific config: %w", err)
	}
	return &ascInfo{
		sampleRate: int32(asc.SamplingFrequency),
		channels:   int32(asc.ChannelConfiguration),
	}, nil
}
