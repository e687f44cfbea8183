package player

// AudioStreamType selects the output routing/volume group.
type AudioStreamType int32

const (
	AudioStreamMusic AudioStreamType = iota
	AudioStreamAlarm
	AudioStreamVoice
)

// AudioFormat identifies the encoding delivered to the sink.
type AudioFormat int32

const (
	AudioFormatInvalid AudioFormat = iota
	AudioFormatPCM16
	AudioFormatMP3
	AudioFormatAAC
	AudioFormatAACLC
	AudioFormatAACHEv1
	AudioFormatAACHEv2
	AudioFormatVorbis
	AudioFormatOpus
)

// AudioOutputFlags modify how the sink output is opened.
type AudioOutputFlags uint32

const (
	AudioOutputFlagNone       AudioOutputFlags = 0
	AudioOutputFlagDeepBuffer AudioOutputFlags = 1 << iota
	AudioOutputFlagCompressOffload
)

// ChannelMaskUseChannelOrder tells the sink to derive the channel
// mask from the channel count.
const ChannelMaskUseChannelOrder int32 = 0

// OffloadInfo captures the parameters negotiated for a compressed
// offload session. It is comparable; the coordinator reopens the sink
// only when the info actually changes.
type OffloadInfo struct {
	SampleRate  int32
	ChannelMask int32
	Format      AudioFormat
	StreamType  AudioStreamType
	BitRate     int32
	DurationUs  int64
	HasVideo    bool
	IsStreaming bool
}

// SinkCallback pulls audio data into the sink's buffer; it returns
// the number of bytes written.
type SinkCallback func(buffer []byte) int

// SinkConfig carries the parameters of an AudioSink.Open call.
type SinkConfig struct {
	SampleRate   int32
	ChannelCount int32
	ChannelMask  int32
	Format       AudioFormat
	BufferCount  int
	// Callback, when non-nil, switches the sink to pull mode.
	Callback SinkCallback
	Flags    AudioOutputFlags
	// Offload carries the offload parameters for compressed opens.
	Offload *OffloadInfo
}

// AudioSink is the audio output owned exclusively by the coordinator.
// It is closed and reopened on offload/non-offload transitions.
type AudioSink interface {
	Open(cfg SinkConfig) error
	Close()
	Start() error
	StreamType() AudioStreamType
}

// MetadataSink is optionally implemented by sinks whose hardware
// decoder consumes stream metadata.
type MetadataSink interface {
	SetMetadata(meta *Format) error
}

// AudioSinkMinDeepBufferDurationUs is the minimum content duration
// for requesting a deep output buffer on video-less playback.
const AudioSinkMinDeepBufferDurationUs = int64(5_000_000)

const pcmSinkBufferCount = 8

// openAudioSink opens or reopens the audio sink for the given format.
// With offloadOnly, the sink is only (re)opened when offload is
// active; a PCM fallback open is left to a later non-offload-only
// call. Runs on the coordinator loop.
func (p *Player) openAudioSink(format *Format, offloadOnly bool) {
	p.logger.Debug("open audio sink", "offloadOnly", offloadOnly, "offloadAudio", p.offloadAudio)
	if format == nil {
		return
	}
	audioSinkChanged := false

	numChannels := format.ChannelCount
	channelMask := format.ChannelMask
	if channelMask == 0 {
		channelMask = ChannelMaskUseChannelOrder
	}
	sampleRate := format.SampleRate

	var flags AudioOutputFlags
	if durationUs, err := p.sourceDuration(); err == nil &&
		p.videoDecoder == nil &&
		durationUs > AudioSinkMinDeepBufferDurationUs {
		flags = AudioOutputFlagDeepBuffer
	} else {
		flags = AudioOutputFlagNone
	}

	if p.offloadAudio {
		audioFormat, err := mapMimeToAudioFormat(format.Mime)
		if err != nil {
			p.logger.Error("cannot map mime to an audio format", "mime", format.Mime)
			p.offloadAudio = false
		} else {
			if audioFormat == AudioFormatAAC && format.AACProfile != 0 {
				audioFormat = refineAACFormat(format.AACProfile)
			}

			offloadInfo := OffloadInfo{
				SampleRate:  sampleRate,
				ChannelMask: channelMask,
				Format:      audioFormat,
				StreamType:  AudioStreamMusic,
				BitRate:     format.BitRate,
				DurationUs:  format.DurationUs,
				HasVideo:    p.videoDecoder != nil,
				IsStreaming: true,
			}
			if format.DurationUs == 0 {
				offloadInfo.DurationUs = -1
			}

			if p.currentOffloadInfo != nil && *p.currentOffloadInfo == offloadInfo {
				// No change from the previous configuration.
				return
			}

			flags |= AudioOutputFlagCompressOffload
			flags &^= AudioOutputFlagDeepBuffer
			audioSinkChanged = true
			p.audioSink.Close()

			var cb SinkCallback
			if provider, ok := p.renderer.(SinkCallbackProvider); ok {
				cb = provider.AudioSinkCallback()
			}
			err = p.audioSink.Open(SinkConfig{
				SampleRate:   sampleRate,
				ChannelCount: numChannels,
				ChannelMask:  channelMask,
				Format:       audioFormat,
				BufferCount:  pcmSinkBufferCount,
				Callback:     cb,
				Flags:        flags,
				Offload:      &offloadInfo,
			})
			if err == nil {
				// Offloaded playback bypasses the mixer; pass stream
				// metadata down to the hardware decoder.
				if ms, ok := p.audioSink.(MetadataSink); ok {
					if meta := p.source.FormatMeta(true); meta != nil {
						if merr := ms.SetMetadata(meta); merr != nil {
							p.logger.Error("setting sink metadata failed", "error", merr)
						}
					}
				}
				p.currentOffloadInfo = &offloadInfo
				err = p.audioSink.Start()
				if err == nil {
					p.logger.Debug("audio sink opened in offload mode")
				}
			}
			if err != nil {
				p.audioSink.Close()
				p.renderer.SignalDisableOffloadAudio()
				p.offloadAudio = false
				p.currentOffloadInfo = nil
				p.logger.Info("audio offload open failed, falling back to PCM", "error", err)
			}
		}
	}
	if !offloadOnly && !p.offloadAudio {
		flags &^= AudioOutputFlagCompressOffload
		audioSinkChanged = true
		p.audioSink.Close()
		p.currentOffloadInfo = nil
		err := p.audioSink.Open(SinkConfig{
			SampleRate:   sampleRate,
			ChannelCount: numChannels,
			ChannelMask:  channelMask,
			Format:       AudioFormatPCM16,
			BufferCount:  pcmSinkBufferCount,
			Flags:        flags,
		})
		if err != nil {
			p.logger.Error("opening audio sink in PCM mode failed", "error", err)
		} else if err := p.audioSink.Start(); err != nil {
			p.logger.Error("starting audio sink failed", "error", err)
		}
	}
	if audioSinkChanged && p.renderer != nil {
		p.renderer.SignalAudioSinkChanged()
	}
}

func (p *Player) closeAudioSink() {
	if p.audioSink != nil {
		p.audioSink.Close()
	}
	p.currentOffloadInfo = nil
}

// sourceDuration is a nil-tolerant wrapper around Source.Duration.
func (p *Player) sourceDuration() (int64, error) {
	if p.source == nil {
		return 0, ErrInvalidOperation
	}
	return p.source.Duration()
}
