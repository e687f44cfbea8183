package player

// MIME types understood by the coordinator.
const (
	MimeVideoAVC    = "video/avc"
	MimeVideoHEVC   = "video/hevc"
	MimeAudioAAC    = "audio/mp4a-latm"
	MimeAudioMPEG   = "audio/mpeg"
	MimeAudioOpus   = "audio/opus"
	MimeAudioVorbis = "audio/vorbis"
	MimeTimedText   = "text/3gpp-tt"
)

// Rect is a crop rectangle in the decoder's output coordinate space.
// Right and Bottom are inclusive.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Format describes one stream's configuration. A nil *Format means
// the format is not yet known. Zero fields are "unset" except where
// noted.
type Format struct {
	Mime string

	// Audio.
	ChannelCount int32
	ChannelMask  int32 // ChannelMaskUseChannelOrder derives the mask from the count
	SampleRate   int32
	BitRate      int32
	AACProfile   int32 // AAC audio object type, 0 if unknown
	DurationUs   int64

	// Video.
	Width, Height        int32
	Crop                 *Rect
	SARWidth, SARHeight  int32
	Rotation             int32
	Secure               bool
}

// DiscontinuityType is a bitset describing what changed at a
// discontinuity access unit.
type DiscontinuityType uint32

const (
	DiscontinuityTime DiscontinuityType = 1 << iota
	DiscontinuityAudioFormat
	DiscontinuityVideoFormat
)

// AccessUnit is one compressed sample dequeued from the source, or a
// discontinuity marker (Data empty, Discontinuity non-zero).
type AccessUnit struct {
	Data       []byte
	TimeUs     int64
	DurationUs int64
	Mime       string
	TrackIndex int32

	Discontinuity DiscontinuityType
	// ResumeAtUs suppresses rendering until the given media time after
	// a time discontinuity. Valid only when HasResumeAt is set.
	ResumeAtUs  int64
	HasResumeAt bool
}

// MediaTrackType classifies an inband or closed-caption track.
type MediaTrackType int32

const (
	TrackTypeUnknown MediaTrackType = iota
	TrackTypeVideo
	TrackTypeAudio
	TrackTypeTimedText
	TrackTypeSubtitle
)

// TrackInfo describes one selectable track.
type TrackInfo struct {
	Type     MediaTrackType
	Language string
	// Subtitle tracks additionally carry a MIME type and flags.
	Mime    string
	Auto    bool
	Default bool
	Forced  bool
}

// ListenerMessage is a notification code delivered to the host
// application through the driver. Values match the platform binding.
type ListenerMessage int32

const (
	MediaPlaybackComplete ListenerMessage = 2
	MediaBufferingUpdate  ListenerMessage = 3
	MediaSetVideoSize     ListenerMessage = 5
	MediaStarted          ListenerMessage = 6
	MediaTimedText        ListenerMessage = 99
	MediaError            ListenerMessage = 100
	MediaInfo             ListenerMessage = 200
	MediaSubtitleData     ListenerMessage = 201
)

// Listener ext1 codes.
const (
	MediaErrorUnknown      int32 = 1
	InfoRenderingStart     int32 = 3
	InfoBufferingStart     int32 = 701
	InfoBufferingEnd       int32 = 702
	InfoMetadataUpdate     int32 = 802
	ErrorCodeDRMNoLicense  int32 = -2001
	ErrorCodeEndOfStream   int32 = -1011
	ErrorCodeUnknown       int32 = -2147483648
)

// errorCode maps an error to the numeric code reported through the
// listener channel.
func errorCode(err error) int32 {
	switch err {
	case nil:
		return 0
	case ErrEndOfStream:
		return ErrorCodeEndOfStream
	case ErrDRMNoLicense:
		return ErrorCodeDRMNoLicense
	default:
		return ErrorCodeUnknown
	}
}
