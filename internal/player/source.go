package player

// SourceFlags is a bitset of source capabilities and requirements.
type SourceFlags uint32

const (
	// SourceFlagSecure requires encrypted-path input buffers.
	SourceFlagSecure SourceFlags = 1 << iota
	// SourceFlagDynamicDuration marks sources whose duration grows
	// while playing; the coordinator polls it periodically.
	SourceFlagDynamicDuration
	SourceFlagRealTime
	SourceFlagCanPause
	SourceFlagCanSeek
)

// Source supplies demuxed access units and track metadata to the
// coordinator. All methods are invoked on the coordinator loop;
// asynchronous results are delivered through the SourceEvents handed
// to SetEvents.
type Source interface {
	// SetEvents installs the notification channel back to the
	// coordinator. Called once, when the source is adopted.
	SetEvents(events *SourceEvents)

	// Prepare starts asynchronous preparation; completion arrives via
	// SourceEvents.Prepared.
	Prepare()
	Start()
	Stop()
	Pause()
	Resume()

	SeekTo(timeUs int64) error
	Duration() (int64, error)

	// Format returns the current format for the audio or video
	// stream, or nil if it is not yet known.
	Format(audio bool) *Format
	// FormatMeta returns container-level metadata for the stream,
	// used for the offload decision and sink metadata.
	FormatMeta(audio bool) *Format

	TrackCount() int
	TrackInfo(i int) *TrackInfo
	SelectedTrack(trackType MediaTrackType) int32
	SelectTrack(i int, selected bool) error

	// DequeueAccessUnit returns the next access unit for the stream.
	// It returns ErrWouldBlock when no data is buffered,
	// InfoDiscontinuity together with a discontinuity access unit, or
	// ErrEndOfStream when the stream is drained.
	DequeueAccessUnit(audio bool) (*AccessUnit, error)

	// FeedMoreTSData pulls more data into the source's internal
	// buffers. ErrEndOfStream means the input is exhausted.
	FeedMoreTSData() error

	IsRealTime() bool

	// SetBuffers hands decoder-owned input buffers to the source for
	// secure (encrypted-path) operation.
	SetBuffers(audio bool, buffers [][]byte) error
}

// Source notification codes.
type sourceWhat int32

const (
	sourcePrepared sourceWhat = iota
	sourceFlagsChanged
	sourceVideoSizeChanged
	sourceBufferingUpdate
	sourceBufferingStart
	sourceBufferingEnd
	sourceSubtitleData
	sourceTimedTextData
	sourceQueueDecoderShutdown
	sourceDrmNoLicense
)

// SourceEvents posts source notifications to the coordinator loop.
// The zero value is unusable; the coordinator constructs one when a
// source is adopted.
type SourceEvents struct {
	looper *Looper
}

func (e *SourceEvents) post(what sourceWhat) *Message {
	return newMessage(kindSourceNotify).set("what", what)
}

func (e *SourceEvents) Prepared(err error) {
	e.looper.Post(e.post(sourcePrepared).set("err", err))
}

func (e *SourceEvents) FlagsChanged(flags SourceFlags) {
	e.looper.Post(e.post(sourceFlagsChanged).set("flags", flags))
}

func (e *SourceEvents) VideoSizeChanged(format *Format) {
	e.looper.Post(e.post(sourceVideoSizeChanged).set("format", format))
}

func (e *SourceEvents) BufferingUpdate(percentage int32) {
	e.looper.Post(e.post(sourceBufferingUpdate).set("percentage", percentage))
}

func (e *SourceEvents) BufferingStart() {
	e.looper.Post(e.post(sourceBufferingStart))
}

func (e *SourceEvents) BufferingEnd() {
	e.looper.Post(e.post(sourceBufferingEnd))
}

func (e *SourceEvents) SubtitleData(buffer *AccessUnit) {
	e.looper.Post(e.post(sourceSubtitleData).set("buffer", buffer))
}

func (e *SourceEvents) TimedTextData(buffer *AccessUnit) {
	e.looper.Post(e.post(sourceTimedTextData).set("buffer", buffer))
}

// QueueDecoderShutdown asks the coordinator to shut down the named
// decoders; reply is answered after the shutdown has completed and
// the follow-up source scan has been scheduled.
func (e *SourceEvents) QueueDecoderShutdown(audio, video bool, reply ReplyChan) {
	e.looper.Post(e.post(sourceQueueDecoderShutdown).
		set("audio", audio).
		set("video", video).
		set("reply", reply))
}

func (e *SourceEvents) DrmNoLicense() {
	e.looper.Post(e.post(sourceDrmNoLicense))
}
