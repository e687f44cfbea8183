package player

// Decoder wraps one codec instance. Implementations run their own
// threads and report back through the DecoderEvents they were created
// with; every notification carries the generation stamped into those
// events so the coordinator can discard callbacks from torn-down
// instances.
type Decoder interface {
	Init()
	Configure(format *Format)

	// SignalFlush asks the decoder to return all in-flight buffers.
	// newFormat, if non-nil, applies once decoding resumes.
	SignalFlush(newFormat *Format)
	// SignalResume restarts decoding after a completed flush.
	SignalResume()
	InitiateShutdown()

	// SignalUpdateFormat applies a seamless format change without a
	// flush.
	SignalUpdateFormat(format *Format)
	SupportsSeamlessFormatChange(format *Format) bool

	// InputBuffers exposes the decoder's input buffers so a secure
	// source can fill them in place.
	InputBuffers() ([][]byte, error)
}

// DecoderConfig tells a factory what to build.
type DecoderConfig struct {
	Audio bool
	// PassThrough selects the offload pass-through decoder that
	// forwards compressed audio to the sink.
	PassThrough bool
	// Window is the output surface for video decoders.
	Window NativeWindow
}

// DecoderFactory builds decoders. The coordinator owns the returned
// instance until its shutdown completes.
type DecoderFactory func(events *DecoderEvents, cfg DecoderConfig) Decoder

// Decoder notification codes.
type decoderWhat int32

const (
	decoderFillThisBuffer decoderWhat = iota
	decoderDrainThisBuffer
	decoderOutputFormatChanged
	decoderFlushCompleted
	decoderShutdownCompleted
	decoderEOS
	decoderError
)

// DecoderEvents posts decoder notifications to the coordinator loop.
// The generation is fixed at decoder instantiation; notifications
// from superseded decoders are answered with InfoDiscontinuity (when
// they carry a reply channel) or dropped.
type DecoderEvents struct {
	looper     *Looper
	kind       Kind // kindAudioNotify or kindVideoNotify
	generation int32
}

// Generation returns the generation stamped into every notification.
func (e *DecoderEvents) Generation() int32 {
	return e.generation
}

func (e *DecoderEvents) post(what decoderWhat) *Message {
	return newMessage(e.kind).
		set("what", what).
		set("generation", e.generation)
}

// FillThisBuffer requests input; the coordinator answers on reply
// with an access unit or an error.
func (e *DecoderEvents) FillThisBuffer(reply ReplyChan) {
	e.looper.Post(e.post(decoderFillThisBuffer).set("reply", reply))
}

// DrainThisBuffer offers a decoded buffer for rendering; reply is
// answered when the buffer has been consumed or discarded.
func (e *DecoderEvents) DrainThisBuffer(buffer *AccessUnit, reply ReplyChan) {
	e.looper.Post(e.post(decoderDrainThisBuffer).
		set("buffer", buffer).
		set("reply", reply))
}

func (e *DecoderEvents) OutputFormatChanged(format *Format) {
	e.looper.Post(e.post(decoderOutputFormatChanged).set("format", format))
}

func (e *DecoderEvents) FlushCompleted() {
	e.looper.Post(e.post(decoderFlushCompleted))
}

func (e *DecoderEvents) ShutdownCompleted() {
	e.looper.Post(e.post(decoderShutdownCompleted))
}

func (e *DecoderEvents) EOS(err error) {
	e.looper.Post(e.post(decoderEOS).set("err", err))
}

func (e *DecoderEvents) Error(err error) {
	e.looper.Post(e.post(decoderError).set("err", err))
}

// CCDecoder extracts closed captions from video access units and
// renders the selected track.
type CCDecoder interface {
	Decode(accessUnit *AccessUnit)
	Display(mediaTimeUs int64)
	IsSelected() bool
	TrackCount() int
	TrackInfo(i int) *TrackInfo
	SelectTrack(i int, selected bool) error
}

// CCDecoderFactory builds the closed-caption decoder that accompanies
// a video decoder.
type CCDecoderFactory func(events *CCDecoderEvents) CCDecoder

type ccWhat int32

const (
	ccClosedCaptionData ccWhat = iota
	ccTrackAdded
)

// CCDecoderEvents posts closed-caption notifications to the
// coordinator loop.
type CCDecoderEvents struct {
	looper *Looper
}

func (e *CCDecoderEvents) ClosedCaptionData(buffer *AccessUnit) {
	e.looper.Post(newMessage(kindClosedCaptionNotify).
		set("what", ccClosedCaptionData).
		set("buffer", buffer))
}

func (e *CCDecoderEvents) TrackAdded() {
	e.looper.Post(newMessage(kindClosedCaptionNotify).set("what", ccTrackAdded))
}

// NativeWindow is the video output surface handle. Allocation is the
// host's concern; the coordinator only rebinds it and applies the
// scaling mode.
type NativeWindow interface {
	SetScalingMode(mode int32) error
}
