package player

// RendererFlags configure a renderer at construction.
type RendererFlags uint32

const (
	RendererFlagRealTime RendererFlags = 1 << iota
	RendererFlagOffloadAudio
)

// Renderer paces decoded buffers out to the audio sink and the video
// surface, maintaining the A/V clock. It runs on its own loop,
// created by the coordinator at start and torn down at reset.
type Renderer interface {
	// QueueBuffer schedules a decoded buffer; reply is answered when
	// the buffer has been rendered or dropped.
	QueueBuffer(audio bool, buffer *AccessUnit, reply ReplyChan)
	// QueueEOS marks the end of one stream. err is ErrEndOfStream for
	// a normal end, or the decoder's failure.
	QueueEOS(audio bool, err error)
	Flush(audio bool)
	Pause()
	Resume()

	// SignalTimeDiscontinuity resets the A/V clock after a flush.
	SignalTimeDiscontinuity()
	SignalAudioSinkChanged()
	SignalDisableOffloadAudio()
}

// SinkCallbackProvider is optionally implemented by renderers that
// pull offloaded audio through a sink callback.
type SinkCallbackProvider interface {
	AudioSinkCallback() SinkCallback
}

// RendererFactory builds the renderer at start. loop is owned by the
// coordinator and stopped at reset; implementations may register
// themselves on it.
type RendererFactory func(sink AudioSink, events *RendererEvents, loop *Looper, flags RendererFlags) Renderer

// Renderer notification codes.
type rendererWhat int32

const (
	rendererEOS rendererWhat = iota
	rendererPosition
	rendererFlushComplete
	rendererVideoRenderingStart
	rendererMediaRenderingStart
	rendererAudioOffloadTearDown
)

// RendererEvents posts renderer notifications to the coordinator
// loop.
type RendererEvents struct {
	looper *Looper
}

func (e *RendererEvents) post(what rendererWhat) *Message {
	return newMessage(kindRendererNotify).set("what", what)
}

func (e *RendererEvents) EOS(audio bool, finalResult error) {
	e.looper.Post(e.post(rendererEOS).
		set("audio", audio).
		set("finalResult", finalResult))
}

func (e *RendererEvents) Position(positionUs, videoLateByUs int64) {
	e.looper.Post(e.post(rendererPosition).
		set("positionUs", positionUs).
		set("videoLateByUs", videoLateByUs))
}

func (e *RendererEvents) FlushComplete(audio bool) {
	e.looper.Post(e.post(rendererFlushComplete).set("audio", audio))
}

func (e *RendererEvents) VideoRenderingStart() {
	e.looper.Post(e.post(rendererVideoRenderingStart))
}

func (e *RendererEvents) MediaRenderingStart() {
	e.looper.Post(e.post(rendererMediaRenderingStart))
}

// AudioOffloadTearDown reports that the hardware offload path died;
// the coordinator falls back to PCM and re-instantiates the audio
// decoder at the given position.
func (e *RendererEvents) AudioOffloadTearDown(positionUs int64) {
	e.looper.Post(e.post(rendererAudioOffloadTearDown).set("positionUs", positionUs))
}
