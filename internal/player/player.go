package player

import (
	"log/slog"
	"time"
)

// Retry and polling cadences.
const (
	scanSourcesRetryDelay = 100 * time.Millisecond
	feedRetryDelay        = 10 * time.Millisecond
	pollDurationInterval  = time.Second
)

// videoLateThresholdUs is how far behind the clock video may fall
// before non-reference frames are dropped on the way to the decoder.
const videoLateThresholdUs = int64(100_000)

// Config wires a Player to its collaborator factories.
type Config struct {
	Logger *slog.Logger

	// Decoders builds audio and video decoders (required).
	Decoders DecoderFactory
	// Renderers builds the renderer at start (required).
	Renderers RendererFactory
	// CCDecoders builds the closed-caption decoder accompanying a
	// video decoder (optional).
	CCDecoders CCDecoderFactory
}

// Player is the central playback coordinator. It owns the source, the
// decoders, the renderer and the audio sink, and drives them through
// their lifecycle from a single message loop. All state below is
// mutated only on that loop.
type Player struct {
	looper *Looper
	logger *slog.Logger

	decoderFactory  DecoderFactory
	ccFactory       CCDecoderFactory
	rendererFactory RendererFactory

	driver Driver

	source      Source
	sourceFlags SourceFlags

	audioDecoder    Decoder
	videoDecoder    Decoder
	ccDecoder       CCDecoder
	audioDecoderGen int32
	videoDecoderGen int32

	renderer     Renderer
	rendererLoop *Looper

	audioSink    AudioSink
	nativeWindow NativeWindow

	offloadAudio       bool
	currentOffloadInfo *OffloadInfo

	flushingAudio FlushStatus
	flushingVideo FlushStatus

	deferredActions []deferredAction

	scanSourcesPending bool
	scanSourcesGen     int32
	pollDurationGen    int32
	timedTextGen       int32

	currentPositionUs int64
	videoLateByUs     int64

	audioEOS bool
	videoEOS bool

	skipRenderingAudioUntilUs int64
	skipRenderingVideoUntilUs int64
	timeDiscontinuityPending  bool

	numFramesTotal   int64
	numFramesDropped int64

	videoScalingMode int32
	videoIsAVC       bool
	started          bool
}

// New creates a Player and starts its message loop.
func New(cfg Config) *Player {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Player{
		looper:          NewLooper("player"),
		logger:          logger,
		decoderFactory:  cfg.Decoders,
		ccFactory:       cfg.CCDecoders,
		rendererFactory: cfg.Renderers,

		skipRenderingAudioUntilUs: -1,
		skipRenderingVideoUntilUs: -1,
	}
	p.looper.Start(p)
	return p
}

// Close stops the message loop. The player must be Reset first if a
// session is active.
func (p *Player) Close() {
	p.looper.Stop()
}

// SetDriver attaches the host binding. The driver is held weakly:
// notifications no-op once the host detaches (SetDriver(nil)).
func (p *Player) SetDriver(driver Driver) {
	p.driver = driver
}

// SetDataSource adopts a prepared-to-be-used source. Completion is
// reported via the driver.
func (p *Player) SetDataSource(source Source) {
	p.looper.Post(newMessage(kindSetDataSource).set("source", source))
}

// Prepare asks the source to prepare; completion arrives through the
// driver once the source reports it.
func (p *Player) Prepare() {
	p.looper.Post(newMessage(kindPrepare))
}

// SetVideoWindow rebinds the video output surface. The video decoder
// is shut down first, and playback resumes at the current position on
// the new surface.
func (p *Player) SetVideoWindow(window NativeWindow) {
	p.looper.Post(newMessage(kindSetVideoWindow).set("window", window))
}

// SetAudioSink records the audio output; it is opened on demand.
func (p *Player) SetAudioSink(sink AudioSink) {
	p.looper.Post(newMessage(kindSetAudioSink).set("sink", sink))
}

func (p *Player) Start() {
	p.looper.Post(newMessage(kindStart))
}

func (p *Player) Pause() {
	p.looper.Post(newMessage(kindPause))
}

func (p *Player) Resume() {
	p.looper.Post(newMessage(kindResume))
}

func (p *Player) SeekTo(seekTimeUs int64) {
	p.looper.Post(newMessage(kindSeek).set("seekTimeUs", seekTimeUs))
}

// Reset tears the whole session down: both decoders are shut down,
// the renderer and source are released, and the driver is notified
// once everything has drained.
func (p *Player) Reset() {
	p.looper.Post(newMessage(kindReset))
}

// SetVideoScalingMode records the scaling mode and applies it to the
// current window; it is re-applied whenever a new surface arrives.
func (p *Player) SetVideoScalingMode(mode int32) {
	p.looper.Post(newMessage(kindSetVideoScaling).set("mode", mode))
}

// GetTrackInfo returns descriptors for all inband and closed-caption
// tracks. It blocks the caller until the loop responds; the loop
// itself never blocks.
func (p *Player) GetTrackInfo() (*Parcel, error) {
	resp := p.looper.PostAndAwait(newMessage(kindGetTrackInfo))
	if err := resp.errVal("err"); err != nil {
		return nil, err
	}
	parcel, _ := resp.get("parcel")
	return parcel.(*Parcel), nil
}

// GetSelectedTrack returns the source's selected track index for the
// given type, or ErrInvalidOperation when no source is set.
func (p *Player) GetSelectedTrack(trackType MediaTrackType) (int32, error) {
	resp := p.looper.PostAndAwait(newMessage(kindGetSelectedTrack).set("type", trackType))
	if err := resp.errVal("err"); err != nil {
		return -1, err
	}
	index, _ := resp.int32Val("index")
	return index, nil
}

// SelectTrack selects or deselects a track by its combined
// (inband + closed-caption) index.
func (p *Player) SelectTrack(trackIndex int, selected bool) error {
	resp := p.looper.PostAndAwait(newMessage(kindSelectTrack).
		set("trackIndex", trackIndex).
		set("select", selected))
	return resp.errVal("err")
}

// HandleMessage dispatches one message on the loop thread.
func (p *Player) HandleMessage(msg *Message) {
	switch msg.kind {
	case kindSetDataSource:
		p.onSetDataSource(msg)
	case kindPrepare:
		if p.source != nil {
			p.source.Prepare()
		}
	case kindSetVideoWindow:
		p.onSetVideoWindow(msg)
	case kindSetAudioSink:
		sink, _ := msg.get("sink")
		p.audioSink, _ = sink.(AudioSink)
	case kindStart:
		p.onStart()
	case kindPause:
		if p.renderer == nil {
			p.logger.Error("pause without renderer")
			return
		}
		p.source.Pause()
		p.renderer.Pause()
	case kindResume:
		if p.renderer == nil {
			p.logger.Error("resume without renderer")
			return
		}
		p.source.Resume()
		p.renderer.Resume()
	case kindSeek:
		p.onSeek(msg)
	case kindReset:
		p.deferredActions = append(p.deferredActions,
			shutdownDecoderAction(true, true),
			simpleAction((*Player).performReset))
		p.processDeferredActions()
	case kindScanSources:
		p.onScanSources(msg)
	case kindAudioNotify, kindVideoNotify:
		p.onDecoderNotify(msg)
	case kindRendererNotify:
		p.onRendererNotify(msg)
	case kindSourceNotify:
		p.onSourceNotify(msg)
	case kindClosedCaptionNotify:
		p.onClosedCaptionNotify(msg)
	case kindPollDuration:
		p.onPollDuration(msg)
	case kindGetTrackInfo:
		p.onGetTrackInfo(msg)
	case kindGetSelectedTrack:
		p.onGetSelectedTrack(msg)
	case kindSelectTrack:
		p.onSelectTrack(msg)
	case kindSetVideoScaling:
		p.onSetVideoScaling(msg)
	case kindSync:
		msg.postReply(newMessage(kindSync))
	default:
		p.logger.Error("unhandled message", "kind", msg.kind)
	}
}

func (p *Player) onSetDataSource(msg *Message) {
	var err error
	obj, _ := msg.get("source")
	source, _ := obj.(Source)
	switch {
	case p.source != nil:
		err = ErrAlreadyConnected
	case source == nil:
		err = ErrUnknown
	default:
		p.source = source
		p.source.SetEvents(&SourceEvents{looper: p.looper})
	}
	if driver := p.promoteDriver(); driver != nil {
		driver.NotifySetDataSourceCompleted(err)
	}
}

func (p *Player) onSetVideoWindow(msg *Message) {
	obj, _ := msg.get("window")
	window, _ := obj.(NativeWindow)

	p.deferredActions = append(p.deferredActions,
		shutdownDecoderAction(false, true),
		setSurfaceAction(window))

	if window != nil {
		// With a new surface, resume where we are and bring the video
		// decoder back.
		p.deferredActions = append(p.deferredActions,
			seekAction(p.currentPositionUs),
			simpleAction((*Player).performScanSources))
	}
	p.processDeferredActions()
}

func (p *Player) onStart() {
	if p.source == nil {
		p.logger.Error("start without a data source")
		return
	}
	p.videoIsAVC = false
	p.offloadAudio = false
	p.audioEOS = false
	p.videoEOS = false
	p.skipRenderingAudioUntilUs = -1
	p.skipRenderingVideoUntilUs = -1
	p.videoLateByUs = 0
	p.numFramesTotal = 0
	p.numFramesDropped = 0
	p.started = true

	// Secure playback needs its decoders before the source starts so
	// encrypted-path buffers can be handed over.
	if p.sourceFlags&SourceFlagSecure != 0 {
		if p.nativeWindow != nil {
			if err := p.instantiateDecoder(false); err != nil && err != ErrWouldBlock {
				p.logger.Error("instantiating secure video decoder failed", "error", err)
			}
		}
		if p.audioSink != nil {
			if err := p.instantiateDecoder(true); err != nil && err != ErrWouldBlock {
				p.logger.Error("instantiating secure audio decoder failed", "error", err)
			}
		}
	}

	p.source.Start()

	var flags RendererFlags
	if p.source.IsRealTime() {
		flags |= RendererFlagRealTime
	}

	audioMeta := p.source.FormatMeta(true)
	streamType := AudioStreamMusic
	if p.audioSink != nil {
		streamType = p.audioSink.StreamType()
	}
	videoFormat := p.source.Format(false)

	p.offloadAudio = canOffloadStream(audioMeta, videoFormat != nil, true, streamType)
	if p.offloadAudio {
		flags |= RendererFlagOffloadAudio
	}

	p.rendererLoop = NewLooper("renderer")
	p.renderer = p.rendererFactory(
		p.audioSink,
		&RendererEvents{looper: p.looper},
		p.rendererLoop,
		flags)

	p.postScanSources()
}

func (p *Player) onSeek(msg *Message) {
	seekTimeUs, _ := msg.int64Val("seekTimeUs")
	p.logger.Debug("seek requested", "seekTimeUs", seekTimeUs)

	p.deferredActions = append(p.deferredActions,
		simpleAction((*Player).performDecoderFlush),
		seekAction(seekTimeUs))
	p.processDeferredActions()
}

func (p *Player) onPollDuration(msg *Message) {
	generation, _ := msg.int32Val("generation")
	if generation != p.pollDurationGen {
		// Stale.
		return
	}
	if durationUs, err := p.sourceDuration(); err == nil {
		if driver := p.promoteDriver(); driver != nil {
			driver.NotifyDuration(durationUs)
		}
	}
	p.looper.PostDelayed(msg, pollDurationInterval)
}

func (p *Player) onSetVideoScaling(msg *Message) {
	mode, _ := msg.int32Val("mode")
	p.videoScalingMode = mode
	if p.nativeWindow != nil {
		if err := p.nativeWindow.SetScalingMode(mode); err != nil {
			p.logger.Error("setting video scaling mode failed", "mode", mode, "error", err)
		}
	}
}

func (p *Player) getDecoder(audio bool) Decoder {
	if audio {
		return p.audioDecoder
	}
	return p.videoDecoder
}

func (p *Player) setDecoder(audio bool, d Decoder) {
	if audio {
		p.audioDecoder = d
	} else {
		p.videoDecoder = d
	}
}

func streamName(audio bool) string {
	if audio {
		return "audio"
	}
	return "video"
}
