package player

// FlushStatus tracks one stream's progress through a flush or
// shutdown transition.
type FlushStatus int

const (
	FlushNone FlushStatus = iota
	FlushingDecoder
	FlushingDecoderShutdown
	Flushed
	ShuttingDownDecoder
	ShutDown
)

func (s FlushStatus) String() string {
	switch s {
	case FlushNone:
		return "none"
	case FlushingDecoder:
		return "flushing"
	case FlushingDecoderShutdown:
		return "flushing-shutdown"
	case Flushed:
		return "flushed"
	case ShuttingDownDecoder:
		return "shutting-down"
	case ShutDown:
		return "shut-down"
	default:
		return "invalid"
	}
}

// isFlushingState reports whether a FlushCompleted notification is
// legal in this state and whether a shutdown must follow.
func isFlushingState(s FlushStatus) (flushing, needShutdown bool) {
	switch s {
	case FlushingDecoder:
		return true, false
	case FlushingDecoderShutdown:
		return true, true
	default:
		return false, false
	}
}

// flushStatus returns a pointer to the stream's status field.
func (p *Player) flushStatus(audio bool) *FlushStatus {
	if audio {
		return &p.flushingAudio
	}
	return &p.flushingVideo
}

// flushDecoder starts a flush on one stream, optionally followed by a
// decoder shutdown. newFormat, if non-nil, applies when decoding
// resumes.
func (p *Player) flushDecoder(audio bool, needShutdown bool, newFormat *Format) {
	decoder := p.getDecoder(audio)
	if decoder == nil {
		p.logger.Info("flush without decoder present", "stream", streamName(audio))
		return
	}

	// Don't scan for new tracks until the flush has drained.
	p.scanSourcesGen++
	p.scanSourcesPending = false

	decoder.SignalFlush(newFormat)
	p.renderer.Flush(audio)

	newStatus := FlushingDecoder
	if needShutdown {
		newStatus = FlushingDecoderShutdown
	}
	status := p.flushStatus(audio)
	if *status != FlushNone {
		p.logger.Error("flush requested in unexpected state",
			"stream", streamName(audio), "status", *status)
	}
	*status = newStatus
}

// updateDecoderFormatWithoutFlush applies a seamless format change.
func (p *Player) updateDecoderFormatWithoutFlush(audio bool, format *Format) {
	decoder := p.getDecoder(audio)
	if decoder == nil {
		p.logger.Info("format update without decoder present", "stream", streamName(audio))
		return
	}
	decoder.SignalUpdateFormat(format)
}

// finishFlushIfPossible completes an in-flight transition once both
// streams have reached a stable status. Audio and video resume
// together so A/V sync survives the flush.
func (p *Player) finishFlushIfPossible() {
	if p.flushingAudio != FlushNone && p.flushingAudio != Flushed && p.flushingAudio != ShutDown {
		return
	}
	if p.flushingVideo != FlushNone && p.flushingVideo != Flushed && p.flushingVideo != ShutDown {
		return
	}

	p.logger.Debug("both streams flushed")

	if p.timeDiscontinuityPending {
		p.renderer.SignalTimeDiscontinuity()
		p.timeDiscontinuityPending = false
	}

	if p.audioDecoder != nil && p.flushingAudio == Flushed {
		p.audioDecoder.SignalResume()
	}
	if p.videoDecoder != nil && p.flushingVideo == Flushed {
		p.videoDecoder.SignalResume()
	}

	p.flushingAudio = FlushNone
	p.flushingVideo = FlushNone

	p.processDeferredActions()
}
