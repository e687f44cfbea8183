package player

// actionKind tags a deferred action.
type actionKind int

const (
	actionSeek actionKind = iota
	actionSetSurface
	actionShutdownDecoder
	actionSimple
	actionPostReply
)

// deferredAction is one pending long-running transition. Actions run
// in insertion order, but only while neither stream is mid-flush.
type deferredAction struct {
	kind actionKind

	seekTimeUs int64
	window     NativeWindow
	audio      bool
	video      bool
	fn         func(*Player)
	reply      ReplyChan
}

func seekAction(seekTimeUs int64) deferredAction {
	return deferredAction{kind: actionSeek, seekTimeUs: seekTimeUs}
}

func setSurfaceAction(window NativeWindow) deferredAction {
	return deferredAction{kind: actionSetSurface, window: window}
}

func shutdownDecoderAction(audio, video bool) deferredAction {
	return deferredAction{kind: actionShutdownDecoder, audio: audio, video: video}
}

func simpleAction(fn func(*Player)) deferredAction {
	return deferredAction{kind: actionSimple, fn: fn}
}

func postReplyAction(reply ReplyChan) deferredAction {
	return deferredAction{kind: actionPostReply, reply: reply}
}

// processDeferredActions drains the queue while both flush statuses
// are stable. An action that starts a flush leaves the rest of the
// queue to be resumed by finishFlushIfPossible.
func (p *Player) processDeferredActions() {
	for len(p.deferredActions) > 0 {
		if p.flushingAudio != FlushNone || p.flushingVideo != FlushNone {
			p.logger.Debug("postponing deferred actions",
				"flushingAudio", p.flushingAudio,
				"flushingVideo", p.flushingVideo)
			return
		}
		action := p.deferredActions[0]
		p.deferredActions = p.deferredActions[1:]

		switch action.kind {
		case actionSeek:
			p.performSeek(action.seekTimeUs)
		case actionSetSurface:
			p.performSetSurface(action.window)
		case actionShutdownDecoder:
			p.performDecoderShutdown(action.audio, action.video)
		case actionSimple:
			action.fn(p)
		case actionPostReply:
			postTo(action.reply, Reply{})
		}
	}
}

func (p *Player) performSeek(seekTimeUs int64) {
	p.logger.Debug("perform seek", "seekTimeUs", seekTimeUs)

	if err := p.source.SeekTo(seekTimeUs); err != nil {
		p.logger.Error("source seek failed", "seekTimeUs", seekTimeUs, "error", err)
	}
	p.timedTextGen++

	if driver := p.promoteDriver(); driver != nil {
		driver.NotifyPosition(seekTimeUs)
		driver.NotifySeekComplete()
	}
}

// performDecoderFlush flushes both decoders without shutting them
// down, as a seek does.
func (p *Player) performDecoderFlush() {
	if p.audioDecoder == nil && p.videoDecoder == nil {
		return
	}

	p.timeDiscontinuityPending = true

	if p.audioDecoder != nil {
		p.flushDecoder(true, false, nil)
	}
	if p.videoDecoder != nil {
		p.flushDecoder(false, false, nil)
	}
}

// performDecoderShutdown flushes the requested decoders with a
// shutdown to follow.
func (p *Player) performDecoderShutdown(audio, video bool) {
	if (!audio || p.audioDecoder == nil) && (!video || p.videoDecoder == nil) {
		return
	}

	p.timeDiscontinuityPending = true

	if audio && p.audioDecoder != nil {
		p.flushDecoder(true, true, nil)
	}
	if video && p.videoDecoder != nil {
		p.flushDecoder(false, true, nil)
	}
}

// performReset releases everything after both decoders have drained.
func (p *Player) performReset() {
	if p.audioDecoder != nil || p.videoDecoder != nil {
		p.logger.Error("reset with decoders still present",
			"haveAudio", p.audioDecoder != nil,
			"haveVideo", p.videoDecoder != nil)
	}

	p.cancelPollDuration()

	p.scanSourcesGen++
	p.scanSourcesPending = false

	if p.rendererLoop != nil {
		p.rendererLoop.Stop()
		p.rendererLoop = nil
	}
	p.renderer = nil
	p.ccDecoder = nil

	if p.source != nil {
		p.source.Stop()
		p.source = nil
	}

	if driver := p.promoteDriver(); driver != nil {
		driver.NotifyResetComplete()
	}

	p.started = false
}

// performScanSources restarts source scanning if any enabled decoder
// is missing.
func (p *Player) performScanSources() {
	if !p.started {
		return
	}
	if p.audioDecoder == nil || p.videoDecoder == nil {
		p.postScanSources()
	}
}

func (p *Player) performSetSurface(window NativeWindow) {
	p.nativeWindow = window

	if window != nil {
		if err := window.SetScalingMode(p.videoScalingMode); err != nil {
			p.logger.Error("re-applying video scaling mode failed", "error", err)
		}
	}

	if driver := p.promoteDriver(); driver != nil {
		driver.NotifySetSurfaceComplete()
	}
}

// queueDecoderShutdown services a source's request to tear down
// decoders: shutdown, rescan, then answer the source.
func (p *Player) queueDecoderShutdown(audio, video bool, reply ReplyChan) {
	p.logger.Info("queueing decoder shutdown", "audio", audio, "video", video)

	p.deferredActions = append(p.deferredActions,
		shutdownDecoderAction(audio, video),
		simpleAction((*Player).performScanSources),
		postReplyAction(reply))
	p.processDeferredActions()
}
