package player

// onDecoderNotify handles one decoder callback. Notifications from a
// superseded decoder generation never mutate coordinator state; if
// they carry a reply channel they are answered with InfoDiscontinuity
// so the old decoder can wind down.
func (p *Player) onDecoderNotify(msg *Message) {
	audio := msg.kind == kindAudioNotify

	currentGen := p.videoDecoderGen
	if audio {
		currentGen = p.audioDecoderGen
	}
	generation, ok := msg.int32Val("generation")
	if !ok {
		p.logger.Error("decoder notification without generation", "stream", streamName(audio))
		return
	}
	if generation != currentGen {
		p.logger.Debug("message from old decoder",
			"stream", streamName(audio),
			"generation", generation,
			"current", currentGen)
		if reply, ok := msg.replyChanVal("reply"); ok {
			postTo(reply, Reply{Err: InfoDiscontinuity})
		}
		return
	}

	what, _ := msg.get("what")
	switch what.(decoderWhat) {
	case decoderFillThisBuffer:
		err := p.feedDecoderInputData(audio, msg)
		if err == ErrWouldBlock {
			if p.source.FeedMoreTSData() == nil {
				p.looper.PostDelayed(msg, feedRetryDelay)
			}
		}

	case decoderEOS:
		err := msg.errVal("err")
		if err == ErrEndOfStream {
			p.logger.Debug("decoder EOS", "stream", streamName(audio))
		} else {
			p.logger.Debug("decoder EOS with error", "stream", streamName(audio), "error", err)
		}
		p.renderer.QueueEOS(audio, err)

	case decoderFlushCompleted:
		status := p.flushStatus(audio)
		flushing, needShutdown := isFlushingState(*status)
		if !flushing {
			p.logger.Error("flush completed in unexpected state",
				"stream", streamName(audio), "status", *status)
			return
		}
		*status = Flushed
		if !audio {
			p.videoLateByUs = 0
		}

		p.logger.Debug("decoder flush completed", "stream", streamName(audio))

		if needShutdown {
			p.logger.Debug("initiating decoder shutdown", "stream", streamName(audio))
			p.getDecoder(audio).InitiateShutdown()
			*status = ShuttingDownDecoder
		}
		p.finishFlushIfPossible()

	case decoderOutputFormatChanged:
		format := msg.formatVal("format")
		if audio {
			p.openAudioSink(format, false)
		} else {
			p.updateVideoSize(p.source.Format(false), format)
		}

	case decoderShutdownCompleted:
		p.logger.Debug("decoder shutdown completed", "stream", streamName(audio))
		p.setDecoder(audio, nil)
		status := p.flushStatus(audio)
		if *status != ShuttingDownDecoder {
			p.logger.Error("shutdown completed in unexpected state",
				"stream", streamName(audio), "status", *status)
		}
		*status = ShutDown
		p.finishFlushIfPossible()

	case decoderError:
		err := msg.errVal("err")
		if err == nil {
			err = ErrUnknown
		}
		p.logger.Error("decoder error, aborting playback",
			"stream", streamName(audio), "error", err)
		p.renderer.QueueEOS(audio, err)
		if *p.flushStatus(audio) != FlushNone {
			p.setDecoder(audio, nil)
			*p.flushStatus(audio) = ShutDown
		}
		p.finishFlushIfPossible()

	case decoderDrainThisBuffer:
		p.renderBuffer(audio, msg)

	default:
		p.logger.Debug("unhandled decoder notification", "what", what)
	}
}

// feedDecoderInputData answers a decoder's input request from the
// source. A nil return means the reply has been handled, including
// replies that carry an error; ErrWouldBlock means no reply was sent
// and the request should be retried.
func (p *Player) feedDecoderInputData(audio bool, msg *Message) error {
	reply, _ := msg.replyChanVal("reply")

	if *p.flushStatus(audio) != FlushNone {
		postTo(reply, Reply{Err: InfoDiscontinuity})
		return nil
	}

	var accessUnit *AccessUnit
	for {
		var err error
		accessUnit, err = p.source.DequeueAccessUnit(audio)

		if err == ErrWouldBlock {
			return err
		}
		if err != nil {
			if err == InfoDiscontinuity {
				err = p.handleDiscontinuity(audio, accessUnit)
				if err == ErrWouldBlock {
					// This stream is unaffected by the discontinuity.
					return err
				}
			}
			postTo(reply, Reply{Err: err})
			return nil
		}

		if !audio {
			p.numFramesTotal++
		}

		dropAccessUnit := false
		if !audio &&
			p.sourceFlags&SourceFlagSecure == 0 &&
			p.videoLateByUs > videoLateThresholdUs &&
			p.videoIsAVC &&
			!isAVCReferenceFrame(accessUnit) {
			dropAccessUnit = true
			p.numFramesDropped++
		}
		if !dropAccessUnit {
			break
		}
	}

	if !audio && p.ccDecoder != nil {
		p.ccDecoder.Decode(accessUnit)
	}

	postTo(reply, Reply{Buffer: accessUnit})
	return nil
}

// handleDiscontinuity drives the flush/shutdown machinery for one
// discontinuity access unit. The returned error is the decoder reply:
// InfoDiscontinuity when a non-seamless format change flushes and
// shuts the decoder down, nil when a time change flushes it or a
// seamless format change updates it in place, ErrWouldBlock when this
// stream is unaffected.
func (p *Player) handleDiscontinuity(audio bool, accessUnit *AccessUnit) error {
	dtype := accessUnit.Discontinuity

	formatChange := (audio && dtype&DiscontinuityAudioFormat != 0) ||
		(!audio && dtype&DiscontinuityVideoFormat != 0)
	timeChange := dtype&DiscontinuityTime != 0

	p.logger.Info("stream discontinuity",
		"stream", streamName(audio),
		"formatChange", formatChange,
		"timeChange", timeChange)

	if audio {
		p.skipRenderingAudioUntilUs = -1
	} else {
		p.skipRenderingVideoUntilUs = -1
	}

	if timeChange && accessUnit.HasResumeAt {
		p.logger.Info("suppressing rendering until resume point",
			"stream", streamName(audio),
			"resumeAtUs", accessUnit.ResumeAtUs)
		if audio {
			p.skipRenderingAudioUntilUs = accessUnit.ResumeAtUs
		} else {
			p.skipRenderingVideoUntilUs = accessUnit.ResumeAtUs
		}
	}

	p.timeDiscontinuityPending = p.timeDiscontinuityPending || timeChange

	seamlessFormatChange := false
	newFormat := p.source.Format(audio)
	if formatChange {
		seamlessFormatChange = p.getDecoder(audio).SupportsSeamlessFormatChange(newFormat)
		// A seamless change is absorbed without a flush.
		formatChange = !seamlessFormatChange
	}
	shutdownOrFlush := formatChange || timeChange

	// Queue up a source scan exactly once per discontinuity: only
	// while neither stream has entered a flushing state yet, and only
	// when this discontinuity actually flushes or shuts down. The
	// scan must run after the flush drains, so it goes to the front
	// of the deferred queue.
	if p.flushingAudio == FlushNone && p.flushingVideo == FlushNone && shutdownOrFlush {
		p.deferredActions = append(
			[]deferredAction{simpleAction((*Player).performScanSources)},
			p.deferredActions...)
	}

	switch {
	case formatChange:
		// Not seamless: the decoder must be replaced.
		p.flushDecoder(audio, true, nil)
		return InfoDiscontinuity
	case timeChange:
		p.flushDecoder(audio, false, newFormat)
		return nil
	case seamlessFormatChange:
		p.updateDecoderFormatWithoutFlush(audio, newFormat)
		return nil
	default:
		return ErrWouldBlock
	}
}

// renderBuffer forwards one decoded buffer to the renderer, or
// returns it to the decoder when a flush is draining or the buffer
// predates the post-seek resume point.
func (p *Player) renderBuffer(audio bool, msg *Message) {
	reply, _ := msg.replyChanVal("reply")

	if *p.flushStatus(audio) != FlushNone {
		// The decoder wants all its buffers back to complete the
		// flush; don't let output sit in the renderer's queue.
		p.logger.Debug("still flushing, returning output buffer", "stream", streamName(audio))
		postTo(reply, Reply{})
		return
	}

	buffer := msg.bufferVal("buffer")
	mediaTimeUs := buffer.TimeUs

	skipUntilUs := &p.skipRenderingVideoUntilUs
	if audio {
		skipUntilUs = &p.skipRenderingAudioUntilUs
	}
	if *skipUntilUs >= 0 {
		if mediaTimeUs < *skipUntilUs {
			p.logger.Debug("dropping buffer before resume point",
				"stream", streamName(audio), "mediaTimeUs", mediaTimeUs)
			postTo(reply, Reply{})
			return
		}
		*skipUntilUs = -1
	}

	if !audio && p.ccDecoder != nil && p.ccDecoder.IsSelected() {
		p.ccDecoder.Display(mediaTimeUs)
	}

	p.renderer.QueueBuffer(audio, buffer, reply)
}
