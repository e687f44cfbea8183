package player

// postScanSources schedules one scan of the source's tracks. At most
// one scan message is outstanding at a time.
func (p *Player) postScanSources() {
	if p.scanSourcesPending {
		return
	}
	p.looper.Post(newMessage(kindScanSources).set("generation", p.scanSourcesGen))
	p.scanSourcesPending = true
}

// onScanSources incrementally instantiates decoders as track formats
// become known, feeding the source in between, and reschedules itself
// until every enabled decoder exists.
func (p *Player) onScanSources(msg *Message) {
	generation, _ := msg.int32Val("generation")
	if generation != p.scanSourcesGen {
		// Obsolete scan.
		return
	}

	p.scanSourcesPending = false

	p.logger.Debug("scanning sources",
		"haveAudio", p.audioDecoder != nil,
		"haveVideo", p.videoDecoder != nil)

	hadAnySourcesBefore := p.audioDecoder != nil || p.videoDecoder != nil

	// Video before audio: a video decoder appearing changes the deep
	// buffer decision for audio.
	if p.nativeWindow != nil {
		if err := p.instantiateDecoder(false); err != nil && err != ErrWouldBlock {
			p.logger.Error("instantiating video decoder failed", "error", err)
		}
	}

	if p.audioSink != nil {
		if p.offloadAudio {
			// Open the sink early in offload mode.
			format := p.source.Format(true)
			p.openAudioSink(format, true)
		}
		if err := p.instantiateDecoder(true); err != nil && err != ErrWouldBlock {
			p.logger.Error("instantiating audio decoder failed", "error", err)
		}
	}

	if !hadAnySourcesBefore && (p.audioDecoder != nil || p.videoDecoder != nil) {
		// First time anything playable was found.
		if p.sourceFlags&SourceFlagDynamicDuration != 0 {
			p.schedulePollDuration()
		}
	}

	if err := p.source.FeedMoreTSData(); err != nil {
		if p.audioDecoder == nil && p.videoDecoder == nil {
			// Nothing is decoding and the input just ran out.
			if err == ErrEndOfStream {
				p.notifyListener(MediaPlaybackComplete, 0, 0, nil)
			} else {
				p.notifyListener(MediaError, MediaErrorUnknown, errorCode(err), nil)
			}
		}
		return
	}

	if (p.audioDecoder == nil && p.audioSink != nil) ||
		(p.videoDecoder == nil && p.nativeWindow != nil) {
		p.looper.PostDelayed(msg, scanSourcesRetryDelay)
		p.scanSourcesPending = true
	}
}

// instantiateDecoder creates the decoder for one stream if its format
// is known. ErrWouldBlock means the format is not available yet; the
// caller reschedules.
func (p *Player) instantiateDecoder(audio bool) error {
	if p.getDecoder(audio) != nil {
		return nil
	}

	format := p.source.Format(audio)
	if format == nil {
		return ErrWouldBlock
	}

	if !audio {
		p.videoIsAVC = isAVCMime(format.Mime)

		if p.ccFactory != nil {
			p.ccDecoder = p.ccFactory(&CCDecoderEvents{looper: p.looper})
		}

		if p.sourceFlags&SourceFlagSecure != 0 {
			format.Secure = true
		}
	}

	var events *DecoderEvents
	cfg := DecoderConfig{Audio: audio}
	if audio {
		p.audioDecoderGen++
		events = &DecoderEvents{
			looper:     p.looper,
			kind:       kindAudioNotify,
			generation: p.audioDecoderGen,
		}
		cfg.PassThrough = p.offloadAudio
	} else {
		p.videoDecoderGen++
		events = &DecoderEvents{
			looper:     p.looper,
			kind:       kindVideoNotify,
			generation: p.videoDecoderGen,
		}
		cfg.Window = p.nativeWindow
	}

	decoder := p.decoderFactory(events, cfg)
	p.setDecoder(audio, decoder)
	decoder.Init()
	decoder.Configure(format)

	// Secure video sources decrypt straight into decoder-owned
	// buffers.
	if !audio && p.sourceFlags&SourceFlagSecure != 0 {
		inputBufs, err := decoder.InputBuffers()
		if err != nil {
			p.logger.Error("getting secure input buffers failed", "error", err)
			return err
		}
		if err := p.source.SetBuffers(false, inputBufs); err != nil {
			p.logger.Error("secure source rejected input buffers", "error", err)
			return err
		}
	}
	return nil
}

func (p *Player) schedulePollDuration() {
	p.looper.Post(newMessage(kindPollDuration).set("generation", p.pollDurationGen))
}

// cancelPollDuration invalidates any outstanding poll message.
func (p *Player) cancelPollDuration() {
	p.pollDurationGen++
}
