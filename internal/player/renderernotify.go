package player

// onRendererNotify handles renderer callbacks: per-stream EOS,
// position/lateness updates, rendering-start markers, and the audio
// offload teardown fallback.
func (p *Player) onRendererNotify(msg *Message) {
	what, _ := msg.get("what")
	switch what.(rendererWhat) {
	case rendererEOS:
		audio := msg.boolVal("audio")
		finalResult := msg.errVal("finalResult")

		if audio {
			p.audioEOS = true
		} else {
			p.videoEOS = true
		}

		if finalResult == ErrEndOfStream {
			p.logger.Debug("stream reached EOS", "stream", streamName(audio))
		} else {
			p.logger.Error("stream encountered an error",
				"stream", streamName(audio), "error", finalResult)
			p.notifyListener(MediaError, MediaErrorUnknown, errorCode(finalResult), nil)
		}

		if (p.audioEOS || p.audioDecoder == nil) && (p.videoEOS || p.videoDecoder == nil) {
			p.notifyListener(MediaPlaybackComplete, 0, 0, nil)
		}

	case rendererPosition:
		positionUs, _ := msg.int64Val("positionUs")
		videoLateByUs, _ := msg.int64Val("videoLateByUs")
		p.currentPositionUs = positionUs
		p.videoLateByUs = videoLateByUs

		if driver := p.promoteDriver(); driver != nil {
			driver.NotifyPosition(positionUs)
			driver.NotifyFrameStats(p.numFramesTotal, p.numFramesDropped)
		}

	case rendererFlushComplete:
		audio := msg.boolVal("audio")
		p.logger.Debug("renderer flush completed", "stream", streamName(audio))

	case rendererVideoRenderingStart:
		p.notifyListener(MediaInfo, InfoRenderingStart, 0, nil)

	case rendererMediaRenderingStart:
		p.logger.Debug("media rendering started")
		p.notifyListener(MediaStarted, 0, 0, nil)

	case rendererAudioOffloadTearDown:
		p.logger.Info("audio offload torn down, falling back to PCM")
		positionUs, _ := msg.int64Val("positionUs")

		p.closeAudioSink()
		p.audioDecoder = nil
		p.renderer.Flush(true)
		if p.videoDecoder != nil {
			p.renderer.Flush(false)
		}
		p.renderer.SignalDisableOffloadAudio()
		p.offloadAudio = false

		p.performSeek(positionUs)
		if err := p.instantiateDecoder(true); err != nil && err != ErrWouldBlock {
			p.logger.Error("re-instantiating audio decoder failed", "error", err)
		}
	}
}
