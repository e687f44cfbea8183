package player

import "time"

// onSourceNotify handles asynchronous source notifications.
func (p *Player) onSourceNotify(msg *Message) {
	what, _ := msg.get("what")
	switch what.(sourceWhat) {
	case sourcePrepared:
		if p.source == nil {
			// Stale notification from a source that was preparing
			// when reset was handled; the source is gone.
			return
		}
		err := msg.errVal("err")
		if driver := p.promoteDriver(); driver != nil {
			// Duration first, so it is set by the time the host sees
			// prepare-complete.
			if durationUs, derr := p.source.Duration(); derr == nil {
				driver.NotifyDuration(durationUs)
			}
			driver.NotifyPrepareCompleted(err)
		}

	case sourceFlagsChanged:
		flags, _ := msg.get("flags")
		newFlags := flags.(SourceFlags)

		if driver := p.promoteDriver(); driver != nil {
			driver.NotifyFlagsChanged(newFlags)
		}

		hadDynamic := p.sourceFlags&SourceFlagDynamicDuration != 0
		hasDynamic := newFlags&SourceFlagDynamicDuration != 0
		if hadDynamic && !hasDynamic {
			p.cancelPollDuration()
		} else if !hadDynamic && hasDynamic &&
			(p.audioDecoder != nil || p.videoDecoder != nil) {
			p.schedulePollDuration()
		}

		p.sourceFlags = newFlags

	case sourceVideoSizeChanged:
		format := msg.formatVal("format")
		p.updateVideoSize(format, nil)

	case sourceBufferingUpdate:
		percentage, _ := msg.int32Val("percentage")
		p.notifyListener(MediaBufferingUpdate, percentage, 0, nil)

	case sourceBufferingStart:
		p.notifyListener(MediaInfo, InfoBufferingStart, 0, nil)

	case sourceBufferingEnd:
		p.notifyListener(MediaInfo, InfoBufferingEnd, 0, nil)

	case sourceSubtitleData:
		buffer := msg.bufferVal("buffer")
		p.sendSubtitleData(buffer, 0)

	case sourceTimedTextData:
		p.onTimedTextData(msg)

	case sourceQueueDecoderShutdown:
		audio := msg.boolVal("audio")
		video := msg.boolVal("video")
		reply, _ := msg.replyChanVal("reply")
		p.queueDecoderShutdown(audio, video, reply)

	case sourceDrmNoLicense:
		p.notifyListener(MediaError, MediaErrorUnknown, ErrorCodeDRMNoLicense, nil)
	}
}

// onTimedTextData delivers timed text at its presentation time. Text
// that is still early is reposted with the remaining delay and
// generation-stamped so an intervening seek invalidates it.
func (p *Player) onTimedTextData(msg *Message) {
	if generation, ok := msg.int32Val("generation"); ok && generation != p.timedTextGen {
		return
	}

	buffer := msg.bufferVal("buffer")

	driver := p.promoteDriver()
	if driver == nil {
		return
	}

	posUs := int64(driver.CurrentPositionMs()) * 1000
	timeUs := buffer.TimeUs

	if posUs < timeUs {
		if !msg.contains("generation") {
			msg.set("generation", p.timedTextGen)
		}
		p.looper.PostDelayed(msg, time.Duration(timeUs-posUs)*time.Microsecond)
	} else {
		p.sendTimedTextData(buffer)
	}
}

// onClosedCaptionNotify handles closed-caption decoder notifications.
func (p *Player) onClosedCaptionNotify(msg *Message) {
	what, _ := msg.get("what")
	switch what.(ccWhat) {
	case ccClosedCaptionData:
		buffer := msg.bufferVal("buffer")
		inbandTracks := 0
		if p.source != nil {
			inbandTracks = p.source.TrackCount()
		}
		p.sendSubtitleData(buffer, int32(inbandTracks))

	case ccTrackAdded:
		p.notifyListener(MediaInfo, InfoMetadataUpdate, 0, nil)
	}
}
