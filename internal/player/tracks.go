package player

// Timed-text parcel flags.
const (
	timedTextLocalDescriptions int32 = 1 << 0
	timedTextInBand3GPP        int32 = 1 << 1
)

func (p *Player) onGetTrackInfo(msg *Message) {
	inbandTracks := 0
	if p.source != nil {
		inbandTracks = p.source.TrackCount()
	}
	ccTracks := 0
	if p.ccDecoder != nil {
		ccTracks = p.ccDecoder.TrackCount()
	}

	parcel := &Parcel{}
	parcel.WriteInt32(int32(inbandTracks + ccTracks))

	for i := 0; i < inbandTracks; i++ {
		writeTrackInfo(parcel, p.source.TrackInfo(i))
	}
	for i := 0; i < ccTracks; i++ {
		writeTrackInfo(parcel, p.ccDecoder.TrackInfo(i))
	}

	msg.postReply(newMessage(msg.kind).set("parcel", parcel))
}

// writeTrackInfo serializes one track descriptor. The leading field
// count is written as 2 regardless of the subtitle extension fields;
// consumers rely on the value being non-zero, and the extra prefix is
// preserved for compatibility.
func writeTrackInfo(parcel *Parcel, info *TrackInfo) {
	parcel.WriteInt32(2)
	parcel.WriteInt32(int32(info.Type))
	parcel.WriteString16(info.Language)

	if info.Type == TrackTypeSubtitle {
		parcel.WriteString16(info.Mime)
		parcel.WriteInt32(boolInt32(info.Auto))
		parcel.WriteInt32(boolInt32(info.Default))
		parcel.WriteInt32(boolInt32(info.Forced))
	}
}

func boolInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (p *Player) onGetSelectedTrack(msg *Message) {
	if p.source == nil {
		msg.postReply(newMessage(msg.kind).set("err", ErrInvalidOperation))
		return
	}
	t, _ := msg.get("type")
	trackType, _ := t.(MediaTrackType)
	selected := p.source.SelectedTrack(trackType)
	msg.postReply(newMessage(msg.kind).set("index", selected))
}

func (p *Player) onSelectTrack(msg *Message) {
	trackIndexAny, _ := msg.get("trackIndex")
	trackIndex, _ := trackIndexAny.(int)
	selected := msg.boolVal("select")

	err := ErrInvalidOperation

	inbandTracks := 0
	if p.source != nil {
		inbandTracks = p.source.TrackCount()
	}
	ccTracks := 0
	if p.ccDecoder != nil {
		ccTracks = p.ccDecoder.TrackCount()
	}

	if trackIndex < inbandTracks {
		err = p.source.SelectTrack(trackIndex, selected)

		if !selected && err == nil {
			// Deselecting a timed-text track invalidates any posts
			// still in flight.
			info := p.source.TrackInfo(trackIndex)
			if info != nil && info.Type == TrackTypeTimedText {
				p.timedTextGen++
			}
		}
	} else if trackIndex-inbandTracks < ccTracks {
		err = p.ccDecoder.SelectTrack(trackIndex-inbandTracks, selected)
	}

	msg.postReply(newMessage(msg.kind).set("err", err))
}

// sendSubtitleData delivers one subtitle sample to the listener.
// baseIndex offsets closed-caption track indices past the inband
// tracks. The payload size is written twice; the duplicate prefix is
// preserved bit-for-bit for compatibility.
func (p *Player) sendSubtitleData(buffer *AccessUnit, baseIndex int32) {
	parcel := &Parcel{}
	parcel.WriteInt32(buffer.TrackIndex + baseIndex)
	parcel.WriteInt64(buffer.TimeUs)
	parcel.WriteInt64(buffer.DurationUs)
	parcel.WriteInt32(int32(len(buffer.Data)))
	parcel.WriteInt32(int32(len(buffer.Data)))
	parcel.Write(buffer.Data)

	p.notifyListener(MediaSubtitleData, 0, 0, parcel)
}

// sendTimedTextData delivers one 3GPP timed-text sample, or an empty
// notification when the sample carries no text.
func (p *Player) sendTimedTextData(buffer *AccessUnit) {
	if buffer.Mime != MimeTimedText {
		p.logger.Error("unexpected timed text mime", "mime", buffer.Mime)
		return
	}

	if len(buffer.Data) == 0 {
		p.notifyListener(MediaTimedText, 0, 0, nil)
		return
	}

	parcel := &Parcel{}
	parcel.WriteInt32(timedTextLocalDescriptions | timedTextInBand3GPP)
	parcel.WriteInt32(int32(buffer.TimeUs / 1000))
	parcel.WriteInt32(int32(len(buffer.Data)))
	parcel.Write(buffer.Data)

	p.notifyListener(MediaTimedText, 0, 0, parcel)
}
