package player

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/aac"
)

// minOffloadDurationUs is the shortest content worth the cost of
// setting up a compressed offload session.
const minOffloadDurationUs = int64(60_000_000)

// mapMimeToAudioFormat maps a compressed audio MIME type to the sink
// format used for offload.
func mapMimeToAudioFormat(mime string) (AudioFormat, error) {
	switch mime {
	case MimeAudioAAC:
		return AudioFormatAAC, nil
	case MimeAudioMPEG:
		return AudioFormatMP3, nil
	case MimeAudioVorbis:
		return AudioFormatVorbis, nil
	case MimeAudioOpus:
		return AudioFormatOpus, nil
	default:
		return AudioFormatInvalid, fmt.Errorf("no audio format for mime %q", mime)
	}
}

// refineAACFormat narrows the generic AAC format by the stream's
// audio object type.
func refineAACFormat(profile int32) AudioFormat {
	switch int(profile) {
	case int(aac.AAClc):
		return AudioFormatAACLC
	case int(aac.HEAACv1):
		return AudioFormatAACHEv1
	case int(aac.HEAACv2):
		return AudioFormatAACHEv2
	default:
		return AudioFormatAAC
	}
}

// AACProfileFromASC extracts the audio object type from an
// AudioSpecificConfig, for sources that carry the raw config.
func AACProfileFromASC(ascBytes []byte) (int32, error) {
	asc, err := aac.DecodeAudioSpecificConfig(bytes.NewBuffer(ascBytes))
	if err != nil {
		return 0, fmt.Errorf("could not decode audio specific config: %w", err)
	}
	return int32(asc.ObjectType), nil
}

// canOffloadStream decides whether compressed audio can be routed
// directly to the hardware decoder. Offload is reserved for long,
// video-less music playback of a mappable codec; anything else stays
// on the PCM path.
func canOffloadStream(meta *Format, hasVideo, isStreaming bool, streamType AudioStreamType) bool {
	if meta == nil || hasVideo {
		return false
	}
	if streamType != AudioStreamMusic {
		return false
	}
	if _, err := mapMimeToAudioFormat(meta.Mime); err != nil {
		return false
	}
	if meta.DurationUs < minOffloadDurationUs {
		return false
	}
	return true
}
