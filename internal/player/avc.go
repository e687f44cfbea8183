package player

import (
	"strings"

	"github.com/Eyevinn/mp4ff/avc"
)

// isAVCMime reports whether the MIME type names an AVC/H.264 stream.
func isAVCMime(mime string) bool {
	return strings.EqualFold(mime, MimeVideoAVC)
}

// isAVCReferenceFrame reports whether the access unit (AVCC framed,
// length-prefixed NAL units) is a reference frame. Non-reference
// frames can be dropped when video is running late without breaking
// later frames. Undecodable data is treated as a reference frame so
// it is never dropped on a parse error.
func isAVCReferenceFrame(accessUnit *AccessUnit) bool {
	nalus, err := avc.GetNalusFromSample(accessUnit.Data)
	if err != nil {
		return true
	}
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_IDR:
			return true
		case avc.NALU_NON_IDR:
			nalRefIdc := (nalu[0] >> 5) & 0x3
			return nalRefIdc != 0
		}
	}
	return true
}
