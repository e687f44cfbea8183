package player

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// avcSample builds an AVCC sample from raw NAL units.
func avcSample(nalus ...[]byte) []byte {
	var data []byte
	for _, nalu := range nalus {
		data = append(data, 0, 0, byte(len(nalu)>>8), byte(len(nalu)))
		data = append(data, nalu...)
	}
	return data
}

func TestIsAVCReferenceFrame(t *testing.T) {
	idr := []byte{0x65, 0x88, 0x84}               // IDR slice
	nonRefSlice := []byte{0x01, 0x9a, 0x00}       // non-IDR, nal_ref_idc 0
	refSlice := []byte{0x41, 0x9a, 0x00}          // non-IDR, nal_ref_idc 2
	sei := []byte{0x06, 0x05, 0x01, 0x00}         // SEI before the slice

	require.True(t, isAVCReferenceFrame(&AccessUnit{Data: avcSample(idr)}))
	require.False(t, isAVCReferenceFrame(&AccessUnit{Data: avcSample(nonRefSlice)}))
	require.True(t, isAVCReferenceFrame(&AccessUnit{Data: avcSample(refSlice)}))

	// The first VCL NAL unit decides, leading SEI is skipped.
	require.False(t, isAVCReferenceFrame(&AccessUnit{Data: avcSample(sei, nonRefSlice)}))
	require.True(t, isAVCReferenceFrame(&AccessUnit{Data: avcSample(sei, idr)}))
}

func TestIsAVCReferenceFrameMalformedData(t *testing.T) {
	// Truncated length prefix: assume reference, never drop.
	require.True(t, isAVCReferenceFrame(&AccessUnit{Data: []byte{0, 0}}))
}

func TestIsAVCMime(t *testing.T) {
	require.True(t, isAVCMime("video/avc"))
	require.True(t, isAVCMime("Video/AVC"))
	require.False(t, isAVCMime(MimeVideoHEVC))
}
