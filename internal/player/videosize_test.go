package player

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func lastVideoSize(t *testing.T, driver *fakeDriver) (int32, int32) {
	t.Helper()
	driver.mu.Lock()
	defer driver.mu.Unlock()
	for i := len(driver.listenerMsgs) - 1; i >= 0; i-- {
		if driver.listenerMsgs[i].msg == MediaSetVideoSize {
			return driver.listenerMsgs[i].ext1, driver.listenerMsgs[i].ext2
		}
	}
	t.Fatal("no video size notification")
	return 0, 0
}

func TestUpdateVideoSizeFromCrop(t *testing.T) {
	driver := &fakeDriver{}
	p := &Player{logger: slog.Default(), driver: driver}

	p.updateVideoSize(
		&Format{Width: 1920, Height: 1088},
		&Format{Width: 1920, Height: 1088, Crop: &Rect{Left: 0, Top: 0, Right: 1919, Bottom: 1079}})

	w, h := lastVideoSize(t, driver)
	require.Equal(t, int32(1920), w)
	require.Equal(t, int32(1080), h)
}

func TestUpdateVideoSizeFromInput(t *testing.T) {
	driver := &fakeDriver{}
	p := &Player{logger: slog.Default(), driver: driver}

	p.updateVideoSize(&Format{Width: 640, Height: 480}, nil)

	w, h := lastVideoSize(t, driver)
	require.Equal(t, int32(640), w)
	require.Equal(t, int32(480), h)
}

func TestUpdateVideoSizeSampleAspectRatio(t *testing.T) {
	driver := &fakeDriver{}
	p := &Player{logger: slog.Default(), driver: driver}

	// 720x576 with 16:15 SAR widens to 768.
	p.updateVideoSize(&Format{Width: 720, Height: 576, SARWidth: 16, SARHeight: 15}, nil)

	w, h := lastVideoSize(t, driver)
	require.Equal(t, int32(768), w)
	require.Equal(t, int32(576), h)
}

func TestUpdateVideoSizeRotationSwapsDimensions(t *testing.T) {
	for _, rotation := range []int32{90, 270} {
		driver := &fakeDriver{}
		p := &Player{logger: slog.Default(), driver: driver}

		p.updateVideoSize(&Format{Width: 1280, Height: 720, Rotation: rotation}, nil)

		w, h := lastVideoSize(t, driver)
		require.Equal(t, int32(720), w)
		require.Equal(t, int32(1280), h)
	}
}

func TestUpdateVideoSizeUnknown(t *testing.T) {
	driver := &fakeDriver{}
	p := &Player{logger: slog.Default(), driver: driver}

	p.updateVideoSize(nil, nil)

	w, h := lastVideoSize(t, driver)
	require.Equal(t, int32(0), w)
	require.Equal(t, int32(0), h)
}
