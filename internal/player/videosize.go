package player

// updateVideoSize derives the display dimensions from the decoder's
// output format (crop rectangle) or, lacking one, from the input
// format, applies sample-aspect-ratio scaling and rotation, and
// notifies the listener.
func (p *Player) updateVideoSize(inputFormat, outputFormat *Format) {
	if inputFormat == nil {
		p.logger.Info("unknown video size, reporting 0x0")
		p.notifyListener(MediaSetVideoSize, 0, 0, nil)
		return
	}

	var displayWidth, displayHeight int32
	if outputFormat != nil && outputFormat.Crop != nil {
		crop := outputFormat.Crop
		displayWidth = crop.Right - crop.Left + 1
		displayHeight = crop.Bottom - crop.Top + 1

		p.logger.Debug("video output format changed",
			"width", outputFormat.Width,
			"height", outputFormat.Height,
			"displayWidth", displayWidth,
			"displayHeight", displayHeight,
			"cropLeft", crop.Left,
			"cropTop", crop.Top)
	} else {
		displayWidth = inputFormat.Width
		displayHeight = inputFormat.Height

		p.logger.Debug("video input format",
			"width", displayWidth, "height", displayHeight)
	}

	if inputFormat.SARWidth > 0 && inputFormat.SARHeight > 0 {
		p.logger.Debug("sample aspect ratio",
			"sarWidth", inputFormat.SARWidth,
			"sarHeight", inputFormat.SARHeight)
		displayWidth = (displayWidth * inputFormat.SARWidth) / inputFormat.SARHeight
	}

	if inputFormat.Rotation == 90 || inputFormat.Rotation == 270 {
		displayWidth, displayHeight = displayHeight, displayWidth
	}

	p.notifyListener(MediaSetVideoSize, displayWidth, displayHeight, nil)
}
