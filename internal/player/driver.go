package player

// Driver is the binding back to the host application. The coordinator
// holds it as a weak back-reference: it may be absent, and every
// notification silently no-ops when it is.
type Driver interface {
	NotifySetDataSourceCompleted(err error)
	NotifyPrepareCompleted(err error)
	NotifyDuration(durationUs int64)
	NotifyPosition(positionUs int64)
	NotifyFrameStats(numFramesTotal, numFramesDropped int64)
	NotifySeekComplete()
	NotifySetSurfaceComplete()
	NotifyResetComplete()
	NotifyFlagsChanged(flags SourceFlags)
	NotifyListener(msg ListenerMessage, ext1, ext2 int32, parcel *Parcel)

	// CurrentPositionMs reports the playback position as known to the
	// host, used to schedule timed-text delivery.
	CurrentPositionMs() int32
}

// notifyListener forwards a listener notification through the driver,
// if one is attached.
func (p *Player) notifyListener(msg ListenerMessage, ext1, ext2 int32, parcel *Parcel) {
	driver := p.promoteDriver()
	if driver == nil {
		return
	}
	driver.NotifyListener(msg, ext1, ext2, parcel)
}

// promoteDriver returns the attached driver or nil when the host has
// gone away.
func (p *Player) promoteDriver() Driver {
	return p.driver
}
