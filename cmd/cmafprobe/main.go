package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/BTLG-IDK/playengine/internal/cmaf"
	"github.com/BTLG-IDK/playengine/internal/player"
)

const (
	appName = "cmafprobe"
	version = "0.1.0"
)

var usg = `%s inspects a directory of CMAF tracks the way the playback
engine sees it: it loads the tracks, reports formats and durations, and
drains every access unit from the selected audio and video tracks.

Usage of %s:
`

type options struct {
	dir      string
	loglevel string
	version  bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, appName, appName)
		fmt.Fprintf(os.Stderr, "%s [options]\n\noptions:\n", appName)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.dir, "dir", ".", "directory with CMAF track files")
	fs.StringVar(&opts.loglevel, "loglevel", "info", "log level (debug, info, warning, error)")
	fs.BoolVar(&opts.version, "version", false, fmt.Sprintf("Get %s version", appName))
	err := fs.Parse(args[1:])
	return &opts, err
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	opts, err := parseOptions(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.version {
		fmt.Printf("%s %s\n", appName, version)
		return nil
	}

	level := player.ParseLogLevel(opts.loglevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	source, err := cmaf.Load(opts.dir)
	if err != nil {
		return fmt.Errorf("failed to load CMAF tracks: %w", err)
	}

	durationUs, err := source.Duration()
	if err != nil {
		return fmt.Errorf("failed to get duration: %w", err)
	}
	fmt.Printf("duration: %.3f s\n", float64(durationUs)/1e6)

	for i := 0; i < source.TrackCount(); i++ {
		info := source.TrackInfo(i)
		fmt.Printf("track %d: type=%v language=%s mime=%s\n",
			i, info.Type, info.Language, info.Mime)
	}

	source.Start()
	defer source.Stop()

	for _, audio := range []bool{false, true} {
		format := source.Format(audio)
		if format == nil {
			continue
		}
		name := "video"
		if audio {
			name = "audio"
		}
		count := 0
		bytes := 0
		for {
			accessUnit, err := source.DequeueAccessUnit(audio)
			if err != nil {
				if errors.Is(err, player.ErrEndOfStream) {
					break
				}
				if errors.Is(err, player.InfoDiscontinuity) {
					continue
				}
				return fmt.Errorf("failed to dequeue %s access unit: %w", name, err)
			}
			count++
			bytes += len(accessUnit.Data)
		}
		fmt.Printf("%s: mime=%s accessUnits=%d bytes=%d\n", name, format.Mime, count, bytes)
	}

	return nil
}
