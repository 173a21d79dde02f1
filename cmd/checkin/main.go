// Command checkin runs the location-gated check-in on a terminal, reading the
// position from a serial GPS receiver or from flags.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"liveattendance/internal/attendance"
	"liveattendance/internal/checkin"
	"liveattendance/internal/config"
	"liveattendance/internal/console"
	"liveattendance/internal/geo"
	"liveattendance/internal/location"
	"liveattendance/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	lat := flag.Float64("lat", cfg.Geofence.Lat, "fixed latitude when no GPS port is used")
	lng := flag.Float64("lng", cfg.Geofence.Lng, "fixed longitude when no GPS port is used")
	offset := flag.Float64("offset-m", 0, "move the fixed position this many meters")
	bearing := flag.Float64("bearing", 0, "direction of --offset-m in degrees from north")
	gpsPort := flag.String("gps-port", cfg.GPS.Port, "serial port of an NMEA GPS receiver")
	driver := flag.String("store", cfg.Store.Driver, "store driver: memory, firebase, firestore, postgres, dynamodb")
	flag.Parse()
	cfg.Store.Driver = *driver

	root := context.Background()
	openCtx, cancel := context.WithTimeout(root, 10*time.Second)
	st, err := store.Open(openCtx, cfg.Store)
	cancel()
	if err != nil {
		log.Fatal("store: ", err)
	}
	defer st.Close()

	loc, err := cfg.CheckIn.Location()
	if err != nil {
		log.Fatal("timezone: ", err)
	}

	var provider location.Provider
	if *gpsPort != "" {
		gps := location.NewSerialGPS(*gpsPort, cfg.GPS.Baud)
		if cfg.GPS.MaxHDOP > 0 {
			gps.MaxHDOP = cfg.GPS.MaxHDOP
		}
		provider = gps
	} else {
		fix := geo.Point{Lat: *lat, Lng: *lng}
		if *offset != 0 {
			fix = geo.Destination(fix, *bearing, *offset)
		}
		provider = location.NewStatic(fix)
	}

	term := console.New(os.Stdin, os.Stdout)
	flow := checkin.New(checkin.Options{
		Provider:   provider,
		Fence:      cfg.Geofence.Fence(),
		Submitter:  attendance.NewSubmitter(st, cfg.Store.Collection, loc),
		Presenter:  term,
		ScanDelay:  cfg.CheckIn.ScanDelay.Std(),
		FixTimeout: cfg.CheckIn.FixTimeout.Std(),
		FixRequest: cfg.CheckIn.FixRequest(),
		OnTransition: func(from, to checkin.State) {
			log.Printf("[checkin] %s -> %s", from, to)
		},
	})

	// SIGINT cancels the running attempt, or quits when idle.
	var mu sync.Mutex
	var cancelAttempt context.CancelFunc
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for range sigs {
			mu.Lock()
			c := cancelAttempt
			mu.Unlock()
			if c == nil {
				os.Exit(130)
			}
			c()
		}
	}()

	if err := flow.Preflight(root); err != nil {
		log.Printf("[checkin] preconditions: %v", err)
	}

	for {
		term.ShowMessage("Press Enter to check in, q to quit.")
		line, err := term.ReadLine(root)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Fatal(err)
		}
		if strings.EqualFold(strings.TrimSpace(line), "q") {
			return
		}

		ctx, c := context.WithCancel(root)
		mu.Lock()
		cancelAttempt = c
		mu.Unlock()

		res, err := flow.CheckIn(ctx)

		mu.Lock()
		cancelAttempt = nil
		mu.Unlock()
		c()

		switch {
		case errors.Is(err, context.Canceled):
			term.ShowMessage("Check-in cancelled")
		case errors.Is(err, io.EOF):
			return
		case err != nil:
			log.Printf("[checkin] attempt ended: %v", err)
		default:
			log.Printf("[checkin] attempt ended: %s", res.Outcome)
		}
	}
}
