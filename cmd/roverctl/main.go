// Command roverctl is a small command-line front end over the rover
// driver: a discovery/version check, a raw telemetry stream dump, a
// one-shot drive command, and a restart.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	rover "github.com/openrover-go/rover"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "version":
		err = runVersion(ctx, os.Args[2:])
	case "stream":
		err = runStream(ctx, os.Args[2:])
	case "drive":
		err = runDrive(ctx, os.Args[2:])
	case "restart":
		err = runRestart(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: roverctl <version|stream|drive|restart> [flags]")
}

func openFirst(ctx context.Context) (*rover.Rover, error) {
	return rover.OpenRover(ctx, rover.DefaultSerialConfig())
}

func runVersion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	fs.Parse(args)

	rv, err := openFirst(ctx)
	if err != nil {
		return err
	}
	defer rv.Close()

	v, ok := rv.Version()
	if !ok {
		return fmt.Errorf("version unknown")
	}
	fmt.Println(v.String())
	return nil
}

func runStream(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	interval := fs.Duration("interval", 100*time.Millisecond, "poll interval")
	fs.Parse(args)

	rv, err := openFirst(ctx)
	if err != nil {
		return err
	}
	defer rv.Close()

	indices := []byte{0, 24, 26, 34, 36, 82}
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	enc := json.NewEncoder(os.Stdout)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			items, err := rv.GetDataItems(ctx, indices)
			if err != nil {
				return err
			}
			if err := enc.Encode(items); err != nil {
				return err
			}
			if err := rv.SendSpeed(); err != nil {
				return err
			}
		}
	}
}

func runDrive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drive", flag.ExitOnError)
	left := fs.Float64("left", 0, "left motor effort, -1..1")
	right := fs.Float64("right", 0, "right motor effort, -1..1")
	flipper := fs.Float64("flipper", 0, "flipper effort, -1..1")
	duration := fs.Duration("for", time.Second, "how long to sustain the command")
	fs.Parse(args)

	rv, err := openFirst(ctx)
	if err != nil {
		return err
	}
	defer rv.Close()

	if err := rv.SetMotorSpeeds(rover.Effort(*left), rover.Effort(*right), rover.Effort(*flipper)); err != nil {
		return err
	}

	deadline := time.Now().Add(*duration)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			rv.SetMotorSpeeds(0, 0, 0)
			rv.SendSpeed()
			return nil
		case <-ticker.C:
			if err := rv.SendSpeed(); err != nil {
				return err
			}
		}
	}
	if err := rv.SetMotorSpeeds(0, 0, 0); err != nil {
		return err
	}
	return rv.SendSpeed()
}

func runRestart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restart", flag.ExitOnError)
	bootloader := fs.Bool("bootloader", false, "restart into the bootloader")
	fs.Parse(args)

	rv, err := openFirst(ctx)
	if err != nil {
		return err
	}
	defer rv.Close()

	return rv.Restart(ctx, *bootloader)
}
