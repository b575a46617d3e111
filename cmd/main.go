// Package main is the production entry point for the TuneWave music player.
//
// TuneWave plays local audio files behind a full-window visualizer that reacts
// to the sound being played:
// - Event-driven communication between services and UI
// - Dependency injection for testability
// - MVP pattern for UI decoupling
//
// Build:
//
//	go build -o build/tunewave ./cmd
//
// Run:
//
//	./build/tunewave
//	./build/tunewave -version
//
// Environment: TUNEWAVE_LOG_LEVEL, TUNEWAVE_MOCK_AUDIO, TUNEWAVE_FFT_SIZE,
// TUNEWAVE_SAMPLE_RATE.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/tunewave/internal/app"
)

func main() {
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(app.GetVersionInfo().FullString())
		return
	}

	// Defaults plus environment overrides
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		fmt.Println("\nShutting down...")
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
		fmt.Println("Shutdown complete")
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}

	fmt.Println("Application exited cleanly")
}
