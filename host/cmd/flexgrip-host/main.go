package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"flexgrip/host/analysis"
	"flexgrip/host/serial"
	"flexgrip/host/session"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config)")
	csvPath    = flag.String("csv", "", "Telemetry CSV output path (overrides config)")
	configPath = flag.String("config", "", "YAML configuration file")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("FlexGrip Host - Assessment Recorder")
	fmt.Println("===================================")
	fmt.Println()

	fmt.Printf("Connecting to device on %s...\n", cfg.Device)
	port, err := serial.Open(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: 100,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	logger := log.New(os.Stdout, "", log.Ltime)
	sess, err := session.New(port, cfg.CSVPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	fmt.Println("Waiting for device banner...")
	if err := sess.WaitReady(time.Duration(cfg.ReadyTimeout)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected. Recording to %s\n", cfg.CSVPath)

	// Record telemetry in the background while commands are entered.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recordDone := make(chan error, 1)
	go func() {
		recordDone <- sess.Run(ctx)
	}()

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.Fields(line)[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			cancel()
			waitRecorder(recordDone)
			return

		case "help", "?":
			printHelp()

		case "grip":
			sendCommand(sess, '1')

		case "stiffness":
			sendCommand(sess, '2')

		case "stop":
			sendCommand(sess, '3')

		case "analyze":
			if err := analyze(cfg.CSVPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", line)
		}
	}

	cancel()
	waitRecorder(recordDone)

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the optional YAML file with command-line overrides.
func loadConfig() (*session.Config, error) {
	cfg := session.DefaultConfig()
	if *configPath != "" {
		loaded, err := session.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *csvPath != "" {
		cfg.CSVPath = *csvPath
	}
	return cfg, cfg.Validate()
}

func sendCommand(sess *session.Session, b byte) {
	if err := sess.Command(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func analyze(csvPath string) error {
	weights, err := analysis.ReadRecords(csvPath, "Weight")
	if err != nil {
		return err
	}
	forces, err := analysis.ReadRecords(csvPath, "FSR")
	if err != nil {
		return err
	}
	if len(weights) == 0 && len(forces) == 0 {
		return fmt.Errorf("no samples recorded yet")
	}

	if len(weights) > 0 {
		fmt.Println("Grip strength:")
		fmt.Print(analysis.Summarize(weights))
	}
	if len(forces) > 0 {
		fmt.Println("Joint stiffness:")
		fmt.Print(analysis.SummarizeStiffness(forces))
	}
	return nil
}

func waitRecorder(done <-chan error) {
	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "Recorder stopped: %v\n", err)
		}
	case <-time.After(time.Second):
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  grip        - Start the grip strength assessment")
	fmt.Println("  stiffness   - Start the joint stiffness assessment")
	fmt.Println("  stop        - Stop and release the actuator")
	fmt.Println("  analyze     - Summarize the recorded grip data")
	fmt.Println("  help        - Show this help message")
	fmt.Println("  quit/exit/q - Exit the program")
	fmt.Println()
}
