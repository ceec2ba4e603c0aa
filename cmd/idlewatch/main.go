package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/idlewatch/idlewatch/pkg/config"
)

func main() {
	var (
		configPath  string
		timeout     time.Duration
		sensitivity time.Duration
		quiet       bool
		help        bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.DurationVar(&timeout, "timeout", 0, "Inactivity timeout (default 5m)")
	flag.DurationVar(&sensitivity, "sensitivity", 0, "Activity sampling window (default 1.5s)")
	flag.BoolVar(&quiet, "quiet", false, "Disable all notifications")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if configPath != "" {
		if err := os.Setenv("IDLEWATCH_CONFIG", configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment.
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if sensitivity != 0 {
		cfg.Sensitivity = sensitivity
	}
	if quiet {
		cfg.Quiet = true
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// The command to wrap; default to the user's shell.
	command := os.Getenv("SHELL")
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	} else {
		args = nil
	}
	if command == "" {
		fmt.Fprintln(os.Stderr, "Error: no command given and SHELL is not set")
		os.Exit(1)
	}

	deps, err := NewDependencies(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	app := NewApplication(deps)

	// Ensure terminal restoration on panic
	defer func() {
		if r := recover(); r != nil {
			_ = app.Stop() // Best effort terminal restoration
			panic(r)       // Re-panic
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if err := app.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping process: %v\n", err)
		}
		os.Exit(130)
	}()

	if os.Getenv("IDLEWATCH_DEBUG") == "true" {
		fmt.Fprintf(os.Stderr, "idlewatch: wrapping %s, timeout=%v, sensitivity=%v\n",
			command, cfg.Timeout, cfg.Sensitivity)
	}

	if err := app.Run(command, args); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "Error running command: %v\n", err)
		}
	}

	os.Exit(app.ExitCode())
}

func printUsage() {
	fmt.Println("idlewatch - inactivity watcher for interactive terminal sessions")
	fmt.Println()
	fmt.Println("Usage: idlewatch [OPTIONS] [COMMAND [ARGS...]]")
	fmt.Println()
	fmt.Println("Wraps COMMAND (default: $SHELL) in a PTY and watches the session for")
	fmt.Println("user inactivity. After the configured timeout with no keystrokes or")
	fmt.Println("resizes, a timeout notification fires and watching stops.")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  IDLEWATCH_TIMEOUT       Inactivity timeout (default: 300s)")
	fmt.Println("  IDLEWATCH_SENSITIVITY   Activity sampling window (default: 1500ms)")
	fmt.Println("  IDLEWATCH_NTFY_TOPIC    Ntfy topic for timeout notifications")
	fmt.Println("  IDLEWATCH_NTFY_SERVER   Ntfy server URL (default: https://ntfy.sh)")
	fmt.Println("  IDLEWATCH_QUIET         Disable notifications (true/false)")
	fmt.Println("  IDLEWATCH_CONFIG        Path to config file")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/idlewatch/config.yaml")
}
