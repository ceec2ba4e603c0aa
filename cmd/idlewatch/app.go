package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/idlewatch/idlewatch/pkg/activity"
	"github.com/idlewatch/idlewatch/pkg/config"
	"github.com/idlewatch/idlewatch/pkg/idlewatch"
	"github.com/idlewatch/idlewatch/pkg/notification"
	"github.com/idlewatch/idlewatch/pkg/process"
	"github.com/idlewatch/idlewatch/pkg/status"
)

// processRunner wraps and controls the watched child process.
type processRunner interface {
	Start(command string, args []string) error
	Wait() error
	Stop() error
	ExitCode() int
}

// Dependencies holds all the dependencies for the application.
type Dependencies struct {
	Config              *config.Config
	Emitter             *activity.Emitter
	Watcher             *idlewatch.Watcher
	Notifier            notification.Notifier
	RateLimiter         notification.RateLimiter
	NotificationManager *notification.Manager
	ProcessManager      processRunner
	StatusIndicator     *status.Indicator
}

// NewDependencies creates all dependencies with the given configuration.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Emitter: activity.NewEmitter(),
	}

	// The wrapped session's keystrokes and resizes are the activity feed.
	deps.Watcher = idlewatch.New(*cfg)
	deps.Watcher.SetActivitySource(deps.Emitter)
	deps.ProcessManager = process.NewManager(deps.Emitter)

	// Status marker only when stderr is a terminal.
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	deps.StatusIndicator = status.NewIndicator(os.Stderr, isTerminal && !cfg.Quiet)

	if cfg.NtfyTopic != "" {
		deps.Notifier = notification.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic)
	} else {
		deps.Notifier = notification.NewStdoutNotifier()
	}
	deps.RateLimiter = notification.NewTokenBucketRateLimiter(5, time.Minute)
	deps.NotificationManager = notification.NewManager(cfg, deps.Notifier, deps.RateLimiter)

	return deps, nil
}

// Close cleans up all dependencies.
func (d *Dependencies) Close() {
	if d.Watcher != nil {
		d.Watcher.StopWatching()
	}
	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}
	if d.Emitter != nil {
		d.Emitter.Close()
	}
}

// Application represents the main application.
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies.
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run starts the wrapped command and watches it for inactivity.
func (a *Application) Run(command string, args []string) error {
	idleChanges, cancelIdle := a.deps.Watcher.OnIdleStatusChanged()
	defer cancelIdle()
	timeouts, cancelTimeouts := a.deps.Watcher.OnTimeout()
	defer cancelTimeouts()

	a.deps.Watcher.StartWatching()

	go a.handleIdleChanges(idleChanges)
	go a.handleTimeouts(timeouts)

	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}

	return a.deps.ProcessManager.Wait()
}

func (a *Application) handleIdleChanges(idleChanges <-chan bool) {
	for idle := range idleChanges {
		a.handleIdleChange(idle)
	}
}

// handleIdleChange updates the status marker and notifies the transition.
// The notification manager's rate limiter keeps a session flapping around
// the idle threshold from flooding the channel.
func (a *Application) handleIdleChange(idle bool) {
	if a.deps.StatusIndicator != nil {
		a.deps.StatusIndicator.SetIdleState(idle)
	}
	if os.Getenv("IDLEWATCH_DEBUG") == "true" {
		fmt.Fprintf(os.Stderr, "idlewatch: idle status changed: %v\n", idle)
	}

	n := notification.Notification{
		Title:   "Session active again",
		Message: "Activity resumed",
		Time:    time.Now(),
		Reason:  notification.ReasonResume,
	}
	if idle {
		n.Title = "Session idle"
		n.Message = fmt.Sprintf("No activity in the last %s", a.deps.Config.Sensitivity)
		n.Reason = notification.ReasonIdle
	}
	if err := a.deps.NotificationManager.Send(n); err != nil {
		fmt.Fprintf(os.Stderr, "idlewatch: notification error: %v\n", err)
	}
}

func (a *Application) handleTimeouts(timeouts <-chan bool) {
	for fired := range timeouts {
		if fired {
			a.handleTimeout()
		}
	}
}

// handleTimeout notifies and stops the wrapped process. The watcher has
// already stopped itself by the time the event arrives.
func (a *Application) handleTimeout() {
	n := notification.Notification{
		Title:   "Session idle timeout",
		Message: fmt.Sprintf("No activity for %s", a.deps.Config.Timeout),
		Time:    time.Now(),
		Reason:  notification.ReasonTimeout,
	}
	if err := a.deps.NotificationManager.Send(n); err != nil {
		fmt.Fprintf(os.Stderr, "idlewatch: notification error: %v\n", err)
	}

	if err := a.deps.ProcessManager.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "idlewatch: error stopping process: %v\n", err)
	}
}

// Stop gracefully stops the application.
func (a *Application) Stop() error {
	a.deps.Watcher.StopWatching()
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process.
func (a *Application) ExitCode() int {
	return a.deps.ProcessManager.ExitCode()
}
