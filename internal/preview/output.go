package preview

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

var errNothingLoaded = errors.New("no preview loaded")

// ProcessOutput plays previews by streaming the URL through an external
// command line player such as ffplay or mpv.
type ProcessOutput struct {
	mu      sync.Mutex
	command string
	logger  *log.Logger

	cmd     *exec.Cmd
	gen     int
	src     string
	volume  float64
	onEnded func()
	paused  bool
}

// NewProcessOutput creates an output that runs command. An empty command
// means ffplay.
func NewProcessOutput(command string, logger *log.Logger) *ProcessOutput {
	if command == "" {
		command = "ffplay"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ProcessOutput{command: command, logger: logger}
}

// Available reports whether the player command can be found
func (o *ProcessOutput) Available() bool {
	_, err := exec.LookPath(o.command)
	return err == nil
}

func playerArgs(command, src string, volume float64) []string {
	pct := int(math.Round(volume * 100))
	switch strings.TrimSuffix(filepath.Base(command), ".exe") {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(pct), src}
	case "mpv":
		return []string{"--no-video", "--really-quiet", fmt.Sprintf("--volume=%d", pct), src}
	case "cvlc", "vlc":
		return []string{"--intf", "dummy", "--play-and-exit", "--gain", fmt.Sprintf("%.2f", volume), src}
	default:
		return []string{src}
	}
}

// Play starts src from the beginning, replacing whatever was playing
func (o *ProcessOutput) Play(src string, volume float64, onEnded func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.killLocked()
	o.src = src
	o.volume = volume
	o.onEnded = onEnded
	return o.startLocked()
}

func (o *ProcessOutput) startLocked() error {
	cmd := exec.Command(o.command, playerArgs(o.command, o.src, o.volume)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", o.command, err)
	}

	o.gen++
	o.cmd = cmd
	o.paused = false
	gen := o.gen
	onEnded := o.onEnded

	go func() {
		err := cmd.Wait()

		o.mu.Lock()
		current := gen == o.gen
		if current {
			o.cmd = nil
		}
		o.mu.Unlock()

		if !current {
			return
		}
		if err != nil {
			o.logger.Printf("Player exited: %v", err)
		}
		if onEnded != nil {
			onEnded()
		}
	}()
	return nil
}

// killLocked stops the running process without firing onEnded
func (o *ProcessOutput) killLocked() {
	if o.cmd == nil {
		return
	}
	o.gen++
	if o.paused {
		resumeProcess(o.cmd.Process)
	}
	o.cmd.Process.Kill()
	o.cmd = nil
	o.paused = false
}

// Pause suspends playback. Where processes cannot be suspended the player
// is stopped and Resume starts the preview over.
func (o *ProcessOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cmd == nil || o.paused {
		return nil
	}
	if !canSuspend {
		o.killLocked()
		return nil
	}
	if err := suspendProcess(o.cmd.Process); err != nil {
		return fmt.Errorf("failed to pause player: %w", err)
	}
	o.paused = true
	return nil
}

// Resume continues a paused preview, or replays one that has finished
func (o *ProcessOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.src == "" {
		return errNothingLoaded
	}
	if o.cmd != nil && o.paused {
		if err := resumeProcess(o.cmd.Process); err != nil {
			return fmt.Errorf("failed to resume player: %w", err)
		}
		o.paused = false
		return nil
	}
	if o.cmd != nil {
		return nil
	}
	return o.startLocked()
}

// Stop ends playback and forgets the source
func (o *ProcessOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.killLocked()
	o.src = ""
	o.onEnded = nil
}
