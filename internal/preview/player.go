package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

// DefaultVolume is the reduced volume previews play at
const DefaultVolume = 0.4

// ErrUnavailable wraps every failure that leaves a Player in the Error state
var ErrUnavailable = errors.New("preview unavailable")

// State is the playback state of one Player
type State int

const (
	Idle State = iota
	Loading
	Playing
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Output is the playback handle a Player drives. onEnded is invoked from
// another goroutine when the track finishes on its own.
type Output interface {
	Play(src string, volume float64, onEnded func()) error
	Pause() error
	Resume() error
	Stop()
}

// Player is the preview control of a single result row. Rows never share
// a Player; they only share the Resolver's cache.
type Player struct {
	mu       sync.Mutex
	title    string
	artist   string
	resolver *Resolver
	out      Output
	volume   float64
	logger   *log.Logger
	onChange func()

	state  State
	src    string
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// PlayerOption customises a Player
type PlayerOption func(*Player)

// WithVolume overrides DefaultVolume
func WithVolume(v float64) PlayerOption {
	return func(p *Player) {
		p.volume = v
	}
}

// WithOnChange registers a callback fired after every state change. It must
// not block.
func WithOnChange(fn func()) PlayerOption {
	return func(p *Player) {
		p.onChange = fn
	}
}

// WithPlayerLogger sets the player logger
func WithPlayerLogger(l *log.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPlayer creates an idle player for one song
func NewPlayer(title, artist string, resolver *Resolver, out Output, opts ...PlayerOption) *Player {
	p := &Player{
		title:    title,
		artist:   artist,
		resolver: resolver,
		out:      out,
		volume:   DefaultVolume,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolution is one cancellable preview lookup started by Toggle. Only
// the most recent Resolution of a Player may change its state.
type Resolution struct {
	p   *Player
	seq uint64
	ctx context.Context
}

// Run resolves the URL and starts playback. It blocks on the network and
// belongs off the UI goroutine. A superseded Resolution returns nil and
// leaves the player alone.
func (r *Resolution) Run() error {
	url, err := r.p.resolver.Resolve(r.ctx, r.p.title, r.p.artist)
	return r.p.complete(r.seq, url, err)
}

// Toggle flips playback. It returns a non-nil Resolution only when the
// preview URL still has to be looked up; the caller must Run it.
func (p *Player) Toggle(ctx context.Context) *Resolution {
	p.mu.Lock()

	if p.closed || p.state == Error {
		p.mu.Unlock()
		return nil
	}

	if p.state == Playing {
		if err := p.out.Pause(); err != nil {
			p.logger.Printf("Pause failed for %q: %v", p.title, err)
		}
		p.state = Idle
		p.mu.Unlock()
		p.changed()
		return nil
	}

	if p.src != "" {
		if err := p.out.Resume(); err != nil {
			p.logger.Printf("Playback failed for %q: %v", p.title, err)
			p.state = Error
		} else {
			p.state = Playing
		}
		p.mu.Unlock()
		p.changed()
		return nil
	}

	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	rctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = Loading
	res := &Resolution{p: p, seq: p.seq, ctx: rctx}
	p.mu.Unlock()

	p.changed()
	return res
}

func (p *Player) complete(seq uint64, url string, err error) error {
	p.mu.Lock()

	if seq != p.seq || p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		p.state = Idle
		err = nil
	case err != nil:
		p.logger.Printf("Preview fetch failed for %q: %v", p.title, err)
		p.state = Error
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		if perr := p.out.Play(url, p.volume, p.ended(seq)); perr != nil {
			p.logger.Printf("Playback failed for %q: %v", p.title, perr)
			p.state = Error
			err = fmt.Errorf("%w: %w", ErrUnavailable, perr)
		} else {
			p.src = url
			p.state = Playing
		}
	}
	p.mu.Unlock()

	p.changed()
	return err
}

func (p *Player) ended(seq uint64) func() {
	return func() {
		p.mu.Lock()
		if seq != p.seq || p.state != Playing {
			p.mu.Unlock()
			return
		}
		p.state = Idle
		p.mu.Unlock()
		p.changed()
	}
}

func (p *Player) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}

// Close stops playback and abandons any lookup in flight
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.out.Stop()
}

// State returns the playback state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Unavailable reports whether the row should show the no-preview marker
func (p *Player) Unavailable() bool {
	return p.State() == Error
}

// Source returns the resolved preview URL, or "" before resolution
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// Title returns the song title the player was created for
func (p *Player) Title() string {
	return p.title
}

// Artist returns the song artist the player was created for
func (p *Player) Artist() string {
	return p.artist
}
