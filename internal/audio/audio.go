// Package audio owns the background music handle and its play/pause toggle.
package audio

import (
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Player is an external playback resource.
type Player interface {
	Play() error
	Pause() error
	Close() error
}

// Toggle flips a Player between playing and paused. A Toggle without a
// player (missing file or binary) ignores every call.
type Toggle struct {
	player  Player
	playing bool
	log     *zap.Logger
}

func NewToggle(p Player, log *zap.Logger) *Toggle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Toggle{player: p, log: log}
}

// Available reports whether there is anything to toggle.
func (t *Toggle) Available() bool { return t != nil && t.player != nil }

// Playing reports the last requested state.
func (t *Toggle) Playing() bool { return t != nil && t.playing }

// Toggle switches state. A failed Play or Pause is logged and leaves the state unchanged.
func (t *Toggle) Toggle() {
	if !t.Available() {
		return
	}
	var err error
	if t.playing {
		err = t.player.Pause()
	} else {
		err = t.player.Play()
	}
	if err != nil {
		t.log.Warn("music toggle failed", zap.Bool("was_playing", t.playing), zap.Error(err))
		return
	}
	t.playing = !t.playing
}

// Close releases the player. The toggle is inert afterwards.
func (t *Toggle) Close() error {
	if !t.Available() {
		return nil
	}
	err := t.player.Close()
	t.player = nil
	t.playing = false
	return err
}

// CommandPlayer plays a file by running an external command with the file as
// its last argument. The process is started on first Play and suspended on Pause.
type CommandPlayer struct {
	mu   sync.Mutex
	name string
	args []string
	cmd  *exec.Cmd
	done chan struct{}
}

// NewCommandPlayer validates that file and the command exist. command is split on spaces,
// e.g. "mpv --no-video --loop=inf".
func NewCommandPlayer(command, file string) (*CommandPlayer, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, errors.Wrap(err, "music file")
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty player command")
	}
	bin, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, errors.Wrapf(err, "player %s", fields[0])
	}
	args := append(append([]string{}, fields[1:]...), file)
	return &CommandPlayer{name: bin, args: args}, nil
}

func (p *CommandPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && !p.exited() {
		return resume(p.cmd.Process)
	}
	cmd := exec.Command(p.name, p.args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start player")
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	p.cmd, p.done = cmd, done
	return nil
}

func (p *CommandPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.exited() {
		return nil
	}
	return suspend(p.cmd.Process)
}

func (p *CommandPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.exited() {
		return nil
	}
	_ = resume(p.cmd.Process)
	if err := p.cmd.Process.Kill(); err != nil {
		return errors.Wrap(err, "stop player")
	}
	<-p.done
	return nil
}

func (p *CommandPlayer) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
