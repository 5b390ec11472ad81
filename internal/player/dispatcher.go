package player

import (
	"errors"

	"github.com/rs/zerolog"

	perrors "github.com/tessro/slotplayer/internal/errors"
	"github.com/tessro/slotplayer/internal/osc"
)

// Outcome tells the tick loop how to continue after a message.
type Outcome int

const (
	// Continue processing the queue.
	Continue Outcome = iota
	// EndDrain leaves the remaining messages for the next tick.
	EndDrain
	// Quit stops the player.
	Quit
)

// unbounded marks a command that ignores extra arguments.
const unbounded = -1

type handler func(d *Dispatcher, msg osc.Message) (Outcome, error)

// Command describes one accepted address.
type Command struct {
	Address     string
	Usage       string
	Description string
	MinArgs     int
	MaxArgs     int

	run handler
}

func (c Command) accepts(n int) bool {
	return n >= c.MinArgs && (c.MaxArgs == unbounded || n <= c.MaxArgs)
}

var commands = []Command{
	{
		Address:     "/load",
		Usage:       "/load slot:int path:str",
		Description: "Load a video at the given slot",
		MinArgs:     2,
		MaxArgs:     2,
		run:         (*Dispatcher).load,
	},
	{
		Address:     "/loadfolder",
		Usage:       "/loadfolder path:str",
		Description: "Load every XXX_descr.ext video in the folder into slot XXX",
		MinArgs:     1,
		MaxArgs:     1,
		run:         (*Dispatcher).loadFolder,
	},
	{
		Address:     "/play",
		Usage:       "/play slot:int [speed:float=1] [starttime:float=0] [paused:int=0] [stopWhenFinished:int=1]",
		Description: "Play the given slot with given speed, starting at starttime (secs). If stopWhenFinished is 0 playback pauses at the last frame",
		MinArgs:     1,
		MaxArgs:     5,
		run:         (*Dispatcher).play,
	},
	{
		Address:     "/stop",
		Usage:       "/stop",
		Description: "Stop playback",
		MinArgs:     0,
		MaxArgs:     unbounded,
		run:         (*Dispatcher).stop,
	},
	{
		Address:     "/pause",
		Usage:       "/pause state:int",
		Description: "If state 1, pause playback, 0 resumes playback",
		MinArgs:     1,
		MaxArgs:     1,
		run:         (*Dispatcher).pause,
	},
	{
		Address:     "/setspeed",
		Usage:       "/setspeed speed:float",
		Description: "Change the speed of the current slot",
		MinArgs:     1,
		MaxArgs:     1,
		run:         (*Dispatcher).setSpeed,
	},
	{
		Address:     "/scrub",
		Usage:       "/scrub pos:float [slot:int=current]",
		Description: "Set the relative position 0-1, previewing another slot if given",
		MinArgs:     1,
		MaxArgs:     2,
		run:         (*Dispatcher).scrub,
	},
	{
		Address:     "/setpos",
		Usage:       "/setpos pos:float",
		Description: "Set the relative position 0-1 of the current slot",
		MinArgs:     1,
		MaxArgs:     1,
		run:         (*Dispatcher).setPos,
	},
	{
		Address:     "/dump",
		Usage:       "/dump",
		Description: "Dump information about loaded clips",
		MinArgs:     0,
		MaxArgs:     unbounded,
		run:         (*Dispatcher).dump,
	},
	{
		Address:     "/clipsinfo",
		Usage:       "/clipsinfo",
		Description: "Send /clipinfo for every loaded clip to the notification endpoint",
		MinArgs:     0,
		MaxArgs:     unbounded,
		run:         (*Dispatcher).clipsInfo,
	},
	{
		Address:     "/quit",
		Usage:       "/quit",
		Description: "Quit this application",
		MinArgs:     0,
		MaxArgs:     unbounded,
		run:         (*Dispatcher).quit,
	},
}

// Commands returns the accepted commands in documentation order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// Dispatcher decodes inbound messages and applies them to a session.
type Dispatcher struct {
	session  *Session
	log      zerolog.Logger
	commands map[string]Command
}

// NewDispatcher creates a dispatcher for the session.
func NewDispatcher(s *Session, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		session:  s,
		log:      log,
		commands: make(map[string]Command, len(commands)),
	}
	for _, c := range commands {
		d.commands[c.Address] = c
	}
	return d
}

// Dispatch applies one message. A rejected message is logged and leaves
// the session unchanged.
func (d *Dispatcher) Dispatch(msg osc.Message) Outcome {
	cmd, ok := d.commands[msg.Address]
	if !ok {
		d.log.Error().Str("address", msg.Address).Msg("message not recognized")
		return Continue
	}

	if !cmd.accepts(msg.Len()) {
		d.log.Error().
			Str("address", msg.Address).
			Int("args", msg.Len()).
			Str("usage", cmd.Usage).
			Err(perrors.ErrArityMismatch).
			Msg("command rejected")
		return Continue
	}

	outcome, err := cmd.run(d, msg)
	if err != nil {
		d.reject(cmd, msg, err)
		return Continue
	}
	return outcome
}

// Drain dispatches queued messages until the queue is empty, a /play
// succeeds, or a /quit arrives. It never blocks.
func (d *Dispatcher) Drain(queue <-chan osc.Message) (handled int, quit bool) {
	for {
		select {
		case msg, ok := <-queue:
			if !ok {
				return handled, false
			}
			handled++
			switch d.Dispatch(msg) {
			case EndDrain:
				return handled, false
			case Quit:
				return handled, true
			}
		default:
			return handled, false
		}
	}
}

func (d *Dispatcher) reject(cmd Command, msg osc.Message, err error) {
	ev := d.log.Error()
	if errors.Is(err, perrors.ErrNotPlaying) {
		ev = d.log.Warn()
	}
	var se *slotError
	if errors.As(err, &se) {
		ev = ev.Int("slot", se.slot)
	}
	if s := perrors.GetSuggestion(err); s != "" {
		ev = ev.Str("suggestion", s)
	}
	ev.Err(err).
		Str("address", msg.Address).
		Int("args", msg.Len()).
		Str("usage", cmd.Usage).
		Msg("command rejected")
}

func (d *Dispatcher) load(msg osc.Message) (Outcome, error) {
	idx, err := msg.IntAt(0)
	if err != nil {
		return Continue, err
	}
	path, err := msg.StringAt(1)
	if err != nil {
		return Continue, err
	}
	if err := d.session.Load(idx, path); err != nil {
		return Continue, err
	}
	d.log.Info().Int("slot", idx).Str("path", path).Msg("/load")
	return Continue, nil
}

func (d *Dispatcher) loadFolder(msg osc.Message) (Outcome, error) {
	path, err := msg.StringAt(0)
	if err != nil {
		return Continue, err
	}
	result, err := d.session.LoadFolder(path)
	if err != nil {
		return Continue, err
	}
	if result.HasErrors() {
		d.log.Warn().Str("folder", path).Msg("loadfolder skipped entries: " + result.ErrorSummary())
	}
	d.log.Info().Str("folder", path).Ints("slots", result.Data).Msg("/loadfolder")
	return Continue, nil
}

func (d *Dispatcher) play(msg osc.Message) (Outcome, error) {
	idx, err := msg.IntAt(0)
	if err != nil {
		return Continue, err
	}

	opts := DefaultPlayOptions()
	n := msg.Len()
	if n >= 2 {
		if opts.Speed, err = msg.FloatAt(1); err != nil {
			return Continue, err
		}
	}
	if n >= 3 {
		if opts.SkipSeconds, err = msg.FloatAt(2); err != nil {
			return Continue, err
		}
	}
	if n >= 4 {
		if opts.Paused, err = msg.BoolAt(3); err != nil {
			return Continue, err
		}
	}
	if n >= 5 {
		if opts.StopWhenFinished, err = msg.BoolAt(4); err != nil {
			return Continue, err
		}
	}

	if err := d.session.PlaySlot(idx, opts); err != nil {
		return Continue, err
	}
	return EndDrain, nil
}

func (d *Dispatcher) stop(osc.Message) (Outcome, error) {
	return Continue, d.session.Stop()
}

func (d *Dispatcher) pause(msg osc.Message) (Outcome, error) {
	paused, err := msg.BoolAt(0)
	if err != nil {
		return Continue, err
	}
	return Continue, d.session.SetPaused(paused)
}

func (d *Dispatcher) setSpeed(msg osc.Message) (Outcome, error) {
	speed, err := msg.FloatAt(0)
	if err != nil {
		return Continue, err
	}
	return Continue, d.session.SetSpeed(speed)
}

func (d *Dispatcher) scrub(msg osc.Message) (Outcome, error) {
	pos, err := msg.FloatAt(0)
	if err != nil {
		return Continue, err
	}
	if msg.Len() == 1 {
		return Continue, d.session.Scrub(pos)
	}
	idx, err := msg.IntAt(1)
	if err != nil {
		return Continue, err
	}
	return Continue, d.session.ScrubSlot(idx, pos)
}

func (d *Dispatcher) setPos(msg osc.Message) (Outcome, error) {
	pos, err := msg.FloatAt(0)
	if err != nil {
		return Continue, err
	}
	d.session.SetPosition(pos)
	return Continue, nil
}

func (d *Dispatcher) dump(osc.Message) (Outcome, error) {
	d.session.Dump()
	return Continue, nil
}

func (d *Dispatcher) clipsInfo(osc.Message) (Outcome, error) {
	return Continue, d.session.NotifyAllLoaded()
}

func (d *Dispatcher) quit(osc.Message) (Outcome, error) {
	d.log.Info().Msg("/quit")
	return Quit, nil
}
