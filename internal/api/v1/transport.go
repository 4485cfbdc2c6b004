package v1

import (
	"context"
	"log/slog"

	"github.com/vmunix/reprise/internal/events"
)

// Transport forwards player transport commands to the rendering client as
// player.command events on the bus. Clients receive them from
// /api/v1/events/stream. It implements player.Transport.
type Transport struct {
	bus *events.Bus
	log *slog.Logger
}

// NewTransport creates a transport publishing on bus.
func NewTransport(bus *events.Bus, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}
	return &Transport{bus: bus, log: log.With("component", "transport")}
}

func (t *Transport) send(command string, value float64, muted bool) {
	e := &events.PlayerCommand{
		BaseEvent: events.NewBaseEvent(events.EventPlayerCommand, events.EntityPlayer, 0),
		Command:   command,
		Value:     value,
		Muted:     muted,
	}
	if err := t.bus.Publish(context.Background(), e); err != nil {
		t.log.Warn("failed to send player command", "command", command, "error", err)
	}
}

func (t *Transport) Play()  { t.send("play", 0, false) }
func (t *Transport) Pause() { t.send("pause", 0, false) }

func (t *Transport) Seek(at float64)                 { t.send("seek", at, false) }
func (t *Transport) SetRate(rate float64)            { t.send("rate", rate, false) }
func (t *Transport) SetVolume(v float64, muted bool) { t.send("volume", v, muted) }
