package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/colony/internal/world"
)

// LinkPair is a fixed route from a link near a source to a link near the
// storage.
type LinkPair struct {
	From world.ObjectID `yaml:"from" json:"from"`
	To   world.ObjectID `yaml:"to" json:"to"`
}

// LinkBalancer sends energy along each pair whenever the sender is full and
// the receiver is empty. It keeps no state of its own.
type LinkBalancer struct {
	world world.World
	pairs []LinkPair
}

// NewLinkBalancer creates a balancer for the given pairs.
func NewLinkBalancer(w world.World, pairs []LinkPair) *LinkBalancer {
	return &LinkBalancer{world: w, pairs: pairs}
}

// Run checks every pair once.
func (b *LinkBalancer) Run() []string {
	var events []string
	for _, p := range b.pairs {
		from, ok := b.world.Structure(p.From)
		if !ok {
			continue
		}
		to, ok := b.world.Structure(p.To)
		if !ok {
			continue
		}
		if !from.Store.Full() || !to.Store.Empty() {
			continue
		}
		if err := b.world.TransferEnergy(p.From, p.To); err != nil {
			slog.Debug("link transfer deferred", "from", p.From, "to", p.To, "error", err)
			continue
		}
		events = append(events, fmt.Sprintf("link %s sent %d energy to %s", p.From, from.Store.Used, p.To))
	}
	return events
}
