// Package agents provides the agent data model and the per-agent state
// machine that drives a creep through spawning, travel and work.
package agents

import (
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/target"
	"github.com/talgya/colony/internal/world"
)

// State is the lifecycle state of an agent.
type State uint8

const (
	StateNotExist       State = iota // No creep yet; spawn requests are made from here
	StateSpawning                    // Spawn accepted, body not finished
	StateIdle                        // Alive without a target
	StateOnWay                       // Travelling toward the target
	StateWorking                     // In range and acting on the target
	StateWaitingForSafe              // Hostiles in region; creep destroyed
)

func (s State) String() string {
	switch s {
	case StateNotExist:
		return "not_exist"
	case StateSpawning:
		return "spawning"
	case StateIdle:
		return "idle"
	case StateOnWay:
		return "on_way"
	case StateWorking:
		return "working"
	case StateWaitingForSafe:
		return "waiting_for_safe"
	default:
		return "unknown"
	}
}

// Agent is one worker of the colony. The name is stable for the whole run;
// EntityID is bound once the creep finishes spawning.
type Agent struct {
	Name     string
	Ordinal  int
	Role     roles.Role
	Region   string
	EntityID world.ObjectID
	State    State
	Target   target.Target
}

// NewAgent creates an agent from a "<role>-<ordinal>" name.
func NewAgent(name, region string) *Agent {
	role, ordinal := roles.Parse(name)
	return &Agent{
		Name:    name,
		Ordinal: ordinal,
		Role:    role,
		Region:  region,
		State:   StateNotExist,
	}
}

// Bound reports whether the agent is attached to a finished creep.
func (a *Agent) Bound() bool { return a.EntityID != "" }

// reset drops the creep binding and the target.
func (a *Agent) reset(state State) {
	a.EntityID = ""
	a.Target = nil
	a.State = state
}

// Summary is a read-only view of an agent for reports and the API.
type Summary struct {
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Ordinal  int            `json:"ordinal"`
	Region   string         `json:"region"`
	EntityID world.ObjectID `json:"entity_id,omitempty"`
	State    string         `json:"state"`
	Target   string         `json:"target"`
	Working  bool           `json:"working"`

	Pos    *world.HexCoord `json:"pos,omitempty"`
	Energy int             `json:"energy"`
	TTL    int             `json:"ticks_to_live,omitempty"`
}

// Summarize builds the view of an agent. Creep fields are filled when the
// creep exists.
func (a *Agent) Summarize(creep *world.Creep, working bool) Summary {
	s := Summary{
		Name:     a.Name,
		Role:     a.Role.String(),
		Ordinal:  a.Ordinal,
		Region:   a.Region,
		EntityID: a.EntityID,
		State:    a.State.String(),
		Target:   target.Describe(a.Target),
		Working:  working,
	}
	if creep != nil {
		pos := creep.Pos
		s.Pos = &pos
		s.Energy = creep.Store.Used
		s.TTL = creep.TicksToLive
	}
	return s
}
