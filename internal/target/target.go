// Package target describes what an agent interacts with and how. Each
// concrete type pairs one entity kind with one action, so combinations such
// as upgrading a container cannot be expressed.
package target

import (
	"fmt"

	"github.com/talgya/colony/internal/world"
)

// Action is the kind of interaction a target asks for.
type Action uint8

const (
	ActionHarvest  Action = iota // Harvest a source
	ActionWithdraw               // Fetch from a structure store
	ActionTransfer               // Deposit into a structure store
	ActionBuild                  // Build a construction site
	ActionUpgrade                // Upgrade the controller
	ActionPark                   // Travel only, no action
)

func (a Action) String() string {
	switch a {
	case ActionHarvest:
		return "harvest"
	case ActionWithdraw:
		return "withdraw"
	case ActionTransfer:
		return "transfer"
	case ActionBuild:
		return "build"
	case ActionUpgrade:
		return "upgrade"
	case ActionPark:
		return "park"
	default:
		return "unknown"
	}
}

// Range is how close a creep must be to perform the action.
func (a Action) Range() int {
	switch a {
	case ActionBuild, ActionUpgrade:
		return world.RangeWork
	default:
		return world.RangeAdjacent
	}
}

// Ref points at a concrete world entity.
type Ref struct {
	ID  world.ObjectID `json:"id"`
	Pos world.HexCoord `json:"pos"`
}

// Entity returns the referenced entity.
func (r Ref) Entity() Ref { return r }

// Target is one (entity, action) pair. Targets are values: they are derived
// fresh by the resolver and replaced, never mutated.
type Target interface {
	Entity() Ref
	Action() Action
	// Name is a short label such as "transfer:extension".
	Name() string
	sealed()
}

type (
	Upgrade             struct{ Ref }
	Build               struct{ Ref }
	TransferToSpawn     struct{ Ref }
	TransferToExtension struct{ Ref }
	TransferToStorage   struct{ Ref }
	TransferToContainer struct{ Ref }
	TransferToTower     struct{ Ref }
	TransferToLink      struct{ Ref }
	FetchFromStorage    struct{ Ref }
	FetchFromContainer  struct{ Ref }
	FetchFromTower      struct{ Ref }
	FetchFromLink       struct{ Ref }

	// FetchFromSource harvests a source. Post, when set, is the only hex
	// the harvest may be performed from.
	FetchFromSource struct {
		Ref
		Post *world.HexCoord
	}

	// Park sends the agent toward a storage without acting on it.
	Park struct{ Ref }
)

func (Upgrade) Action() Action             { return ActionUpgrade }
func (Build) Action() Action               { return ActionBuild }
func (TransferToSpawn) Action() Action     { return ActionTransfer }
func (TransferToExtension) Action() Action { return ActionTransfer }
func (TransferToStorage) Action() Action   { return ActionTransfer }
func (TransferToContainer) Action() Action { return ActionTransfer }
func (TransferToTower) Action() Action     { return ActionTransfer }
func (TransferToLink) Action() Action      { return ActionTransfer }
func (FetchFromStorage) Action() Action    { return ActionWithdraw }
func (FetchFromContainer) Action() Action  { return ActionWithdraw }
func (FetchFromTower) Action() Action      { return ActionWithdraw }
func (FetchFromLink) Action() Action       { return ActionWithdraw }
func (FetchFromSource) Action() Action     { return ActionHarvest }
func (Park) Action() Action                { return ActionPark }

func (Upgrade) Name() string             { return "upgrade:controller" }
func (Build) Name() string               { return "build:site" }
func (TransferToSpawn) Name() string     { return "transfer:spawn" }
func (TransferToExtension) Name() string { return "transfer:extension" }
func (TransferToStorage) Name() string   { return "transfer:storage" }
func (TransferToContainer) Name() string { return "transfer:container" }
func (TransferToTower) Name() string     { return "transfer:tower" }
func (TransferToLink) Name() string      { return "transfer:link" }
func (FetchFromStorage) Name() string    { return "fetch:storage" }
func (FetchFromContainer) Name() string  { return "fetch:container" }
func (FetchFromTower) Name() string      { return "fetch:tower" }
func (FetchFromLink) Name() string       { return "fetch:link" }
func (FetchFromSource) Name() string     { return "fetch:source" }
func (Park) Name() string                { return "park:storage" }

func (Upgrade) sealed()             {}
func (Build) sealed()               {}
func (TransferToSpawn) sealed()     {}
func (TransferToExtension) sealed() {}
func (TransferToStorage) sealed()   {}
func (TransferToContainer) sealed() {}
func (TransferToTower) sealed()     {}
func (TransferToLink) sealed()      {}
func (FetchFromStorage) sealed()    {}
func (FetchFromContainer) sealed()  {}
func (FetchFromTower) sealed()      {}
func (FetchFromLink) sealed()       {}
func (FetchFromSource) sealed()     {}
func (Park) sealed()                {}

func refOf(s world.Structure) Ref { return Ref{ID: s.ID, Pos: s.Pos} }

// Transfer builds the deposit target for a structure.
func Transfer(s world.Structure) (Target, error) {
	r := refOf(s)
	switch s.Kind {
	case world.KindSpawn:
		return TransferToSpawn{r}, nil
	case world.KindExtension:
		return TransferToExtension{r}, nil
	case world.KindStorage:
		return TransferToStorage{r}, nil
	case world.KindContainer:
		return TransferToContainer{r}, nil
	case world.KindTower:
		return TransferToTower{r}, nil
	case world.KindLink:
		return TransferToLink{r}, nil
	}
	return nil, fmt.Errorf("transfer to %s: %w", s.Kind, world.ErrInvalidTarget)
}

// Fetch builds the withdraw target for a structure.
func Fetch(s world.Structure) (Target, error) {
	r := refOf(s)
	switch s.Kind {
	case world.KindStorage:
		return FetchFromStorage{r}, nil
	case world.KindContainer:
		return FetchFromContainer{r}, nil
	case world.KindTower:
		return FetchFromTower{r}, nil
	case world.KindLink:
		return FetchFromLink{r}, nil
	}
	return nil, fmt.Errorf("fetch from %s: %w", s.Kind, world.ErrInvalidTarget)
}

// ForController builds the upgrade target.
func ForController(s world.Structure) (Target, error) {
	if s.Kind != world.KindController {
		return nil, fmt.Errorf("upgrade %s: %w", s.Kind, world.ErrInvalidTarget)
	}
	return Upgrade{refOf(s)}, nil
}

// ForSite builds the build target.
func ForSite(cs world.ConstructionSite) Target {
	return Build{Ref{ID: cs.ID, Pos: cs.Pos}}
}

// ForSource builds the harvest target. A nil post allows any adjacent hex.
func ForSource(src world.Source, post *world.HexCoord) Target {
	return FetchFromSource{Ref: Ref{ID: src.ID, Pos: src.Pos}, Post: post}
}

// ParkAt builds the rally target for a storage.
func ParkAt(s world.Structure) (Target, error) {
	if s.Kind != world.KindStorage {
		return nil, fmt.Errorf("park at %s: %w", s.Kind, world.ErrInvalidTarget)
	}
	return Park{refOf(s)}, nil
}

// Describe formats a target for logs; nil prints as "none".
func Describe(t Target) string {
	if t == nil {
		return "none"
	}
	return fmt.Sprintf("%s %s@%s", t.Name(), t.Entity().ID, t.Entity().Pos)
}
