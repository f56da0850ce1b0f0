package resolver

import (
	"github.com/talgya/colony/internal/roles"
	"github.com/talgya/colony/internal/target"
)

// Finder names one kind of candidate scan.
type Finder uint8

const (
	FindSpawnOrExtension Finder = iota
	FindTower
	FindStorage
	FindContainer
	FindLink
	FindConstructionSite // Container sites first, then any site
	FindController
	FindSource // Sources with energy left
)

func (f Finder) String() string {
	switch f {
	case FindSpawnOrExtension:
		return "spawn-or-extension"
	case FindTower:
		return "tower"
	case FindStorage:
		return "storage"
	case FindContainer:
		return "container"
	case FindLink:
		return "link"
	case FindConstructionSite:
		return "construction-site"
	case FindController:
		return "controller"
	case FindSource:
		return "source"
	default:
		return "unknown"
	}
}

// Threshold selects the capacity a candidate must offer.
type Threshold uint8

const (
	ThresholdAny       Threshold = iota // At least one unit
	ThresholdCarryLoad                  // One full load: carry units × unit capacity
	ThresholdFixed                      // Step.Amount
)

// Step is one entry of a strategy chain.
type Step struct {
	Find      Finder
	Action    target.Action // ActionTransfer or ActionWithdraw for store finders
	Threshold Threshold
	Amount    int // Used with ThresholdFixed
}

// Chain is the ordered strategy of a role. The first step that yields a
// candidate wins.
type Chain struct {
	Deliver []Step
	Collect []Step
}

func deliver(f Finder, th Threshold) Step {
	return Step{Find: f, Action: target.ActionTransfer, Threshold: th}
}

func collect(f Finder, th Threshold) Step {
	return Step{Find: f, Action: target.ActionWithdraw, Threshold: th}
}

var (
	stepSite       = Step{Find: FindConstructionSite, Action: target.ActionBuild}
	stepController = Step{Find: FindController, Action: target.ActionUpgrade}
	stepSource     = Step{Find: FindSource, Action: target.ActionHarvest}
)

// DefaultChains is the strategy table. Miners are resolved separately: they
// are bound to one source by ordinal.
func DefaultChains() map[roles.Role]Chain {
	return map[roles.Role]Chain{
		roles.RoleBuilder: {
			Deliver: []Step{
				deliver(FindSpawnOrExtension, ThresholdAny),
				stepSite,
				stepController,
			},
			Collect: []Step{
				collect(FindContainer, ThresholdCarryLoad),
				collect(FindStorage, ThresholdCarryLoad),
				stepSource,
			},
		},
		roles.RoleHauler: {
			Deliver: []Step{
				deliver(FindSpawnOrExtension, ThresholdAny),
				deliver(FindTower, ThresholdCarryLoad),
				deliver(FindStorage, ThresholdAny),
				stepController,
			},
			Collect: []Step{
				collect(FindContainer, ThresholdCarryLoad),
				collect(FindStorage, ThresholdCarryLoad),
			},
		},
		roles.RoleUpgrader: {
			Deliver: []Step{
				deliver(FindSpawnOrExtension, ThresholdAny),
				stepController,
			},
			Collect: []Step{
				collect(FindStorage, ThresholdCarryLoad),
				collect(FindContainer, ThresholdCarryLoad),
				stepSource,
			},
		},
		roles.RoleGeneric: {
			Deliver: []Step{
				deliver(FindSpawnOrExtension, ThresholdAny),
				deliver(FindTower, ThresholdCarryLoad),
				stepController,
			},
			Collect: []Step{
				collect(FindLink, ThresholdAny),
				collect(FindStorage, ThresholdCarryLoad),
				collect(FindContainer, ThresholdCarryLoad),
				stepSource,
			},
		},
	}
}
