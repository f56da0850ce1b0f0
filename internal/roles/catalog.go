// Package roles is the static catalog of worker roles: body composition,
// spawn cost and the carry/work multipliers used by capacity thresholds.
package roles

import (
	"strconv"
	"strings"

	"github.com/talgya/colony/internal/world"
)

// Role determines body composition and resolver chains.
type Role uint8

const (
	RoleGeneric Role = iota
	RoleUpgrader
	RoleBuilder
	RoleHauler
	RoleMiner
)

// All lists every role in catalog order.
var All = []Role{RoleGeneric, RoleUpgrader, RoleBuilder, RoleHauler, RoleMiner}

func (r Role) String() string {
	switch r {
	case RoleUpgrader:
		return "upgrader"
	case RoleBuilder:
		return "builder"
	case RoleHauler:
		return "hauler"
	case RoleMiner:
		return "miner"
	default:
		return "generic"
	}
}

// Component is a run of identical body parts.
type Component struct {
	Part  world.Part
	Count int
}

// compositions is the body of each role, in spawn order.
var compositions = map[Role][]Component{
	RoleGeneric: {
		{world.PartWork, 1},
		{world.PartCarry, 1},
		{world.PartMove, 2},
	},
	RoleUpgrader: {
		{world.PartWork, 1},
		{world.PartCarry, 2},
		{world.PartMove, 2},
	},
	RoleBuilder: {
		{world.PartWork, 2},
		{world.PartCarry, 1},
		{world.PartMove, 3},
	},
	RoleHauler: {
		{world.PartWork, 1},
		{world.PartCarry, 3},
		{world.PartMove, 2},
	},
	RoleMiner: {
		{world.PartWork, 2},
		{world.PartCarry, 1},
		{world.PartMove, 1},
	},
}

// Compose returns the ordered body composition of a role.
func Compose(r Role) []Component {
	c := compositions[r]
	out := make([]Component, len(c))
	copy(out, c)
	return out
}

// Body expands the composition into the part list handed to a spawn.
func Body(r Role) []world.Part {
	var body []world.Part
	for _, c := range compositions[r] {
		for i := 0; i < c.Count; i++ {
			body = append(body, c.Part)
		}
	}
	return body
}

// Cost is the total spawn energy of the role's body.
func Cost(r Role) int {
	total := 0
	for _, p := range Body(r) {
		total += p.Cost()
	}
	return total
}

// CarryUnits is the number of carry parts.
func CarryUnits(r Role) int { return count(r, world.PartCarry) }

// WorkUnits is the number of work parts.
func WorkUnits(r Role) int { return count(r, world.PartWork) }

func count(r Role, p world.Part) int {
	n := 0
	for _, c := range compositions[r] {
		if c.Part == p {
			n += c.Count
		}
	}
	return n
}

// Parse splits an agent name such as "builder-0" into its role and ordinal.
// Unknown prefixes are generic laborers; an unparseable ordinal is 255.
func Parse(name string) (Role, int) {
	prefix, suffix := name, ""
	if i := strings.LastIndex(name, "-"); i >= 0 {
		prefix, suffix = name[:i], name[i+1:]
	}

	ordinal, err := strconv.Atoi(suffix)
	if err != nil || ordinal < 0 {
		ordinal = 0xFF
	}

	switch prefix {
	case "upgrader":
		return RoleUpgrader, ordinal
	case "builder":
		return RoleBuilder, ordinal
	case "carrier", "hauler":
		return RoleHauler, ordinal
	case "miner":
		return RoleMiner, ordinal
	default:
		return RoleGeneric, ordinal
	}
}
