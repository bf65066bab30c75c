package model

import (
	"fmt"
	"strings"
)

// Element is an elemental affinity of an actor or entity.
// ElementNone means the entity has no affinity.
type Element uint8

const (
	ElementNone Element = iota

	// Heat family
	ElementFire
	ElementLava
	ElementSteam

	// Cold family
	ElementIce
	ElementFrost
	ElementMist

	// Energy family
	ElementLightning
	ElementPlasma
	ElementVoid
)

// Family groups three elements of one triad side.
type Family uint8

const (
	FamilyNone Family = iota
	FamilyHeat
	FamilyCold
	FamilyEnergy
)

var elementNames = [...]string{
	ElementNone:      "none",
	ElementFire:      "fire",
	ElementLava:      "lava",
	ElementSteam:     "steam",
	ElementIce:       "ice",
	ElementFrost:     "frost",
	ElementMist:      "mist",
	ElementLightning: "lightning",
	ElementPlasma:    "plasma",
	ElementVoid:      "void",
}

// String returns lower-case element name.
func (e Element) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return "unknown"
}

// Family returns the triad side of the element.
func (e Element) Family() Family {
	switch e {
	case ElementFire, ElementLava, ElementSteam:
		return FamilyHeat
	case ElementIce, ElementFrost, ElementMist:
		return FamilyCold
	case ElementLightning, ElementPlasma, ElementVoid:
		return FamilyEnergy
	default:
		return FamilyNone
	}
}

// Beats reports whether family f has the advantage over other.
// Heat beats cold, cold beats energy, energy beats heat.
func (f Family) Beats(other Family) bool {
	switch f {
	case FamilyHeat:
		return other == FamilyCold
	case FamilyCold:
		return other == FamilyEnergy
	case FamilyEnergy:
		return other == FamilyHeat
	default:
		return false
	}
}

// String returns lower-case family name.
func (f Family) String() string {
	switch f {
	case FamilyHeat:
		return "heat"
	case FamilyCold:
		return "cold"
	case FamilyEnergy:
		return "energy"
	default:
		return "none"
	}
}

// ParseElement converts a name to Element. Empty string maps to ElementNone.
func ParseElement(name string) (Element, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ElementNone, nil
	}
	for i, n := range elementNames {
		if n == name {
			return Element(i), nil
		}
	}
	return ElementNone, fmt.Errorf("unknown element %q", name)
}
