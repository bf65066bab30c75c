package strategy

import (
	"fmt"
	"log/slog"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// CustomSelector is an externally supplied selector for the custom slot.
// It receives the range-filtered set. Returning nil, an error, an entity
// outside that set, or panicking all degrade to the closest entity.
type CustomSelector func(valid []*model.Entity, actor *model.Actor) (*model.Entity, error)

// SetCustomSelector installs the delegate used by the custom strategy.
// nil removes it.
func (l *Library) SetCustomSelector(fn CustomSelector) {
	l.custom = fn
}

func (l *Library) selectCustom(valid []*model.Entity, actor *model.Actor) *model.Entity {
	if l.custom == nil {
		return Closest(valid, actor)
	}

	picked, err := callCustom(l.custom, valid, actor)
	if err != nil {
		slog.Warn("custom strategy failed, using closest", "err", err)
		return Closest(valid, actor)
	}
	if member := lookup(valid, picked); member != nil {
		return member
	}
	return Closest(valid, actor)
}

func callCustom(fn CustomSelector, valid []*model.Entity, actor *model.Actor) (picked *model.Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			picked, err = nil, fmt.Errorf("custom selector panic: %v", r)
		}
	}()
	return fn(valid, actor)
}

// lookup returns the member of valid matching e by identity or ID.
func lookup(valid []*model.Entity, e *model.Entity) *model.Entity {
	if e == nil {
		return nil
	}
	for _, v := range valid {
		if v == e || v.ID == e.ID {
			return v
		}
	}
	return nil
}
