package targeting

import (
	"errors"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/persistence"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/strategy"
)

// Errors reported at the API boundary. Degenerate tick input never errors.
var (
	ErrUnknownStrategy = strategy.ErrUnknownStrategy
	ErrUnknownMode     = persistence.ErrUnknownMode
	ErrInvalidConfig   = config.ErrInvalid
	ErrInvalidSnapshot = errors.New("invalid targeting snapshot")
)
