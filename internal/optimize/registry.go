package optimize

import (
	"fmt"
	"sort"
)

var updaters = map[string]func(Config) Updater{
	"oc":   func(c Config) Updater { return NewOC(c.MoveLimit) },
	"beso": func(c Config) Updater { return NewBESO(c.VolChange, c.TopoChange) },
}

// NewUpdater builds the named updater from the config.
func NewUpdater(name string, cfg Config) (Updater, error) {
	ctor, ok := updaters[name]
	if !ok {
		return nil, fmt.Errorf("optimize: unknown updater %q (have %v)", name, Updaters())
	}
	return ctor(cfg), nil
}

// Updaters lists the registered updater names, sorted.
func Updaters() []string {
	names := make([]string, 0, len(updaters))
	for name := range updaters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
