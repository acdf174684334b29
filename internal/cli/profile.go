package cli

import (
	"strings"

	"github.com/pkg/profile"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// profileModes maps --profile values to pkg/profile modes.
var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"mem":   profile.MemProfile,
	"block": profile.BlockProfile,
	"mutex": profile.MutexProfile,
	"trace": profile.TraceProfile,
}

// startProfile starts the named profile writing into dir and returns the
// function that stops it. An empty mode profiles nothing.
func startProfile(mode, dir string) (func(), error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return func() {}, nil
	}
	m, ok := profileModes[mode]
	if !ok {
		return nil, errors.NewValidationError("profile", "must be cpu, mem, block, mutex or trace", mode)
	}
	p := profile.Start(m, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	return p.Stop, nil
}
