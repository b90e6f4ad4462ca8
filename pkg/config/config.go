// Package config loads and hot-reloads the budget profiles that bound
// a generation run: maximum duration, channel count, texture
// resolution, and pattern size. Per the generation pipeline's design
// notes, none of this lives in package-level mutable state — every
// profile lookup goes through an explicit *ProfileStore instance, and
// the synchronous core entry point in pkg/generate takes a resolved
// BudgetProfile value, never touches a file, and never reads this
// package's hot-reload machinery at all.
//
// The hot-reload path exists for a different caller: a long-running
// batch-generation host that wants to pick up a new set of profiles
// without restarting. That caller owns a *ProfileStore and decides
// when (if ever) to call Watch.
package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BudgetProfile bounds the resources one generation run is allowed to
// consume. Exceeding any of these is reported as BudgetExceeded by
// pkg/validate rather than silently truncated.
type BudgetProfile struct {
	MaxDurationSeconds float64 `mapstructure:"max_duration_seconds"`
	MaxChannels        int     `mapstructure:"max_channels"`
	MaxWidth           int     `mapstructure:"max_width"`
	MaxHeight          int     `mapstructure:"max_height"`
	MaxPatternRows     int     `mapstructure:"max_pattern_rows"`
}

// DefaultProfile is the permissive profile used when a caller doesn't
// name one explicitly.
var DefaultProfile = BudgetProfile{
	MaxDurationSeconds: 30,
	MaxChannels:        64,
	MaxWidth:           4096,
	MaxHeight:          4096,
	MaxPatternRows:     512,
}

// ProfileStore holds a named set of budget profiles, safe for
// concurrent reads while Watch refreshes it in the background. The
// zero value is not usable; construct with NewProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]BudgetProfile

	watchMu     sync.Mutex
	watchActive bool
}

// NewProfileStore returns a store seeded with only "default".
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: map[string]BudgetProfile{"default": DefaultProfile}}
}

// Get returns the named profile and whether it was found.
func (s *ProfileStore) Get(name string) (BudgetProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	return p, ok
}

// Load reads a profile file (TOML, YAML, or JSON, by extension) whose
// top level maps profile names to BudgetProfile fields, merging the
// result into the store. An unreadable or malformed file leaves
// existing profiles untouched and returns the error.
func (s *ProfileStore) Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	merged, err := decodeProfiles(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, profile := range merged {
		s.profiles[name] = profile
	}
	return nil
}

// ReloadCallback is invoked once per profile present in the reloaded
// file after a successful hot-reload, whether or not that profile
// changed.
type ReloadCallback func(name string, profile BudgetProfile)

// Watch starts watching path for changes, calling callback for every
// profile present in the file each time it changes. Returns a stop
// function; fsnotify has no native "unwatch" primitive, so stop simply
// flags future callbacks as dropped rather than closing the watcher.
func (s *ProfileStore) Watch(path string, callback ReloadCallback) (stop func(), err error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	s.watchMu.Lock()
	s.watchActive = true
	s.watchMu.Unlock()

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		s.watchMu.Lock()
		active := s.watchActive
		s.watchMu.Unlock()
		if !active {
			return
		}

		merged, err := decodeProfiles(v)
		if err != nil {
			return
		}
		s.mu.Lock()
		for name, profile := range merged {
			s.profiles[name] = profile
		}
		s.mu.Unlock()

		if callback != nil {
			for name, profile := range merged {
				callback(name, profile)
			}
		}
	})

	return func() {
		s.watchMu.Lock()
		s.watchActive = false
		s.watchMu.Unlock()
	}, nil
}

func decodeProfiles(v *viper.Viper) (map[string]BudgetProfile, error) {
	var m map[string]BudgetProfile
	if err := v.Unmarshal(&m); err != nil {
		return nil, err
	}
	return m, nil
}
