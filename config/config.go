// Package config builds a raw allocator, a registry of pools and a prefetcher from a TOML file.
package config

import (
	"log/slog"

	"github.com/BurntSushi/toml"
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/blockpool"
	"github.com/vkngwrapper/blockpool/prefetch"
	"github.com/vkngwrapper/blockpool/rawalloc"
)

const (
	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

var destroyModes = map[string]blockpool.DestroyMode{
	"detach":        blockpool.DestroyDetach,
	"drain":         blockpool.DestroyDrain,
	"require-empty": blockpool.DestroyRequireEmpty,
}

type PrefetchConfig struct {
	Workers int `toml:"workers"`
}

// Config describes a set of pools sharing one raw allocator
type Config struct {
	// Allocator is "heap" or "mmap"; empty means "heap"
	Allocator     string `toml:"allocator"`
	UnitSize      int    `toml:"unit_size"`
	HighTierUnits int    `toml:"high_tier_units"`

	// HighTier makes every pool request high-tier placement for new blocks
	HighTier               bool `toml:"high_tier"`
	ExternallySynchronized bool `toml:"externally_synchronized"`

	// DestroyMode is "detach", "drain" or "require-empty"; empty means "drain"
	DestroyMode string `toml:"destroy_mode"`
	Orders      []uint `toml:"orders"`

	Prefetch PrefetchConfig `toml:"prefetch"`
}

// Load decodes and validates the TOML file at path
func Load(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, cerrors.Wrapf(err, "failed to decode %s", path)
	}

	return cfg, finishDecode(meta, cfg)
}

// Parse decodes and validates a TOML document
func Parse(data string) (Config, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, cerrors.Wrap(err, "failed to decode config")
	}

	return cfg, finishDecode(meta, cfg)
}

func finishDecode(meta toml.MetaData, cfg Config) error {
	undecoded := meta.Undecoded()
	if len(undecoded) > 0 {
		return cerrors.Newf("unknown config key %q", undecoded[0].String())
	}

	return cfg.Validate()
}

// Validate rejects unknown allocator names and destroy modes, out-of-range orders and duplicate orders
func (c Config) Validate() error {
	switch c.Allocator {
	case "", AllocatorHeap, AllocatorMmap:
	default:
		return cerrors.Newf("unknown allocator %q", c.Allocator)
	}

	if _, err := c.destroyMode(); err != nil {
		return err
	}

	if len(c.Orders) == 0 {
		return cerrors.New("at least one pool order must be configured")
	}

	seen := make(map[uint]bool, len(c.Orders))
	for _, order := range c.Orders {
		err := blockpool.CheckOrder(order)
		if err != nil {
			return err
		}
		if seen[order] {
			return cerrors.Wrapf(blockpool.ErrDuplicateOrder, "order %d is configured twice", order)
		}
		seen[order] = true
	}

	if c.Prefetch.Workers < 0 {
		return cerrors.Newf("prefetch workers must not be negative, but it is %d", c.Prefetch.Workers)
	}

	return nil
}

func (c Config) destroyMode() (blockpool.DestroyMode, error) {
	if c.DestroyMode == "" {
		return blockpool.DestroyDrain, nil
	}

	mode, ok := destroyModes[c.DestroyMode]
	if !ok {
		return 0, cerrors.Newf("unknown destroy mode %q", c.DestroyMode)
	}
	return mode, nil
}

// Runtime is everything Build creates from a Config
type Runtime struct {
	Allocator   blockpool.RawAllocator
	Registry    *blockpool.Registry
	Prefetcher  *prefetch.Prefetcher
	Accountant  *blockpool.UnitCounters
	DestroyMode blockpool.DestroyMode
}

// Build creates the allocator, one pool per configured order sharing one accountant, and a prefetcher
func (c Config) Build(logger *slog.Logger, device blockpool.Device) (*Runtime, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	mode, _ := c.destroyMode()
	options := rawalloc.Options{
		UnitSize:      c.UnitSize,
		HighTierUnits: c.HighTierUnits,
	}

	var allocator blockpool.RawAllocator
	if c.Allocator == AllocatorMmap {
		allocator, err = rawalloc.NewMmapAllocator(logger, options)
	} else {
		allocator, err = rawalloc.NewHeapAllocator(logger, options)
	}
	if err != nil {
		return nil, err
	}

	var allocFlags blockpool.AllocFlags
	if c.HighTier {
		allocFlags |= blockpool.AllocHighTier
	}
	var createFlags blockpool.PoolCreateFlags
	if c.ExternallySynchronized {
		createFlags |= blockpool.PoolCreateExternallySynchronized
	}

	accountant := &blockpool.UnitCounters{}
	registry := blockpool.NewRegistry(logger)
	for _, order := range c.Orders {
		pool, err := blockpool.New(logger, allocator, device, blockpool.PoolCreateInfo{
			Order:      order,
			AllocFlags: allocFlags,
			Flags:      createFlags,
			Accountant: accountant,
		})
		if err != nil {
			return nil, err
		}

		err = registry.Register(pool)
		if err != nil {
			return nil, err
		}
	}

	prefetcher, err := prefetch.New(logger, prefetch.Options{Workers: c.Prefetch.Workers})
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Allocator:   allocator,
		Registry:    registry,
		Prefetcher:  prefetcher,
		Accountant:  accountant,
		DestroyMode: mode,
	}, nil
}

// Close stops the prefetcher and destroys every pool with the configured destroy mode
func (r *Runtime) Close() error {
	r.Prefetcher.Release()
	return r.Registry.Destroy(r.DestroyMode)
}
