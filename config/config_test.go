package config_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/blockpool"
	"github.com/vkngwrapper/blockpool/config"
	"github.com/vkngwrapper/blockpool/rawalloc"
)

const sample = `
allocator = "heap"
unit_size = 256
high_tier_units = 8
high_tier = true
destroy_mode = "drain"
orders = [3, 0, 1]

[prefetch]
workers = 2
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse(sample)
	require.NoError(t, err)
	require.Equal(t, config.Config{
		Allocator:     config.AllocatorHeap,
		UnitSize:      256,
		HighTierUnits: 8,
		HighTier:      true,
		DestroyMode:   "drain",
		Orders:        []uint{3, 0, 1},
		Prefetch:      config.PrefetchConfig{Workers: 2},
	}, cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockpool.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, []uint{3, 0, 1}, cfg.Orders)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestParseRejectsInvalidConfigs(t *testing.T) {
	testCases := map[string]string{
		"UnknownKey":         "orders = [0]\ncolour = \"blue\"",
		"UnknownAllocator":   "allocator = \"slab\"\norders = [0]",
		"UnknownDestroyMode": "destroy_mode = \"leak\"\norders = [0]",
		"NoOrders":           "allocator = \"heap\"",
		"OrderTooLarge":      "orders = [31]",
		"DuplicateOrder":     "orders = [2, 2]",
		"NegativeWorkers":    "orders = [0]\n[prefetch]\nworkers = -1",
		"Malformed":          "orders = [",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse(doc)
			require.Error(t, err)
		})
	}

	_, err := config.Parse("orders = [2, 2]")
	require.ErrorIs(t, err, blockpool.ErrDuplicateOrder)
	_, err = config.Parse("orders = [31]")
	require.ErrorIs(t, err, blockpool.ErrInvalidOrder)
}

func TestBuild(t *testing.T) {
	cfg, err := config.Parse(sample)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runtime, err := cfg.Build(logger, nil)
	require.NoError(t, err)

	require.Equal(t, blockpool.DestroyDrain, runtime.DestroyMode)
	require.Equal(t, []uint{0, 1, 3}, runtime.Registry.Orders())

	heap, ok := runtime.Allocator.(*rawalloc.HeapAllocator)
	require.True(t, ok)
	require.Equal(t, 256, heap.UnitSize())

	pool, ok := runtime.Registry.Pool(3)
	require.True(t, ok)
	require.Equal(t, blockpool.AllocZero|blockpool.AllocComposite|blockpool.AllocHighTier, pool.Flags())
	require.Same(t, runtime.Accountant, pool.Accountant())

	block, _, err := pool.Alloc()
	require.NoError(t, err)
	require.True(t, block.IsHighTier())
	pool.Free(block, false)

	small, ok := runtime.Registry.Pool(0)
	require.True(t, ok)
	block, _, err = small.Alloc()
	require.NoError(t, err)
	small.Free(block, false)

	require.Equal(t, 9, runtime.Accountant.CachedUnits())

	require.NoError(t, runtime.Close())
	require.Equal(t, 0, heap.LiveBlocks())
	require.Equal(t, 0, runtime.Registry.Len())
	require.Equal(t, 0, runtime.Accountant.CachedUnits())
}

func TestBuildDefaults(t *testing.T) {
	cfg, err := config.Parse("orders = [0]\nexternally_synchronized = true\ndestroy_mode = \"detach\"")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runtime, err := cfg.Build(logger, nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, runtime.Close())
	}()

	require.Equal(t, blockpool.DestroyDetach, runtime.DestroyMode)

	heap, ok := runtime.Allocator.(*rawalloc.HeapAllocator)
	require.True(t, ok)
	require.Equal(t, rawalloc.DefaultUnitSize, heap.UnitSize())
}
