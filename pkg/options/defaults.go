package options

const (
	// DefaultDataDir specifies the default base directory where geostore
	// will store its page file, skeleton, and pool stream.
	DefaultDataDir = "/var/lib/geostore"

	// HeaderSize is the fixed 16-byte page header: 8 bytes for the
	// next-page pointer plus 8 bytes for the page-1 high-water-mark /
	// non-root previous-page pointer.
	HeaderSize uint32 = 16

	// DefaultPageSize is the reference physical page size (8 KiB).
	DefaultPageSize uint32 = 8192

	// DefaultCacheCapacity bounds the page cache to roughly 3000
	// physical-page equivalents.
	DefaultCacheCapacity = 3000

	// DefaultNodeSaturationPoint is the per-node value count above which
	// the spatial tree attempts to split.
	DefaultNodeSaturationPoint = 8000

	// DefaultPoolRecencyCapacity bounds the value pool's recent-write and
	// recent-read caches, and doubles as the pool's block size
	// (BLOCK_WRITE entries per block).
	DefaultPoolRecencyCapacity = 300
)

// DefaultUniverse is the root bounding box used by the concrete end-to-end
// scenarios this engine is tested against: a world-sized extent in
// decimicro-degrees.
var DefaultUniverse = BoundingBox{
	MinX: -1_800_000_000, MinY: -900_000_000,
	MaxX: 1_800_000_000, MaxY: 900_000_000,
}

// defaultOptions holds the default configuration settings for a geostore
// instance.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	PageSize:            DefaultPageSize,
	CacheCapacity:       DefaultCacheCapacity,
	NodeSaturationPoint: DefaultNodeSaturationPoint,
	PoolRecencyCapacity: DefaultPoolRecencyCapacity,
	Universe:            DefaultUniverse,
}

// NewDefaultOptions returns a copy of the package's default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
