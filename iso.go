// Package iso9660 is the facade that binds the decoding layers together:
// it bootstraps the volume descriptor set, the path table, and Rock Ridge
// detection, and resolves path components to directory records combining
// path-table lookups with on-demand child walks.
package iso9660

import (
	"strings"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/descriptor"
	"github.com/rstms/iso9660rr/pkg/directory"
	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/logging"
	"github.com/rstms/iso9660rr/pkg/pathtable"
	"github.com/rstms/iso9660rr/pkg/rockridge"
	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
	"github.com/rstms/iso9660rr/pkg/systemarea"
)

// Options configures how an image is opened.
type Options struct {
	logger       *logging.Logger
	cacheContent bool
	minFetch     int
	preferJoliet bool
}

// Option configures Options.
type Option func(*Options)

// WithLogger sets the logger used for diagnostic tracing.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithCacheContent enables caching of file-content sectors, not just
// metadata sectors.
func WithCacheContent(enabled bool) Option {
	return func(o *Options) { o.cacheContent = enabled }
}

// WithMinFetch sets the minimum number of sectors requested per fetch.
func WithMinFetch(n int) Option {
	return func(o *Options) { o.minFetch = n }
}

// WithPreferJoliet prefers a Joliet supplementary volume descriptor's root
// over the primary's when both are present. Joliet names are not
// translated from UCS-2; this only affects which root directory is used.
func WithPreferJoliet(enabled bool) Option {
	return func(o *Options) { o.preferJoliet = enabled }
}

func defaultOptions() Options {
	return Options{
		logger:   logging.DefaultLogger(),
		minFetch: 16,
	}
}

// ISO is an opened ISO 9660 image: its volume descriptor set, its decoded
// path table, and the root directory record path resolution starts from.
type ISO struct {
	src     *source.Source
	fetcher source.Fetcher

	fetcherCloser interface{ Close() error }

	// VolumeDescriptors maps a descriptor kind name ("boot", "primary",
	// "supplementary", "partition", "terminator") to the last descriptor of
	// that kind encountered in the descriptor set.
	VolumeDescriptors map[string]descriptor.Descriptor
	// PathTable is the decoded L-type path table.
	PathTable *pathtable.PathTable
	// Root is the root directory record.
	Root *directory.Record
	// SystemArea holds the raw, uninterpreted bytes of sectors 0-15.
	SystemArea systemarea.SystemArea

	pathCache map[string]*directory.Record
}

// Open opens the image at location on the local filesystem.
func Open(location string, opts ...Option) (*ISO, error) {
	fetcher, err := source.NewFileFetcher(location)
	if err != nil {
		return nil, err
	}
	iso, err := OpenFetcher(fetcher, opts...)
	if err != nil {
		fetcher.Close()
		return nil, err
	}
	iso.fetcherCloser = fetcher
	return iso, nil
}

// OpenFetcher opens an image through an arbitrary Fetcher (a local file, an
// HTTP range-request backend, or a test fixture).
func OpenFetcher(fetcher source.Fetcher, opts ...Option) (*ISO, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var srcOpts []source.Option
	if o.logger != nil {
		srcOpts = append(srcOpts, source.WithLogger(o.logger))
	}
	if o.cacheContent {
		srcOpts = append(srcOpts, source.WithCacheContent(true))
	}
	if o.minFetch > 0 {
		srcOpts = append(srcOpts, source.WithMinFetch(o.minFetch))
	}

	src := source.New(fetcher, srcOpts...)
	iso := &ISO{
		src:               src,
		fetcher:           fetcher,
		VolumeDescriptors: make(map[string]descriptor.Descriptor),
		pathCache:         make(map[string]*directory.Record),
	}
	if err := iso.bootstrap(o); err != nil {
		return nil, err
	}
	return iso, nil
}

// Close releases the underlying image handle, if Open opened one.
func (iso *ISO) Close() error {
	if iso.fetcherCloser == nil {
		return nil
	}
	return iso.fetcherCloser.Close()
}

func descriptorKind(d descriptor.Descriptor) string {
	switch d.(type) {
	case *descriptor.Boot:
		return "boot"
	case *descriptor.Primary:
		return "primary"
	case *descriptor.Supplementary:
		return "supplementary"
	case *descriptor.Partition:
		return "partition"
	case *descriptor.Terminator:
		return "terminator"
	default:
		return "unknown"
	}
}

// bootstrap performs the three-step construction: scan the descriptor set,
// decode the path table, and detect SUSP/Rock Ridge from the root record.
func (iso *ISO) bootstrap(o Options) error {
	saBytes, err := iso.fetcher.Fetch(0, consts.SystemAreaSectors)
	if err != nil {
		return err
	}
	copy(iso.SystemArea[:], saBytes)

	sector := uint32(consts.SystemAreaSectors)
	for {
		if err := iso.src.Seek(sector, consts.SectorLength, false); err != nil {
			return err
		}
		d, err := descriptor.Decode(iso.src)
		if err != nil {
			return err
		}
		iso.VolumeDescriptors[descriptorKind(d)] = d
		if _, ok := d.(*descriptor.Terminator); ok {
			break
		}
		sector++
	}

	primary, ok := iso.VolumeDescriptors["primary"].(*descriptor.Primary)
	if !ok {
		return isoerr.New(isoerr.BadDescriptor, sector, 0, "no primary volume descriptor found")
	}

	if err := iso.src.Seek(primary.PathTableLLocation, int(primary.PathTableSize), false); err != nil {
		return err
	}
	pt, err := pathtable.Decode(iso.src, int(primary.PathTableSize))
	if err != nil {
		return err
	}
	iso.PathTable = pt

	root := primary.RootRecord
	if o.preferJoliet {
		if supp, ok := iso.VolumeDescriptors["supplementary"].(*descriptor.Supplementary); ok && supp.IsJoliet() {
			root = supp.RootRecord
		}
	}
	iso.Root = root

	if err := iso.detectSusp(root); err != nil {
		return err
	}
	return nil
}

// detectSusp inspects the root's current-directory entry's embedded SUSP
// entries. If the first is an SP marker, SUSP (and potentially Rock Ridge)
// is enabled for every subsequent record decoded through this source.
func (iso *ISO) detectSusp(root *directory.Record) error {
	current, err := root.CurrentDirectory()
	if err != nil {
		return err
	}
	entries, err := current.SuspEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		iso.src.SuspStart = source.DisabledSuspStart()
		return nil
	}
	sp, ok := entries[0].(*susp.SP)
	if !ok {
		iso.src.SuspStart = source.DisabledSuspStart()
		return nil
	}

	var extensions []source.ExtensionID
	rockRidgeOn := false
	for _, e := range entries {
		er, ok := e.(*susp.ER)
		if !ok {
			continue
		}
		ext := er.Extension()
		extensions = append(extensions, ext)
		if rockridge.IsRockRidge(ext) {
			rockRidgeOn = true
		}
	}

	iso.src.SuspStart = source.SkipSuspStart(int(sp.LenSkp))
	iso.src.SuspExtensions = extensions
	iso.src.RockRidge = rockRidgeOn
	return nil
}

// Record resolves path, a sequence of path components from the root, to
// its directory record.
func (iso *ISO) Record(path ...string) (*directory.Record, error) {
	components := make([]string, len(path))
	copy(components, path)
	if !iso.src.RockRidge {
		for i, c := range components {
			components[i] = strings.ToUpper(c)
		}
	}

	current := iso.Root
	start := 0
	for i := len(components); i > 0; i-- {
		key := strings.Join(components[:i], "/")
		if rec, ok := iso.pathCache[key]; ok {
			current = rec
			start = i
			break
		}
	}

	if start == 0 && !iso.src.RockRidge && iso.PathTable != nil {
		// PathTable.Record only succeeds on a full match of components[:i],
		// never a partial one, so err == nil here is safe to treat as
		// "all i components resolved" and hand the remainder to FindChild.
		for i := len(components); i > 0; i-- {
			if entry, err := iso.PathTable.Record(components[:i]...); err == nil {
				rec, err := directory.RecordAtLocation(iso.src, entry.Location)
				if err == nil {
					current = rec
					start = i
					iso.pathCache[strings.Join(components[:i], "/")] = current
					break
				}
			}
		}
	}

	for i := start; i < len(components); i++ {
		child, err := current.FindChild(components[i])
		if err != nil {
			return nil, err
		}
		current = child
		if current.IsDirectory() {
			key := strings.Join(components[:i+1], "/")
			iso.pathCache[key] = current
		}
	}
	return current, nil
}
