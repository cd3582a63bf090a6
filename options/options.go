// Package options provides a set of options that configure the behavior of the resolver.
package options

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/internal/worker"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
)

const (
	DefaultConfigName = "wilson.hcl"
	DefaultCacheDir   = ".wilson-cache"
	DefaultVersion    = "0.0.0"

	DefaultScriptExt   = ".js"
	DefaultTemplateExt = ".html"
	DefaultStyleExt    = ".scss"

	DefaultMarkupPrefix      = "ht"
	DefaultDeclarationObject = "wilson"
	DefaultBuiltinSigil      = "$"

	DefaultChangeListName = "changes.json"
)

var (
	defaultNoise = []string{".*", "*~", "Thumbs.db", "node_modules"}

	// DefaultCoreNames are framework-provided injectables that are never resolved as services.
	DefaultCoreNames = []string{"angular", "wilson", "_", "window", "document"}
)

// Roots are the directories that hold entities, one entity per immediate subdirectory.
type Roots struct {
	Pages     []string
	Blocks    []string
	Behaviors string
	Services  []string
	Guides    string
}

// ResolverOptions represents options that configure the behavior of the resolver.
type ResolverOptions struct {
	// Logger is passed to every package explicitly.
	Logger log.Logger

	Writer    io.Writer
	ErrWriter io.Writer

	// ConfigPath is the HCL file the options were read from, if any.
	ConfigPath string

	// WorkingDir is the project root. Every root and artifact path is relative to it.
	WorkingDir string

	Roots Roots

	// CacheDir holds the persisted libraries, resolved components and bundles.
	CacheDir string

	// Version is the currently served component version.
	Version string

	// UseCache disabled forces a rebuild of the libraries on the first read of the process.
	UseCache bool

	// Noise are glob patterns of directory entries that are never entities or artifacts.
	Noise []string

	// IgnoredServices are never resolved, in addition to CoreNames.
	IgnoredServices []string

	// CoreNames are framework-core names that appear as injected parameters but are no services.
	CoreNames []string

	// CoreDependencies are services always loaded in the core bundle.
	CoreDependencies []string

	// AppScripts are parsed in app mode; their dependencies join the core bundle.
	AppScripts []string

	// CoreScripts lead the core bundle verbatim.
	CoreScripts []string

	ScriptExt   string
	TemplateExt string
	StyleExt    string

	MarkupPrefix      string
	DeclarationObject string
	BuiltinSigil      string

	// Parallelism caps concurrent filesystem reads.
	Parallelism int

	// ChangeListPath is consumed by the incremental updater.
	ChangeListPath string

	// ScriptURLPrefix maps project-relative script paths to URLs in resolved output.
	ScriptURLPrefix string

	// BundleURLPrefix maps bundle paths to URLs in resolved output.
	BundleURLPrefix string

	// BundleScripts makes servable output reference the component bundle instead of the scripts.
	BundleScripts bool

	TelemetryExporter string

	// Tags populate the context filter registry.
	Tags []filter.AttributeHandler
}

// NewResolverOptions creates a new ResolverOptions object with reasonable defaults for real usage.
func NewResolverOptions() *ResolverOptions {
	return &ResolverOptions{
		Logger:            log.New(),
		Writer:            os.Stdout,
		ErrWriter:         os.Stderr,
		WorkingDir:        ".",
		CacheDir:          DefaultCacheDir,
		Version:           DefaultVersion,
		UseCache:          true,
		Noise:             append([]string(nil), defaultNoise...),
		CoreNames:         append([]string(nil), DefaultCoreNames...),
		ScriptExt:         DefaultScriptExt,
		TemplateExt:       DefaultTemplateExt,
		StyleExt:          DefaultStyleExt,
		MarkupPrefix:      DefaultMarkupPrefix,
		DeclarationObject: DefaultDeclarationObject,
		BuiltinSigil:      DefaultBuiltinSigil,
		Parallelism:       worker.DefaultMaxWorkers,
		TelemetryExporter: telemetry.NoneExporter,
		Roots: Roots{
			Pages:     []string{"client/components/pages"},
			Blocks:    []string{"client/components/blocks"},
			Behaviors: "client/behaviors",
			Services:  []string{"client/services"},
			Guides:    "client/guides",
		},
	}
}

// NewResolverOptionsForTest returns options rooted at workingDir with a silent logger.
func NewResolverOptionsForTest(workingDir string) *ResolverOptions {
	opts := NewResolverOptions()
	opts.Logger = log.New(log.WithOutput(io.Discard))
	opts.Writer = io.Discard
	opts.ErrWriter = io.Discard
	opts.WorkingDir = workingDir

	return opts
}

// Clone performs a deep copy of `opts`.
func (opts *ResolverOptions) Clone() *ResolverOptions {
	clone := *opts
	clone.Roots.Pages = append([]string(nil), opts.Roots.Pages...)
	clone.Roots.Blocks = append([]string(nil), opts.Roots.Blocks...)
	clone.Roots.Services = append([]string(nil), opts.Roots.Services...)
	clone.Noise = append([]string(nil), opts.Noise...)
	clone.IgnoredServices = append([]string(nil), opts.IgnoredServices...)
	clone.CoreNames = append([]string(nil), opts.CoreNames...)
	clone.CoreDependencies = append([]string(nil), opts.CoreDependencies...)
	clone.AppScripts = append([]string(nil), opts.AppScripts...)
	clone.CoreScripts = append([]string(nil), opts.CoreScripts...)
	clone.Tags = append([]filter.AttributeHandler(nil), opts.Tags...)

	return &clone
}

// Normalize makes WorkingDir absolute and resolves CacheDir and ChangeListPath against it.
func (opts *ResolverOptions) Normalize() error {
	workingDir, err := util.CanonicalPath(opts.WorkingDir, ".")
	if err != nil {
		return err
	}

	opts.WorkingDir = workingDir

	if opts.CacheDir, err = util.CanonicalPath(opts.CacheDir, workingDir); err != nil {
		return err
	}

	if opts.ChangeListPath == "" {
		opts.ChangeListPath = filepath.Join(opts.CacheDir, DefaultChangeListName)
	}

	if opts.ChangeListPath, err = util.CanonicalPath(opts.ChangeListPath, workingDir); err != nil {
		return err
	}

	return opts.Validate()
}

// Validate checks the options for values the resolver cannot work with.
func (opts *ResolverOptions) Validate() error {
	if opts.Version == "" {
		return errors.New(InvalidOptionError{Name: "version", Reason: "must not be empty"})
	}

	for name, ext := range map[string]string{
		"script_ext":   opts.ScriptExt,
		"template_ext": opts.TemplateExt,
		"style_ext":    opts.StyleExt,
	} {
		if len(ext) < 2 || ext[0] != '.' {
			return errors.New(InvalidOptionError{Name: name, Reason: "must start with a dot"})
		}
	}

	if opts.MarkupPrefix == "" {
		return errors.New(InvalidOptionError{Name: "markup_prefix", Reason: "must not be empty"})
	}

	return nil
}

// IgnoreList returns the names the extractor drops: core names plus explicitly ignored services.
func (opts *ResolverOptions) IgnoreList() []string {
	return util.RemoveDuplicatesFromList(append(append([]string(nil), opts.CoreNames...), opts.IgnoredServices...))
}

// Registry builds the context filter registry from the configured tags.
func (opts *ResolverOptions) Registry() (*filter.Registry, error) {
	handlers := make([]filter.TagHandler, 0, len(opts.Tags))
	for _, tag := range opts.Tags {
		handlers = append(handlers, tag)
	}

	return filter.NewRegistry(handlers...)
}

// InvalidOptionError is returned by Validate.
type InvalidOptionError struct {
	Name   string
	Reason string
}

func (err InvalidOptionError) Error() string {
	return "invalid option " + err.Name + ": " + err.Reason
}
