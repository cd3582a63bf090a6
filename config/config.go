// Package config reads the resolver's HCL configuration file into options.
//
// Example:
//
//	version   = "2.4.0"
//	cache_dir = "~/.cache/wilson"
//
//	roots {
//	  pages    = ["client/components/pages"]
//	  blocks   = ["client/components/blocks"]
//	  services = ["client/services"]
//	}
//
//	tag "device" {
//	  attribute = "device-class"
//	  priority  = 5
//	  default   = "desktop"
//	}
package config

import (
	"os"
	"path/filepath"

	"github.com/hightail/wilson-sub000/config/hclparse"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/util"
)

// Config mirrors the HCL file. Attributes left out of the file keep the option defaults.
type Config struct {
	Version           *string `hcl:"version,optional"`
	CacheDir          *string `hcl:"cache_dir,optional"`
	UseCache          *bool   `hcl:"use_cache,optional"`
	ScriptExt         *string `hcl:"script_ext,optional"`
	TemplateExt       *string `hcl:"template_ext,optional"`
	StyleExt          *string `hcl:"style_ext,optional"`
	MarkupPrefix      *string `hcl:"markup_prefix,optional"`
	DeclarationObject *string `hcl:"declaration_object,optional"`
	BuiltinSigil      *string `hcl:"builtin_sigil,optional"`
	Parallelism       *int    `hcl:"parallelism,optional"`
	ChangeList        *string `hcl:"change_list,optional"`
	ScriptURLPrefix   *string `hcl:"script_url_prefix,optional"`
	BundleURLPrefix   *string `hcl:"bundle_url_prefix,optional"`
	BundleScripts     *bool   `hcl:"bundle_scripts,optional"`
	Telemetry         *string `hcl:"telemetry,optional"`

	Noise            []string `hcl:"noise,optional"`
	IgnoredServices  []string `hcl:"ignored_services,optional"`
	CoreNames        []string `hcl:"core_names,optional"`
	CoreDependencies []string `hcl:"core_dependencies,optional"`
	AppScripts       []string `hcl:"app_scripts,optional"`
	CoreScripts      []string `hcl:"core_scripts,optional"`

	Roots *RootsConfig `hcl:"roots,block"`
	Tags  []TagConfig  `hcl:"tag,block"`
}

// RootsConfig is the `roots` block.
type RootsConfig struct {
	Pages     []string `hcl:"pages,optional"`
	Blocks    []string `hcl:"blocks,optional"`
	Services  []string `hcl:"services,optional"`
	Behaviors *string  `hcl:"behaviors,optional"`
	Guides    *string  `hcl:"guides,optional"`
}

// TagConfig is a `tag "<name>"` block describing one context filter handler.
type TagConfig struct {
	Name      string  `hcl:"name,label"`
	Attribute *string `hcl:"attribute,optional"`
	Default   *string `hcl:"default,optional"`
	Priority  *int    `hcl:"priority,optional"`
}

// FindConfigFile returns the default config file in workingDir, or an empty string when there is none.
func FindConfigFile(workingDir string) string {
	path := filepath.Join(workingDir, options.DefaultConfigName)
	if util.IsFile(path) {
		return path
	}

	return ""
}

// ParseConfigFile parses the HCL file at configPath.
func ParseConfigFile(opts *options.ResolverOptions, configPath string) (*Config, error) {
	parser := hclparse.NewParser(
		hclparse.WithLogger(opts.Logger),
		hclparse.WithDiagnosticsWriter(opts.ErrWriter, false),
	)

	file, err := parser.ParseFromFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := file.Decode(cfg, NewEvalContext(filepath.Dir(configPath), os.Environ())); err != nil {
		return nil, errors.WithPrefix(err, "decoding %s", configPath)
	}

	return cfg, nil
}

// LoadFile parses configPath and applies it to opts.
func LoadFile(opts *options.ResolverOptions, configPath string) error {
	cfg, err := ParseConfigFile(opts, configPath)
	if err != nil {
		return err
	}

	opts.ConfigPath = configPath

	cfg.Apply(opts)

	opts.Logger.Debugf("Loaded config %s", configPath)

	return nil
}

// Apply copies every value set in the file to opts.
func (cfg *Config) Apply(opts *options.ResolverOptions) {
	setString(&opts.Version, cfg.Version)
	setString(&opts.CacheDir, cfg.CacheDir)
	setString(&opts.ScriptExt, cfg.ScriptExt)
	setString(&opts.TemplateExt, cfg.TemplateExt)
	setString(&opts.StyleExt, cfg.StyleExt)
	setString(&opts.MarkupPrefix, cfg.MarkupPrefix)
	setString(&opts.DeclarationObject, cfg.DeclarationObject)
	setString(&opts.BuiltinSigil, cfg.BuiltinSigil)
	setString(&opts.ChangeListPath, cfg.ChangeList)
	setString(&opts.ScriptURLPrefix, cfg.ScriptURLPrefix)
	setString(&opts.BundleURLPrefix, cfg.BundleURLPrefix)
	setString(&opts.TelemetryExporter, cfg.Telemetry)

	if cfg.UseCache != nil {
		opts.UseCache = *cfg.UseCache
	}

	if cfg.BundleScripts != nil {
		opts.BundleScripts = *cfg.BundleScripts
	}

	if cfg.Parallelism != nil {
		opts.Parallelism = *cfg.Parallelism
	}

	setList(&opts.Noise, cfg.Noise)
	setList(&opts.IgnoredServices, cfg.IgnoredServices)
	setList(&opts.CoreNames, cfg.CoreNames)
	setList(&opts.CoreDependencies, cfg.CoreDependencies)
	setList(&opts.AppScripts, cfg.AppScripts)
	setList(&opts.CoreScripts, cfg.CoreScripts)

	if roots := cfg.Roots; roots != nil {
		setList(&opts.Roots.Pages, roots.Pages)
		setList(&opts.Roots.Blocks, roots.Blocks)
		setList(&opts.Roots.Services, roots.Services)
		setString(&opts.Roots.Behaviors, roots.Behaviors)
		setString(&opts.Roots.Guides, roots.Guides)
	}

	for _, tag := range cfg.Tags {
		handler := filter.AttributeHandler{Tag: tag.Name}

		setString(&handler.Attribute, tag.Attribute)
		setString(&handler.Default, tag.Default)

		if tag.Priority != nil {
			handler.Priority = *tag.Priority
		}

		opts.Tags = append(opts.Tags, handler)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src []string) {
	if src != nil {
		*dst = src
	}
}
