// Package hclparse provides a wrapper around the HCL2 parser to handle diagnostics and errors in a more user-friendly way.
//
// Diagnostics are routed through one place, see `handleDiagnostics`, so callers can decide to
// print them, to drop some of them or to halt on them.
package hclparse

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/pkg/log"
	"golang.org/x/term"
)

const defaultDiagnosticsWidth = 80

type Parser struct {
	*hclparse.Parser
	diagsWriterFunc func(hcl.Diagnostics) error
	logger          log.Logger
}

type Option func(*Parser) *Parser

// WithLogger sets the logger used to report parse failures.
func WithLogger(logger log.Logger) Option {
	return func(parser *Parser) *Parser {
		parser.logger = logger
		return parser
	}
}

// WithDiagnosticsWriter prints diagnostics to writer before they are returned as an error.
func WithDiagnosticsWriter(writer io.Writer, disableColor bool) Option {
	return func(parser *Parser) *Parser {
		diagsWriter := parser.GetDiagnosticsWriter(writer, disableColor)

		parser.diagsWriterFunc = func(diags hcl.Diagnostics) error {
			if !diags.HasErrors() {
				return nil
			}

			if err := diagsWriter.WriteDiagnostics(diags); err != nil {
				return errors.New(err)
			}

			return nil
		}

		return parser
	}
}

func NewParser(opts ...Option) *Parser {
	return (&Parser{
		Parser: hclparse.NewParser(),
		logger: log.Default(),
	}).withOptions(opts...)
}

func (parser *Parser) withOptions(opts ...Option) *Parser {
	for _, opt := range opts {
		parser = opt(parser)
	}

	return parser
}

// File is a parsed configuration file.
type File struct {
	*Parser
	*hcl.File
	ConfigPath string
}

// Decode decodes the file body into out, evaluating expressions in evalCtx.
func (file *File) Decode(out any, evalCtx *hcl.EvalContext) (err error) {
	defer recoverPanic(file.ConfigPath, &err)

	diags := gohcl.DecodeBody(file.Body, evalCtx, out)
	if err := file.handleDiagnostics(diags); err != nil {
		return errors.New(err)
	}

	return nil
}

func (parser *Parser) ParseFromFile(configPath string) (*File, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.New(err)
	}

	return parser.ParseFromBytes(content, configPath)
}

func (parser *Parser) ParseFromBytes(content []byte, configPath string) (file *File, err error) {
	// cty conversions panic on many malformed inputs.
	defer recoverPanic(configPath, &err)

	var (
		diags   hcl.Diagnostics
		hclFile *hcl.File
	)

	if filepath.Ext(configPath) == ".json" {
		hclFile, diags = parser.ParseJSON(content, configPath)
	} else {
		hclFile, diags = parser.ParseHCL(content, configPath)
	}

	if err := parser.handleDiagnostics(diags); err != nil {
		parser.logger.Debugf("Failed to parse %s: %v", configPath, diags)

		return nil, errors.New(err)
	}

	return &File{
		Parser:     parser,
		File:       hclFile,
		ConfigPath: configPath,
	}, nil
}

// GetDiagnosticsWriter returns a diagnostics writer sized to the terminal. Color is only used when
// stderr is a terminal.
func (parser *Parser) GetDiagnosticsWriter(writer io.Writer, disableColor bool) hcl.DiagnosticWriter {
	width := uint(defaultDiagnosticsWidth)
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		width = uint(cols)
	}

	color := !disableColor && term.IsTerminal(int(os.Stderr.Fd()))

	return hcl.NewDiagnosticTextWriter(writer, parser.Files(), width, color)
}

func (parser *Parser) handleDiagnostics(diags hcl.Diagnostics) error {
	if !diags.HasErrors() {
		return nil
	}

	if fn := parser.diagsWriterFunc; fn != nil {
		if err := fn(diags); err != nil {
			return err
		}
	}

	return diags
}
