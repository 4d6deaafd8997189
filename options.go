package docrecon

import (
	"github.com/chanfle/docrecon/forensic"
	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/segment"
)

// analysisOptions holds the per-stage configuration of an Analysis.
type analysisOptions struct {
	line    layout.LineConfig
	layout  layout.LayoutConfig
	segment segment.Config
	scan    forensic.ScanConfig
}

// defaultOptions returns the default configuration for every stage.
func defaultOptions() analysisOptions {
	return analysisOptions{
		line:    layout.DefaultLineConfig(),
		layout:  layout.DefaultLayoutConfig(),
		segment: segment.DefaultConfig(),
		scan:    forensic.DefaultScanConfig(),
	}
}

// WithLineConfig returns a new Analysis using the given line-clustering
// configuration.
func (a *Analysis) WithLineConfig(config layout.LineConfig) *Analysis {
	next := a.clone()
	next.options.line = config
	return next
}

// WithLayoutConfig returns a new Analysis using the given paragraph and
// indentation configuration.
func (a *Analysis) WithLayoutConfig(config layout.LayoutConfig) *Analysis {
	next := a.clone()
	next.options.layout = config
	return next
}

// WithSegmentConfig returns a new Analysis using the given
// boundary-detection configuration.
func (a *Analysis) WithSegmentConfig(config segment.Config) *Analysis {
	next := a.clone()
	next.options.segment = config
	return next
}

// WithScanConfig returns a new Analysis using the given tamper-scan
// configuration.
func (a *Analysis) WithScanConfig(config forensic.ScanConfig) *Analysis {
	next := a.clone()
	next.options.scan = config
	return next
}
