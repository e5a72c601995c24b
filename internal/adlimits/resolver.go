// Package adlimits resolves the ad-limit parameters that apply to a
// request for an organization.
//
// An organization may carry global limits (adLimits) and per-app overrides
// (adLimitsPerApp). When a request targets exactly one package and that
// package has an override, the override is the only source of truth for
// the request: global limits are not merged in, key by key or otherwise.
package adlimits

import (
	"errors"
	"slices"

	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/rs/zerolog"
)

// Organization document fields.
const (
	AdLimitsField       = "adLimits"
	AdLimitsPerAppField = "adLimitsPerApp"
	SourcePackageField  = "sourcePackage"
)

// Source names the limit set a Resolver reads from.
type Source string

const (
	SourcePerApp Source = "per_app"
	SourceGlobal Source = "global"
	SourceNone   Source = "none"
)

// Resolver exposes typed reads over the active limit set.
//
// Both limit sets are fixed by the constructor and never recomputed, so a
// Resolver is safe for concurrent use.
type Resolver struct {
	perApp document.Document
	global document.Document
	logger zerolog.Logger
}

// New resolves the limit sets of organization for targetPackages.
func New(organization document.Document, targetPackages []string) *Resolver {
	return NewWithLogger(organization, targetPackages, zerolog.Nop())
}

// NewWithLogger is New with a logger that records swallowed read errors.
func NewWithLogger(organization document.Document, targetPackages []string, logger zerolog.Logger) *Resolver {
	r := &Resolver{logger: logger}
	r.perApp = r.resolvePerApp(organization, targetPackages)

	// Absent or malformed global limits both mean "no global limits".
	if global, err := organization.Document(AdLimitsField); err == nil {
		r.global = global
	}

	return r
}

// resolvePerApp returns the override of the single targeted package, or
// nil. Structural problems are logged and treated as "no override".
func (r *Resolver) resolvePerApp(organization document.Document, targetPackages []string) document.Document {
	if len(targetPackages) != 1 {
		return nil
	}

	entries, err := organization.Documents(AdLimitsPerAppField)
	if errors.Is(err, document.ErrMissingKey) {
		r.logger.Debug().Msg("organization has no ad limits per app")
		return nil
	}
	if err != nil {
		r.logger.Warn().Err(err).Msg("error init ad limits per app")
		return nil
	}

	for _, entry := range entries {
		// Entries without a package, or with a null one, match no target.
		if v, ok := entry.Lookup(SourcePackageField); !ok || v == nil {
			continue
		}
		sourcePackage, err := entry.String(SourcePackageField)
		if err != nil {
			r.logger.Warn().Err(err).Msg("error init ad limits per app")
			return nil
		}

		if !slices.Contains(targetPackages, sourcePackage) {
			continue
		}

		limits, err := entry.Document(AdLimitsField)
		if err != nil {
			r.logger.Warn().Err(err).Str("source_package", sourcePackage).Msg("error init ad limits per app")
			return nil
		}
		return limits
	}

	return nil
}

// Source reports which limit set the typed getters read from.
func (r *Resolver) Source() Source {
	switch {
	case r.perApp != nil:
		return SourcePerApp
	case r.global != nil:
		return SourceGlobal
	default:
		return SourceNone
	}
}

// HasAdLimits reports whether any limit set applies.
func (r *Resolver) HasAdLimits() bool {
	return r.perApp != nil || r.global != nil
}

// HasKey reports whether key exists in either set. Unlike the getters it
// looks at both, whatever the precedence.
func (r *Resolver) HasKey(key string) bool {
	return (r.perApp != nil && r.perApp.Has(key)) || (r.global != nil && r.global.Has(key))
}

// active returns the set the getters read: the per-app override when
// present, otherwise the global limits (possibly nil).
func (r *Resolver) active() document.Document {
	if r.perApp != nil {
		return r.perApp
	}
	return r.global
}

// Bool reads key from the active set, false on any error.
func (r *Resolver) Bool(key string) bool {
	v, err := r.active().Bool(key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Str("source", string(r.Source())).Msg("error reading boolean ad limit")
		return false
	}
	return v
}

// Int reads key from the active set, 0 on any error. Both 32 and 64 bit
// stored integers are accepted; doubles read as 0.
func (r *Resolver) Int(key string) int {
	v, err := r.active().Int(key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Str("source", string(r.Source())).Msg("error reading integer ad limit")
		return 0
	}
	return v
}

// String reads key from the active set, "" on any error.
func (r *Resolver) String(key string) string {
	v, err := r.active().String(key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Str("source", string(r.Source())).Msg("error reading string ad limit")
		return ""
	}
	return v
}
