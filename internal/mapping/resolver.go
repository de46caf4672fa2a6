package mapping

import (
	"regexp"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
)

// Resolver classifies file names and finds the profile that applies to them.
type Resolver struct {
	pattern *regexp.Regexp
	config  *DataConfig
}

// NewResolver compiles the classification pattern of cfg.
// A pattern that does not compile is a fatal configuration error.
func NewResolver(cfg *DataConfig) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(cfg.FilePattern)
	if err != nil {
		return nil, &parsererror.ConfigError{Path: cfg.source, Reason: "file_pattern does not compile", Err: err}
	}
	return &Resolver{pattern: re, config: cfg}, nil
}

// Classify extracts (bank, account type, mapping type) from a file base name.
// The pattern must match at the start of the name and define exactly three groups.
func (r *Resolver) Classify(fileName string) (models.FileIdentity, error) {
	loc := r.pattern.FindStringSubmatchIndex(fileName)
	if loc == nil || loc[0] != 0 {
		return models.FileIdentity{}, &parsererror.PatternMismatchError{
			FileName: fileName, Pattern: r.pattern.String(), Groups: -1,
		}
	}

	if groups := r.pattern.NumSubexp(); groups != 3 {
		return models.FileIdentity{}, &parsererror.PatternMismatchError{
			FileName: fileName, Pattern: r.pattern.String(), Groups: groups,
		}
	}

	group := func(i int) string {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			return ""
		}
		return fileName[start:end]
	}

	return models.FileIdentity{
		Bank:        group(1),
		AccountType: group(2),
		MappingType: group(3),
	}, nil
}

// Resolve classifies fileName and returns the profile registered for its
// (mapping type, bank) pair.
func (r *Resolver) Resolve(fileName string) (models.FileIdentity, *Profile, error) {
	identity, err := r.Classify(fileName)
	if err != nil {
		return identity, nil, err
	}

	profile, ok := r.config.Profile(identity.MappingType, identity.Bank)
	if !ok {
		return identity, nil, &parsererror.ProfileNotFoundError{
			MappingType: identity.MappingType,
			Bank:        identity.Bank,
		}
	}
	return identity, profile, nil
}
