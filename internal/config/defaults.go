package config

// DefaultProfile returns a new Profile populated with the built-in
// defaults. This profile is used as the base when no dupfind.toml is
// present or when a named profile omits fields.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultProfile() *Profile {
	return &Profile{
		TempDir:          "",
		FollowSymlinks:   true,
		Ignore:           append([]string{}, DefaultIgnorePatterns...),
		Include:          nil,
		GitTrackedOnly:   false,
		RespectGitignore: false,
		MinSize:          0,
		Workers:          0,
		LogFormat:        "text",
		LogLevel:         "info",
		FastHash:         false,
	}
}

// DefaultIgnorePatterns mirrors discovery.DefaultIgnorePatterns for use as
// the config layer's baseline, duplicated here (rather than imported) to
// avoid a dependency from config on discovery; the two lists are kept in
// sync by convention only, and no test compares them.
var DefaultIgnorePatterns = []string{
	".git/**",
	"node_modules/**",
	"dist/**",
	"build/**",
	".next/**",
	"target/**",
	"vendor/**",
	".dupfind/**",
}
