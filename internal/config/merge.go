package config

// mergeProfile creates a new Profile by applying override on top of base.
// The merge rules are:
//   - String/int scalars: use override if non-zero; otherwise keep base.
//   - Bool scalars: always use override (false is a valid override value).
//   - Slice fields (Ignore, Include): use override slice if it is non-nil
//     and non-empty; otherwise keep base slice.
//
// Neither base nor override is mutated. A fresh Profile is always
// returned. The Extends field is always cleared on the returned profile.
func mergeProfile(base, override *Profile) *Profile {
	return &Profile{
		TempDir:   mergeString(base.TempDir, override.TempDir),
		LogFormat: mergeString(base.LogFormat, override.LogFormat),
		LogLevel:  mergeString(base.LogLevel, override.LogLevel),

		MinSize: mergeInt64(base.MinSize, override.MinSize),
		Workers: mergeInt(base.Workers, override.Workers),

		FollowSymlinks:   override.FollowSymlinks,
		GitTrackedOnly:   override.GitTrackedOnly,
		RespectGitignore: override.RespectGitignore,
		FastHash:         override.FastHash,

		Ignore:  mergeSlice(base.Ignore, override.Ignore),
		Include: mergeSlice(base.Include, override.Include),

		Extends: nil,
	}
}

// mergeString returns override if non-empty, otherwise base.
func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// mergeInt64 returns override if non-zero, otherwise base.
func mergeInt64(base, override int64) int64 {
	if override != 0 {
		return override
	}
	return base
}

// mergeInt returns override if non-zero, otherwise base.
func mergeInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

// mergeSlice returns a copy of override if it is non-nil and non-empty,
// otherwise returns a copy of base. Copies are made at the boundary to
// prevent callers from sharing slice backing arrays.
func mergeSlice(base, override []string) []string {
	if len(override) > 0 {
		result := make([]string, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]string, len(base))
		copy(result, base)
		return result
	}
	return nil
}
