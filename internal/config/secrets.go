package config

// RedactedConfig returns a copy of cfg with the Redis password replaced by
// "***", safe to log at startup.
func RedactedConfig(cfg *Config) Config {
	out := *cfg
	redact(&out.Redis.Password)

	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
