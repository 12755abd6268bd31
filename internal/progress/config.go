package progress

import "os"

// Config controls the progress engine.
type Config struct {
	Streak StreakPolicy
}

// DefaultConfig returns the strict streak policy.
func DefaultConfig() Config {
	return Config{Streak: StreakStrict}
}

// ConfigFromEnv reads LEARNPATH_STREAK_POLICY over the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("LEARNPATH_STREAK_POLICY"); v != "" {
		p, err := ParseStreakPolicy(v)
		if err != nil {
			return cfg, err
		}
		cfg.Streak = p
	}
	return cfg, nil
}
