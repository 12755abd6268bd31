package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/course"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/profile"
	"github.com/abhisek/learnpath/internal/progress"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/video"
)

// deps holds the services a command needs. Close releases the store and
// flushes the logger.
type deps struct {
	store    *store.Store
	log      *logger.Logger
	profiles *profile.Service
	courses  *course.Service
	progress *progress.Engine
}

func (d *deps) Close() {
	d.store.Close()
	d.log.Sync()
}

// openStore opens the database and the logger without any generation
// capability. Its course service can read courses but not generate them.
func openStore(cmd *cobra.Command) (*deps, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	log, err := logger.New(os.Getenv("LEARNPATH_LOG_MODE"))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	progCfg, err := progress.ConfigFromEnv()
	if err != nil {
		st.Close()
		return nil, err
	}
	return &deps{
		store:    st,
		log:      log,
		profiles: profile.NewService(st, log),
		courses:  course.NewService(st, nil, nil, log),
		progress: progress.NewEngine(st, progCfg, log),
	}, nil
}

// buildDeps opens the store and wires course generation: the LLM provider
// (unless the mock generator is selected) and the video resolver.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	d, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	genCfg := curriculum.ConfigFromEnv()
	var provider llm.Provider
	if genCfg.Mode == curriculum.ModeLLM {
		provider, err = newProvider(ctx, d.store.EventRepo(), d.log)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("LLM provider not configured (set LEARNPATH_GENERATOR=mock to run offline): %w", err)
		}
	}
	gen, err := curriculum.New(genCfg, provider, d.log)
	if err != nil {
		d.Close()
		return nil, err
	}

	vidCfg := video.ConfigFromEnv()
	var searcher video.Searcher = video.Disabled{}
	if vidCfg.APIKey != "" {
		yt, err := video.NewYouTube(ctx, vidCfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("youtube client: %w", err)
		}
		searcher = yt
	} else {
		fmt.Fprintln(os.Stderr, "YouTube API key not set; courses will have no videos.")
	}

	asm := course.NewAssembler(d.store, video.NewResolver(searcher, vidCfg, d.log), course.ConfigFromEnv(), d.log)
	d.courses = course.NewService(d.store, gen, asm, d.log)
	return d, nil
}

// newProvider builds a provider from LEARNPATH_* settings, falling back to
// the vendors' standard key variables.
func newProvider(ctx context.Context, events store.EventRepo, log *logger.Logger) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, events, log)
}
