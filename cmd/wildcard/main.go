// Command wildcard is the interactive surface over the feed engine: it
// plays the part of the UI collaborator, dispatching one engine operation
// per invocation and rendering the returned view.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wildcard/internal/assets"
	"wildcard/internal/config"
	"wildcard/internal/engine"
	"wildcard/internal/feed"
	"wildcard/internal/groups"
	"wildcard/internal/kv"
	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/session"
	"wildcard/internal/store"
)

// runtime wires the engine layers for one command invocation.
type runtime struct {
	cfg      *config.Config
	backend  kv.Store
	store    *store.Store
	session  *session.Session
	engine   *engine.Engine
	composer *feed.Composer
	groups   *groups.Manager
	shutdown func(context.Context) error
}

// openRuntime loads config, connects the configured store backend, and
// resumes any persisted session.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName: "wildcard",
		Environment: cfg.Env,
		Enabled:     cfg.TraceToStdout,
	})
	if err != nil {
		return nil, err
	}

	backend, err := kv.Open(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.New(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	assetStore := assets.NewStore(backend, cfg.AssetMaxDim)
	sess := session.New(st, assetStore, cfg.JWTSecret)
	if _, err := sess.Resume(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &runtime{
		cfg:      cfg,
		backend:  backend,
		store:    st,
		session:  sess,
		engine:   engine.New(st),
		composer: feed.NewComposer(st, rng, cfg.WildCardSlots),
		groups:   groups.NewManager(st),
		shutdown: shutdown,
	}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if r.shutdown != nil {
		_ = r.shutdown(ctx)
	}
	_ = r.backend.Close()
}

// withRuntime wraps a command body with runtime setup, teardown, and a
// correlation ID for the log stream.
func withRuntime(fn func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := observability.WithCorrelationID(cmd.Context(), observability.GenerateCorrelationID())
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)
		return fn(ctx, rt, cmd, args)
	}
}

var rootCmd = &cobra.Command{
	Use:           "wildcard",
	Short:         "Wild Card: a local-first social feed",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(
		signupCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		postCmd,
		feedCmd,
		videosCmd,
		bookmarksCmd,
		likeCmd,
		bookmarkCmd,
		shareCmd,
		viewCmd,
		commentCmd,
		deleteCmd,
		followCmd,
		profileCmd,
		profileImageCmd,
		searchCmd,
		notificationsCmd,
		groupCmd,
		seedCmd,
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// Engine errors surface inline; none are fatal to the stored
		// data.
		fmt.Fprintln(os.Stderr, "error:", err)
		if models.IsNotFound(err) {
			fmt.Fprintln(os.Stderr, "(nothing here yet)")
		}
		os.Exit(1)
	}
}
