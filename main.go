package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/mall-concierge/agent/account"
	"github.com/tanpawarit/mall-concierge/agent/concierge"
	"github.com/tanpawarit/mall-concierge/agent/llm"
	"github.com/tanpawarit/mall-concierge/agent/mall"
	"github.com/tanpawarit/mall-concierge/agent/prompt"
	statex "github.com/tanpawarit/mall-concierge/agent/state"
	"github.com/tanpawarit/mall-concierge/agent/tool"
	"github.com/tanpawarit/mall-concierge/api"
	"github.com/tanpawarit/mall-concierge/console"
	configx "github.com/tanpawarit/mall-concierge/pkg/config"
	chatapix "github.com/tanpawarit/mall-concierge/pkg/chatapi"
	_ "github.com/tanpawarit/mall-concierge/pkg/logger/autoload"
	"github.com/tanpawarit/mall-concierge/pkg/upstash"
)

const (
	modeConsole = "console"
	modeHTTP    = "http"
)

type AppConfig struct {
	Mode   string `envconfig:"MODE" default:"console"`
	UserID string `envconfig:"USER_ID" split_words:"true" default:"demo_user"`
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case modeConsole, modeHTTP:
	default:
		return fmt.Errorf("unsupported mode %q", c.Mode)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("concierge stopped")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llm.Config]("LLM")
	storeCfg := configx.MustNew[account.Config]("STORE")

	deps := &lazyUpstash{}

	snapshots, closeSnapshots, err := openSnapshotter(ctx, *storeCfg, deps)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	ledger, err := account.Open(ctx, snapshots)
	if err != nil {
		return err
	}

	registry, err := tool.New(mall.DubaiMall(), ledger)
	if err != nil {
		return err
	}

	chat, credErr := buildConcierge(ctx, *llmCfg, registry, prompt.LoadPromptSet().Concierge)

	switch strings.ToLower(strings.TrimSpace(appCfg.Mode)) {
	case modeHTTP:
		if chat == nil {
			return credErr
		}
		if credErr != nil {
			log.Warn().Err(credErr).Msg("chat model unavailable, message routes will return 503")
		}
		return runHTTP(ctx, chat, ledger, deps)
	default:
		if credErr != nil {
			return credErr
		}
		c, err := console.New(chat, ledger, appCfg.UserID, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		return c.Run(ctx)
	}
}

// buildConcierge returns an Unavailable Concierge together with the error
// when the credential is missing or the loop cannot be built. Preflight and
// model construction failures return a nil Concierge.
func buildConcierge(ctx context.Context, cfg llm.Config, registry *tool.Registry, systemPrompt string) (*concierge.Concierge, error) {
	if err := cfg.CheckCredential(); err != nil {
		return concierge.Unavailable(err), err
	}

	chatCfg := cfg.ChatAPI()
	if cfg.Preflight {
		if err := chatapix.Ping(ctx, chatapix.NewClient(chatCfg), chatCfg.Model); err != nil {
			return nil, fmt.Errorf("llm preflight: %w", err)
		}
		log.Info().Str("model", chatCfg.Model).Msg("llm preflight ok")
	}

	chatModel, err := chatCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("build chat model: %w", err)
	}

	c, err := concierge.New(ctx, chatModel, registry, systemPrompt)
	if err != nil {
		return concierge.Unavailable(err), err
	}
	return c, nil
}

func runHTTP(ctx context.Context, chat *concierge.Concierge, ledger *account.Ledger, deps *lazyUpstash) error {
	httpCfg := configx.MustNew[api.Config]("HTTP")
	sessionCfg := configx.MustNew[statex.Config]("SESSION")

	sessions, err := openSessionStore(*sessionCfg, deps)
	if err != nil {
		return err
	}

	h, err := api.NewHandler(chat, ledger, sessions)
	if err != nil {
		return err
	}
	return api.Serve(ctx, *httpCfg, api.NewRouter(h))
}

func openSnapshotter(ctx context.Context, cfg account.Config, deps *lazyUpstash) (account.Snapshotter, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case account.BackendMemory:
		return account.NewMemorySnapshotter(nil), noop, nil
	case account.BackendUpstash:
		client, err := deps.client()
		if err != nil {
			return nil, noop, err
		}
		snaps, err := account.NewUpstashSnapshotter(client, "")
		return snaps, noop, err
	case account.BackendPostgres:
		pgCfg := configx.MustNew[account.PostgresConfig]("POSTGRES")
		snaps, err := account.OpenPostgres(ctx, *pgCfg)
		if err != nil {
			return nil, noop, err
		}
		return snaps, func() {
			if err := snaps.Close(); err != nil {
				log.Warn().Err(err).Msg("close postgres")
			}
		}, nil
	default:
		snaps, err := account.NewFileSnapshotter(cfg.FilePath)
		return snaps, noop, err
	}
}

func openSessionStore(cfg statex.Config, deps *lazyUpstash) (statex.Store, error) {
	opts := []statex.StoreOption{
		statex.WithTTL(cfg.TTL),
		statex.WithKeyPrefix(cfg.KeyPrefix),
	}

	if strings.ToLower(strings.TrimSpace(cfg.Backend)) == statex.BackendUpstash {
		client, err := deps.client()
		if err != nil {
			return nil, err
		}
		return statex.NewUpstashRedisStore(client, opts...)
	}
	return statex.NewMemoryStore(opts...)
}

// lazyUpstash reads UPSTASH_REDIS_* only when a backend needs it, and shares
// one client between the account and session stores.
type lazyUpstash struct {
	c *upstash.Client
}

func (l *lazyUpstash) client() (*upstash.Client, error) {
	if l.c != nil {
		return l.c, nil
	}
	cfg, err := configx.New[upstash.Config]("UPSTASH_REDIS")
	if err != nil {
		return nil, err
	}
	c, err := upstash.NewClient(*cfg)
	if err != nil {
		return nil, err
	}
	l.c = c
	return c, nil
}
