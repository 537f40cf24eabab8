package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studyhub-client/internal/app"
	"studyhub-client/internal/config"
	"studyhub-client/internal/credential"
	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
	"studyhub-client/internal/infra/file"
	"studyhub-client/internal/infra/memory"
	pgslot "studyhub-client/internal/infra/postgres"
	redisslot "studyhub-client/internal/infra/redis"
	"studyhub-client/internal/logging"
	transport "studyhub-client/internal/transport/http"
)

// client is everything one command invocation needs, wired from config.
type client struct {
	cfg       config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	creds     *credential.Store
	session   *app.SessionFacade
	quizzes   *app.QuizStore
	summaries *app.SummaryStore
	closers   []func()
}

func newClient(cmd *cobra.Command, opts *rootOptions) (*client, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	c := &client{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	slot, err := c.openSlot(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.creds = credential.NewStore(slot)
	if err := c.creds.Init(ctx); err != nil {
		c.Close()
		return nil, err
	}

	net, err := transport.NewNetTransport(cfg.API.BaseURL, config.TTLDuration(cfg.API.Timeout, 30*time.Second))
	if err != nil {
		c.Close()
		return nil, err
	}
	nav := &terminalNavigator{out: cmd.ErrOrStderr()}
	pipeline := transport.NewPipeline(net, c.creds, nav,
		transport.WithLogger(logger),
		transport.WithMetrics(transport.NewMetrics(c.registry)),
	)

	c.session = app.NewSessionFacade(c.creds, gateway.NewAuthGateway(pipeline), nav, logger)
	c.quizzes = app.NewQuizStore(gateway.NewQuizGateway(pipeline), logger)
	c.summaries = app.NewSummaryStore(gateway.NewSummaryGateway(pipeline), logger)
	return c, nil
}

func (c *client) openSlot(ctx context.Context) (credential.Slot, error) {
	switch c.cfg.Session.Backend {
	case config.BackendMemory:
		return memory.NewTokenSlot(""), nil
	case config.BackendFile:
		path := c.cfg.Session.File
		if path == "" {
			path = file.DefaultPath()
		}
		return file.NewTokenSlot(path, credential.Key), nil
	case config.BackendRedis:
		if c.cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis addr not configured")
		}
		redisClient := redis.NewClient(&redis.Options{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
		c.closers = append(c.closers, func() { _ = redisClient.Close() })
		ttl := config.TTLDuration(c.cfg.Redis.TTL, 7*24*time.Hour)
		return redisslot.NewTokenSlot(redisClient, c.cfg.Session.Key, ttl), nil
	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, c.cfg, c.logger); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, c.cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		return pgslot.NewTokenSlot(pool, c.cfg.Session.Key), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", c.cfg.Session.Backend)
	}
}

// Close releases backend connections and, at debug level, logs the request
// counters gathered during the run.
func (c *client) Close() {
	if c.logger.Core().Enabled(zap.DebugLevel) {
		c.logMetrics()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.logger.Sync()
}

func (c *client) logMetrics() {
	families, err := c.registry.Gather()
	if err != nil {
		c.logger.Debug("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, label := range m.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			c.logger.Debug("metric", fields...)
		}
	}
}

// withClient wires a client for the duration of one command.
func withClient(opts *rootOptions, run func(cmd *cobra.Command, c *client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd, opts)
		if err != nil {
			return err
		}
		defer c.Close()
		return run(cmd, c, args)
	}
}

// terminalNavigator turns route changes into hints on the terminal.
type terminalNavigator struct {
	out io.Writer
}

func (n *terminalNavigator) Navigate(route string) {
	switch route {
	case domain.RouteLogin:
		fmt.Fprintln(n.out, "Please sign in: studyhub login")
	case domain.RouteRegister:
		fmt.Fprintln(n.out, "Create an account: studyhub register")
	case domain.RouteDashboard:
		fmt.Fprintln(n.out, "Signed in. Next: studyhub dashboard")
	default:
		fmt.Fprintf(n.out, "Go to %s\n", route)
	}
}
