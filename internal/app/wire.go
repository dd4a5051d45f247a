package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"

	s3blob "github.com/arbscan/arbwatch/internal/blob/s3"
	"github.com/arbscan/arbwatch/internal/cache/redis"
	"github.com/arbscan/arbwatch/internal/config"
	"github.com/arbscan/arbwatch/internal/domain"
	"github.com/arbscan/arbwatch/internal/notify"
	"github.com/arbscan/arbwatch/internal/report"
	"github.com/arbscan/arbwatch/internal/store/postgres"
	"github.com/arbscan/arbwatch/internal/venue/binance"
	"github.com/arbscan/arbwatch/internal/venue/univ2"
)

// Stream is a background feed that must run for its venue's PriceSource to
// serve quotes (currently the Binance bookTicker subscription).
type Stream interface {
	Run(ctx context.Context) error
}

// Dependencies bundles everything the application needs to run the scan
// loop. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Pair    domain.TokenPair
	Sources []domain.PriceSource
	Streams []Stream
	Sinks   []domain.ReportSink

	// Archive is non-nil when the S3 sink is wired; the app flushes its
	// final partial batch on shutdown.
	Archive *report.ArchiveSink
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pair := domain.TokenPair{
		Base: domain.Token{
			Symbol:   cfg.Pair.Base.Symbol,
			Address:  cfg.Pair.Base.Address,
			Decimals: cfg.Pair.Base.Decimals,
		},
		Quote: domain.Token{
			Symbol:   cfg.Pair.Quote.Symbol,
			Address:  cfg.Pair.Quote.Address,
			Decimals: cfg.Pair.Quote.Decimals,
		},
	}
	deps := &Dependencies{Pair: pair}

	// --- Shared RPC client for on-chain venues ---
	var eth *ethclient.Client
	for _, v := range cfg.Venues {
		if v.Kind == config.VenueKindUniV2Router {
			client, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: dial rpc %s: %w", cfg.Chain.RPCURL, err)
			}
			eth = client
			closers = append(closers, client.Close)
			break
		}
	}

	// --- Price sources, one per configured venue ---
	for _, v := range cfg.Venues {
		switch v.Kind {
		case config.VenueKindUniV2Router:
			deps.Sources = append(deps.Sources, univ2.NewQuoter(v.Name, eth, v.Router, pair))
		case config.VenueKindBinance:
			src := binance.New(binance.Config{
				Name:   v.Name,
				WSHost: v.WSHost,
				Symbol: v.Symbol,
				MaxAge: v.MaxAge.Duration,
			}, logger)
			deps.Sources = append(deps.Sources, src)
			deps.Streams = append(deps.Streams, src)
		default:
			cleanup()
			return nil, nil, fmt.Errorf("wire: unsupported venue kind %q", v.Kind)
		}
	}

	// --- Sinks: log always, notify when configured, persistence in full mode ---
	deps.Sinks = append(deps.Sinks, report.NewLogSink(logger))

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)
		deps.Sinks = append(deps.Sinks, report.NewNotifySink(notifier))
	}

	if strings.ToLower(cfg.Mode) != "full" {
		return deps, cleanup, nil
	}

	// --- Redis quote cache + signal bus ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Sinks = append(deps.Sinks, report.NewRedisSink(
			redis.NewQuoteCache(redisClient),
			redis.NewSignalBus(redisClient),
		))
	}

	// --- Postgres opportunity history ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Sinks = append(deps.Sinks, report.NewPostgresSink(
			postgres.NewOpportunityStore(pgClient.Pool()),
		))
	}

	// --- S3 tick archive ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archive := report.NewArchiveSink(
			s3blob.NewWriter(s3Client),
			cfg.Scan.ArchivePrefix,
			cfg.Scan.ArchiveEvery,
		)
		deps.Sinks = append(deps.Sinks, archive)
		deps.Archive = archive
	}

	return deps, cleanup, nil
}
