package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/blockboard/povauth/adapters/events"
	"github.com/blockboard/povauth/adapters/issuer"
	"github.com/blockboard/povauth/adapters/oracle"
	"github.com/blockboard/povauth/adapters/store"
	"github.com/blockboard/povauth/ports"
	"github.com/blockboard/povauth/service"
	httptransport "github.com/blockboard/povauth/transport/http"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type config struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":9000"`
	RedisURL        string        `env:"REDIS_URL"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	ChallengeTTL    time.Duration `env:"CHALLENGE_TTL" envDefault:"5m"`
	MinBalanceBTC   string        `env:"MIN_BALANCE_BTC" envDefault:"0.01"`
	BlockstreamBase string        `env:"BLOCKSTREAM_API_BASE"`
	BlockCypherBase string        `env:"BLOCKCYPHER_API_BASE"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	minBalanceSats, err := btcToSats(cfg.MinBalanceBTC)
	if err != nil {
		log.Fatalf("Invalid MIN_BALANCE_BTC: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Challenges are evicted well after they can no longer pass the TTL
	// check, so eviction never races verification.
	evictAfter := 2 * cfg.ChallengeTTL

	var (
		challengeStore ports.ChallengeStore
		eventPub       ports.EventPublisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		challengeStore = store.NewRedisStore(redisClient, evictAfter)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		challengeStore = store.NewMemoryStore(evictAfter)
	}

	blockstreamBase := cfg.BlockstreamBase
	if blockstreamBase == "" {
		blockstreamBase = oracle.DefaultBlockstreamBase
	}
	blockCypherBase := cfg.BlockCypherBase
	if blockCypherBase == "" {
		blockCypherBase = oracle.DefaultBlockCypherBase
	}
	balanceOracle := oracle.NewFallback(logger,
		oracle.NewBlockstream(blockstreamBase),
		oracle.NewBlockCypher(blockCypherBase),
	)

	tokenIssuer := issuer.NewJWTIssuer([]byte(cfg.JWTSecret))

	authService := service.NewAuthService(
		challengeStore,
		balanceOracle,
		tokenIssuer,
		eventPub,
		logger,
		service.Options{
			ChallengeTTL:   cfg.ChallengeTTL,
			MinBalanceSats: minBalanceSats,
		},
	)

	router := httptransport.SetupRouter(authService)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// btcToSats converts a decimal BTC amount like "0.01" to satoshis.
func btcToSats(btc string) (uint64, error) {
	d, err := decimal.NewFromString(btc)
	if err != nil {
		return 0, err
	}
	sats := d.Mul(decimal.New(1, 8))
	if sats.IsNegative() || !sats.IsInteger() {
		return 0, fmt.Errorf("amount %q is not a whole number of satoshis", btc)
	}
	return uint64(sats.IntPart()), nil
}
