// Package main provides the game server binary: a TCP listener speaking the
// newline-delimited JSON protocol, backed by a phrase catalogue and a
// leaderboard store.
package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/z26games/wof/internal/config"
	"github.com/z26games/wof/internal/game/bot"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/game/session"
	"github.com/z26games/wof/internal/game/wheel"
	"github.com/z26games/wof/internal/gameserver"
	"github.com/z26games/wof/internal/importer"
	"github.com/z26games/wof/internal/netwire"
	"github.com/z26games/wof/internal/observability"
	"github.com/z26games/wof/internal/server"
	"github.com/z26games/wof/internal/storage"
	"github.com/z26games/wof/internal/storage/memory"
	"github.com/z26games/wof/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/server.yaml", "path to configuration file")
	portArg := flag.String("port", "", "listen port override; malformed values keep the configured port")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	// Lenient port override: junk on the command line keeps the configured port.
	if *portArg != "" {
		if p, perr := strconv.Atoi(*portArg); perr == nil && p >= 1 && p <= 65535 {
			cfg.Server.Port = p
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Driver),
	)

	// Open the store.
	dbStart := time.Now()
	var store storage.Store
	var pgStore *postgres.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err = postgres.NewStore(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		store = pgStore
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	default:
		mem := memory.New()
		if cfg.Storage.Seed != "" {
			imp := importer.New(importer.NewYAMLSource(), logger)
			stats, err := imp.Run(ctx, cfg.Storage.Seed, mem)
			if err != nil {
				logger.Fatal("seeding memory store", zap.String("file", cfg.Storage.Seed), zap.Error(err))
			}
			logger.Info("memory store seeded",
				zap.String("file", cfg.Storage.Seed),
				zap.Int("imported", stats.Imported),
			)
		}
		store = mem
	}

	// A server with no puzzles cannot deal a round.
	categories, err := store.Categories(ctx)
	if err != nil {
		logger.Fatal("reading phrase catalogue", zap.Error(err))
	}
	if len(categories) == 0 {
		logger.Fatal("phrase catalogue is empty; import a phrase pack first")
	}
	logger.Info("phrase catalogue ready", zap.Int("categories", len(categories)))

	// Build the wheel.
	src := wheel.NewCryptoSource()
	sectors := wheel.DefaultSectors()
	if len(cfg.Wheel.CashValues) > 0 {
		sectors = wheel.Sectors(cfg.Wheel.CashValues, cfg.Wheel.LoseTurns, cfg.Wheel.Bankrupts)
	}
	w, err := wheel.New(sectors, src, logger)
	if err != nil {
		logger.Fatal("building wheel", zap.Error(err))
	}

	// Pick the automated-player policy.
	var policy bot.Policy = bot.NewWeightedPolicy(src)
	var luaPolicy *bot.LuaPolicy
	if cfg.Bots.Script != "" {
		luaPolicy, err = bot.NewLuaPolicy(cfg.Bots.Script, cfg.Bots.InstructionLimit, policy, logger)
		if err != nil {
			logger.Fatal("loading bot policy script", zap.String("script", cfg.Bots.Script), zap.Error(err))
		}
		policy = luaPolicy
		logger.Info("bot policy script loaded", zap.String("script", cfg.Bots.Script))
	}

	rules := match.Rules{Rounds: cfg.Game.Rounds, TargetScore: cfg.Game.TargetScore}

	// The acceptor is both the dispatcher's transport and its Sender, so it
	// is built first and handed its handler afterwards.
	acceptor := netwire.NewAcceptor(cfg.Server, nil, logger)
	directory := session.NewDirectory(rules, w, acceptor, logger)
	acceptor.SetHandler(gameserver.NewServer(directory, store, acceptor, policy, logger))

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("acceptor", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	lifecycle.Add("store", &server.FuncService{
		StartFn: func() error {
			if pgStore == nil {
				// The memory store needs no health loop; block until shutdown.
				select {}
			}
			for {
				time.Sleep(30 * time.Second)
				if err := pgStore.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			store.Close()
			if luaPolicy != nil {
				luaPolicy.Close()
			}
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("rounds", rules.Rounds),
		zap.Int("target_score", rules.TargetScore),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
