// Command authsession-seed provisions the baseline account set into a
// Redis or PostgreSQL account directory. It is idempotent and safe to
// run on every deploy.
//
// Configuration comes from the environment:
//
//	SEED_BACKEND       "redis" (default) or "postgres"
//	SEED_REDIS_ADDR    Redis address (default "localhost:6379")
//	SEED_REDIS_PREFIX  key prefix (default "authsession")
//	SEED_DATABASE_DSN  PostgreSQL DSN when SEED_BACKEND=postgres
//	SEED_DEV_ADMIN     optional "email:secret" pair for a dev superadmin
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	"github.com/modularsaas/authsession"
	"github.com/modularsaas/authsession/directory/pgdir"
	"github.com/modularsaas/authsession/directory/redisdir"
	"github.com/modularsaas/authsession/seed"
)

type config struct {
	Backend     string `env:"SEED_BACKEND" envDefault:"redis"`
	RedisAddr   string `env:"SEED_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"SEED_REDIS_PREFIX" envDefault:"authsession"`
	DatabaseDSN string `env:"SEED_DATABASE_DSN"`
	DevAdmin    string `env:"SEED_DEV_ADMIN"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal("authsession-seed: ", err)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dir, cleanup, err := openDirectory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := seed.EnsureDefaults(ctx, dir)
	if err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	fmt.Fprintf(os.Stdout, "seeded %d account(s)\n", created)

	if cfg.DevAdmin != "" {
		email, secret, ok := strings.Cut(cfg.DevAdmin, ":")
		if !ok || email == "" || secret == "" {
			return fmt.Errorf("SEED_DEV_ADMIN must be email:secret")
		}
		acct, err := seed.EnsureDevAdmin(ctx, dir, email, secret)
		if err != nil {
			return fmt.Errorf("seed dev admin: %w", err)
		}
		fmt.Fprintf(os.Stdout, "dev admin ready: %s (%s)\n", acct.Email, acct.Role)
	}

	return nil
}

func openDirectory(ctx context.Context, cfg config) (authsession.Directory, func(), error) {
	switch cfg.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisdir.New(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil

	case "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, nil, fmt.Errorf("SEED_DATABASE_DSN required for postgres backend")
		}
		conn, err := pgdir.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgdir.New(conn), func() { _ = conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
