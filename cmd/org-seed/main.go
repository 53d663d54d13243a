package main

import (
	"context"
	"os"

	orgrepo "salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/organization/seed"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/db"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/jackc/pgx/v5"
)

const defaultSeedFile = "seed/organization.yaml"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	path := os.Getenv("ORG_SEED_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = defaultSeedFile
	}
	log.Info("starting organization seed", "file", path)

	val := validator.New()
	if err := seed.RegisterRoleValidation(val); err != nil {
		panic("failed to register role validation: " + err.Error())
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error("failed to open seed file", "error", err)
		panic("failed to open seed file: " + err.Error())
	}
	defer f.Close()

	file, err := seed.Parse(f, val)
	if err != nil {
		log.Error("failed to parse seed file", "error", err)
		panic("failed to parse seed file: " + err.Error())
	}

	ctx := context.Background()
	if err := db.RunMigrations(ctx, cfg); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var summary seed.Summary
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		s, err := seed.Apply(ctx, orgrepo.New(tx), file)
		summary = s
		return err
	})
	if err != nil {
		log.Error("organization seed failed; nothing was written", "error", err)
		return
	}

	log.Info("organization seed complete",
		"groups", summary.Groups,
		"orgs", summary.Orgs,
		"users", summary.Users,
		"products", summary.Products,
	)
}
