// Command migrate applies schema migrations and one-time data backfills.
//
//	migrate -up              apply all pending migrations
//	migrate -down            roll back one migration
//	migrate -steps N         apply N migrations (negative rolls back)
//	migrate -backfill-elements
//	                         materialize element rows for boards that only
//	                         carry an embedded blocks document
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"boardbuilder/internal/config"
	"boardbuilder/internal/model"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/schema"
)

func main() {
	var (
		up       = flag.Bool("up", false, "apply all pending migrations")
		down     = flag.Bool("down", false, "roll back one migration")
		steps    = flag.Int("steps", 0, "apply this many migrations (negative rolls back)")
		backfill = flag.Bool("backfill-elements", false, "materialize element rows from embedded blocks")
		source   = flag.String("source", "file://migrations", "migration source URL")
	)
	flag.Parse()

	cfg := config.Load()

	if *backfill {
		if err := backfillElements(cfg); err != nil {
			log.Fatalf("backfill failed: %v", err)
		}
		return
	}

	m, err := migrate.New(*source, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to open migrations: %v", err)
	}
	defer m.Close()

	switch {
	case *up:
		err = m.Up()
	case *down:
		err = m.Steps(-1)
	case *steps != 0:
		err = m.Steps(*steps)
	default:
		flag.Usage()
		return
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no pending migrations")
		return
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migrations applied")
}

// backfillElements materializes board_elements rows for boards written before
// element rows existed. Boards that already have rows are left untouched, so
// the command is safe to re-run.
func backfillElements(cfg *config.Config) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return err
	}

	elements := repository.NewElementRepository(db)
	ctx := context.Background()

	var boards []model.Board
	if err := db.WithContext(ctx).Find(&boards).Error; err != nil {
		return err
	}

	var filled, skipped int
	for i := range boards {
		board := &boards[i]

		count, err := elements.CountByBoardID(ctx, board.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			skipped++
			continue
		}

		blocks := schema.BlocksOrDefault([]byte(board.Blocks), logger)
		if len(blocks) == 0 {
			skipped++
			continue
		}

		if err := elements.Sync(ctx, board.ID, blocks); err != nil {
			logger.Error("backfill sync failed",
				zap.String("board_id", board.ID.String()), zap.Error(err))
			return err
		}
		filled++
	}

	logger.Info("backfill complete", zap.Int("filled", filled), zap.Int("skipped", skipped))
	return nil
}
