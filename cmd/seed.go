package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/summitops/event-pay-gateway/internal/config"
	"github.com/summitops/event-pay-gateway/internal/db"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo leads for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer dbx.Close()

		leadsRepo := repository.NewLeadsRepository(dbx)

		demo := []model.Lead{
			{
				ID:          "01J8DEMO0000000000000000LA",
				EventID:     "0f4b1c2e-8a3d-4f6a-9b1e-2c3d4e5f6a7b",
				SessionID:   "7a6f5e4d-3c2b-41a0-9f8e-7d6c5b4a3f2e",
				FullName:    "Maria Silva",
				Email:       "maria@example.com",
				Phone:       "+351912345678",
				UTMSource:   "instagram",
				UTMMedium:   "social",
				UTMCampaign: "early-bird",
			},
			{
				ID:        "01J8DEMO0000000000000000LB",
				EventID:   "0f4b1c2e-8a3d-4f6a-9b1e-2c3d4e5f6a7b",
				SessionID: "9b8a7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d",
				FullName:  "João Pereira",
				Email:     "joao@example.com",
				Phone:     "+351961234567",
				UTMSource: "google",
				UTMMedium: "cpc",
			},
		}

		ctx := context.Background()
		for _, l := range demo {
			if err := leadsRepo.Insert(ctx, nil, l); err != nil {
				log.Printf("seed lead %s: %v (probably already seeded)", l.Email, err)
				continue
			}
			fmt.Printf(">> seeded lead %s (%s)\n", l.FullName, l.ID)
		}

		fmt.Println(">> Seed complete ✅")
		return nil
	},
}
