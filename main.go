package main

import (
	"time"

	"github.com/mymandir/mandir-api/config"
	"github.com/mymandir/mandir-api/models"
	"github.com/mymandir/mandir-api/routes"
	"github.com/mymandir/mandir-api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	loc, err := time.LoadLocation(cfg.StreakTimezone)
	if err != nil {
		utils.Sugar.Fatalf("invalid streak timezone %q: %v", cfg.StreakTimezone, err)
	}

	db := config.InitDatabase(&models.User{}, &models.Streak{}, &models.CheckIn{})

	r := routes.SetupRouter(db, loc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
