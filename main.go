package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/config"
	"github.com/kanuma/frontdesk/middlewares"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/router"
	"github.com/kanuma/frontdesk/services"
	"github.com/kanuma/frontdesk/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create scheduler: %v", err)
	}

	reminders := services.NewReminderService(db, cfg.UpcomingMinutesBefore, cfg.LongWaitMinutes)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() { reminders.Sweep(time.Now()) }),
	); err != nil {
		utils.ErrorLogger.Fatalf("Failed to schedule reminder sweep: %v", err)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.SyncInterval),
		gocron.NewTask(func() {
			if _, err := services.SyncTableStatuses(db, time.Now()); err != nil {
				utils.ErrorLogger.Printf("Status sync failed: %v", err)
			}
		}),
	); err != nil {
		utils.ErrorLogger.Fatalf("Failed to schedule status sync: %v", err)
	}

	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	r := router.SetupRouter(db, cfg.AutoScheduleLookahead, middlewares.NewRateLimiter(50, 1))

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Floor{},
		&models.Table{},
		&models.Booking{},
		&models.WaitingList{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
