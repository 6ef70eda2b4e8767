package main

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joy095/boardroom/config"
	"github.com/joy095/boardroom/config/db"
	redisclient "github.com/joy095/boardroom/config/redis"
	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/middlewares/cors"
	"github.com/joy095/boardroom/notifications"
	"github.com/joy095/boardroom/routes"
	"github.com/joy095/boardroom/scheduler"
	"github.com/joy095/boardroom/utils/businesstime"
	"github.com/joy095/boardroom/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Application: Email templates initialized.")

	times, err := businesstime.NewResolverFromEnv()
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid business time configuration: %v", err)
		os.Exit(1)
	}
	logger.InfoLogger.Infof("Business timezone resolved to %s", times.Location())

	// The AMQP publisher is optional. Without it notifications fall back to
	// log-and-drop, so a missing broker never blocks bookings.
	var publisher *notifications.Publisher
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		exchange := os.Getenv("AMQP_EXCHANGE")
		if exchange == "" {
			exchange = "boardroom.notifications"
		}
		publisher, err = notifications.NewPublisher(amqpURL, exchange)
		if err != nil {
			logger.WarnLogger.Warnf("AMQP publisher unavailable, notifications will be logged only: %v", err)
			publisher = nil
		}
	} else {
		logger.WarnLogger.Warn("AMQP_URL not set, notifications will be logged only")
	}
	notifier := notifications.NewDispatcher(publisher, times)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRoutes(r, db.DB, times, notifier)
	routes.RegisterRoomRoutes(r, db.DB, times)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from boardroom service"})
	})

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	reminders := scheduler.NewReminderSchedulerFromEnv(db.DB, redisclient.GetRedisClient(), notifier)
	go reminders.Run(schedulerCtx)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Go Server listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to listen: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down Go server...")

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Go Server forced to shutdown: %v\n", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.WarnLogger.Warnf("Error closing AMQP publisher: %v", err)
		}
	}
	redisclient.CloseRedis()

	fmt.Println("Go Server exited gracefully.")
}
