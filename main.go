package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "hr-backend/docs"
	"hr-backend/internal/attendance"
	"hr-backend/internal/employee"
	"hr-backend/internal/platform/db"
	"hr-backend/internal/platform/metrics"
	"hr-backend/internal/platform/middleware"
)

// @title        HR Management API
// @version      1.0
// @description  Employee directory and daily attendance register.
// @BasePath     /
func main() {
	// .env first, config file second: applyEnv reads the variables .env sets.
	_ = godotenv.Load()

	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	if err := db.RunMigrations(cfg.DB); err != nil {
		log.Fatalf("[ERROR] migrations: %v", err)
	}
	log.Println("[INFO] schema is up to date")

	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	_ = r.SetTrustedProxies(nil)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	r.Use(collector.Middleware())

	// CORS for the React client: credentialed requests from the configured
	// origins only.
	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Accept", "Accept-Encoding", "Authorization", "Content-Type",
			"DNT", "Origin", "User-Agent", "X-CSRFToken", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "HR Management API is running"})
	})

	employee.RegisterRoutes(r, employee.NewService(conn))
	attendance.RegisterRoutes(r, attendance.NewService(conn))

	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	addr := cfg.Addr
	if addr == "" {
		addr = ":8000"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on http://0.0.0.0%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
