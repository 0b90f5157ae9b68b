package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/medipoint/medipointbackend/controllers"
	"github.com/medipoint/medipointbackend/mailer"
	"github.com/medipoint/medipointbackend/store"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	st := store.NewMongo()

	ctx := context.Background()
	if err := store.SeedAdmin(ctx, st); err != nil {
		log.Fatal(err)
	}

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	deps := controllers.Deps{
		Store:  st,
		Mailer: mailer.NewFromEnv(),
	}
	controllers.MountRoutes(r, deps)

	// Server listens on 0.0.0.0:8080 unless PORT is set
	r.Run()
}
