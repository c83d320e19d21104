package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/pkg/apperror"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

var demoUsers = []application.RegisterInput{
	{Name: "Demo User", Username: "demo", Email: "demo@example.com", Password: "password123"},
	{Name: "Jane Doe", Username: "jane", Email: "jane@example.com", Password: "password123"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	ids := make([]string, 0, len(demoUsers))
	for _, in := range demoUsers {
		u, err := c.Credentials.Register(ctx, in)
		switch {
		case err == nil:
			fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, u.Email, u.Username, in.Password)
			ids = append(ids, u.ID)
		case apperror.Is(err, apperror.KindConflict):
			res, lerr := c.Credentials.Login(ctx, in.Email, in.Password)
			if lerr != nil {
				logger.Fatalf("user %s exists with a different password: %v", in.Email, lerr)
			}
			fmt.Printf("user exists: id=%s email=%s\n", res.User.ID, in.Email)
			ids = append(ids, res.User.ID)
		default:
			logger.Fatalf("failed to seed %s: %v", in.Email, err)
		}
	}

	msg, err := c.Graph.Follow(ctx, ids[0], ids[1])
	switch {
	case err == nil:
		fmt.Println(msg)
	case apperror.Is(err, apperror.KindConflict):
		fmt.Println("follow edge already present")
	default:
		logger.Fatalf("failed to seed follow: %v", err)
	}
}
