package main

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/serroba/expiring-shortener/internal/container"
	"go.uber.org/zap"
)

const serviceName = "expiring-shortener"

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		a := newApp(options)

		hooks.OnStart(func() {
			if err := a.run(); err != nil {
				a.logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			a.stop(ctx)
		})
	})

	cli.Run()
}
