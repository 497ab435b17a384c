package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"savoro/config"
	"savoro/internal/delivery"
	"savoro/internal/delivery/http"
	"savoro/internal/delivery/http/middleware"
	"savoro/internal/delivery/http/router/handler"
	"savoro/internal/infra/auth"
	logs "savoro/internal/infra/log"
	"savoro/internal/infra/mail"
	"savoro/internal/infra/persistence/postgres"
	"savoro/internal/infra/pubsub"
	"savoro/internal/usecase"
	"savoro/internal/usecase/impl"

	"go.uber.org/fx"
)

// sessionSweepInterval paces the background pruning of expired refresh
// sessions.
const sessionSweepInterval = time.Hour

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type sessionJanitorParams struct {
	fx.In
	fx.Lifecycle

	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
			startSessionJanitor,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
			postgres.NewTransactionManager,
		),
		pubsub.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewSecretGenerator,
			mail.NewBrevoMailer,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccountService,
			impl.NewVerificationService,
			impl.NewProfileService,
			impl.NewSessionService,
			impl.NewAddressService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewAddressHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}

func startSessionJanitor(params sessionJanitorParams) {
	janitor := impl.NewSessionJanitor(params.Sessions, sessionSweepInterval, params.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				janitor.Run(ctx)
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
