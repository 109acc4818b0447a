package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"safetyhub/internal/bootstrap/config"
	"safetyhub/internal/bootstrap/database"
	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/infrastructure/notify"
	sqliterepo "safetyhub/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "safetyhub/internal/infrastructure/persistence/sqlite/uow"
	"safetyhub/internal/infrastructure/storage"
	"safetyhub/internal/ports"
	"safetyhub/internal/usecase/documents"
	"safetyhub/internal/usecase/talks"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTalkRepository,
			fx.As(new(ports.TalkRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRecipientDirectory,
			fx.As(new(ports.RecipientDirectory)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewDocumentRepository,
			fx.As(new(ports.DocumentRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideFileStore,
			fx.As(new(ports.FileStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideNotifier,
			fx.As(new(ports.Notifier)),
		),
	),
	fx.Provide(provideTalkService),
	fx.Provide(documents.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideFileStore(cfg config.Config) (*storage.LocalStore, error) {
	return storage.NewLocalStore(cfg.Uploads.Dir)
}

func provideNotifier(cfg config.Config) *notify.Notifier {
	return notify.NewNotifier(
		notify.NewMailer(cfg.Notify.Email),
		notify.NewSMSSender(cfg.Notify.SMS),
	)
}

func provideTalkService(
	cfg config.Config,
	repo ports.TalkRepository,
	uow ports.UnitOfWork,
	directory ports.RecipientDirectory,
	notifier ports.Notifier,
	files ports.FileStore,
) (*talks.Service, error) {
	templates, err := notify.LoadTemplates(cfg.Notify.TemplatesFile)
	if err != nil {
		return nil, err
	}

	return talks.NewService(repo, uow, directory, notifier, files, talks.Config{
		BaseURL:           cfg.App.BaseURL,
		QuizPassThreshold: cfg.Quiz.PassThreshold,
		NotifyTimeout:     time.Duration(cfg.Notify.TimeoutSeconds) * time.Second,
		SMSMaxLength:      cfg.Notify.SMS.MaxLength,
		MaxUploadBytes:    cfg.Uploads.MaxSizeMB << 20,
		Templates:         templates,
	}), nil
}
