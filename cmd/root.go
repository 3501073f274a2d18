package cmd

import (
	"context"
	"time"

	"github.com/omnipost/omnipost/core/config"
	"github.com/omnipost/omnipost/core/database"
	domainBroadcast "github.com/omnipost/omnipost/domains/broadcast"
	domainNewsletter "github.com/omnipost/omnipost/domains/newsletter"
	domainPodcast "github.com/omnipost/omnipost/domains/podcast"
	domainPost "github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/domains/publisher"
	domainSubscriber "github.com/omnipost/omnipost/domains/subscriber"
	"github.com/omnipost/omnipost/infrastructure/webhook"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/scheduler"
	"github.com/omnipost/omnipost/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Usecase
	postUsecase       domainPost.IPostUsecase
	newsletterUsecase domainNewsletter.INewsletterUsecase
	podcastUsecase    domainPodcast.IPodcastUsecase
	broadcastUsecase  domainBroadcast.IBroadcastUsecase
	subscriberUsecase domainSubscriber.ISubscriberUsecase

	// Scheduler
	channelRegistry *publisher.Registry
	dispatchEngine  *scheduler.Engine
	schedulerClock  *scheduler.Clock
)

// Flag overrides, applied on top of the env configuration.
var (
	flagPort     string
	flagDebug    bool
	flagDBDriver string
	flagDBName   string
	flagTickSecs int
)

var rootCmd = &cobra.Command{
	Use:   "omnipost",
	Short: "Multi-channel content scheduling engine",
	Long: `OmniPost schedules social posts, newsletter issues, podcast episodes and
bulk broadcasts, then dispatches them to their channels when they come due.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"display debug logs with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"",
		`database driver --db-driver <string> | example: --db-driver="postgres"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBName,
		"db-name", "",
		"",
		`database name, or file path for sqlite --db-name <string> | example: --db-name="storages/omnipost.db"`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&flagTickSecs,
		"tick-seconds", "",
		0,
		"scheduler tick interval in seconds --tick-seconds <number> | example: --tick-seconds=30",
	)
}

func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}
	if flagDBName != "" {
		cfg.Database.Name = flagDBName
	}
	if flagTickSecs > 0 {
		cfg.Scheduler.TickInterval = time.Duration(flagTickSecs) * time.Second
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Fatalf("[APP] Failed to create storage folder: %v", err)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to connect to database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logrus.Fatalf("[APP] Failed to migrate database: %v", err)
	}

	postRepo := repository.NewPostGormRepository(db)
	newsletterRepo := repository.NewNewsletterGormRepository(db)
	podcastRepo := repository.NewPodcastGormRepository(db)
	broadcastRepo := repository.NewBroadcastGormRepository(db)
	subscriberRepo := repository.NewSubscriberGormRepository(db)

	channelRegistry = publisher.NewRegistry()
	for name, url := range cfg.Channels.Webhooks {
		channelRegistry.Register(name, webhook.NewPublisher(name, url, cfg.Scheduler.AdapterTimeout))
		logrus.Infof("[APP] Channel %s routed to webhook endpoint", name)
	}

	dispatchEngine = scheduler.NewEngine(scheduler.Deps{
		Posts:       postRepo,
		Newsletters: newsletterRepo,
		Episodes:    podcastRepo,
		Broadcasts:  broadcastRepo,
		Resolver:    subscriberRepo,
		Registry:    channelRegistry,
		Ping:        storePing,
	}, scheduler.Config{
		AdapterTimeout: cfg.Scheduler.AdapterTimeout,
		SendRatePerSec: cfg.Broadcast.SendRatePerSec,
	})
	schedulerClock = scheduler.NewClock(dispatchEngine, cfg.Scheduler.TickInterval)

	postUsecase = usecase.NewPostService(postRepo)
	newsletterUsecase = usecase.NewNewsletterService(newsletterRepo)
	podcastUsecase = usecase.NewPodcastService(podcastRepo)
	broadcastUsecase = usecase.NewBroadcastService(broadcastRepo, cfg.Broadcast)
	subscriberUsecase = usecase.NewSubscriberService(subscriberRepo)
}

func storePing(ctx context.Context) error {
	sqlDB, err := database.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// StopApp shuts down the clock and the database connection.
func StopApp() {
	if schedulerClock != nil {
		schedulerClock.Stop()
	}
	if sqlDB, err := database.SQLDB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.Errorf("[APP] Failed to close database: %v", err)
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("[APP] %v", err)
	}
}
