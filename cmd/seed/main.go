// Command seed prepares a BeneSafe registry database.
//
//	seed setup       create the stock bouquets and roles that are missing
//	seed backfill    create missing profiles and give profiles without a
//	                 role or bouquet the defaults
//	seed superadmin  create an approved SuperAdmin on the gold bouquet
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
	"github.com/benesafe/registry/internal/core/service"
	mongodb "github.com/benesafe/registry/internal/infrastructure/db/mongo"
	redisdb "github.com/benesafe/registry/internal/infrastructure/db/redis"
	"github.com/benesafe/registry/internal/infrastructure/queue"
	"github.com/benesafe/registry/internal/pkg/config"
	"github.com/benesafe/registry/pkg/logger"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: seed [-timeout 2m] <setup|backfill|superadmin [flags]>\n")
	flag.PrintDefaults()
}

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "abort after this long")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	command, args := flag.Arg(0), flag.Args()[1:]

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "benesafe-seed",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, cfg, command, args); err != nil {
		log.Error().Err(err).Str("command", command).Msg("seed failed")
		os.Exit(1)
	}
}

type repositories struct {
	users    *mongodb.MongoAuthRepository
	roles    *mongodb.RoleRepository
	bouquets *mongodb.BouquetRepository
	profiles *mongodb.ProfileRepository
	records  *mongodb.RecordRepository
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	log := logger.Get()

	if command != "superadmin" && len(args) > 0 {
		return fmt.Errorf("%s takes no arguments", command)
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "benesafe-seed",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect error")
		}
	}()

	repos := repositories{
		users:    mongodb.NewAuthRepository(db),
		roles:    mongodb.NewRoleRepository(db),
		bouquets: mongodb.NewBouquetRepository(db),
		profiles: mongodb.NewProfileRepository(db),
		records:  mongodb.NewRecordRepository(db),
	}
	if err := mongodb.EnsureIndexes(ctx, repos.users, repos.roles, repos.bouquets, repos.profiles, repos.records); err != nil {
		return err
	}

	registry := service.NewRegistryService(repos.roles, repos.bouquets, repos.profiles, logger.Component("registry"))
	profileSvc := service.NewProfileService(repos.profiles, repos.roles, registry, repos.users, logger.Component("profiles"))

	switch command {
	case "setup":
		res, err := registry.Seed(ctx)
		if err != nil {
			return err
		}
		log.Info().
			Strs("bouquets_created", res.BouquetsCreated).
			Strs("roles_created", res.RolesCreated).
			Msg("setup complete")
	case "backfill":
		res, err := profileSvc.BackfillDefaults(ctx)
		if err != nil {
			return err
		}
		log.Info().
			Int("profiles_created", res.ProfilesCreated).
			Int("roles_assigned", res.RolesAssigned).
			Int("bouquets_assigned", res.BouquetsAssigned).
			Msg("backfill complete")
	case "superadmin":
		return runSuperAdmin(ctx, cfg, args, repos, registry, profileSvc)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func runSuperAdmin(
	ctx context.Context,
	cfg *config.Config,
	args []string,
	repos repositories,
	registry ports.RegistryService,
	profileSvc ports.ProfileService,
) error {
	log := logger.Get()

	fs := flag.NewFlagSet("superadmin", flag.ContinueOnError)
	var in service.SuperAdminInput
	fs.StringVar(&in.Username, "username", "admin", "login name")
	fs.StringVar(&in.Email, "email", "admin@benesafe.com", "email address")
	fs.StringVar(&in.Password, "password", "", "password, at least 8 characters (required)")
	fs.StringVar(&in.FirstName, "first-name", "Super", "first name")
	fs.StringVar(&in.LastName, "last-name", "Admin", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Password == "" {
		return errors.New("superadmin: -password is required")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}()

	dispatcher := queue.NewDispatcher(1, queue.NewLogMailer(logger.Component("mailer")), logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	entitlements := service.NewEntitlementService(repos.profiles, repos.roles, repos.bouquets, repos.records, logger.Component("entitlements"))
	auth := service.NewAuthService(
		repos.users,
		profileSvc,
		repos.bouquets,
		entitlements,
		redisdb.NewTokenStore(rdb, cfg.Auth.VerifyTokenTTL),
		dispatcher,
		service.AuthOptions{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenTTL:      cfg.Auth.TokenTTL,
			PublicBaseURL: cfg.PublicBaseURL,
		},
		logger.Component("auth"),
	)

	user, profile, err := service.NewSuperAdminSeeder(auth, profileSvc, registry, logger.Component("seed")).Seed(ctx, in)
	if errors.Is(err, domain.ErrUserExists) {
		log.Warn().Str("username", in.Username).Str("email", in.Email).Msg("user already exists, nothing created")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("email", user.Email).
		Str("verification_status", string(profile.VerificationStatus)).
		Msg("superadmin created")
	return nil
}
