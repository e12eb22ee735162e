package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/stian-overasen/connectlog/internal/auth"
	"github.com/stian-overasen/connectlog/internal/config"
	"github.com/stian-overasen/connectlog/internal/garmin"
	"github.com/stian-overasen/connectlog/internal/profile"
	"github.com/stian-overasen/connectlog/internal/server"
	"github.com/stian-overasen/connectlog/internal/service"
	"github.com/stian-overasen/connectlog/internal/store"
	"github.com/stian-overasen/connectlog/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dashboard := flag.Bool("dashboard", false, "open the readiness dashboard instead of serving the API")
	flag.Parse()

	setupLogging()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Garmin Connect session tokens.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Device/zone-scheme overrides. A malformed file aborts startup rather
	// than silently mislabeling history.
	profiles, err := profile.LoadFile(cfg.Profile.OverridesPath)
	if err != nil {
		return fmt.Errorf("loading profile overrides: %w", err)
	}
	log.Infof("loaded %d profile overrides", profiles.Len())

	// Open cache database
	dbPath, err := config.DataPath()
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	client, err := buildClient(context.Background(), cfg, db)
	if err != nil {
		return err
	}

	maxAge := time.Duration(cfg.Cache.MaxAgeHours) * time.Hour
	summarySvc := service.NewSummaryService(client, db, maxAge)
	activitySvc := service.NewActivityService(client, db, profiles, maxAge)
	readinessSvc := service.NewReadinessService(summarySvc)

	if *dashboard {
		app := tui.NewDashboard(summarySvc, readinessSvc)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	}

	metrics := server.NewMetrics()
	refresher, err := server.NewRefresher(summarySvc, metrics, cfg.Cache.RefreshCron)
	if err != nil {
		return fmt.Errorf("setting up cache refresher: %w", err)
	}

	srv := server.New(cfg.Server.Port, summarySvc, activitySvc, readinessSvc, metrics, refresher)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
		log.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// buildClient constructs the Garmin client from stored auth, seeding the
// store from config on first run, and resolves the profile display name.
func buildClient(ctx context.Context, cfg *config.Config, db *store.Store) (*garmin.Client, error) {
	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		storedAuth = &store.Auth{
			AccessToken:  cfg.Garmin.AccessToken,
			RefreshToken: cfg.Garmin.RefreshToken,
			// Unknown expiry forces a refresh on first use.
			ExpiresAt: time.Now(),
		}
		if err := db.SaveAuth(storedAuth); err != nil {
			return nil, fmt.Errorf("seeding auth from config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}

	tokenSource := auth.NewTokenSource(auth.NewEndpointConfig(), token, func(newToken *oauth2.Token) error {
		return db.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})

	client := garmin.NewClient(tokenSource)

	displayName := cfg.Garmin.DisplayName
	if displayName == "" {
		userProfile, err := client.GetUserProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving display name: %w", err)
		}
		displayName = userProfile.DisplayName
	}
	client.SetDisplayName(displayName)

	return client, nil
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(os.Getenv("CONNECTLOG_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
