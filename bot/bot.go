package bot

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"regbot/admin"
	"regbot/command"
	"regbot/config"
	"regbot/dialogue"
	"regbot/directory"
	"regbot/handler/admincmd"
	"regbot/handler/my"
	"regbot/handler/register"
	"regbot/metrics"
	"regbot/store"
)

// Start loads the configuration, connects to Discord and blocks until the
// process is interrupted.
func Start(flags *pflag.FlagSet) {
	if err := config.LoadConfig(flags); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := config.Validate(config.Cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	cfg := config.Cfg

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	dir := directory.NewDiscord(dg, cfg.GuildID, cfg.Registration.RoleID)
	mgr := dialogue.NewManager(cfg.Registration, st, dir, m)
	if err := mgr.Preload(ctx); err != nil {
		log.Printf("[bot] could not preload submitted users, starting empty: %v", err)
	}
	svc := admin.NewService(st, dir, mgr, cfg.Store.ResetMode)

	register.RegisterHandlers(mgr)
	admincmd.RegisterHandlers(svc)
	my.RegisterHandlers(st)
	registerEventHandlers(dg)

	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	guilds := cfg.Commands.Allowguils
	if len(guilds) == 0 {
		guilds = []string{cfg.GuildID}
	}
	for _, guildID := range guilds {
		for _, cmd := range command.AllCommands {
			if _, err := dg.ApplicationCommandCreate(dg.State.User.ID, guildID, cmd); err != nil {
				log.Fatalf("Cannot create '%v' command: %v", cmd.Name, err)
			}
		}
	}

	if err := svc.EnsurePanel(ctx); err != nil {
		log.Printf("[bot] REGISTER panel not ensured: %v", err)
	}

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		srv = metrics.NewServer(cfg.Metrics.Addr, prometheus.DefaultGatherer)
		go func() {
			log.Printf("[metrics] listening on %s", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[metrics] server stopped: %v", err)
			}
		}()
	}

	log.Printf("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Printf("[bot] shutting down")
	mgr.Shutdown()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[metrics] shutdown: %v", err)
		}
		cancel()
	}
	if err := st.Close(); err != nil {
		log.Printf("[store] close: %v", err)
	}
	dg.Close()
}
