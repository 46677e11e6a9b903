package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/phantompods/internal/logging"
	"github.com/danmuck/phantompods/pods"
)

func main() {
	logging.ConfigureRuntime()

	configPath := "cmd/podsctl/config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	var opts pods.Options
	if _, err := os.Stat(configPath); err == nil {
		opts, err = pods.LoadOptions(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load pods config")
		}
		log.Info().Str("path", configPath).Msg("loaded pods config")
	}

	registry, err := pods.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("registry init failed")
	}

	avail := registry.DetectCompatibility()
	log.Info().
		Bool("wine", avail.Wine).
		Bool("wine64", avail.Wine64).
		Bool("dosbox", avail.DOSBox).
		Bool("flatpak", avail.Flatpak).
		Bool("qemu", avail.QEMU).
		Msg("compatibility layers detected")
	for _, tmpl := range pods.Templates() {
		log.Info().
			Str("template", tmpl.Name).
			Str("type", tmpl.Type.String()).
			Str("security", tmpl.Security.String()).
			Msg("template available")
	}
	log.Info().Str("root", registry.Root()).Msg("podsctl running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	registry.Shutdown()
	log.Info().
		Uint64("pods_created", registry.PodsCreated()).
		Uint64("apps_run", registry.AppsRun()).
		Dur("total_runtime", registry.TotalRuntime()).
		Msg("podsctl stopped")
}
