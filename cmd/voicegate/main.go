// Voicegate is an HTTP text-to-speech front end. It serializes requests from
// three API surfaces (native, MaryTTS-compatible, OpenAI-compatible) against a
// single speech engine and returns audio in the requested format.
//
// Usage:
//
//	voicegate [flags]
//	voicegate --config /path/to/voicegate.yaml
//	voicegate version
//
// @title       voicegate API
// @version     1.0
// @description Text-to-speech front end with native, MaryTTS-compatible and OpenAI-compatible APIs.
// @BasePath    /
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/audio/ffmpeg"
	"github.com/nadzzz/voicegate/internal/config"
	"github.com/nadzzz/voicegate/internal/dispatch"
	"github.com/nadzzz/voicegate/internal/gate"
	"github.com/nadzzz/voicegate/internal/health"
	"github.com/nadzzz/voicegate/internal/transport"
	grpctransport "github.com/nadzzz/voicegate/internal/transport/grpc"
	httptransport "github.com/nadzzz/voicegate/internal/transport/http"
	"github.com/nadzzz/voicegate/internal/tts"
	openaitts "github.com/nadzzz/voicegate/internal/tts/openai"
	"github.com/nadzzz/voicegate/internal/tts/wyoming"
	"github.com/nadzzz/voicegate/internal/voice"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:           "voicegate",
		Short:         "Serve text-to-speech over native, MaryTTS and OpenAI-compatible APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "voicegate %s\n", version)
		},
	}
)

func init() {
	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/voicegate.yaml)")
	flags.Int("port", 5002, "port to listen on")
	flags.String("model_name", "", "model name, <type>/<language>/<dataset>/<model>")
	flags.String("speaker_idx", "", "default speaker id for multi-speaker models")
	flags.String("language_idx", "", "default language id for multi-lingual models")
	flags.Bool("show_details", false, "show the configuration table on /details")
	flags.String("backend", "", "engine backend: wyoming or openai")
	flags.Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("voicegate failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// Load configuration. Flags set on the command line override file and env.
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voicegate starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the engine backend.
	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Capabilities are queried once and shared read-only.
	caps := engine.Capabilities()
	slog.Info("engine loaded",
		"backend", engine.Name(),
		"multi_speaker", caps.MultiSpeaker,
		"multi_lingual", caps.MultiLingual,
		"voice_cloning", caps.VoiceCloning,
		"speakers", len(caps.Speakers),
		"languages", len(caps.Languages))

	// Build the pipeline: resolver -> gate -> encoder.
	resolver := voice.NewResolver(caps, voice.Defaults{
		SpeakerID:  cfg.Model.DefaultSpeaker,
		LanguageID: cfg.Model.DefaultLanguage,
	})
	g := gate.New(engine, gate.WithTimeout(cfg.Engine.Timeout))

	codec := ffmpeg.New(ffmpeg.Config{
		Path:    cfg.Codec.FFmpegPath,
		TempDir: cfg.Codec.TempDir,
		Timeout: cfg.Codec.Timeout,
	})
	if !codec.Available() {
		slog.Warn("ffmpeg not found; only wav and pcm output will work", "path", cfg.Codec.FFmpegPath)
	}
	encoder := audio.NewEncoder(g, codec)

	dispatcher := dispatch.New(resolver, g, encoder)

	// Initialize transports.
	transports := []transport.Transport{
		httptransport.New(httptransport.Options{
			Port:        cfg.Server.Port,
			ModelName:   cfg.Model.Name,
			Backend:     cfg.Engine.Backend,
			ShowDetails: cfg.Server.ShowDetails,
			Details:     cfg.Summary(),
			Compress:    cfg.Server.Compress,
		}, dispatcher),
	}
	var grpcT *grpctransport.Transport
	if cfg.Server.GRPC.Enabled {
		grpcT = grpctransport.New(cfg.Server.GRPC.Port)
		transports = append(transports, grpcT)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, g)
	if cfg.Server.HealthPort > 0 {
		go func() {
			if err := healthServer.ListenAndServe(ctx); err != nil {
				slog.Error("health server failed", "error", err)
			}
		}()
	}

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				cancel()
			}
		}(t)
	}

	// The engine is loaded before any listener starts.
	healthServer.SetReady(true)
	if grpcT != nil {
		grpcT.SetServing(true)
	}
	slog.Info("voicegate ready",
		"port", cfg.Server.Port,
		"model", cfg.Model.Name,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("voicegate stopped")
	return nil
}

// newEngine builds the configured synthesis backend.
func newEngine(cfg config.EngineConfig) (tts.Engine, error) {
	switch cfg.Backend {
	case "wyoming":
		slog.Info("using wyoming engine", "endpoint", cfg.Wyoming.Endpoint)
		return wyoming.New(cfg.Wyoming), nil
	case "openai":
		slog.Info("using openai engine", "model", cfg.OpenAI.Model)
		return openaitts.New(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Backend)
	}
}
