package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/providers/llm"
	"github.com/sandevgo/homevoice/internal/providers/smartthings"
	"github.com/sandevgo/homevoice/internal/providers/spotify"
	"github.com/sandevgo/homevoice/internal/providers/sysmon"
	"github.com/sandevgo/homevoice/internal/providers/tts"
	"github.com/sandevgo/homevoice/internal/providers/tvremote"
	"github.com/sandevgo/homevoice/internal/providers/voiceauth"
	"github.com/sandevgo/homevoice/internal/providers/weather"
	"github.com/sandevgo/homevoice/internal/service/conversation"
	"github.com/sandevgo/homevoice/internal/service/dispatch"
	"github.com/sandevgo/homevoice/internal/service/handlers"
	"github.com/sandevgo/homevoice/internal/service/memory"
	"github.com/sandevgo/homevoice/internal/service/orchestrator"
	"github.com/sandevgo/homevoice/internal/service/permission"
	"github.com/sandevgo/homevoice/internal/service/suggest"
	"github.com/sandevgo/homevoice/internal/service/visual"
	"github.com/sandevgo/homevoice/internal/storage/sqlite"
	"github.com/sandevgo/homevoice/internal/transport/console"
	"github.com/sandevgo/homevoice/internal/transport/speech"
	"github.com/sandevgo/homevoice/internal/transport/telegram"
	"github.com/sandevgo/homevoice/pkg/log"
	"github.com/sandevgo/homevoice/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	voiceCfg := config.NewVoiceConfig(ctx)
	homeCfg := config.NewHomeConfig(ctx)
	weatherCfg := config.NewWeatherConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	musicCfg := config.NewMusicConfig(ctx)

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	factsRepo := sqlite.NewFactsRepo(db)
	cmdLog := sqlite.NewCommandLogRepo(db)
	facts := memory.NewFacts(factsRepo)

	// 3. Speech collaborators
	gateway := speech.NewGateway(voiceCfg)
	services = append(services, gateway)

	identifier := voiceauth.NewClient(voiceCfg)

	voice := tts.NewClient(voiceCfg)
	services = append(services, voice)

	// 4. Persona and conversation
	persona := conversation.NewPersona()
	completer := llm.NewCompleter(llmCfg)
	convo := conversation.NewContext(completer, persona, appCfg.ConversationCap, appCfg.PromptTokenBudget)

	// 5. Devices
	home := smartthings.NewClient(homeCfg)
	tv := tvremote.NewClient(homeCfg)
	services = append(services, srv.NewCleanup(tv.Close))

	weatherSvc := weather.NewClient(weatherCfg, appCfg.City)
	music := spotify.NewClient(musicCfg)
	stats := sysmon.NewMonitor()

	// 6. Dispatch chain. Order matters: specific device handlers first,
	// conversational fallback last.
	chain := dispatch.NewChain(
		handlers.NewChatFallback(convo),
		handlers.NewWeather(weatherSvc, persona),
		handlers.NewThermostat(home),
		handlers.NewLights(home),
		handlers.NewTV(tv),
		handlers.NewMusic(music),
		handlers.NewScene(facts, home),
		handlers.NewFactsHandler(facts),
		handlers.NewStatus(stats),
		handlers.NewPersonaHandler(persona, convo),
	)
	logger.Info().Strs("handlers", chain.Handlers()).Msg("dispatch chain assembled")

	// 7. Permissions
	resolver, err := permission.NewResolver(homeCfg.Users)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build user roster")
	}

	// 8. Visualizer
	visualizer := visual.NewServer(appCfg.VisualizerAddr)
	services = append(services, visualizer)

	// 9. Orchestrator
	orch := orchestrator.New(
		orchestrator.Config{
			WakePhrase:           appCfg.WakePhrase,
			IdleTimeout:          appCfg.IdleTimeout(),
			MinCommandPermission: appCfg.MinCommandPermission(ctx),
		},
		orchestrator.Deps{
			Gateway:      gateway,
			Identifier:   identifier,
			Permissions:  resolver,
			Voice:        voice,
			Chain:        chain,
			Conversation: convo,
			Persona:      persona,
			Suggestions:  suggest.NewEngine(cmdLog),
			Status:       visualizer,
			CommandLog:   cmdLog,
		},
	)

	// 10. Transports register their response listeners before the
	// orchestrator starts.
	transports, err := initTransports(ctx, appCfg, orch)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}

	services = append(services, orch)
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

func initTransports(ctx context.Context, cfg *config.AppConfig, orch *orchestrator.Orchestrator) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.IsConsoleSelected() {
		c, err := console.NewConsole(orch, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, c)
	}

	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orch)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
