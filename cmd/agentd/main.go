package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agentmarket/internal/config"
	"agentmarket/internal/daemon"
	"agentmarket/internal/daemon/executor"
	"agentmarket/internal/infra/logging"

	"github.com/rs/zerolog"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	agentID := flag.String("id", "", "agent id (overrides agent.agent_id)")
	registerName := flag.String("register", "", "register a new agent with this name and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateAgent(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	client := daemon.NewClient(cfg.Agent.BrokerURL)

	if err := client.Health(ctx); err != nil {
		logger.Fatal().Err(err).Str("broker", cfg.Agent.BrokerURL).Msg("cannot reach broker")
	}

	if *registerName != "" {
		agent, err := client.RegisterAgent(ctx, *registerName)
		if err != nil {
			logger.Fatal().Err(err).Msg("register agent")
		}
		logger.Info().Str("agent_id", agent.ID).Str("name", agent.Name).Msg("agent registered; set agent.agent_id in the config")
		return
	}

	id := *agentID
	if id == "" {
		id = cfg.Agent.AgentID
	}
	if id == "" {
		logger.Fatal().Msg("no agent id: register first with -register <name> or set agent.agent_id")
	}

	exec := buildExecutor(cfg, logger)
	poller := daemon.NewPoller(client, id, exec, cfg.Agent.JobsDir, cfg.Agent.PollInterval, logger)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		logger.Info().Msg("shutting down agent daemon")
		cancel()
	}()

	logger.Info().
		Str("agent_id", id).
		Str("broker", cfg.Agent.BrokerURL).
		Str("executor", cfg.Agent.Executor).
		Msg("agent daemon started")
	if err := poller.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("poller stopped")
	}
}

func buildExecutor(cfg *config.Config, logger *zerolog.Logger) executor.Executor {
	switch cfg.Agent.Executor {
	case "codex":
		return executor.NewCodexExecutor(logger)
	case "sdk":
		return executor.NewSDKExecutor(cfg.Agent.APIKey, cfg.Agent.BaseURL, cfg.Agent.Model, cfg.Agent.MaxTurns, logger)
	default:
		return executor.NewClaudeCodeExecutor(cfg.Agent.MaxTurns, logger)
	}
}
