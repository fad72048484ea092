package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	rewards "github.com/linkedpost/go-rewards"
	"github.com/linkedpost/go-rewards/api"
	"github.com/linkedpost/go-rewards/common/eth"
	"github.com/linkedpost/go-rewards/common/gemini"
	"github.com/linkedpost/go-rewards/common/ipfs"
	"github.com/linkedpost/go-rewards/common/loggers"
	"github.com/linkedpost/go-rewards/common/metrics"
	"github.com/linkedpost/go-rewards/common/notifs"
	"github.com/linkedpost/go-rewards/models"
	"github.com/linkedpost/go-rewards/services"
)

const defaultListenAddress = ":8080"
const defaultIpfsAddress = "/ip4/127.0.0.1/tcp/5001"
const defaultGeminiModel = "gemini-2.0-flash"
const shutdownGracePeriod = 10 * time.Second

type cliArgs struct {
	EnvFile string `arg:"--env-file" default:".env" help:"path to the .env file"`
	Listen  string `arg:"--listen" help:"listen address, overrides LISTEN_ADDRESS"`
}

func main() {
	args := cliArgs{}
	arg.MustParse(&args)

	if err := godotenv.Load(args.EnvFile); err != nil {
		// Not fatal: deployed environments inject real env vars.
		if !os.IsNotExist(err) {
			panic(err)
		}
	}

	logger := loggers.NewLogger()
	defer logger.Sync()

	serverCtx, serverCtxCancel := context.WithCancel(context.Background())
	defer serverCtxCancel()

	metricService, err := metrics.NewMetricService(serverCtx, logger)
	if err != nil {
		logger.Fatalf("failed to create metric service: %v", err)
	}
	defer metricService.Shutdown(serverCtx)

	notifier, err := notifs.NewDiscordHandler(logger)
	if err != nil {
		logger.Fatalf("failed to create discord handler: %v", err)
	}

	chainId, err := strconv.ParseInt(os.Getenv(rewards.Env_ChainId), 10, 64)
	if err != nil {
		logger.Fatalf("invalid chain id: %v", err)
	}
	waitForReceipt := false
	if configWait, found := os.LookupEnv(rewards.Env_LedgerWaitForTx); found {
		if parsedWait, err := strconv.ParseBool(configWait); err == nil {
			waitForReceipt = parsedWait
		}
	}
	ledger, err := eth.NewLedgerClient(logger, metricService, eth.LedgerOpts{
		RpcUrl:          os.Getenv(rewards.Env_EthRpcUrl),
		ContractAddress: os.Getenv(rewards.Env_ContractAddress),
		OwnerPrivateKey: os.Getenv(rewards.Env_OwnerPrivateKey),
		ChainId:         chainId,
		WaitForReceipt:  waitForReceipt,
	})
	if err != nil {
		logger.Fatalf("failed to create ledger client: %v", err)
	}
	defer ledger.Close()

	if err = metricService.Gauge(serverCtx, models.MetricName_SubmissionPool, services.NewSubmissionPoolMonitor(ledger)); err != nil {
		logger.Fatalf("failed to register submission pool gauge: %v", err)
	}

	geminiModel := defaultGeminiModel
	if configModel, found := os.LookupEnv(rewards.Env_GeminiModel); found {
		geminiModel = configModel
	}
	oracle, err := gemini.NewOracle(serverCtx, logger, metricService, os.Getenv(rewards.Env_GeminiApiKey), geminiModel)
	if err != nil {
		logger.Fatalf("failed to create gemini oracle: %v", err)
	}

	ipfsAddress := defaultIpfsAddress
	if configIpfsAddress, found := os.LookupEnv(rewards.Env_IpfsAddress); found {
		ipfsAddress = configIpfsAddress
	}
	store := ipfs.NewStore(logger, ipfsAddress, metricService)

	verifier := eth.NewVerifier()
	registrationService := services.NewRegistrationService(verifier, ledger, logger, metricService)
	submissionService := services.NewSubmissionService(verifier, ledger, oracle, store, logger, metricService)
	announcementService := services.NewAnnouncementService(ledger, store, oracle, notifier, logger, metricService)

	listenAddress := defaultListenAddress
	if configListenAddress, found := os.LookupEnv(rewards.Env_ListenAddress); found {
		listenAddress = configListenAddress
	}
	if len(args.Listen) > 0 {
		listenAddress = args.Listen
	}

	mux := http.NewServeMux()
	api.NewServer(registrationService, submissionService, announcementService, notifier, logger).Register(mux)
	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: models.DefaultHttpWaitTime,
		BaseContext: func(net.Listener) context.Context {
			return serverCtx
		},
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		interruptCh := make(chan os.Signal, 1)
		signal.Notify(interruptCh, syscall.SIGINT, syscall.SIGTERM)
		<-interruptCh

		logger.Infoln("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("http server shutdown: %v", err)
		}
		serverCtxCancel()
	}()

	logger.Infof("listening on %s", listenAddress)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server: %v", err)
	}
	<-shutdownDone
}
