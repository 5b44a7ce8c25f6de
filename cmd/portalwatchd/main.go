package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/config"
	"github.com/nettield/portalwatch/internal/httpapi"
	"github.com/nettield/portalwatch/internal/linkmon"
	"github.com/nettield/portalwatch/internal/logging"
	"github.com/nettield/portalwatch/internal/monitor"
	"github.com/nettield/portalwatch/internal/notify"
	"github.com/nettield/portalwatch/internal/probe"
	"github.com/nettield/portalwatch/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	urls := probe.DefaultURLConfig()
	if cfg.ProbeHTTPURL != "" {
		urls.HTTPURL = cfg.ProbeHTTPURL
	}
	if cfg.ProbeHTTPSURL != "" {
		urls.HTTPSURL = cfg.ProbeHTTPSURL
	}
	if len(cfg.FallbackHTTPURLs) > 0 {
		urls.FallbackHTTPURLs = cfg.FallbackHTTPURLs
	}
	if len(cfg.FallbackHTTPSURLs) > 0 {
		urls.FallbackHTTPSURLs = cfg.FallbackHTTPSURLs
	}

	client := probe.NewHTTPClient(cfg.ProbeTimeout)
	newProber := func() monitor.Prober {
		return probe.New(probe.Config{
			Client:          client,
			URLs:            urls,
			MinAttemptDelay: cfg.MinAttemptDelay,
			MaxAttemptDelay: cfg.MaxAttemptDelay,
			Logger:          logger,
		})
	}
	newMonitor := func(ifName string, onResult func(probe.Result)) service.Validator {
		return monitor.NewMonitor(logger, ifName, cfg.HTTPOnly, newProber, onResult)
	}

	svc := service.New(logger, cfg.ServiceName, newMonitor, cfg.RetryInterval)
	reg := service.NewRegistry()
	reg.Add(svc)

	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		ann := notify.NewAnnouncer(logger, notify.Multi{slack}, cfg.AlertCooldown)
		svc.OnStateChange(ann.Listener())
	}

	family := probe.FamilyIPv4
	if cfg.IPv6 {
		family = probe.FamilyIPv6
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lm := linkmon.New(logger, &linkmon.ICMPPinger{Privileged: true}, cfg.GatewayAddr, cfg.GatewayPingInterval,
		func(reachable bool) {
			reason := monitor.ReasonGatewayUnreachable
			if reachable {
				reason = monitor.ReasonGatewayReachable
			}
			svc.RequestValidation(reason)
		})
	go lm.Run(ctx)

	if !svc.AttachNetwork(cfg.IfIndex, cfg.Interface, family, cfg.DNSServers) {
		logger.Warn("initial_validation_not_started")
	}

	api := httpapi.NewServer(logger, reg, cfg.PublicRPM, cfg.PublicBurst)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	svc.Detach()
}
