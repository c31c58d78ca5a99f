// Command quote prices a loan request, or submits it, against the configured
// MySQL and Redis backends. The request is a JSON LoanRequest read from a
// file or stdin; the outcome is printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lending-engine/internal/adapter/idempotency"
	"lending-engine/internal/adapter/repository/mysql"
	"lending-engine/internal/adapter/repository/redisstore"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/errs"
	"lending-engine/internal/infrastructure/cache"
	"lending-engine/internal/infrastructure/db"
	"lending-engine/internal/logger"
	"lending-engine/internal/metrics"
	"lending-engine/internal/usecase/eligibility"
	"lending-engine/internal/usecase/loan"
	"lending-engine/internal/usecase/ratecard"
)

func main() {
	var (
		requestPath = flag.String("request", "-", "LoanRequest JSON file, - for stdin")
		submit      = flag.Bool("submit", false, "run eligibility and persist the loan instead of quoting")
		migrate     = flag.Bool("migrate", false, "create or update tables before running")
		history     = flag.String("history", "", "print the eligibility audit log of an account and exit")
		resetInside = flag.String("reset-inside", "", "clear the inside-limit block of an account and exit")
		actor       = flag.String("actor", "ops", "actor recorded with -reset-inside")
		reason      = flag.String("reason", "manual review", "reason recorded with -reset-inside")
		metricsAddr = flag.String("metrics-addr", "", "serve /metrics on this address while running")
	)
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	log := logger.L()
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal("open mysql", zap.Error(err))
	}
	if *migrate {
		if err := mysql.Migrate(gdb); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	var features config.Provider = config.NewFileProvider(cfg.FeatureFile)
	if cfg.FeatureSource == config.FeatureSourceRedis {
		features = redisstore.NewFeatureProvider(rdb, cfg.FeatureRedisKey)
	}

	tx := mysql.NewGormUoW(gdb)
	gate := eligibility.NewGate(tx, mysql.NewBureauRepository(gdb))
	cards := redisstore.NewCachedRateCards(rdb, mysql.NewRateCardRepository(gdb), cfg.RateCardCacheTTL())
	uc := loan.NewUsecase(loan.Deps{
		Loans:    mysql.NewLoanRepository(gdb),
		UoW:      tx,
		Features: features,
		Resolver: ratecard.NewResolver(cards),
		Gate:     gate,
		Guard:    idempotency.NewRedisGuard(rdb, cfg.GuardTTL()),
	})

	var out any
	switch {
	case *history != "":
		out, err = gate.History(ctx, *history)
	case *resetInside != "":
		err = gate.ResetInside(ctx, *resetInside, *actor, *reason)
		out = map[string]string{"account_id": *resetInside, "inside_blocked": "false"}
	default:
		var req loan.LoanRequest
		if req, err = readRequest(*requestPath); err != nil {
			log.Fatal("read request", zap.Error(err))
		}
		if *submit {
			out, err = uc.Assemble(ctx, req)
		} else {
			out, err = uc.Quote(ctx, req)
		}
	}
	if err != nil {
		log.Error("failed", zap.Error(err), zap.String("category", string(errs.Category(err))))
		os.Exit(exitCode(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal("write outcome", zap.Error(err))
	}
}

func readRequest(path string) (loan.LoanRequest, error) {
	var req loan.LoanRequest
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode loan request: %w", err)
	}
	return req, nil
}

// exitCode lets scripts tell retryable failures from permanent ones.
func exitCode(err error) int {
	switch errs.Category(err) {
	case errs.KindInvalid, errs.KindPromo:
		return 2
	case errs.KindConfiguration:
		return 3
	case errs.KindUpstream:
		return 75 // EX_TEMPFAIL
	default:
		return 1
	}
}
