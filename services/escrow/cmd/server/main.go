package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Axel-C19/OpenMarket/pkg/db"
	"github.com/Axel-C19/OpenMarket/pkg/domain"
	"github.com/Axel-C19/OpenMarket/pkg/httpx"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/config"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/dispatch"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/gate"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/guard"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/journal"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/query"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/registry"
	"github.com/Axel-C19/OpenMarket/services/escrow/internal/store"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openmarket_actions_total",
		Help: "Processed actions by type and result code.",
	}, []string{"action", "code"})

	journalReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openmarket_journal_replays_total",
		Help: "Actions answered from the journal without re-execution.",
	})
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := newLogger(cfg)

	manifest, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load contract manifest")
	}
	sellerWallet, clientWallet, royalties, err := manifest.Resolve()
	if err != nil {
		log.Fatal().Err(err).Msg("resolve contract manifest")
	}

	ctx := context.Background()

	var journalStore journal.Store = journal.NewMemoryStore()
	var recorder dispatch.Recorder
	var pgStore *store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		pgStore = store.New(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure schema")
		}
		journalStore = pgStore
		recorder = pgStore
		log.Info().Msg("journal backed by postgres")
	} else {
		log.Warn().Msg("DATABASE_URL unset; journal held in memory only")
	}

	reg, err := registry.New(royalties, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("build registry")
	}
	dispatcher := dispatch.New(dispatch.Config{
		Log:      log,
		Journal:  journal.New(journalStore),
		Gate:     gate.New(sellerWallet, clientWallet),
		Registry: reg,
		Ledger:   registry.NewLedger(),
		Guard:    guard.New(sellerWallet, clientWallet),
		Recorder: recorder,
	})
	projection := query.New(dispatcher, manifest.Name)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/escrow", func(api chi.Router) {
		api.Post("/actions", func(w http.ResponseWriter, r *http.Request) {
			var req dispatch.Request
			if err := httpx.ReadJSON(r, &req); err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			event, replayed, err := dispatcher.Handle(r.Context(), req)
			status, code := dispatch.Code(err)
			actionsTotal.WithLabelValues(string(req.Action.Type), code).Inc()
			if err != nil {
				httpx.WriteError(w, status, code, err.Error(), nil)
				return
			}
			if replayed {
				journalReplays.Inc()
			}
			httpx.WriteJSON(w, 200, map[string]any{
				"request_id": httpx.NewRequestID(),
				"replayed":   replayed,
				"event":      event,
			})
		})

		api.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			state, err := projection.ContractState(r.Context())
			if err != nil {
				httpx.WriteError(w, 500, "INTERNAL", err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "state": state})
		})

		api.Get("/tokens/{token_id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := parseTokenID(chi.URLParam(r, "token_id"))
			if err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			token, err := projection.Token(id)
			if err != nil {
				status, code := dispatch.Code(err)
				httpx.WriteError(w, status, code, err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "token": token})
		})

		api.Get("/tokens/{token_id}/approved/{address}", func(w http.ResponseWriter, r *http.Request) {
			id, err := parseTokenID(chi.URLParam(r, "token_id"))
			if err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			candidate, err := domain.ParseAddress(chi.URLParam(r, "address"))
			if err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			approved, err := projection.IsApproved(id, candidate)
			if err != nil {
				status, code := dispatch.Code(err)
				httpx.WriteError(w, status, code, err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{
				"request_id": httpx.NewRequestID(),
				"token_id":   id,
				"candidate":  candidate,
				"approved":   approved,
			})
		})

		api.Get("/owners/{address}/tokens", func(w http.ResponseWriter, r *http.Request) {
			owner, err := domain.ParseAddress(chi.URLParam(r, "address"))
			if err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{
				"request_id": httpx.NewRequestID(),
				"owner":      owner,
				"tokens":     projection.TokensForOwner(owner),
			})
		})

		api.Get("/balances/{address}", func(w http.ResponseWriter, r *http.Request) {
			account, err := domain.ParseAddress(chi.URLParam(r, "address"))
			if err != nil {
				httpx.WriteError(w, 400, "MALFORMED_REQUEST", err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{
				"request_id": httpx.NewRequestID(),
				"balance":    projection.Balance(account),
			})
		})

		api.Get("/supply", func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteJSON(w, 200, map[string]any{
				"request_id":   httpx.NewRequestID(),
				"total_supply": projection.TotalSupply(),
			})
		})

		api.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			if pgStore == nil {
				httpx.WriteError(w, 404, "NOT_FOUND", "event trail requires a database", nil)
				return
			}
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			events, err := pgStore.ListEvents(r.Context(), limit)
			if err != nil {
				httpx.WriteError(w, 500, "INTERNAL", err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "events": events})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServicePort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("port", cfg.ServicePort).Str("contract", manifest.Name).Msg("escrow service listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.LogConsole {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", "escrow").Logger()
}

func parseTokenID(s string) (domain.TokenID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return domain.TokenID(id), nil
}
