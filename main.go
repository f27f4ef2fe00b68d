package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sirinut/regibot/agent/classify"
	contractx "github.com/sirinut/regibot/agent/contract"
	"github.com/sirinut/regibot/agent/engine"
	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
	configx "github.com/sirinut/regibot/pkg/config"
	_ "github.com/sirinut/regibot/pkg/logger/autoload"
	openrouterx "github.com/sirinut/regibot/pkg/openrouter"
	serverx "github.com/sirinut/regibot/server"
)

type AppConfig struct {
	Mode         string `split_words:"true" default:"cli"`    // cli or http
	RecordStore  string `split_words:"true" default:"memory"` // memory or postgres
	SessionStore string `split_words:"true" default:"memory"` // memory or upstash
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("REGIBOT")

	records := newRecordStore(ctx, appCfg.RecordStore)
	sessions := newSessionStore(appCfg.SessionStore)
	fallback := newFallbackClassifier()

	eng, err := engine.New(records, fallback)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}

	switch strings.ToLower(appCfg.Mode) {
	case "http":
		runHTTP(eng, sessions)
	case "cli":
		runCLI(ctx, eng)
	default:
		log.Fatal().Str("mode", appCfg.Mode).Msg("unknown mode, expected cli or http")
	}
}

func newRecordStore(ctx context.Context, kind string) record.Store {
	switch strings.ToLower(kind) {
	case "postgres":
		pgCfg := configx.MustNew[record.PostgresConfig]("POSTGRES")
		store, err := record.NewPostgresStore(record.Connect(*pgCfg))
		if err != nil {
			log.Fatal().Err(err).Msg("postgres store init failed")
		}
		if pgCfg.InitDB {
			if err := store.InitSchema(ctx); err != nil {
				log.Fatal().Err(err).Msg("schema init failed")
			}
		}
		return store
	case "memory":
		return record.NewMemoryStore()
	default:
		log.Fatal().Str("record_store", kind).Msg("unknown record store, expected memory or postgres")
		return nil
	}
}

func newSessionStore(kind string) statex.Store {
	switch strings.ToLower(kind) {
	case "upstash":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("upstash store init failed")
		}
		return store
	case "memory":
		return statex.NewMemoryStore()
	default:
		log.Fatal().Str("session_store", kind).Msg("unknown session store, expected memory or upstash")
		return nil
	}
}

// newFallbackClassifier returns nil when OpenRouter is not configured;
// keyword classification alone still covers the documented phrasings.
func newFallbackClassifier() contractx.Classifier {
	cfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	client := openrouterx.NewClient(*cfg)
	if client == nil {
		log.Info().Msg("openrouter not configured, running with keyword classification only")
		return nil
	}
	classifier, err := classify.NewLLMClassifier(client, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("classifier init failed")
	}
	return classifier
}

func runHTTP(eng *engine.Engine, sessions statex.Store) {
	srvCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(eng, sessions)
	log.Info().Str("addr", srvCfg.Addr).Msg("listening")
	if err := http.ListenAndServe(srvCfg.Addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func runCLI(ctx context.Context, eng *engine.Engine) {
	fmt.Println("Registration Assistant")
	fmt.Println("Type 'help' to see what I can do, 'exit' to quit.")
	fmt.Println()

	var st *statex.ConversationState
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		reply, next, err := eng.ProcessTurn(ctx, text, st)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}
		st = next
		fmt.Println(reply)
		fmt.Println()

		if st.CurrentIntent == contractx.IntentExit && !st.Collecting() {
			break
		}
	}
}
