package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/porthorian/tokengate"
	httptransport "github.com/porthorian/tokengate/pkg/transport/http"
)

type serveConfig struct {
	Listen         string
	TokenTTL       time.Duration
	CacheBackend   string
	RedisAddress   string
	RedisNamespace string
	AllowAnonymous bool
}

func init() {
	rootCmd.AddCommand(newServeCommand())
}

func newServeCommand() *cobra.Command {
	cfg := serveConfig{
		Listen:       ":8080",
		TokenTTL:     5 * time.Minute,
		CacheBackend: "memory",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo HTTP server protected by bearer-token authentication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := resolveRuntime(cfg)
			if err != nil {
				return err
			}

			client, err := tokengate.NewDefault(tokengate.Config{
				TokenTTL: tokengate.TTL(cfg.TokenTTL),
				Runtime:  runtime,
			})
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					cmd.PrintErrf("warning: failed to close client cleanly: %v\n", closeErr)
				}
			}()

			mux := http.NewServeMux()
			mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
				profile, ok := httptransport.ProfileFromContext(r.Context())
				if !ok {
					_, _ = w.Write([]byte("anonymous\n"))
					return
				}

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"subject":      profile.Subject,
					"provider":     profile.Provider,
					"display_name": profile.DisplayName,
					"emails":       profile.Emails,
				})
			})

			middlewareConfig := httptransport.DefaultConfig()
			middlewareConfig.AllowAnonymous = cfg.AllowAnonymous
			handler := httptransport.Middleware(client.Registry(), middlewareConfig)(mux)

			cmd.Printf("Listening on %s (cache backend: %s, token ttl: %s)\n", cfg.Listen, cfg.CacheBackend, cfg.TokenTTL)
			return http.ListenAndServe(cfg.Listen, handler)
		},
	}

	serveCmd.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "Address to listen on.")
	serveCmd.Flags().DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "How long a verified token is trusted before re-verification.")
	serveCmd.Flags().StringVar(&cfg.CacheBackend, "cache-backend", cfg.CacheBackend, "Profile cache backend. Supported: memory, redis.")
	serveCmd.Flags().StringVar(&cfg.RedisAddress, "redis-address", "", "Redis address for the redis cache backend. Can also be set via TOKENGATE_REDIS_ADDRESS.")
	serveCmd.Flags().StringVar(&cfg.RedisNamespace, "redis-namespace", "", "Key namespace for the redis cache backend.")
	serveCmd.Flags().BoolVar(&cfg.AllowAnonymous, "allow-anonymous", false, "Let requests through when no strategy engages.")

	return serveCmd
}

func resolveRuntime(cfg serveConfig) (tokengate.RuntimeConfig, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "", "memory":
		return tokengate.RuntimeConfig{
			Cache: tokengate.CacheConfig{Backend: tokengate.CacheBackendMemory},
		}, nil
	case "redis":
		address := strings.TrimSpace(cfg.RedisAddress)
		if address == "" {
			address = lookupEnv("TOKENGATE_REDIS_ADDRESS")
		}
		return tokengate.RuntimeConfig{
			Cache: tokengate.CacheConfig{
				Backend: tokengate.CacheBackendRedis,
				Redis: tokengate.RedisCacheConfig{
					Address:   address,
					Namespace: cfg.RedisNamespace,
				},
			},
		}, nil
	default:
		return tokengate.RuntimeConfig{}, fmt.Errorf("unsupported --cache-backend %q: supported values are memory, redis", cfg.CacheBackend)
	}
}

func lookupEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
