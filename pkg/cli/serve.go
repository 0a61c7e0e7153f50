package cli

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

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ankitzm/chat-agent-backend/pkg/repository"
	"github.com/ankitzm/chat-agent-backend/pkg/server"
	"github.com/ankitzm/chat-agent-backend/pkg/usecase/chat"
	"github.com/ankitzm/chat-agent-backend/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var cfg config

	flags := providerFlags(&cfg)
	flags = append(flags, retrieverFlags(&cfg)...)
	flags = append(flags, serverFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the chat HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.New(cfg.logLevel, os.Stdout)
			logging.SetDefault(logger)

			llm := cfg.newLLM()
			if llm == nil {
				logger.Warn("OPENROUTER_API_KEY is not set, chat requests will fail until configured")
			}

			retriever, closeRetriever, err := cfg.newRetriever(ctx, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to create retriever")
			}
			if closeRetriever != nil {
				defer closeRetriever()
			}

			uc := chat.New(chat.NewInput{
				Memory:       repository.NewMemory(),
				LLM:          llm,
				Retriever:    retriever,
				DefaultModel: cfg.model,
			})

			srv := server.New(server.Config{
				Logger:      logger,
				Chat:        uc,
				CORSOrigins: cfg.corsOrigins(),
			})

			addr := net.JoinHostPort(cfg.host, strconv.FormatInt(cfg.port, 10))
			httpServer := &http.Server{
				Addr:    addr,
				Handler: srv.Handler(),
				// No WriteTimeout: /stream responses are long-lived.
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", addr, "retrieval", retriever != nil)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "server failed")
				}
				return nil
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shut down server")
				}
				return nil
			}
		},
	}
}
