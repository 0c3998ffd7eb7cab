package serve

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"videochat/internal/app"
	"videochat/internal/config"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the processing workers",
	Long: `Run the API server and the processing workers in one process.

Uploads are accepted over HTTP and handed to an in-process worker pool;
processing status is available by polling or as a server-sent event stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.LoadEnv()
		if err != nil {
			return err
		}

		application, err := app.InitializeApp(env)
		if err != nil {
			return err
		}

		if err := application.Server.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := application.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		return nil
	},
}
