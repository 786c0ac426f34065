package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gangsheet/internal/server"
	"github.com/matzehuels/gangsheet/pkg/session"
	"github.com/matzehuels/gangsheet/pkg/storage"
)

const defaultAddr = ":8080"

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		flags runFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the montage API over HTTP",
		Long: `Serve the montage API over HTTP.

Designs are uploaded as multipart forms and the finished archive is returned
in the response. Sessions are kept in memory and expire after a week of
inactivity.

When GANGSHEET_S3_BUCKET is set, clients may pass ?publish=true to have the
archive uploaded to object storage instead of returned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := server.Config{
				Runner:   runner,
				Options:  opts,
				Sessions: session.NewMemoryStore(),
				Logger:   c.Logger,
			}
			if sc := storage.ConfigFromEnv(); sc.Configured() {
				s3, err := storage.NewS3(ctx, sc)
				if err != nil {
					return err
				}
				cfg.Publisher = s3
				c.Logger.Info("publishing enabled", "bucket", sc.Bucket, "prefix", sc.Prefix)
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	flags.register(cmd)

	return cmd
}
