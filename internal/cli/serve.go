package cli

import (
	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP API",
	Long: `Serve a read-only HTTP view of the task graph plus Prometheus metrics.
Mutations stay on the CLI; the API is for dashboards and polling workers.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if addr == "" {
		addr = e.cfg.Web.Addr
	}

	srv := web.NewServer(e.store, e.index, e.log)
	return srv.Run(addr)
}
