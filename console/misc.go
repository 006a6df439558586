package console

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/audit"
	"github.com/kochabx/workforce/errors"
)

func (c *Console) versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{annotationOffline: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				c.printf("%s\n", Version)
				return
			}
			c.printf("Version:    %s\n", Version)
			c.printf("Commit:     %s\n", Commit)
			c.printf("Built:      %s\n", Date)
			c.printf("Go version: %s\n", runtime.Version())
			c.printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	return cmd
}

func (c *Console) auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "audit",
		Short:       "Inspect the audit trail",
		Annotations: route("/admin"),
	}

	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Follow session and admin events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.env.Settings.Audit
			if len(cfg.Kafka.Brokers) == 0 {
				return errors.BadRequest("audit.kafka.brokers is not configured")
			}
			return audit.Tail(cmd.Context(), cfg, group, func(ev audit.Event) error {
				c.printf("%s  %-7s  %-12s  %-18s  %v\n", ev.At.Local().Format(time.DateTime), ev.Type, ev.Subject, ev.Reason, ev.Detail)
				return nil
			})
		},
	}
	tail.Flags().StringVar(&group, "group", "workforce-console", "consumer group id")

	cmd.AddCommand(tail)
	return cmd
}
