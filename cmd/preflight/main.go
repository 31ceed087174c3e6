// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hamed0406/probecheck/internal/config"
	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/probeset"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
	os.Exit(preflight(cfg, os.Stdout, os.Stderr))
}

// preflight checks configuration without touching the network and returns
// the exit code.
func preflight(cfg config.Config, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	fileBase, probes, err := probeset.Resolve(cfg.ProbeFile)
	switch {
	case err != nil:
		fail("probe file " + cfg.ProbeFile + " is invalid:")
		var ce *harness.ConfigurationError
		if errors.As(err, &ce) {
			for _, p := range ce.Problems {
				fmt.Fprintln(stderr, "   -", p)
			}
		} else {
			fmt.Fprintln(stderr, "   -", err)
		}
	case cfg.ProbeFile == "":
		ok(fmt.Sprintf("PROBE_FILE empty; using the built-in checklist (%d probes)", len(probes)))
	default:
		ok(fmt.Sprintf("PROBE_FILE=%s (%d probes)", cfg.ProbeFile, len(probes)))
	}

	target := cfg.TargetBaseURL
	if fileBase != "" {
		target = fileBase
	}
	if err == nil {
		if verr := harness.Validate(target, probes); verr != nil {
			fail("probes cannot run against " + target + ": " + strings.ReplaceAll(verr.Error(), "; ", ", "))
		} else {
			ok("target " + target)
		}
	}

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; POST /api/runs is open to anyone.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; read routes are open to anyone.")
	}
	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}
	ok("API_ADDR=" + cfg.Addr)

	if cfg.SlackWebhookURL == "" {
		warn("SLACK_WEBHOOK_URL empty; watch mode will only log verdict changes.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	if failed {
		fmt.Fprintln(stderr, "✖ preflight failed")
		return 1
	}
	ok("preflight passed")
	return 0
}
