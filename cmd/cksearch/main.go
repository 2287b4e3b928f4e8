// Copyright 2025 CKSEARCH Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// cksearch is the OSINT reconnaissance CLI: it fans bounded-parallel
// probes out to several hundred public services and reports where a
// username, email, phone number or domain has a presence.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cimenkdev/cksearch/pkg/adapter"
	"github.com/cimenkdev/cksearch/pkg/license"
	"github.com/cimenkdev/cksearch/pkg/output"
	"github.com/cimenkdev/cksearch/pkg/probe"
	"github.com/cimenkdev/cksearch/pkg/scan"
)

const version = "2.0.0"

// Exit codes of the scan driver.
const (
	exitOK         = 0
	exitValidation = 2
	exitCancelled  = 3
	exitDeadline   = 4
	exitInternal   = 5
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	a := kingpin.New("cksearch", "OSINT reconnaissance engine")
	a.HelpFlag.Short('h')
	a.Version(version)

	var (
		mode          = a.Flag("mode", "Probe subset to run.").Default("quick").Enum("quick", "deep")
		outputForm    = a.Flag("output", "Render form for the report.").Default("console").Enum("console", "json", "html", "all")
		outputDir     = a.Flag("output-dir", "Directory for json/html reports.").Default("output").String()
		timeout       = a.Flag("timeout", "Per-request deadline in seconds.").Default("15").Int()
		concurrency   = a.Flag("concurrency", "Global in-flight request cap.").Default("50").Int()
		excludeCats   = a.Flag("exclude-category", "Category to exclude (repeatable).").Strings()
		noNSFW        = a.Flag("no-nsfw", "Exclude NSFW probes.").Bool()
		probeOverlays = a.Flag("probes", "Extra probe overlay YAML file (repeatable).").Strings()
		listenAddress = a.Flag("listen-address", "Address to expose /metrics on during the scan; empty disables.").Default("").String()
		logLevel      = a.Flag("log.level", "Log level.").Default("info").Enum("error", "warn", "info", "debug")
		logFormat     = a.Flag("log.format", "Log format.").Default("logfmt").Enum("logfmt", "json")
		licenseURL    = a.Flag("license-url", "Licence backend base URL.").Default("").String()
		noLicense     = a.Flag("no-license", "Skip the licence gateway.").Bool()
		numverifyKey  = a.Flag("numverify-key", "Numverify API key for carrier lookups.").Envar("NUMVERIFY_API_KEY").String()
		ipinfoToken   = a.Flag("ipinfo-token", "ipinfo.io token for geo lookups.").Envar("IPINFO_API_KEY").String()
	)

	usernameCmd := a.Command("username", "Scan a username across platforms.")
	usernameTarget := usernameCmd.Arg("target", "Username to scan.").Required().String()
	emailCmd := a.Command("email", "Scan an email address.")
	emailTarget := emailCmd.Arg("target", "Email address to scan.").Required().String()
	phoneCmd := a.Command("phone", "Scan an E.164 phone number.")
	phoneTarget := phoneCmd.Arg("target", "Phone number to scan, e.g. +6281234567890.").Required().String()
	domainCmd := a.Command("domain", "Scan a domain.")
	domainTarget := domainCmd.Arg("target", "Domain to scan.").Required().String()

	command, err := a.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitValidation
	}

	logger := newLogger(*logLevel, *logFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry, err := buildRegistry(*probeOverlays)
	if err != nil {
		_ = level.Error(logger).Log("msg", "building probe registry failed", "err", err)
		return exitInternal
	}

	cfg := scan.DefaultConfig()
	cfg.Concurrency = *concurrency
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.Selection = probe.Selection{
		ExcludeCategories: *excludeCats,
		IncludeNSFW:       !*noNSFW,
	}

	opts := []scan.Option{
		scan.WithAdapters(probe.KindEmail, adapter.NewBreachLookup()),
		scan.WithAdapters(probe.KindDomain,
			adapter.NewDNSLookup(""),
			adapter.NewWhoisLookup(),
			adapter.NewTLSCertLookup(),
			adapter.NewHeaderInspect(),
		),
	}
	if *numverifyKey != "" {
		opts = append(opts, scan.WithAdapters(probe.KindPhone, adapter.NewCarrierLookup(*numverifyKey)))
	}
	if *ipinfoToken != "" {
		opts = append(opts, scan.WithAdapters(probe.KindDomain, adapter.NewGeoIPLookup(*ipinfoToken)))
	}
	if !*noLicense {
		opts = append(opts, scan.WithLicenseGate(license.New(*licenseURL, version, logger)))
	}

	scanner := scan.NewScanner(registry, cfg, logger, reg, opts...)
	tier := probe.Tier(*mode)

	var (
		report  *scan.Report
		scanErr error
	)
	var g run.Group
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			switch command {
			case usernameCmd.FullCommand():
				report, scanErr = scanner.ScanUsername(ctx, *usernameTarget, tier)
			case emailCmd.FullCommand():
				report, scanErr = scanner.ScanEmail(ctx, *emailTarget, tier)
			case phoneCmd.FullCommand():
				report, scanErr = scanner.ScanPhone(ctx, *phoneTarget, tier)
			case domainCmd.FullCommand():
				report, scanErr = scanner.ScanDomain(ctx, *domainTarget, tier)
			default:
				scanErr = fmt.Errorf("unknown command %q", command)
			}
			return nil
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt))
	if *listenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		server := &http.Server{Addr: *listenAddress, Handler: mux}
		g.Add(func() error {
			_ = level.Info(logger).Log("msg", "serving metrics", "listen", *listenAddress)
			return server.ListenAndServe()
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Run(); err != nil {
		var sigErr run.SignalError
		if !errors.As(err, &sigErr) {
			_ = level.Error(logger).Log("msg", "run group failed", "err", err)
			return exitInternal
		}
		// Interrupt: the scan actor was cancelled and has already
		// produced a partial report with ErrCancelled.
	}

	if report != nil {
		if err := render(report, *outputForm, *outputDir); err != nil {
			_ = level.Error(logger).Log("msg", "rendering report failed", "err", err)
			return exitInternal
		}
	}
	return exitCodeFor(scanErr, logger)
}

func buildRegistry(overlays []string) (*probe.Registry, error) {
	b := probe.DefaultBuilder()
	for _, path := range overlays {
		if err := b.AddOverlayFile(path); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func exitCodeFor(err error, logger log.Logger) int {
	var vErr *probe.ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &vErr), errors.Is(err, license.ErrDenied):
		_ = level.Error(logger).Log("msg", "scan rejected", "err", err)
		return exitValidation
	case errors.Is(err, scan.ErrCancelled):
		_ = level.Warn(logger).Log("msg", "scan cancelled, report is partial")
		return exitCancelled
	case errors.Is(err, scan.ErrDeadlineExceeded):
		_ = level.Warn(logger).Log("msg", "scan deadline expired, report is partial")
		return exitDeadline
	default:
		_ = level.Error(logger).Log("msg", "scan failed", "err", err)
		return exitInternal
	}
}

func render(report *scan.Report, form, dir string) error {
	writeFile := func(ext string, write func(f *os.File) error) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		name := fmt.Sprintf("cksearch_%s_%s.%s",
			sanitize(report.Target.Value), report.StartedAt.Format("20060102-150405"), ext)
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		return write(f)
	}

	if form == "console" || form == "all" {
		if err := output.WriteConsole(os.Stdout, report); err != nil {
			return err
		}
	}
	if form == "json" || form == "all" {
		if err := writeFile("json", func(f *os.File) error { return output.WriteJSON(f, report) }); err != nil {
			return err
		}
	}
	if form == "html" || form == "all" {
		if err := writeFile("html", func(f *os.File) error { return output.WriteHTML(f, report) }); err != nil {
			return err
		}
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

func newLogger(logLevel, logFormat string) log.Logger {
	var logger log.Logger
	if logFormat == "json" {
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	}
	var lvl level.Option
	switch logLevel {
	case "error":
		lvl = level.AllowError()
	case "warn":
		lvl = level.AllowWarn()
	case "debug":
		lvl = level.AllowDebug()
	default:
		lvl = level.AllowInfo()
	}
	logger = level.NewFilter(logger, lvl)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}
