// Copyright 2024 Cloudbase Solutions SRL
//
//    Licensed under the Apache License, Version 2.0 (the "License"); you may
//    not use this file except in compliance with the License. You may obtain
//    a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
//    WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
//    License for the specific language governing permissions and limitations
//    under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/gabriel-samfira/appservices-logs/auth"
	"github.com/gabriel-samfira/appservices-logs/config"
	"github.com/gabriel-samfira/appservices-logs/datastore"
	"github.com/gabriel-samfira/appservices-logs/datastore/appservices"
	"github.com/gabriel-samfira/appservices-logs/httpclient"
	"github.com/gabriel-samfira/appservices-logs/logging"
	"github.com/gabriel-samfira/appservices-logs/pager"
	"github.com/gabriel-samfira/appservices-logs/params"
	"github.com/gabriel-samfira/appservices-logs/writers"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitAuth       = 3
	exitFetch      = 4
)

const usageHeader = `Fetch logs from an App Services application using pagination.

Usage:
  appservices-logs [flags] <project_id> <app_id> <public_api_key> <private_api_key>

Flags:
`

// cliArgs is everything read from the command line. It is built once
// and never touched again.
type cliArgs struct {
	configFile string
	output     string
	verbose    bool

	query      params.RawQuery
	publicKey  string
	privateKey string
}

func optional(fs *pflag.FlagSet, name string, val *string) *string {
	if !fs.Changed(name) {
		return nil
	}
	return val
}

func parseArgs(args []string, out io.Writer) (cliArgs, error) {
	fs := pflag.NewFlagSet("appservices-logs", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usageHeader)
		fs.PrintDefaults()
	}

	startDate := fs.String("start_date", "", "Start date in ISO 8601 format (YYYY-MM-DDTHH:MM:SS.MMMZ)")
	endDate := fs.String("end_date", "", "End date in ISO 8601 format (YYYY-MM-DDTHH:MM:SS.MMMZ)")
	types := fs.String("type", "", "Comma-separated list of log types to fetch")
	userID := fs.String("user_id", "", "Return only log messages associated with the given user_id")
	onlyError := fs.Bool("only_error", false, "Return only error log messages")
	errorsOnly := fs.Bool("errors_only", false, "Alias for --only_error")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	cfgFile := fs.String("config", "", "Optional TOML config file")
	output := fs.String("output", "", "Also write every record as JSON lines to this file")
	fs.MarkHidden("errors_only")

	if err := fs.Parse(args); err != nil {
		return cliArgs{}, err
	}
	positional := fs.Args()
	if len(positional) != 4 {
		fs.Usage()
		return cliArgs{}, fmt.Errorf("expected 4 positional arguments, got %d", len(positional))
	}

	return cliArgs{
		configFile: *cfgFile,
		output:     *output,
		verbose:    *verbose,
		query: params.RawQuery{
			ProjectID:  positional[0],
			AppID:      positional[1],
			StartDate:  optional(fs, "start_date", startDate),
			EndDate:    optional(fs, "end_date", endDate),
			Types:      optional(fs, "type", types),
			UserID:     optional(fs, "user_id", userID),
			ErrorsOnly: *onlyError || *errorsOnly,
		},
		publicKey:  positional[2],
		privateKey: positional[3],
	}, nil
}

func exitCode(err error) int {
	var valErr *params.ValidationError
	var authErr *auth.AuthError
	var fetchErr *datastore.FetchError
	switch {
	case errors.As(err, &valErr):
		return exitValidation
	case errors.As(err, &authErr):
		return exitAuth
	case errors.As(err, &fetchErr):
		return exitFetch
	default:
		return exitFailure
	}
}

func dateOrOpen(d *params.Date) string {
	if d == nil {
		return "(open)"
	}
	return d.Raw
}

func fetchLogs(ctx context.Context, cfg *config.Config, cli cliArgs, runLog *logging.RunLog, started time.Time) error {
	log := runLog.GetLogger("appservices.cmd")
	log.Infof("Starting log fetching process...")

	query, err := params.NewQueryParams(cli.query, started)
	if err != nil {
		return errors.Wrap(err, "validating arguments")
	}
	creds, err := auth.NewCredentials(cli.publicKey, cli.privateKey)
	if err != nil {
		return errors.Wrap(err, "validating arguments")
	}
	log.Debugf("query: project=%s app=%s start=%s end=%s types=%q user=%q errors_only=%v",
		query.ProjectID, query.AppID, dateOrOpen(query.StartDate), dateOrOpen(query.EndDate),
		query.TypesString(), query.UserID, query.ErrorsOnly)

	runID := uuid.New().String()
	log.Debugf("run %s logging to %s", runID, runLog.Path())
	client := httpclient.New(cfg.API, runID)

	session, err := auth.NewSessionProvider(cfg.API, creds, client, runLog.GetLogger("appservices.auth"))
	if err != nil {
		return errors.Wrap(err, "getting session provider")
	}
	token, err := session.Token(ctx)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}

	fetcher, err := appservices.NewPageFetcher(cfg.API, token, client, runLog.GetLogger("appservices.datastore"))
	if err != nil {
		return errors.Wrap(err, "getting page fetcher")
	}
	writer, closer, err := writers.GetWriters(runLog, cli.output)
	if err != nil {
		return errors.Wrap(err, "getting writers")
	}

	driver := pager.NewDriver(fetcher, query, runLog.GetLogger("appservices.pager"))
	runErr := driver.Run(ctx, writer)
	closeErr := closer.Close()
	if runErr != nil {
		log.Infof("stopped after %d records from %d pages", driver.Records(), driver.Pages())
		return runErr
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "closing output")
	}
	log.Infof("Log fetching process completed successfully: %d records from %d pages",
		driver.Records(), driver.Pages())
	return nil
}

func run(ctx context.Context, args []string, console io.Writer, now func() time.Time) (code int) {
	started := now()
	cli, err := parseArgs(args, console)
	if err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		fmt.Fprintf(console, "error: %v\n", err)
		return exitValidation
	}

	cfg := config.DefaultConfig()
	if strings.TrimSpace(cli.configFile) != "" {
		cfg, err = config.NewConfig(cli.configFile)
		if err != nil {
			fmt.Fprintf(console, "error reading config: %v\n", err)
			return exitFailure
		}
	}

	runLog, err := logging.NewRunLog(cfg.Logging.Dir, cli.verbose, started, console)
	if err != nil {
		fmt.Fprintf(console, "error creating log file: %v\n", err)
		return exitFailure
	}
	defer func() {
		if err := runLog.Close(); err != nil {
			fmt.Fprintf(console, "error closing log file: %v\n", err)
			if code == exitOK {
				code = exitFailure
			}
		}
	}()

	if err := fetchLogs(ctx, cfg, cli, runLog, started); err != nil {
		runLog.GetLogger("appservices.cmd").Errorf("An error occurred: %v", err)
		return exitCode(err)
	}
	return exitOK
}

func main() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM)
	signal.Notify(stop, syscall.SIGINT)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	code := run(ctx, os.Args[1:], os.Stderr, time.Now)
	cancel()
	os.Exit(code)
}
