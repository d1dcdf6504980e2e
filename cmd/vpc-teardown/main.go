package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"

	runlog "github.com/chainguard-dev/vpc-teardown/internal/log"
	"github.com/chainguard-dev/vpc-teardown/internal/o11y"
	"github.com/chainguard-dev/vpc-teardown/internal/teardown"
)

func main() {
	os.Exit(run())
}

// run is the real main; split out so deferred cleanup runs before the exit
// code is returned.
func run() int {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	terminateInstances, err := teardown.ParseServices(args.Services)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx = setupLog(ctx, args.Debug)
	ctx, closeTranscript, err := runlog.SetupRunLog(ctx, args.LogsDir, args.VPCID)
	if err != nil {
		clog.ErrorContext(ctx, "failed to set up transcript", "error", err)
		return 1
	}
	defer closeTranscript()

	log := clog.FromContext(ctx)
	if err := o11y.SetupTracing(ctx); err != nil {
		log.Warn("tracing setup failed, continuing without spans", "error", err)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(args.Region))
	if err != nil {
		log.Error("failed to load AWS configuration", "error", err)
		return 1
	}
	api := ec2.NewFromConfig(cfg)

	readiness, err := teardown.Preflight(ctx, api, args.VPCID, terminateInstances)
	switch readiness {
	case teardown.AlreadyAbsent:
		fmt.Printf("VPC %s does not exist in %s\n", args.VPCID, args.Region)
		return 0
	case teardown.CredentialsInvalid, teardown.Refused:
		log.Error("preflight refused the run", "verdict", readiness.String(), "error", err)
		fmt.Fprintf(os.Stderr, "unable to destroy %s in %s: %v\n", args.VPCID, args.Region, err)
		return 1
	}
	if err != nil {
		log.Error("preflight failed", "error", err)
		return 1
	}

	executor := teardown.NewExecutor(api, teardown.Options{
		VPCID:              args.VPCID,
		Region:             args.Region,
		TerminateInstances: terminateInstances,
		DrainTimeout:       args.DrainTimeout,
		DrainInterval:      args.DrainPoll,
	})

	report, runErr := executor.Run(ctx)
	fmt.Print(report.Summary())
	if runErr != nil || report.Failed() {
		log.Error("teardown failed", "error", runErr)
		fmt.Printf("unable to destroy %s in %s\n", args.VPCID, args.Region)
		return 1
	}

	fmt.Printf("destroyed %s in %s\n", args.VPCID, args.Region)
	return 0
}

// setupLog installs the contextual logger: a pretty console handler on
// stderr, fanned out so the transcript file can join later.
func setupLog(ctx context.Context, debug bool) context.Context {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	logger := clog.New(slogmulti.Fanout(console))
	ctx = clog.WithLogger(ctx, logger)
	slog.SetDefault(&logger.Logger)
	return ctx
}
