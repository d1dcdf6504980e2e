package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

type Args struct {
	VPCID        string
	Services     string
	Region       string
	DrainTimeout time.Duration
	DrainPoll    time.Duration
	LogsDir      string
	Debug        bool
}

func parseArgs(argv []string) (Args, error) {
	var args Args
	fs := flag.NewFlagSet("vpc-teardown", flag.ContinueOnError)

	// --vpc-id, -v
	fs.StringVar(&args.VPCID, "vpc-id", "", "id of the VPC to destroy (required)")
	fs.StringVar(&args.VPCID, "v", "", "")

	// --services, -s
	fs.StringVar(&args.Services, "services", "", "comma-separated auxiliary services to also tear down (currently: ec2)")
	fs.StringVar(&args.Services, "s", "", "")

	// --region, -r
	fs.StringVar(&args.Region, "region", "", "AWS region (defaults to AWS_DEFAULT_REGION)")
	fs.StringVar(&args.Region, "r", "", "")

	fs.DurationVar(&args.DrainTimeout, "timeout", 0, "ceiling for the network interface drain")
	fs.DurationVar(&args.DrainPoll, "poll-interval", 0, "poll interval for the network interface drain")
	fs.StringVar(&args.LogsDir, "logs-dir", "", "directory to write a per-run transcript into")
	fs.BoolVar(&args.Debug, "debug", false, "log at debug level")

	if err := fs.Parse(argv); err != nil {
		return args, err
	}

	if args.VPCID == "" {
		return args, fmt.Errorf("--vpc-id is required")
	}
	if args.Region == "" {
		args.Region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if args.Region == "" {
		return args, fmt.Errorf("no region: pass --region or set AWS_DEFAULT_REGION")
	}
	return args, nil
}
