package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"idkit.io/v2/pkg/codec"
	"idkit.io/v2/pkg/crypt"
	"idkit.io/v2/pkg/hash"
	"idkit.io/v2/pkg/id"
	"idkit.io/v2/pkg/log"
	"idkit.io/v2/pkg/version"
)

const envPrefix = "IDKIT"

type cliFlags struct {
	debug     bool
	logFormat string
}

func idkit(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		logger log.Logger
		ctx    = context.Background()
		cli    = &cliFlags{}
		rootfs = flag.NewFlagSet("idkit", flag.ContinueOnError)
		_      = rootfs.String("config", "", "Path to config file (optional)")
	)

	rootfs.BoolVar(&cli.debug, "debug", false, "Allow debug level")
	rootfs.StringVar(&cli.logFormat, "log_format", "logfmt", "Log format, logfmt or json")

	// default output is os.Stderr.
	// setting the output and flag.ContinueOnError overrides allows testing usage.
	rootfs.SetOutput(stderr)

	// withLogger builds the logger from root flags before running a subcommand.
	withLogger := func(exec func(context.Context, []string) error) func(context.Context, []string) error {
		return func(ctx context.Context, args []string) error {
			format, err := log.Format(cli.logFormat)
			if err != nil {
				return err
			}
			logOpts := []log.Option{log.Output(stderr), format}
			if cli.debug {
				logOpts = append(logOpts, log.StartDebug())
			}
			logger = log.New(logOpts...)
			return exec(ctx, args)
		}
	}

	versionCmd := &ffcli.Command{
		Name:       "version",
		ShortUsage: "version",
		ShortHelp:  "Print version information.",
		Exec: func(_ context.Context, args []string) error {
			return version.PrintFull(stdout)
		},
	}

	// add a help subcommand to make usage more discoverable.
	helpCmd := &ffcli.Command{
		Name:      "help",
		ShortHelp: "Print this help text.",
		UsageFunc: func(c *ffcli.Command) string { return "" },
		Exec: func(_ context.Context, args []string) error {
			rootfs.Usage()
			return flag.ErrHelp
		},
	}

	root := &ffcli.Command{
		ShortUsage: "idkit [flags] <subcommand>",
		FlagSet:    rootfs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix), ff.WithConfigFileParser(ff.PlainParser), ff.WithConfigFileFlag("config")},
		Subcommands: []*ffcli.Command{
			helpCmd,
			versionCmd,
			ulidCmd(stdout, stderr),
			repeatCmd("uuid7", "Print time-ordered version 7 UUIDs.", id.NewUUIDv7, stdout, stderr),
			repeatCmd("uuid", "Print random version 4 UUIDs.", id.NewUUID, stdout, stderr),
			repeatCmd("short", "Print short base36 random identifiers.", id.NewShort, stdout, stderr),
			timeCmd(stdout),
			encodeCmd(stdin, stdout, stderr),
			decodeCmd(stdin, stdout, stderr),
			hashCmd(stdin, stdout, stderr),
			keygenCmd(stdout),
			serveCmd(args, stderr, withLogger, func() log.Logger { return logger }),
		},
		Exec: func(context.Context, []string) error {
			rootfs.Usage()
			return flag.ErrHelp
		},
	}

	switch err := root.ParseAndRun(ctx, args[1:]); {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case logger == nil:
		fmt.Fprintf(stderr, "idkit: %s\n", err)
		return 1
	default:
		log.Info(logger).Log("exit", err)
		return 1
	}
}

func ulidCmd(stdout, stderr io.Writer) *ffcli.Command {
	var (
		fs = flag.NewFlagSet("ulid", flag.ContinueOnError)
		ts = fs.String("ts", "", "Unix milliseconds to stamp, default is now")
		n  = fs.Int("n", 1, "Number of identifiers to print")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "ulid",
		ShortUsage: "ulid [-ts <ms>] [-n <count>]",
		ShortHelp:  "Print lexicographically sortable identifiers.",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			var ms int64
			if *ts != "" {
				var err error
				if ms, err = strconv.ParseInt(*ts, 10, 64); err != nil {
					return fmt.Errorf("ts %q is not an integer: %w", *ts, id.ErrInvalidArgument)
				}
			}

			for i := 0; i < *n; i++ {
				if *ts == "" {
					fmt.Fprintln(stdout, id.New())
					continue
				}
				s, err := id.NewAt(ms)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, s)
			}
			return nil
		},
	}
}

func repeatCmd(name, help string, gen func() string, stdout, stderr io.Writer) *ffcli.Command {
	var (
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
		n  = fs.Int("n", 1, "Number of identifiers to print")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       name,
		ShortUsage: name + " [-n <count>]",
		ShortHelp:  help,
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			for i := 0; i < *n; i++ {
				fmt.Fprintln(stdout, gen())
			}
			return nil
		},
	}
}

func timeCmd(stdout io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "time",
		ShortUsage: "time <ulid|uuid7> ...",
		ShortHelp:  "Print the timestamp embedded in ULIDs or version 7 UUIDs.",
		Exec: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				return errors.New("time: at least one identifier is required")
			}
			for _, s := range args {
				ms, err := embeddedTime(s)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%s\t%d\t%s\n", s, ms, time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
			}
			return nil
		},
	}
}

func embeddedTime(s string) (int64, error) {
	if id.IsValid(s) {
		return id.Time(s)
	}
	return id.UUIDv7Time(s)
}

type scheme struct {
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

var schemes = map[string]scheme{
	"base36":    {encode: codec.EncodeBase36, decode: codec.DecodeBase36},
	"base64":    {encode: codec.EncodeBase64, decode: codec.DecodeBase64},
	"base64url": {encode: codec.EncodeURLSafe, decode: codec.DecodeURLSafe},
}

func lookupScheme(name string) (scheme, error) {
	sc, ok := schemes[name]
	if !ok {
		return scheme{}, fmt.Errorf("unknown scheme %q, want base36, base64 or base64url", name)
	}
	return sc, nil
}

// input joins args, or reads stdin when there are none.
func input(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(strings.Join(args, " ")), nil
	}
	return io.ReadAll(stdin)
}

func encodeCmd(stdin io.Reader, stdout, stderr io.Writer) *ffcli.Command {
	var (
		fs   = flag.NewFlagSet("encode", flag.ContinueOnError)
		name = fs.String("scheme", "base36", "base36, base64 or base64url")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "encode",
		ShortUsage: "encode [-scheme <name>] [text ...]",
		ShortHelp:  "Encode text arguments, or raw stdin.",
		FlagSet:    fs,
		Exec: func(_ context.Context, args []string) error {
			sc, err := lookupScheme(*name)
			if err != nil {
				return err
			}
			data, err := input(stdin, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, sc.encode(data))
			return nil
		},
	}
}

func decodeCmd(stdin io.Reader, stdout, stderr io.Writer) *ffcli.Command {
	var (
		fs   = flag.NewFlagSet("decode", flag.ContinueOnError)
		name = fs.String("scheme", "base36", "base36, base64 or base64url")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "decode",
		ShortUsage: "decode [-scheme <name>] [text]",
		ShortHelp:  "Decode text to raw bytes on stdout.",
		FlagSet:    fs,
		Exec: func(_ context.Context, args []string) error {
			sc, err := lookupScheme(*name)
			if err != nil {
				return err
			}
			data, err := input(stdin, args)
			if err != nil {
				return err
			}
			out, err := sc.decode(strings.TrimSpace(string(data)))
			if err != nil {
				return err
			}
			_, err = stdout.Write(out)
			return err
		},
	}
}

func hashCmd(stdin io.Reader, stdout, stderr io.Writer) *ffcli.Command {
	var (
		fs  = flag.NewFlagSet("hash", flag.ContinueOnError)
		alg = fs.String("alg", "sha256", "md5, sha1, sha256, sha384 or sha512")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "hash",
		ShortUsage: "hash [-alg <name>] [file ...]",
		ShortHelp:  "Print hex digests of files, or of stdin.",
		FlagSet:    fs,
		Exec: func(_ context.Context, args []string) error {
			a, err := hash.Parse(*alg)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				data, err := io.ReadAll(stdin)
				if err != nil {
					return err
				}
				sum, err := hash.Sum(a, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%s  -\n", sum)
				return nil
			}

			for _, path := range args {
				sum, err := hash.SumFile(a, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}

func keygenCmd(stdout io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "keygen",
		ShortUsage: "keygen",
		ShortHelp:  "Print a random base36 token key and IV for serve.",
		Exec: func(context.Context, []string) error {
			fmt.Fprintf(stdout, "token_key %s\ntoken_iv %s\n", crypt.GenerateKey(), crypt.GenerateIV())
			return nil
		},
	}
}

func main() { os.Exit(idkit(os.Args, os.Stdin, os.Stdout, os.Stderr)) }
