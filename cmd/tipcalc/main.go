/*
main.go - Command-line tip calculator

PURPOSE:
  Runs the allocation engine on a request file without starting the server.
  Requests use the same shape as POST /api/calculate, in JSON or YAML.

USAGE:
  tipcalc [-format json|yaml] [-check] [-compact] <file | ->
  tipcalc token -secret <secret> -sub <user-id> [-issuer iss] [-audience aud] [-ttl 24h]

  The format is taken from the file extension (.yaml/.yml) unless -format is
  given; "-" reads standard input. -check exits with status 2 when the
  result fails its consistency checks. The token subcommand mints a bearer
  token for trying the template routes locally.

EXIT STATUS:
  0  success
  1  bad input or calculation failure
  2  result computed but inconsistent (-check only)
*/
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/auth"
	"github.com/warp/tip-engine/factory"
	"github.com/warp/tip-engine/wizard"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "token" {
		return runToken(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("tipcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "", "Input format: json or yaml (default from extension)")
	check := fs.Bool("check", false, "Exit 2 if the result fails consistency checks")
	compact := fs.Bool("compact", false, "Print JSON on one line")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: tipcalc [-format json|yaml] [-check] [-compact] <file | ->")
		return 1
	}

	path := fs.Arg(0)
	data, err := readInput(path, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "tipcalc: %v\n", err)
		return 1
	}

	parsed, err := parse(data, inputFormat(*format, path))
	if err != nil {
		fmt.Fprintf(stderr, "tipcalc: %v\n", err)
		return 1
	}

	result, err := calculate(parsed)
	if err != nil {
		fmt.Fprintf(stderr, "tipcalc: calculation failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "tipcalc: %v\n", err)
		return 1
	}

	if *check {
		violations := result.Verify(allocation.DefaultTolerance)
		for _, v := range violations {
			fmt.Fprintf(stderr, "tipcalc: %s\n", v)
		}
		if len(violations) > 0 {
			return 2
		}
	}
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func inputFormat(flagValue, path string) string {
	if flagValue != "" {
		return strings.ToLower(flagValue)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func parse(data []byte, format string) (*factory.Parsed, error) {
	f := factory.NewRequestFactory()
	switch format {
	case "json":
		return f.Parse(data)
	case "yaml":
		return f.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// calculate walks the wizard when the request names its period, so days
// are checked against it; otherwise the engine is called directly.
func calculate(parsed *factory.Parsed) (*allocation.Result, error) {
	req := parsed.Request
	if parsed.TimeSpan == "" {
		return allocation.Compute(req)
	}
	w := wizard.New()
	if err := w.SetPeriod(parsed.TimeSpan, req.DailyTips); err != nil {
		return nil, err
	}
	if err := w.SetRoster(req.Employees); err != nil {
		return nil, err
	}
	if err := w.SetPolicy(req.Scenario, req.Details); err != nil {
		return nil, err
	}
	return w.Calculate()
}

func runToken(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tipcalc token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	secret := fs.String("secret", os.Getenv("AUTH_JWT_SECRET"), "HS256 signing secret")
	subject := fs.String("sub", "", "User ID")
	name := fs.String("name", "", "Display name")
	issuer := fs.String("issuer", "tips-auth", "Token issuer")
	audience := fs.String("audience", "", "Token audience")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *subject == "" {
		fmt.Fprintln(stderr, "tipcalc token: -sub is required")
		return 1
	}
	v := &auth.Verifier{Secret: []byte(*secret), Issuer: *issuer, Audience: *audience}
	token, err := v.Issue(auth.Principal{ID: *subject, Name: *name}, *ttl)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			fmt.Fprintln(stderr, "tipcalc token: -secret or AUTH_JWT_SECRET is required")
		} else {
			fmt.Fprintf(stderr, "tipcalc token: %v\n", err)
		}
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
