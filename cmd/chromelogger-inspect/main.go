// Package main implements chromelogger-inspect, a command line reader for
// X-ChromeLogger-Data headers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/R3E-Network/chromelogger/internal/cli"
	"github.com/R3E-Network/chromelogger/internal/httputil"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

const usage = `Usage: chromelogger-inspect [flags] <command> [args]

Commands:
  fetch [-X method] [-H "Name: value"]... <url>   request url and print its console log
  decode [value|-]                               decode a header value (stdin when omitted)
  completion <bash|zsh|fish>                     print a shell completion script

Flags:
`

type options struct {
	noColor     bool
	noLocations bool
	asJSON      bool
}

type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, ", ") }

func (h *headerFlags) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("header %q must look like Name: value", v)
	}
	*h = append(*h, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chromelogger-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&opts.noLocations, "no-locations", false, "Hide the backtrace column")
	fs.BoolVar(&opts.asJSON, "json", false, "Print the decoded JSON document instead of rows")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	var err error
	switch rest[0] {
	case "fetch":
		err = runFetch(rest[1:], opts, stdout, stderr)
	case "decode":
		err = runDecode(rest[1:], opts, stdin, stdout)
	case "completion":
		if len(rest) != 2 {
			err = errors.New("completion needs exactly one shell")
			break
		}
		err = cli.GenerateCompletion(stdout, rest[1])
	default:
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "chromelogger-inspect: %v\n", err)
		return 1
	}
	return 0
}

func runFetch(args []string, opts options, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	method := fs.String("X", http.MethodGet, "HTTP method")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	retries := fs.Int("retries", 2, "Retries on 502, 503 and 504 responses")
	var headers headerFlags
	fs.Var(&headers, "H", "Request header, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("fetch needs exactly one url")
	}

	target, err := url.Parse(fs.Arg(0))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return fmt.Errorf("invalid url %q", fs.Arg(0))
	}

	h := make(http.Header)
	for _, raw := range headers {
		name, value, _ := strings.Cut(raw, ":")
		h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if *retries == 0 {
		*retries = -1
	}
	client := httputil.NewClient(httputil.ClientConfig{
		BaseURL:    target.Scheme + "://" + target.Host,
		Timeout:    *timeout,
		MaxRetries: *retries,
		Headers:    h,
	})

	spinner := cli.NewSpinner(stderr, "fetching "+target.String())
	spinner.Start()
	capture, err := client.Fetch(context.Background(), strings.ToUpper(*method), target.RequestURI())
	spinner.Stop()
	if err != nil {
		if capture != nil && errors.Is(err, httputil.ErrNoLog) {
			return fmt.Errorf("%s responded %d without a console log", target, capture.StatusCode)
		}
		return err
	}

	fmt.Fprintf(stderr, "%d %s", capture.StatusCode, http.StatusText(capture.StatusCode))
	if capture.TraceID != "" {
		fmt.Fprintf(stderr, " trace=%s", capture.TraceID)
	}
	fmt.Fprintln(stderr)

	return render(capture.Log, opts, stdout)
}

func runDecode(args []string, opts options, stdin io.Reader, stdout io.Writer) error {
	var value string
	switch {
	case len(args) > 1:
		return errors.New("decode takes at most one value")
	case len(args) == 1 && args[0] != "-":
		value = args[0]
	default:
		raw, _, err := httputil.ReadAllWithLimit(stdin, 1<<20)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		value = string(raw)
	}

	env, err := chromelogger.ParseHeader(headerValue(value))
	if err != nil {
		return err
	}
	return render(env, opts, stdout)
}

// headerValue accepts a bare value or a full "X-ChromeLogger-Data: ..." line.
func headerValue(s string) string {
	s = strings.TrimSpace(s)
	if name, value, ok := strings.Cut(s, ":"); ok && strings.EqualFold(strings.TrimSpace(name), chromelogger.HeaderName) {
		return strings.TrimSpace(value)
	}
	return s
}

func render(env chromelogger.Envelope, opts options, stdout io.Writer) error {
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	}

	p := cli.NewPrinter(stdout).ShowLocations(!opts.noLocations)
	if opts.noColor {
		p.DisableColor()
	}
	return p.Print(env)
}
