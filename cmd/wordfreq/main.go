// Package main provides the wordfreq command-line analyzer.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/kamilpajak/wordfreq/internal/api"
	"github.com/kamilpajak/wordfreq/internal/client"
	"github.com/kamilpajak/wordfreq/internal/wordfreq"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	serverURL string
	output    string
	top       int
	port      int
)

var rootCmd = &cobra.Command{
	Use:          "wordfreq",
	Short:        "Word-frequency analysis for text files",
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze text files",
	Long: `Counts words in text files and reports the most frequent ones.

Files are analyzed locally unless --server points at a running wordfreq server.
Use "-" to read from standard input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local analysis-only server",
	RunE:  serve,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wordfreq %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&serverURL, "server", "", "Analyze via a wordfreq server at this URL")
	analyzeCmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	analyzeCmd.Flags().IntVar(&top, "top", 0, "Also list the N most frequent words")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8081, "Port to listen on")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

// report is one file's analysis as printed by the CLI.
type report struct {
	wordfreq.Result `yaml:",inline"`
	Top             []wordfreq.WordCount `json:"top,omitempty" yaml:"top,omitempty"`
}

// analyzeFunc produces a result for one file's content.
type analyzeFunc func(ctx context.Context, name string, content []byte) (*wordfreq.Result, error)

func localAnalyze(_ context.Context, name string, content []byte) (*wordfreq.Result, error) {
	return wordfreq.Analyze(content, name)
}

func run(cmd *cobra.Command, args []string) error {
	switch output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q, use text, json or yaml", output)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	analyze := analyzeFunc(localAnalyze)
	if serverURL != "" || os.Getenv("WORDFREQ_SERVER_URL") != "" {
		c := client.NewClient(serverURL)
		if err := checkServer(ctx, c); err != nil {
			return err
		}
		analyze = remoteAnalyze(c, isatty.IsTerminal(os.Stderr.Fd()))
	}

	return analyzeFiles(ctx, os.Stdin, os.Stdout, os.Stderr, args, analyze)
}

// checkServer fails fast when the analysis server is down, before any file is read.
func checkServer(ctx context.Context, c *client.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("server %s is not available: %w", c.BaseURL(), err)
	}
	return nil
}

// remoteAnalyze uploads content to the server, showing a spinner on terminals.
func remoteAnalyze(c *client.Client, showSpinner bool) analyzeFunc {
	return func(ctx context.Context, name string, content []byte) (*wordfreq.Result, error) {
		if showSpinner {
			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			s.Suffix = " Analyzing " + name
			s.Start()
			defer s.Stop()
		}
		return c.AnalyzeFile(ctx, name, content)
	}
}

func analyzeFiles(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, paths []string, analyze analyzeFunc) error {
	red := color.New(color.FgRed)
	failed := 0

	var reports []report
	for _, path := range paths {
		name, content, err := readInput(stdin, path)
		if err != nil {
			_, _ = red.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
			continue
		}

		result, err := analyze(ctx, name, content)
		if err != nil {
			_, _ = red.Fprintf(stderr, "%s: %s\n", path, describeError(err))
			failed++
			continue
		}

		rep := report{Result: *result}
		if top > 0 {
			rep.Top = wordfreq.Top(wordfreq.Count(wordfreq.Tokenize(string(content))), top)
		}
		reports = append(reports, rep)
	}

	if err := writeReports(stdout, reports); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(paths))
	}
	return nil
}

func readInput(stdin io.Reader, path string) (string, []byte, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		return "stdin", content, err
	}
	content, err := os.ReadFile(path)
	return filepath.Base(path), content, err
}

// describeError turns analyzer and server failures into short messages.
func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, wordfreq.ErrEmptyInput):
		return "empty file"
	case errors.Is(err, wordfreq.ErrNoWordsFound):
		return "no valid words in file"
	case errors.Is(err, wordfreq.ErrInvalidEncoding):
		return "file is not valid UTF-8 text"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

func writeReports(w io.Writer, reports []report) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	default:
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printReport(w, r)
		}
	}
	return nil
}

func printReport(w io.Writer, r report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)

	_, _ = bold.Fprintln(w, r.Filename)
	fmt.Fprintf(w, "  Total words:       %d\n", r.TotalWords)
	fmt.Fprintf(w, "  Highest frequency: %d\n", r.HighestFrequency)
	if len(r.MostFrequentWords) > 0 {
		fmt.Fprint(w, "  Most frequent:     ")
		_, _ = green.Fprintln(w, strings.Join(r.MostFrequentWords, ", "))
	}
	if r.Message != "" {
		_, _ = yellow.Fprintf(w, "  %s\n", r.Message)
	}

	if len(r.Top) > 0 {
		_, _ = dim.Fprintln(w, "  Top words:")
		width := 0
		for _, wc := range r.Top {
			if len(wc.Word) > width {
				width = len(wc.Word)
			}
		}
		for _, wc := range r.Top {
			fmt.Fprintf(w, "    %-*s %d\n", width, wc.Word, wc.Count)
		}
	}
}

func serve(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(api.Config{Logger: logger, RootMessage: "wordfreq " + version}),
	}

	// Graceful shutdown on interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "Analyzer: http://localhost:%d/analyze-text-file\n", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
