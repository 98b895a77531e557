package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/kamilpajak/wordfreq/internal/api"
	"github.com/kamilpajak/wordfreq/internal/client"
	"github.com/kamilpajak/wordfreq/internal/wordfreq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

// withFlags sets the output and top flags for the duration of a test.
func withFlags(t *testing.T, out string, n int) {
	t.Helper()
	prevOut, prevTop := output, top
	output, top = out, n
	t.Cleanup(func() { output, top = prevOut, prevTop })
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrintReport_MostFrequent(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, report{
		Result: wordfreq.Result{
			Filename:          "pets.txt",
			TotalWords:        6,
			HighestFrequency:  3,
			MostFrequentWords: []string{"cat"},
		},
		Top: []wordfreq.WordCount{{Word: "cat", Count: 3}, {Word: "dog", Count: 2}},
	})

	out := buf.String()
	assert.Contains(t, out, "pets.txt")
	assert.Contains(t, out, "Total words:       6")
	assert.Contains(t, out, "Highest frequency: 3")
	assert.Contains(t, out, "Most frequent:     cat")
	assert.Contains(t, out, "Top words:")
	assert.Contains(t, out, "    cat 3")
	assert.Contains(t, out, "    dog 2")
}

func TestPrintReport_Message(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, report{Result: wordfreq.Result{
		Filename:         "one.txt",
		TotalWords:       1,
		HighestFrequency: 1,
		Message:          "Only one word found in the file",
	}})

	assert.Contains(t, buf.String(), "Only one word found in the file")
	assert.NotContains(t, buf.String(), "Most frequent")
}

func TestAnalyzeFiles_Local(t *testing.T) {
	withFlags(t, "text", 2)
	path := writeFile(t, "pets.txt", "cat dog cat bird dog cat")

	var stdout, stderr bytes.Buffer
	err := analyzeFiles(context.Background(), nil, &stdout, &stderr, []string{path}, localAnalyze)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "pets.txt")
	assert.Contains(t, stdout.String(), "Most frequent:     cat")
	assert.Contains(t, stdout.String(), "dog 2")
	assert.Empty(t, stderr.String())
}

func TestAnalyzeFiles_Stdin(t *testing.T) {
	withFlags(t, "json", 0)

	var stdout, stderr bytes.Buffer
	err := analyzeFiles(context.Background(), strings.NewReader("This is a test file."), &stdout, &stderr, []string{"-"}, localAnalyze)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "stdin", got["filename"])
	assert.Equal(t, float64(5), got["total_words"])
	assert.Equal(t, "All words have the same frequency of 1", got["message"])
	assert.NotContains(t, got, "top")
}

func TestAnalyzeFiles_PartialFailure(t *testing.T) {
	withFlags(t, "text", 0)
	good := writeFile(t, "good.txt", "hello")
	empty := writeFile(t, "empty.txt", "")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	var stdout, stderr bytes.Buffer
	err := analyzeFiles(context.Background(), nil, &stdout, &stderr, []string{good, empty, missing}, localAnalyze)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files")
	assert.Contains(t, stdout.String(), "Only one word found in the file")
	assert.Contains(t, stderr.String(), "empty file")
	assert.Contains(t, stderr.String(), "missing.txt")
}

func TestAnalyzeFiles_YAML(t *testing.T) {
	withFlags(t, "yaml", 1)
	path := writeFile(t, "pets.txt", "cat dog cat")

	var stdout, stderr bytes.Buffer
	require.NoError(t, analyzeFiles(context.Background(), nil, &stdout, &stderr, []string{path}, localAnalyze))

	var got report
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "pets.txt", got.Filename)
	assert.Equal(t, 3, got.TotalWords)
	assert.Equal(t, []string{"cat"}, got.MostFrequentWords)
	assert.Equal(t, []wordfreq.WordCount{{Word: "cat", Count: 2}}, got.Top)
}

func TestAnalyzeFiles_Remote(t *testing.T) {
	withFlags(t, "json", 0)
	srv := httptest.NewServer(api.NewServer(api.Config{Logger: zerolog.Nop()}))
	defer srv.Close()

	good := writeFile(t, "pets.txt", "cat dog cat bird dog cat")
	bad := writeFile(t, "digits.txt", "1234 !!! ???")

	var stdout, stderr bytes.Buffer
	analyze := remoteAnalyze(client.NewClient(srv.URL), false)
	err := analyzeFiles(context.Background(), nil, &stdout, &stderr, []string{good, bad}, analyze)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "No valid words in file")

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []any{"cat"}, got["most_frequent_words"])
}

func TestCheckServer(t *testing.T) {
	srv := httptest.NewServer(api.NewServer(api.Config{Logger: zerolog.Nop()}))
	assert.NoError(t, checkServer(context.Background(), client.NewClient(srv.URL)))

	url := srv.URL
	srv.Close()
	err := checkServer(context.Background(), client.NewClient(url))
	require.Error(t, err)
	assert.Contains(t, err.Error(), url)
}

func TestAnalyzeCommand_FileNamedLikeSubcommand(t *testing.T) {
	withFlags(t, "json", 0)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "serve"), []byte("cat dog cat"), 0o644))
	t.Chdir(dir)

	cmd, args, err := rootCmd.Find([]string{"analyze", "serve"})
	require.NoError(t, err)
	assert.Equal(t, analyzeCmd, cmd)
	assert.Equal(t, []string{"serve"}, args)

	var stdout, stderr bytes.Buffer
	require.NoError(t, analyzeFiles(context.Background(), nil, &stdout, &stderr, args, localAnalyze))
	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "serve", got["filename"])
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "empty file", describeError(wordfreq.ErrEmptyInput))
	assert.Equal(t, "no valid words in file", describeError(wordfreq.ErrNoWordsFound))
	assert.Equal(t, "file is not valid UTF-8 text", describeError(wordfreq.ErrInvalidEncoding))
	assert.Equal(t, "Empty file", describeError(&client.APIError{StatusCode: 400, Message: "Empty file"}))
}
