package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/ssbulk/internal/transport/splunk/splunktest"
	"github.com/kailas-cloud/ssbulk/internal/usecase/update"
)

const annotationsParam = "action.correlationsearch.annotations"

func newFake(t *testing.T) *splunktest.Server {
	t.Helper()
	return splunktest.NewServer(t,
		splunktest.SavedSearch{
			Name: "Brute Force", App: "SA-AccessProtection", Owner: "nobody",
			Content: map[string]string{annotationsParam: `{"mitre_attack":["T1110"]}`},
		},
		splunktest.SavedSearch{
			Name: "Default Account Usage", App: "SA-AccessProtection", Owner: "nobody",
			Content: map[string]string{annotationsParam: "not json"},
		},
		splunktest.SavedSearch{
			Name: "Errors in the last hour", App: "search", Owner: "admin",
		},
	)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, srv *splunktest.Server, password string, args ...string) result {
	t.Helper()
	t.Setenv("ENV", "local")

	full := append([]string{
		"--host", srv.Host(),
		"--port", strconv.Itoa(srv.Port()),
		"--insecure",
	}, args...)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), full, strings.NewReader(password+"\n"), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestExecute_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing app", []string{"--parameter", "description", "--value", "x"}, "--app"},
		{"missing parameter", []string{"--app", "search", "--value", "x"}, "--parameter"},
		{"missing value", []string{"--app", "search", "--parameter", "description"}, "--value"},
		{"json-dico without key", []string{"--app", "search", "--parameter", "p", "--json-dico", "--value", "x"}, "--key"},
		{"key without json-dico", []string{"--app", "search", "--parameter", "p", "--key", "k", "--value", "x"}, "--json-dico"},
		{"append without json-dico", []string{"--app", "search", "--parameter", "p", "--append", "--value", "x"}, "--json-dico"},
		{"several values in direct mode", []string{"--app", "search", "--parameter", "p", "--value", "x", "y"}, "single value"},
		{"unknown flag", []string{"--app", "search", "--bogus"}, "bogus"},
		{"bad scheme", []string{"--app", "search", "--parameter", "p", "--value", "x", "--scheme", "ftp"}, "scheme"},
		{"bad log level", []string{"--app", "search", "--parameter", "p", "--value", "x", "--log-level", "loud"}, "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFake(t)

			res := run(t, srv, splunktest.Password, tt.args...)

			assert.Equal(t, exitConfig, res.code)
			assert.Contains(t, res.stderr, tt.msg)
			assert.Empty(t, srv.Requests(), "no request may be sent before flags are valid")
		})
	}
}

func TestExecute_DirectMode(t *testing.T) {
	srv := newFake(t)

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--parameter", "description", "--value", "Reviewed")

	require.Equal(t, exitOK, res.code, res.stderr)
	for _, name := range []string{"Brute Force", "Default Account Usage"} {
		ss, ok := srv.Get("SA-AccessProtection", name)
		require.True(t, ok)
		assert.Equal(t, "Reviewed", ss.Content["description"])
	}
	other, _ := srv.Get("search", "Errors in the last hour")
	assert.NotContains(t, other.Content, "description")

	assert.Contains(t, res.stdout, `[set] SA-AccessProtection/Brute Force: description = "Reviewed"`)
	assert.Contains(t, res.stdout, "Completed updating saved searches: 2 matched, 2 updated.")
}

func TestExecute_SearchFilter(t *testing.T) {
	srv := newFake(t)

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--search", "Brute Force",
		"--parameter", "description", "--value", "Reviewed")

	require.Equal(t, exitOK, res.code, res.stderr)
	ss, _ := srv.Get("SA-AccessProtection", "Default Account Usage")
	assert.NotContains(t, ss.Content, "description")
	assert.Contains(t, res.stdout, "1 matched, 1 updated")
}

func TestExecute_JSONAppendWithPositionalValues(t *testing.T) {
	srv := newFake(t)

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--parameter", annotationsParam,
		"--json-dico", "--key", "mitre_attack", "--append", "--value", "T1078", "T1021")

	require.Equal(t, exitOK, res.code, res.stderr)

	ss, _ := srv.Get("SA-AccessProtection", "Brute Force")
	assert.Equal(t, map[string]any{"mitre_attack": []any{"T1110", "T1078", "T1021"}},
		decode(t, ss.Content[annotationsParam]))

	// malformed JSON is replaced by a fresh object
	reset, _ := srv.Get("SA-AccessProtection", "Default Account Usage")
	assert.Equal(t, map[string]any{"mitre_attack": []any{"T1078", "T1021"}},
		decode(t, reset.Content[annotationsParam]))

	assert.Contains(t, res.stdout, `[append] SA-AccessProtection/Brute Force: `+annotationsParam+`["mitre_attack"] += ["T1078", "T1021"]`)
	assert.Contains(t, res.stdout, "(previous value was not a JSON object)")
}

func TestExecute_DryRun(t *testing.T) {
	srv := newFake(t)

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--parameter", "description", "--value", "Reviewed", "--dry-run")

	require.Equal(t, exitOK, res.code, res.stderr)
	for _, r := range srv.Requests() {
		if r.Method == http.MethodPost {
			assert.Equal(t, "/services/auth/login", r.Path)
		}
	}
	ss, _ := srv.Get("SA-AccessProtection", "Brute Force")
	assert.NotContains(t, ss.Content, "description")
	assert.Contains(t, res.stdout, "(dry run) [set]")
	assert.Contains(t, res.stdout, "Dry run complete: 2 saved searches matched, nothing persisted.")
}

func TestExecute_BadPassword(t *testing.T) {
	srv := newFake(t)

	res := run(t, srv, "wrong",
		"--app", "SA-AccessProtection", "--parameter", "description", "--value", "Reviewed")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Login failed")
}

func TestExecute_RemoteFailureAborts(t *testing.T) {
	srv := newFake(t)
	srv.FailEdit("Brute Force", http.StatusInternalServerError)

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--parameter", "description", "--value", "Reviewed")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "edit rejected")
	assert.NotContains(t, res.stdout, "Completed")

	// processing stops at the first failure
	next, _ := srv.Get("SA-AccessProtection", "Default Account Usage")
	assert.NotContains(t, next.Content, "description")
}

func TestExecute_MetricsFile(t *testing.T) {
	srv := newFake(t)
	path := filepath.Join(t.TempDir(), "ssbulk.prom")

	res := run(t, srv, splunktest.Password,
		"--app", "SA-AccessProtection", "--parameter", "description", "--value", "Reviewed",
		"--metrics-file", path)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ssbulk_saved_searches_matched 2")
	assert.Contains(t, string(data), "ssbulk_saved_search_updates_total")
	assert.Contains(t, string(data), "ssbulk_rest_requests_total")
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--version"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "dev")
}

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newline", "secret\n", "secret"},
		{"crlf", "secret\r\n", "secret"},
		{"no trailing newline", "secret", "secret"},
		{"only first line", "secret\nignored\n", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPassword(strings.NewReader(tt.input), &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := readPassword(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	report := progressPrinter(&out)

	report(update.Event{Search: "s", App: "a", Parameter: "p", Action: update.ActionSet, Value: "v"})
	report(update.Event{Search: "s", App: "a", Parameter: "p", Key: "k", Values: []string{"x"}, Action: update.ActionAdd})
	report(update.Event{Search: "s", App: "a", Parameter: "p", Key: "k", Values: []string{"x", "y"}, Action: update.ActionUpdate, DryRun: true})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `[set] a/s: p = "v"`, lines[0])
	assert.Equal(t, `[add] a/s: p["k"] = ["x"]`, lines[1])
	assert.Equal(t, `(dry run) [update] a/s: p["k"] = ["x", "y"]`, lines[2])
}
