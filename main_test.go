package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "models.py", `class User:
    def __init__(self, name: str) -> None:
        self.name = name

    def greet(self) -> str:
        return f"Hello, {self.name}"

def load(): ...
`)
	writeTestFile(t, dir, "main.py", `from models import User

def main() -> None:
    print(User("x").greet())
`)
	return dir
}

func TestRunClean(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got:\n%s", stdout.String())
	}
}

func TestRunViolations(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-module-members", "1", "--max-methods", "1", dir}, &stdout, &stderr)
	if !errors.Is(err, errViolations) {
		t.Fatalf("err = %v, want errViolations", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	want := []string{
		filepath.Join(dir, "models.py") + ":1:1: WPS202 Found too many module members: 2 > 1",
		filepath.Join(dir, "models.py") + ":1:1: WPS214 Found too many methods: 2 > 1",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got:\n%s", len(want), stdout.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
}

func TestRunJSON(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--format", "json", "--max-methods", "1", dir}, &stdout, &stderr)
	if !errors.Is(err, errViolations) {
		t.Fatalf("err = %v, want errViolations", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if len(got) != 1 || got[0]["code"] != "WPS214" {
		t.Errorf("unexpected diagnostics: %v", got)
	}
}

func TestRunTOON(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-f", "toon", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "root: "+filepath.Base(dir)) {
		t.Errorf("missing root header:\n%s", out)
	}
	if !strings.Contains(out, "files[2]{path,violations}:") {
		t.Errorf("expected 2 files, got:\n%s", out)
	}
	if !strings.Contains(out, "violations[0]") {
		t.Errorf("expected no violations, got:\n%s", out)
	}
}

func TestRunChecksFilter(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--checks", "method-members", "--max-module-members", "0", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("module-members should not run: %v\n%s", err, stdout.String())
	}

	err = run([]string{"--checks", "nope", dir}, &stdout, &stderr)
	if err == nil || errors.Is(err, errViolations) {
		t.Errorf("expected invocation error for unknown check, got %v", err)
	}
}

func TestRunList(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--list"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	want := [][]string{
		{"module-members", "WPS202", "TooManyModuleMembersViolation"},
		{"method-members", "WPS214", "TooManyMethodsViolation"},
	}
	if len(lines) != len(want) {
		t.Fatalf("list output:\n%s", stdout.String())
	}
	for i, w := range want {
		fields := strings.Fields(lines[i])
		if len(fields) < 3 || fields[0] != w[0] || fields[1] != w[1] || fields[2] != w[2] {
			t.Errorf("line %d = %q, want prefix %v", i, lines[i], w)
		}
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"-V"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "pycounts") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.txt", "nothing here")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for directory with no Python files")
	}
}

func TestRunMissingPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	path := filepath.Join(dir, "main.py")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-module-members", "0", path}, &stdout, &stderr)
	if !errors.Is(err, errViolations) {
		t.Fatalf("err = %v, want errViolations", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != path+":1:1: WPS202 Found too many module members: 1 > 0" {
		t.Errorf("output: %q", got)
	}
}

func TestRunOverloads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "api.pyi", `from typing import overload
import typing

@overload
def first(x: int) -> int: ...

@typing.overload
def first(x: str) -> str: ...

def first(x): ...
`)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--max-module-members", "1", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stdout.String())
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cfg := filepath.Join(t.TempDir(), "setup.cfg")
	writeTestFile(t, filepath.Dir(cfg), "setup.cfg", "[flake8]\nmax-methods = 1\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", cfg, dir}, &stdout, &stderr)
	if !errors.Is(err, errViolations) {
		t.Fatalf("err = %v, want errViolations", err)
	}
	if !strings.Contains(stdout.String(), "WPS214") {
		t.Errorf("expected WPS214 from config, got:\n%s", stdout.String())
	}

	// Flags win over the config file.
	stdout.Reset()
	if err := run([]string{"--config", cfg, "--max-methods", "2", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("flag should override config: %v\n%s", err, stdout.String())
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-methods", "-1", dir}, &stdout, &stderr)
	if err == nil || errors.Is(err, errViolations) {
		t.Fatalf("expected invocation error, got %v", err)
	}

	err = run([]string{"--config", filepath.Join(t.TempDir(), "missing.cfg"), dir}, &stdout, &stderr)
	if err == nil || errors.Is(err, errViolations) {
		t.Fatalf("expected error for missing config file, got %v", err)
	}
}

func TestRunSkipsBrokenFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "ok.py", "def a(): ...\n")
	writeTestFile(t, dir, "broken.py", "def broken(:\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "broken.py") {
		t.Errorf("expected warning for broken.py, got stderr:\n%s", stderr.String())
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "small.py", "def a(): ...\n")
	writeTestFile(t, dir, "large.py", "def a(): ...\ndef b(): ...\n"+strings.Repeat("# padding\n", 50))

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-file-size", "100", "--max-module-members", "1", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("large.py should be skipped: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stderr.String(), "large.py") {
		t.Errorf("expected skip warning, got stderr:\n%s", stderr.String())
	}
}

func TestSelectChecks(t *testing.T) {
	t.Parallel()

	all, err := selectChecks("")
	if err != nil || len(all) != 2 {
		t.Fatalf("selectChecks(\"\") = %d, %v", len(all), err)
	}

	got, err := selectChecks(" method-members , method-members ")
	if err != nil {
		t.Fatalf("selectChecks: %v", err)
	}
	if len(got) != 1 || got[0].Name != "method-members" {
		t.Errorf("selectChecks = %+v", got)
	}

	if _, err := selectChecks("module-members,bogus"); err == nil {
		t.Error("expected error for unknown check")
	}
}
