package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nutrascan/internal/service"
	"github.com/nutrascan/internal/storage"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	for _, name := range []string{"serve", "estimate", "account"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected help to list %q, got %s", name, out)
		}
	}
}

func TestEstimateCommand(t *testing.T) {
	out, err := runCommand(t, "estimate", "--gender", "M", "--weight", "80", "--goal", "manter",
		"--abdomen", "Normal", "--upper-body", "Normal", "--lower-body", "Normal")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	for _, want := range []string{"17%", "2436 kcal", "P 176g", "C 271g", "F 72g"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}

	if _, err := runCommand(t, "estimate", "--weight", "80", "--abdomen", "Sarado"); err == nil {
		t.Fatal("expected unknown descriptor to fail")
	}
}

func TestAccountCreateCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGE_TYPE", "file")
	t.Setenv("DATA_DIR", dir)

	out, err := runCommand(t, "account", "create", "--username", "Lia", "--password", "segredo1")
	if err != nil {
		t.Fatalf("account create failed: %v", err)
	}
	if !strings.Contains(out, "Created account lia") {
		t.Fatalf("unexpected output %q", out)
	}

	store, err := storage.New(storage.Options{Type: storage.TypeFile, DataDir: dir})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	accounts := service.NewAccountService(store)
	if exists, err := accounts.Exists("lia"); err != nil || !exists {
		t.Fatalf("expected account to exist: %v %v", exists, err)
	}
	if session, err := accounts.RestoreSession(); err != nil || session != nil {
		t.Fatalf("account create must not start a session, got %+v %v", session, err)
	}

	if _, err := runCommand(t, "account", "create", "--username", "lia", "--password", "segredo1"); err == nil {
		t.Fatal("expected duplicate account to fail")
	}
}

func TestAccountListCommand(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "file")
	t.Setenv("DATA_DIR", t.TempDir())

	out, err := runCommand(t, "account", "list")
	if err != nil {
		t.Fatalf("account list failed: %v", err)
	}
	if !strings.Contains(out, "No accounts") {
		t.Fatalf("unexpected output for empty store %q", out)
	}

	for _, name := range []string{"Zeca", "bia"} {
		if _, err := runCommand(t, "account", "create", "--username", name, "--password", "segredo1"); err != nil {
			t.Fatalf("account create %s failed: %v", name, err)
		}
	}
	out, err = runCommand(t, "account", "list")
	if err != nil {
		t.Fatalf("account list failed: %v", err)
	}
	if out != "bia\nzeca\n" {
		t.Fatalf("unexpected account list %q", out)
	}
}
