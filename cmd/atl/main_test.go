package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_ListsSubcommands(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root --help failed: %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"db", "ingest", "link", "review", "promote", "invoice", "proposals", "projects", "dashboard", "digest"} {
		if !strings.Contains(out, sub) {
			t.Errorf("root help should list %q subcommand", sub)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	if !strings.Contains(buf.String(), "atl") {
		t.Errorf("version output = %q, want to contain %q", buf.String(), "atl")
	}
}

func TestLinkCmd_Flags(t *testing.T) {
	cmd := newLinkCmd()
	if cmd.Use != "link" {
		t.Errorf("Use = %q, want %q", cmd.Use, "link")
	}

	cfgFlag := cmd.Flags().Lookup("config")
	if cfgFlag == nil {
		t.Fatal("expected --config flag")
	}
	if cfgFlag.DefValue != "atelier.yaml" {
		t.Errorf("--config default = %q, want %q", cfgFlag.DefValue, "atelier.yaml")
	}
	if cfgFlag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want %q", cfgFlag.Shorthand, "c")
	}

	if cmd.Flags().Lookup("limit") == nil {
		t.Error("expected --limit flag")
	}
}

func TestDigestCmd_Flags(t *testing.T) {
	cmd := newDigestCmd()
	if cmd.Use != "digest" {
		t.Errorf("Use = %q, want %q", cmd.Use, "digest")
	}

	watchFlag := cmd.Flags().Lookup("watch")
	if watchFlag == nil {
		t.Fatal("expected --watch flag")
	}
	if watchFlag.DefValue != "false" {
		t.Errorf("--watch default = %q, want %q", watchFlag.DefValue, "false")
	}
}

func TestPromoteCmd_Flags(t *testing.T) {
	cmd := newPromoteCmd()
	for _, name := range []string{"config", "signed-date", "create-project"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
}

func TestLinkCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"link", "--config", "/nonexistent/atelier.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestDashboardCmd_Flags(t *testing.T) {
	cmd := newDashboardCmd()
	portFlag := cmd.Flags().Lookup("port")
	if portFlag == nil {
		t.Fatal("expected --port flag")
	}
	if portFlag.DefValue != "0" {
		t.Errorf("--port default = %q, want %q", portFlag.DefValue, "0")
	}
}
