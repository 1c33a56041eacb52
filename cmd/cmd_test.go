package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPrices = `{
  "entity_id": "sensor.prices",
  "state": "0.3",
  "attributes": {
    "raw_today": [
      {"start": "2025-01-01T00:00:00Z", "end": "2025-01-01T01:00:00Z", "value": 0.3},
      {"start": "2025-01-01T01:00:00Z", "end": "2025-01-01T02:00:00Z", "value": 0.1},
      {"start": "2025-01-01T02:00:00Z", "end": "2025-01-01T03:00:00Z", "value": 0.2}
    ]
  }
}`

const testActivities = `activities:
  - id: washer
    name: Washer
    duration_minutes: 60
  - id: oven
    name: Oven
    duration_minutes: 600
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRunPlanCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "missing.yaml")
	opts := planOptions{
		prices:     writeFile(t, dir, "prices.json", testPrices),
		activities: writeFile(t, dir, "activities.yaml", testActivities),
		format:     "csv",
	}
	var buf bytes.Buffer
	if err := runPlan(context.Background(), opts, &buf); err != nil {
		t.Fatalf("plan: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "washer,scheduled,2025-01-01T01:00:00Z,2025-01-01T02:00:00Z,60,0.1") {
		t.Fatalf("washer row missing:\n%s", out)
	}
	if !strings.Contains(out, "oven,unscheduled") {
		t.Fatalf("oven should be unscheduled:\n%s", out)
	}
}

func TestRunPlanJSONAndFormatError(t *testing.T) {
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "missing.yaml")
	opts := planOptions{
		prices:     writeFile(t, dir, "prices.json", testPrices),
		activities: writeFile(t, dir, "activities.yaml", testActivities),
		format:     "json",
	}
	var buf bytes.Buffer
	if err := runPlan(context.Background(), opts, &buf); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(buf.String(), `"activity_id": "washer"`) {
		t.Fatalf("unexpected json:\n%s", buf.String())
	}

	opts.format = "xml"
	if err := runPlan(context.Background(), opts, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestRunPlanUsesConfiguredWindow(t *testing.T) {
	dir := t.TempDir()
	cfgPath = writeFile(t, dir, "config.yaml", `planner:
  slot_minutes: 60
  window_start: "02:00"
  window_end: "23:00"
price:
  mode: file
  path: prices.json
`)
	opts := planOptions{
		prices:     writeFile(t, dir, "prices.json", testPrices),
		activities: writeFile(t, dir, "activities.yaml", testActivities),
		format:     "csv",
	}
	var buf bytes.Buffer
	if err := runPlan(context.Background(), opts, &buf); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(buf.String(), "washer,scheduled,2025-01-01T02:00:00Z") {
		t.Fatalf("window not applied:\n%s", buf.String())
	}
}

func TestActivitiesCommands(t *testing.T) {
	dir := t.TempDir()
	conf := writeFile(t, dir, "config.yaml", `price:
  mode: file
  path: prices.json
store:
  backend: json
  path: `+filepath.Join(dir, "activities.json")+`
`)
	exec := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{"--config", conf}, args...))
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out.String())
		}
		return out.String()
	}

	if got := strings.TrimSpace(exec("activities", "add", "--id", "washer", "--name", "Washer", "--duration", "90", "--earliest", "08:00", "--latest", "20:00")); got != "washer" {
		t.Fatalf("add printed %q", got)
	}
	list := exec("activities", "ls")
	if !strings.Contains(list, "washer") || !strings.Contains(list, "08:00") {
		t.Fatalf("ls output:\n%s", list)
	}
	exec("activities", "rm", "washer")
	if list := exec("activities", "ls"); strings.Contains(list, "washer") {
		t.Fatalf("washer still listed:\n%s", list)
	}
}
