package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestCLIFlow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	common := []string{"--db", db, "--store", "sqlite", "--env-file", filepath.Join(dir, "missing.env"), "--json"}

	diag := writeFile(t, dir, "diag.json", `{"responses": [
		{"question_id": "q1", "correct": true, "difficulty": "easy"},
		{"question_id": "q2", "correct": true, "difficulty": "easy"},
		{"question_id": "q3", "correct": false, "difficulty": "medium"},
		{"question_id": "q4", "correct": false, "difficulty": "medium"},
		{"question_id": "q5", "correct": false, "difficulty": "hard"}
	]}`)
	out, err := runCLI(t, append([]string{"diagnose", "--student", "bob", "--file", diag}, common...)...)
	if err != nil {
		t.Fatalf("diagnose: %v\n%s", err, out)
	}
	var diagDec struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal([]byte(out), &diagDec); err != nil {
		t.Fatalf("decode diagnose output: %v\n%s", err, out)
	}
	// 2 / 7 weighted
	if diagDec.Level != "beginner" {
		t.Errorf("level = %q, want beginner", diagDec.Level)
	}

	out, err = runCLI(t, append([]string{"module", "--student", "bob", "--module", "python_basics"}, common...)...)
	if err != nil {
		t.Fatalf("module: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"served_level": "beginner"`) {
		t.Errorf("module output missing beginner variant:\n%s", out)
	}

	quiz := writeFile(t, dir, "quiz.json", `{"answers": [
		{"question_id": "py-q1", "answer": "def"},
		{"question_id": "py-q2", "answer": "[]"},
		{"question_id": "py-q3", "answer": "length"}
	]}`)
	out, err = runCLI(t, append([]string{"quiz", "--student", "bob", "--module", "python_basics", "--file", quiz}, common...)...)
	if err != nil {
		t.Fatalf("quiz: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"outcome": "pass"`) {
		t.Errorf("quiz output missing pass outcome:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"status", "--student", "bob"}, common...)...)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"version": 3`) {
		t.Errorf("status output missing version 3:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"history", "--student", "bob", "--limit", "0"}, common...)...)
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	var trs []map[string]any
	if err := json.Unmarshal([]byte(out), &trs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	// level, two modules diagnosed, in_progress, mastered
	if len(trs) != 5 {
		t.Errorf("history len = %d, want 5", len(trs))
	}
}

func TestCLIStatusUnknownStudent(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "status", "--student", "nobody", "--db", filepath.Join(dir, "x.db"), "--store", "sqlite", "--json=false")
	if err == nil {
		t.Fatal("expected error for unknown student")
	}
}

func TestCLICatalogList(t *testing.T) {
	out, err := runCLI(t, "catalog", "list", "--json")
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	for _, id := range []string{"intro_to_ai", "python_basics"} {
		if !strings.Contains(out, id) {
			t.Errorf("catalog output missing %s:\n%s", id, out)
		}
	}
}

func TestCLIVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "adaptutor ") {
		t.Errorf("version output = %q", out)
	}
}
