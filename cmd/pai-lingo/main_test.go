package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-lingo/internal/completeness"
	"github.com/p-n-ai/pai-lingo/internal/curriculum"
	"github.com/p-n-ai/pai-lingo/internal/report"
)

const fixDocument = `[
  {
    "name": "Tenses",
    "sentences": [
      {
        "sentence": "Yesterday I ____ home.",
        "question": {
          "options": [
            {"choice": "went", "explanation": {"en": "Correct.", "de": "Richtig.", "fr": "Correct."}},
            {"choice": "walked", "explanation": {"en": "Correct.", "de": "Richtig."}},
            {"choice": "go", "explanation": {"en": "Wrong tense.",}}
          ]
        }
      }
    ]
  }
]
`

// isolateEnv clears LEARN_ variables and moves into an empty directory so no
// .env file is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"LEARN_REQUIRED_LOCALES",
		"LEARN_SOURCE_LOCALE",
		"LEARN_DICTIONARY_PATHS",
		"LEARN_PHRASE_PATHS",
		"LEARN_CORPUS_RESOLVER",
		"LEARN_AI_OPENAI_API_KEY",
		"LEARN_AI_DEEPSEEK_API_KEY",
		"LEARN_AI_OPENROUTER_API_KEY",
		"LEARN_AI_OLLAMA_ENABLED",
		"LEARN_CACHE_ENABLED",
		"LEARN_LEDGER_ENABLED",
		"LEARN_LOG_LEVEL",
		"LEARN_LOG_FORMAT",
		"LEARN_SCHEMA_VALIDATION",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestAudit(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)
	jsonOut := filepath.Join(dir, "findings.json")

	out, err := run(t, "--locales", "en,de,fr", "audit", doc, "--json", jsonOut)
	if err != nil {
		t.Fatalf("audit error = %v", err)
	}
	if !strings.Contains(out, "2 incomplete explanation(s)") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "topic[0].sentence[0].option[2]  missing=de,fr") {
		t.Errorf("output missing option 2 finding:\n%s", out)
	}

	findings, err := report.ReadJSONFile(jsonOut)
	if err != nil {
		t.Fatalf("ReadJSONFile() error = %v", err)
	}
	if len(findings) != 2 {
		t.Errorf("len(findings) = %d, want 2", len(findings))
	}

	before, _ := os.ReadFile(doc)
	if string(before) != fixDocument {
		t.Error("audit must not rewrite the document")
	}
}

func TestAudit_FailOnIncomplete(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)

	if _, err := run(t, "--locales", "en,de,fr", "audit", doc, "--fail-on-incomplete"); err == nil {
		t.Error("audit --fail-on-incomplete should fail on an incomplete document")
	}
	if _, err := run(t, "--locales", "en", "audit", doc, "--fail-on-incomplete"); err != nil {
		t.Errorf("audit of complete locale set error = %v", err)
	}
}

func TestAudit_InvalidConfig(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)

	if _, err := run(t, "--locales", "en,de", "--source", "es", "audit", doc); err == nil {
		t.Error("source locale outside the required set should be rejected")
	}
}

func TestFix(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)
	dict := writeFile(t, dir, "dictionary.yaml", `
translations:
  "Wrong tense.":
    de: "Falsche Zeitform."
`)
	remaining := filepath.Join(dir, "still_need_translation.json")
	t.Setenv("LEARN_DICTIONARY_PATHS", dict)

	out, err := run(t, "--locales", "en,de,fr", "fix", doc, "--remaining", remaining)
	if err != nil {
		t.Fatalf("fix error = %v", err)
	}
	for _, want := range []string{"findings:   2", "patched:    1", "partial:    1", "missing=fr"} {
		if !strings.Contains(out, want) {
			t.Errorf("fix output missing %q:\n%s", want, out)
		}
	}

	patched, err := curriculum.Load(doc)
	if err != nil {
		t.Fatalf("Load() of fixed document error = %v", err)
	}
	findings := completeness.NewAuditor([]string{"en", "de", "fr"}, "en").Audit(patched)
	if len(findings) != 1 || strings.Join(findings[0].Missing, ",") != "fr" {
		t.Errorf("re-audit = %+v, want option 2 missing fr", findings)
	}
	opt, _ := patched.Option(curriculum.Address{Option: 1})
	if text, _ := opt.Explanation.Text("fr"); text != "Correct." {
		t.Errorf("corpus translation = %q, want Correct.", text)
	}

	left, err := report.ReadJSONFile(remaining)
	if err != nil {
		t.Fatalf("ReadJSONFile() error = %v", err)
	}
	if len(left) != 1 {
		t.Errorf("remaining = %+v, want one record", left)
	}

	// A second run finds nothing new to patch and leaves the file alone.
	first, _ := os.ReadFile(doc)
	if _, err := run(t, "--locales", "en,de,fr", "fix", doc); err != nil {
		t.Fatalf("second fix error = %v", err)
	}
	second, _ := os.ReadFile(doc)
	if string(first) != string(second) {
		t.Error("second fix run changed the document")
	}
}

func TestFix_DryRun(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)

	if _, err := run(t, "--locales", "en,de,fr", "fix", doc, "--dry-run"); err != nil {
		t.Fatalf("fix --dry-run error = %v", err)
	}
	got, _ := os.ReadFile(doc)
	if string(got) != fixDocument {
		t.Error("dry run rewrote the document")
	}
}

func TestFix_MalformedDocument(t *testing.T) {
	dir := isolateEnv(t)
	content := "[\n  {\"topic\": \"x\" \"sentences\": []}\n]\n"
	doc := writeFile(t, dir, "questions.json", content)

	_, err := run(t, "fix", doc)
	if err == nil {
		t.Fatal("fix of malformed document should fail")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line location", err)
	}
	got, _ := os.ReadFile(doc)
	if string(got) != content {
		t.Error("malformed document was modified")
	}
}

func TestRepair(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", "{\"en\": \"x\",\n}")

	out, err := run(t, "repair", doc, "--check")
	if err != nil {
		t.Fatalf("repair --check error = %v", err)
	}
	if !strings.Contains(out, "removed 1 trailing separator(s)") {
		t.Errorf("output = %q", out)
	}
	if got, _ := os.ReadFile(doc); string(got) != "{\"en\": \"x\",\n}" {
		t.Error("repair --check rewrote the document")
	}

	if _, err := run(t, "repair", doc); err != nil {
		t.Fatalf("repair error = %v", err)
	}
	if got, _ := os.ReadFile(doc); string(got) != "{\"en\": \"x\"\n}" {
		t.Errorf("repaired = %q, want {\"en\": \"x\"\\n}", got)
	}

	out, err = run(t, "repair", doc)
	if err != nil {
		t.Fatalf("second repair error = %v", err)
	}
	if !strings.Contains(out, "no trailing separators found") {
		t.Errorf("second repair output = %q", out)
	}
}

func TestDedupe(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", `[
  {
    "sentences": [
      {"question": {"options": [{"explanation": {"en": "A.", "de": "B.", "en": "C."}}]}}
    ]
  }
]`)

	out, err := run(t, "dedupe", doc)
	if err != nil {
		t.Fatalf("dedupe error = %v", err)
	}
	if !strings.Contains(out, `duplicate key "en"`) || !strings.Contains(out, "1 duplicate key(s)") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "dedupe", doc)
	if err != nil {
		t.Fatalf("second dedupe error = %v", err)
	}
	if !strings.Contains(out, "no duplicate keys found") {
		t.Errorf("second dedupe output = %q", out)
	}
}

func TestCompare(t *testing.T) {
	dir := isolateEnv(t)
	ref := writeFile(t, dir, "en.json", `{"home": {"title": "Home", "cta": "Start"}, "exam": {"start": "Go"}}`)
	target := writeFile(t, dir, "de.json", `{"home": {"title": "Start"},}`)

	out, err := run(t, "compare", ref, target)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if !strings.Contains(out, "home.cta") || !strings.Contains(out, "3 key(s) missing") {
		t.Errorf("output = %q", out)
	}
}

func TestExport(t *testing.T) {
	dir := isolateEnv(t)
	doc := writeFile(t, dir, "questions.json", fixDocument)
	findings := filepath.Join(dir, "findings.json")
	workbook := filepath.Join(dir, "review.xlsx")

	if _, err := run(t, "--locales", "en,de,fr", "audit", doc, "--json", findings); err != nil {
		t.Fatalf("audit error = %v", err)
	}
	out, err := run(t, "export", findings, workbook)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "exported 2 finding(s)") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(workbook); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestArgsValidation(t *testing.T) {
	isolateEnv(t)
	for _, args := range [][]string{{"audit"}, {"fix", "a", "b"}, {"compare", "only-one"}} {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v should fail argument validation", args)
		}
	}
}
