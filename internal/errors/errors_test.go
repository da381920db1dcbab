package errors

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "scenario error",
			code:    "T004",
			wantMsg: "Expectation failed",
			wantCat: CategoryScenario,
		},
		{
			name:    "config error",
			code:    "T020",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "server error",
			code:    "T030",
			wantMsg: "Server failed",
			wantCat: CategoryServer,
		},
		{
			name:    "unknown error code",
			code:    "T999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "add.yaml")
	if err.Message != `file "add.yaml" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want bare message", err.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("T030").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := err.Error(); got != "T030: Server failed: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "T030") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("T005")
	if got := FromError(orig, "T030"); got != orig {
		t.Error("FromError should return an existing *Error unchanged")
	}

	plain := stderrors.New("plain")
	got := FromError(plain, "T030")
	if got.Code != "T030" || got.Wrapped != plain {
		t.Errorf("FromError wrapped = %+v", got)
	}
}

func TestWithLocationReadsContext(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "add.yaml")
	content := "name: add\nsteps:\n  - click: x\n  - expect:\n      submissions: 1\n  - advance: 1s\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("T004").WithLocation(file, 5, 7)
	if len(err.Context) != 5 {
		t.Fatalf("Context has %d lines, want 5", len(err.Context))
	}
	if err.Context[2] != "      submissions: 1" {
		t.Errorf("middle line = %q", err.Context[2])
	}

	DisableColors()
	defer EnableColors()
	out := err.Format()
	for _, want := range []string{
		"ERROR T004: Expectation failed",
		file + ":5:7",
		"→    5 │       submissions: 1",
		"│       ^",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestWithLocationNearTop(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(file, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := New("T003").WithLocation(file, 1, 0)
	if len(err.Context) != 3 || err.Context[0] != "a" {
		t.Errorf("Context = %q", err.Context)
	}
}

func TestWithLocationMissingFile(t *testing.T) {
	err := New("T001").WithLocation("/does/not/exist.yaml", 3, 1)
	if err.Context != nil {
		t.Errorf("Context = %v, want nil", err.Context)
	}
	if err.Location.String() != "/does/not/exist.yaml:3:1" {
		t.Errorf("Location = %s", err.Location)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("T005")
	err.Location = &Location{File: "s.yaml", Line: 4}
	if got := err.FormatCompact(); got != "s.yaml:4: T005: Element not found" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("T004").Wrap(stderrors.New("0 native submissions, want 1"))
	err.Location = &Location{File: "s.yaml", Line: 9, Column: 3}

	var got map[string]any
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("invalid JSON: %v", e)
	}
	if got["code"] != "T004" || got["category"] != "scenario" {
		t.Errorf("got %v", got)
	}
	if got["cause"] != "0 native submissions, want 1" {
		t.Errorf("cause = %v", got["cause"])
	}
	loc, _ := got["location"].(map[string]any)
	if loc["line"] != float64(9) {
		t.Errorf("location = %v", loc)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("lines = %q", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should give no lines")
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Print(&b, New("T031"))
	if !strings.Contains(b.String(), "Hint: Set server.pages_dir") {
		t.Errorf("Print(*Error) = %q", b.String())
	}

	b.Reset()
	Print(&b, stderrors.New("plain"))
	if !strings.Contains(b.String(), "ERROR: plain") {
		t.Errorf("Print(error) = %q", b.String())
	}
}

func TestCodesSortedAndRegistered(t *testing.T) {
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	Register("T099", Template{Category: CategoryCLI, Message: "custom"})
	defer delete(registry, "T099")
	if tpl, ok := Lookup("T099"); !ok || tpl.Message != "custom" {
		t.Error("Register/Lookup round trip failed")
	}
}
