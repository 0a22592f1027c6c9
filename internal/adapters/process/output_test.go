package process

import (
	"io"
	"testing"
)

func TestOutput_DeliversAllLines(t *testing.T) {
	var stdout, stderr []string
	out := NewOutput(
		func(line string) { stdout = append(stdout, line) },
		func(line string) { stderr = append(stderr, line) },
	)

	_, _ = io.WriteString(out.Stdout, "\xef\xbb\xbfadded 12 packages\r\nfound 0 vulnerabilities\n")
	_, _ = io.WriteString(out.Stderr, "npm WARN deprecated x\nno trailing newline")
	_, _ = out.Stdout.Write([]byte{'b', 'a', 'd', 0xff, '\n'})

	if err := out.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := []string{"added 12 packages", "found 0 vulnerabilities", "bad�"}
	if len(stdout) != len(want) {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
	for i := range want {
		if stdout[i] != want[i] {
			t.Errorf("stdout[%d] = %q, want %q", i, stdout[i], want[i])
		}
	}
	if len(stderr) != 2 || stderr[0] != "npm WARN deprecated x" || stderr[1] != "no trailing newline" {
		t.Errorf("stderr = %q", stderr)
	}

	if err := out.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOutput_NilHandlers(t *testing.T) {
	out := NewOutput(nil, nil)
	_, _ = io.WriteString(out.Stdout, "ignored\n")
	if err := out.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
