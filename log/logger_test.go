package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilterMinLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newLogFilter(buf, LInfo)

	f.Write([]byte("[debug] hidden\n"))
	f.Write([]byte("[step] hidden\n"))
	f.Write([]byte("[warn] shown\n"))
	f.Write([]byte("untagged\n"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered lines in output: %q", out)
	}
	if !strings.Contains(out, "[warn] shown") || !strings.Contains(out, "untagged") {
		t.Errorf("missing lines in output: %q", out)
	}
}

func TestFilterFatalAlwaysShown(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newLogFilter(buf, LFatal)

	f.Write([]byte("[error] hidden\n"))
	f.Write([]byte("[fatal] loading data/water.shp: no such file\n"))

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "[fatal] loading") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if l, ok := ParseLevel(" WARN "); !ok || l != LWarn {
		t.Errorf("unexpected level %q %v", l, ok)
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Error("unknown level accepted")
	}
}
