package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.4.0"
	defer func() { Version = old }()

	if got := Get().Version; got != "v1.4.0" {
		t.Errorf("Get().Version = %q", got)
	}
	if !strings.Contains(String(), "version: v1.4.0") {
		t.Errorf("String() = %q", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version v1.4.0") {
		t.Errorf("Template() = %q", Template())
	}
}
