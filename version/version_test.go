package version

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "ApiHelper/"+Library {
		t.Errorf("unexpected user agent %q", got)
	}
}

func TestGetVersionInfo_BuildVariables(t *testing.T) {
	origCommit, origTime := GitCommit, BuildTime
	defer func() { GitCommit, BuildTime = origCommit, origTime }()

	GitCommit = "0123456789abcdef"
	BuildTime = "2026-01-02T03:04:05Z"

	info := GetVersionInfo()
	if info.GitCommit != "0123456" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime != BuildTime {
		t.Errorf("expected build time %q, got %q", BuildTime, info.BuildTime)
	}
	if !strings.HasPrefix(info.String(), Library+"-0123456") {
		t.Errorf("unexpected string %q", info.String())
	}
}
