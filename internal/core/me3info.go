package core

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RuntimeInfo queries the installed mod-loader CLI for its version and
// install details. The loader may be missing entirely; everything here
// degrades to "unknown" rather than failing, since the manager is useful
// for editing profiles even without a loader on PATH.
type RuntimeInfo struct {
	log     *zap.Logger
	runner  Runner
	binary  string
	timeout time.Duration

	mu      sync.Mutex
	cached  *LoaderInfo
	fetched time.Time
	ttl     time.Duration
}

// LoaderInfo is the parsed result of the loader's version and info output.
type LoaderInfo struct {
	Installed   bool
	Version     string
	Commit      string
	InstallPath string
	ProfileDir  string
	LogsDir     string
}

// NewRuntimeInfo creates a loader prober with a 5 minute result cache.
func NewRuntimeInfo(log *zap.Logger, runner Runner, binary string) *RuntimeInfo {
	return &RuntimeInfo{
		log:     log,
		runner:  runner,
		binary:  binary,
		timeout: 10 * time.Second,
		ttl:     5 * time.Minute,
	}
}

// Get returns the loader info, probing the CLI at most once per cache
// window. Probe failures are cached too, as a not-installed result.
func (r *RuntimeInfo) Get(ctx context.Context) LoaderInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil && time.Since(r.fetched) < r.ttl {
		return *r.cached
	}
	info := r.probe(ctx)
	r.cached = &info
	r.fetched = time.Now()
	return info
}

// Invalidate drops the cached result so the next Get probes again, e.g.
// after installing or updating the loader.
func (r *RuntimeInfo) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *RuntimeInfo) probe(ctx context.Context) LoaderInfo {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.runner.Output(ctx, r.binary, "--version")
	if err != nil {
		r.log.Debug("loader version probe failed", zap.Error(err))
		return LoaderInfo{}
	}
	info := LoaderInfo{Installed: true}
	info.Version, info.Commit = parseVersion(out)

	out, err = r.runner.Output(ctx, r.binary, "info")
	if err != nil {
		r.log.Debug("loader info probe failed", zap.Error(err))
		return info
	}
	parseInfo(out, &info)
	return info
}

// parseVersion extracts version and commit from output like
// "me3 0.8.1-abcdef12" or "me3 0.8.1".
func parseVersion(out []byte) (version, commit string) {
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 {
		return "", ""
	}
	version = fields[1]
	if i := strings.IndexByte(version, '-'); i >= 0 {
		commit = version[i+1:]
		version = version[:i]
	}
	return version, commit
}

// parseInfo reads the loader's "key: value" info listing. Unrecognized
// lines are skipped.
func parseInfo(out []byte, info *LoaderInfo) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "install path", "installation":
			info.InstallPath = value
		case "profile directory", "profiles":
			info.ProfileDir = value
		case "logs directory", "logs":
			info.LogsDir = value
		case "version":
			if info.Version == "" {
				info.Version, info.Commit = parseVersion([]byte("x " + value))
			}
		}
	}
}
