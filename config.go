package qb

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// NodeSpec is one (address, max-concurrency) pair from the "nodes"
// configuration key.
type NodeSpec struct {
	Address        string `yaml:"address"`
	MaxConcurrency int    `yaml:"maxConcurrency"`
}

// Thunk is a deferred string value. The "worker" default is built as one,
// but DefaultConfig calls it while building the Config; Config.Worker holds
// the resulting string, not the thunk, so it is not re-evaluated on read.
type Thunk func() string

// Config is an immutable snapshot of every configuration key, built once
// after profile selection, and constructed explicitly and passed through
// every public entry point rather than held as mutable package state.
type Config struct {
	Parent  string
	Profile string

	QPack      string
	QubitsFile string
	QSpace     string

	Interval time.Duration
	Stalled  int

	JobRoot   string
	JobPrefix string
	Nodes     []NodeSpec

	Worker   string
	SpawnLog string
	Ignore   []string

	JobspaceURL string // falls back to QSpace when empty

	FanOut      int
	Shell       string
	Copy        string
	SyncCmd     string
	MetricsAddr string

	Verbose bool
}

// DefaultConfig returns the baseline configuration, with Worker set by
// calling defaultWorkerThunk on every call.
func DefaultConfig() Config {
	return Config{
		QPack:      ".qpack",
		QubitsFile: ".qubits",
		QSpace:     ".qspace",
		Interval:   2 * time.Second,
		Stalled:    100,
		JobRoot:    "/mnt",
		JobPrefix:  "qjob-",
		Nodes:      []NodeSpec{{Address: "localhost", MaxConcurrency: 2}},
		Worker:     defaultWorkerThunk()(),
		SpawnLog:   "spawn.log",
		FanOut:     16,
		Shell:      "ssh",
		Copy:       "rsync -az",
		SyncCmd:    DefaultSyncCommand,
	}
}

func defaultWorkerThunk() Thunk {
	return func() string {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		return fmt.Sprintf("%s:%d", host, os.Getpid())
	}
}

// Jobspace returns the effective jobspace URL: JobspaceURL if set, else
// QSpace.
func (c Config) Jobspace() string {
	if c.JobspaceURL != "" {
		return c.JobspaceURL
	}
	return c.QSpace
}

// JobDir returns the remote working-copy directory for a job-id:
// <jobroot>/<jobprefix><job-id>.
func (c Config) JobDir(jobID string) string {
	return c.JobRoot + "/" + c.JobPrefix + jobID
}

// profileDoc is the on-disk shape of a profile overlay file, e.g.
// ".qbconfig.yaml":
//
//	profiles:
//	  dist:
//	    nodes:
//	      - address: node1.internal
//	        maxConcurrency: 4
//	    fanout: 32
type profileDoc struct {
	Profiles map[string]configOverlay `yaml:"profiles"`
}

// configOverlay mirrors Config with pointer/zero-value fields so that only
// explicitly-set keys override the base configuration.
type configOverlay struct {
	QPack       *string    `yaml:"qpack"`
	QubitsFile  *string    `yaml:"qubits"`
	QSpace      *string    `yaml:"qspace"`
	Interval    *int       `yaml:"interval"`
	Stalled     *int       `yaml:"stalled"`
	JobRoot     *string    `yaml:"jobroot"`
	JobPrefix   *string    `yaml:"jobprefix"`
	Nodes       []NodeSpec `yaml:"nodes"`
	Worker      *string    `yaml:"worker"`
	SpawnLog    *string    `yaml:"spawnlog"`
	Ignore      []string   `yaml:"ignore"`
	Jobspace    *string    `yaml:"jobspace"`
	FanOut      *int       `yaml:"fanout"`
	Shell       *string    `yaml:"shell"`
	Copy        *string    `yaml:"copy"`
	SyncCmd     *string    `yaml:"syncCmd"`
	MetricsAddr *string    `yaml:"metricsAddr"`
}

// LoadConfig builds the effective Config: defaults, overlaid by the named
// profile read from path (if path exists — a missing file is not an error,
// since profile overlays are optional), overlaid by CLI flags applied by the
// caller afterwards. profile "" skips overlay application entirely.
func LoadConfig(path, profile string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Profile = profile

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("qb: reading config %s: %w", path, err)
	}

	var doc profileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("qb: parsing config %s: %w", path, err)
	}
	if profile == "" {
		return cfg, nil
	}
	overlay, ok := doc.Profiles[profile]
	if !ok {
		return cfg, fmt.Errorf("qb: unknown profile %q in %s", profile, path)
	}
	applyOverlay(&cfg, overlay)
	return cfg, nil
}

func applyOverlay(cfg *Config, o configOverlay) {
	if o.QPack != nil {
		cfg.QPack = *o.QPack
	}
	if o.QubitsFile != nil {
		cfg.QubitsFile = *o.QubitsFile
	}
	if o.QSpace != nil {
		cfg.QSpace = *o.QSpace
	}
	if o.Interval != nil {
		cfg.Interval = time.Duration(*o.Interval) * time.Second
	}
	if o.Stalled != nil {
		cfg.Stalled = *o.Stalled
	}
	if o.JobRoot != nil {
		cfg.JobRoot = *o.JobRoot
	}
	if o.JobPrefix != nil {
		cfg.JobPrefix = *o.JobPrefix
	}
	if len(o.Nodes) > 0 {
		cfg.Nodes = o.Nodes
	}
	if o.Worker != nil {
		cfg.Worker = *o.Worker
	}
	if o.SpawnLog != nil {
		cfg.SpawnLog = *o.SpawnLog
	}
	if len(o.Ignore) > 0 {
		cfg.Ignore = o.Ignore
	}
	if o.Jobspace != nil {
		cfg.JobspaceURL = *o.Jobspace
	}
	if o.FanOut != nil {
		cfg.FanOut = *o.FanOut
	}
	if o.Shell != nil {
		cfg.Shell = *o.Shell
	}
	if o.Copy != nil {
		cfg.Copy = *o.Copy
	}
	if o.SyncCmd != nil {
		cfg.SyncCmd = *o.SyncCmd
	}
	if o.MetricsAddr != nil {
		cfg.MetricsAddr = *o.MetricsAddr
	}
}
