package config

import (
	"testing"
	"time"

	"github.com/vastlabs/telemetry-query/pkg/value"
)

const sampleYAML = `
schema:
  - name: host
    type: record
    fields:
      - name: name
        type: string
      - name: addr
        type: addr
  - name: pid
    type: int
flow:
  cutoff: 65536
  max_flow_table_size: 10
  flow_inactivity_timeout: 30s
  flow_eviction_interval: 5s
queries:
  suspicious-dns: "name == \"dns_query\" && @1 ~ /\\.evil\\./"
db:
  dsn: postgres://localhost/vastq
`

func TestParseResolvesSchemaAndFlowConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Schema == nil || len(cfg.Schema.Fields) != 2 {
		t.Fatalf("expected a two-field schema, got %+v", cfg.Schema)
	}
	if got := cfg.Schema.Offset("pid"); got != 1 {
		t.Fatalf("Offset(pid) = %d, want 1", got)
	}
	host := cfg.Schema.Fields[0]
	if host.Type.Kind != value.Record || host.Type.Record == nil {
		t.Fatalf("expected host to be a nested record field, got %+v", host)
	}
	if got := host.Type.Record.Offset("addr"); got != 1 {
		t.Fatalf("nested Offset(addr) = %d, want 1", got)
	}

	if cfg.Flow.Cutoff != 65536 {
		t.Fatalf("Flow.Cutoff = %d, want 65536", cfg.Flow.Cutoff)
	}
	if cfg.Flow.MaxFlowTableSize != 10 {
		t.Fatalf("Flow.MaxFlowTableSize = %d, want 10", cfg.Flow.MaxFlowTableSize)
	}
	if cfg.Flow.FlowInactivityTimeout != 30*time.Second {
		t.Fatalf("Flow.FlowInactivityTimeout = %v, want 30s", cfg.Flow.FlowInactivityTimeout)
	}
	if cfg.Flow.FlowEvictionInterval != 5*time.Second {
		t.Fatalf("Flow.FlowEvictionInterval = %v, want 5s", cfg.Flow.FlowEvictionInterval)
	}

	q, ok := cfg.Queries["suspicious-dns"]
	if !ok || q == "" {
		t.Fatalf("expected a suspicious-dns query, got %+v", cfg.Queries)
	}
	if cfg.DBDSN != "postgres://localhost/vastq" {
		t.Fatalf("DBDSN = %q, want postgres://localhost/vastq", cfg.DBDSN)
	}
}

func TestParseRejectsUnknownFieldType(t *testing.T) {
	_, err := Parse([]byte("schema:\n  - name: x\n    type: bogus\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown schema field type")
	}
}

func TestParseDefaultsFlowWhenOmitted(t *testing.T) {
	cfg, err := Parse([]byte("queries:\n  all: \"name == \\\"x\\\"\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Flow.MaxFlowTableSize != 5 {
		t.Fatalf("expected DefaultConfig's flow table size to survive, got %d", cfg.Flow.MaxFlowTableSize)
	}
}
