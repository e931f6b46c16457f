// Package config loads the YAML documents that parameterize a vastq
// run: the event schema used to resolve event-clause offsets in
// schema mode, the flow-tracking knobs passed to pkg/format/pcap, and
// the named queries to compile at startup. It unmarshals into a raw
// yaml.v3 struct and translates that into the package's own IR,
// rather than tagging the domain types directly with yaml struct
// tags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vastlabs/telemetry-query/pkg/format/pcap"
	"github.com/vastlabs/telemetry-query/pkg/value"
)

type rawField struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type"`
	Fields []rawField `yaml:"fields"`
}

type rawFlow struct {
	Cutoff                int64  `yaml:"cutoff"`
	MaxFlowTableSize      int    `yaml:"max_flow_table_size"`
	FlowInactivityTimeout string `yaml:"flow_inactivity_timeout"`
	FlowEvictionInterval  string `yaml:"flow_eviction_interval"`
}

type rawConfig struct {
	Schema  []rawField        `yaml:"schema"`
	Flow    rawFlow           `yaml:"flow"`
	Queries map[string]string `yaml:"queries"`
	DB      struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
}

// Config is the fully-resolved form of a vastq run's YAML document.
type Config struct {
	Schema  *value.Schema
	Flow    pcap.Config
	Queries map[string]string
	DBDSN   string
}

var typeNames = map[string]value.Type{
	"bool":      value.Bool,
	"int":       value.Int,
	"uint":      value.Uint,
	"real":      value.Real,
	"duration":  value.Duration,
	"timestamp": value.Timestamp,
	"string":    value.String,
	"regex":     value.TypeRegex,
	"addr":      value.Address,
	"subnet":    value.TypeSubnet,
	"port":      value.TypePort,
	"set":       value.Set,
	"vector":    value.Vector,
	"table":     value.Table,
}

// Load reads and parses the YAML document at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes a YAML document already read into memory.
func Parse(b []byte) (*Config, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	schema, err := buildSchema(rc.Schema)
	if err != nil {
		return nil, err
	}

	flow := pcap.DefaultConfig()
	if rc.Flow.Cutoff != 0 {
		flow.Cutoff = rc.Flow.Cutoff
	}
	if rc.Flow.MaxFlowTableSize != 0 {
		flow.MaxFlowTableSize = rc.Flow.MaxFlowTableSize
	}
	if rc.Flow.FlowInactivityTimeout != "" {
		d, err := time.ParseDuration(rc.Flow.FlowInactivityTimeout)
		if err != nil {
			return nil, fmt.Errorf("config: flow.flow_inactivity_timeout: %w", err)
		}
		flow.FlowInactivityTimeout = d
	}
	if rc.Flow.FlowEvictionInterval != "" {
		d, err := time.ParseDuration(rc.Flow.FlowEvictionInterval)
		if err != nil {
			return nil, fmt.Errorf("config: flow.flow_eviction_interval: %w", err)
		}
		flow.FlowEvictionInterval = d
	}

	return &Config{
		Schema:  schema,
		Flow:    flow,
		Queries: rc.Queries,
		DBDSN:   rc.DB.DSN,
	}, nil
}

func buildSchema(fields []rawField) (*value.Schema, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]value.Field, 0, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("config: schema field with empty name")
		}
		if f.Type == "record" {
			nested, err := buildSchema(f.Fields)
			if err != nil {
				return nil, fmt.Errorf("config: schema field %q: %w", f.Name, err)
			}
			out = append(out, value.Field{
				Name: f.Name,
				Type: value.FieldType{Kind: value.Record, Record: nested},
			})
			continue
		}
		kind, ok := typeNames[f.Type]
		if !ok {
			return nil, fmt.Errorf("config: schema field %q: unknown type %q", f.Name, f.Type)
		}
		out = append(out, value.Field{Name: f.Name, Type: value.FieldType{Kind: kind}})
	}
	return &value.Schema{Fields: out}, nil
}
