// Command vastq compiles a set of query expressions, replays a PCAP
// capture through them, and prints (or persists) every match. It
// follows the usual env-var-defaults, single flat main bootstrap
// style of a small batch CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/vastlabs/telemetry-query/internal/config"
	"github.com/vastlabs/telemetry-query/internal/store"
	"github.com/vastlabs/telemetry-query/pkg/format/pcap"
	"github.com/vastlabs/telemetry-query/pkg/query"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	configPath := flag.String("config", getenv("VASTQ_CONFIG", "./vastq.yaml"), "path to the YAML config (schema, flow tuning, queries)")
	pcapPath := flag.String("pcap", getenv("VASTQ_PCAP", ""), "path to a PCAP capture to evaluate; reads stdin if empty")
	recordMatches := flag.Bool("record", false, "persist matches to the database named by the config's db.dsn")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	keys := make([]string, 0, len(cfg.Queries))
	for k := range cfg.Queries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	texts := make([]string, 0, len(keys))
	for _, k := range keys {
		texts = append(texts, cfg.Queries[k])
	}

	offsetMode := query.OffsetModeHardcoded
	if cfg.Schema != nil {
		offsetMode = query.OffsetModeSchema
	}
	set, err := query.CompileSet(texts, query.LowerConfig{OffsetMode: offsetMode, Schema: cfg.Schema})
	if err != nil {
		log.Fatalf("compile queries: %v", err)
	}
	log.Printf("compiled %d quer(ies) from %s", set.Len(), *configPath)

	var sink *store.Store
	if *recordMatches {
		if cfg.DBDSN == "" {
			log.Fatalf("-record requires db.dsn in %s", *configPath)
		}
		sink, err = store.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer sink.Close()
		if err := sink.InitSchema(); err != nil {
			log.Fatalf("init schema: %v", err)
		}
	}

	var r *pcap.Reader
	if *pcapPath != "" {
		r, err = pcap.Open(*pcapPath, cfg.Flow)
		if err != nil {
			log.Fatalf("open pcap %s: %v", *pcapPath, err)
		}
		defer r.Close()
	} else {
		r, err = pcap.NewReader(os.Stdin, cfg.Flow)
		if err != nil {
			log.Fatalf("read pcap from stdin: %v", err)
		}
	}

	if err := run(r, set, keys, sink); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(r *pcap.Reader, set *query.Set, keys []string, sink *store.Store) error {
	var total, matched int
	ctx := context.Background()
	for {
		e, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read packet: %w", err)
		}
		total++

		hits := set.Evaluate(e)
		if len(hits) == 0 {
			continue
		}
		matched++
		ts, _ := e.Timestamp().TimestampValue()
		id, _ := e.ID().Int()
		for _, i := range hits {
			fmt.Printf("%s\t%s\t%d\n", ts.Format(time.RFC3339Nano), keys[i], id)
			if sink != nil {
				m := store.Match{
					QueryID:        keys[i],
					EventID:        id,
					EventTimestamp: ts,
					MatchedAt:      time.Now().UTC(),
				}
				if err := sink.RecordMatch(ctx, m); err != nil {
					return fmt.Errorf("record match: %w", err)
				}
			}
		}
	}
	log.Printf("evaluated %d packet(s), %d matched at least one query", total, matched)
	return nil
}
