package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/gregLibert/piv-conformance/pkg/config"
	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/iso7816"
	"github.com/gregLibert/piv-conformance/pkg/logging"
	"github.com/gregLibert/piv-conformance/pkg/piv"
	"github.com/gregLibert/piv-conformance/pkg/reader"
	"github.com/gregLibert/piv-conformance/pkg/simcard"
)

func main() {
	var (
		configPath = flag.String("config", "", "session file (YAML)")
		readerIdx  = flag.Int("reader", 0, "reader index")
		simulate   = flag.Bool("simulate", false, "run against a simulated PIV card")
		logLevel   = flag.String("log-level", "", "debug, info, warn, error or fatal")
		list       = flag.Bool("list", false, "list readers and exit")
	)
	flag.Parse()

	if *list {
		readers, err := reader.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for i, r := range readers {
			fmt.Printf("[%d] %s\n", i, r)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flags given on the command line win over the session file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reader":
			cfg.Reader.Index = *readerIdx
			cfg.Reader.Name = ""
		case "simulate":
			cfg.Simulation.Enabled = *simulate
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one session. Only environment failures are returned; card
// outcomes are reported.
func run(cfg *config.Config) error {
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	card, closeCard, err := openCard(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCard()

	h := piv.NewHandle(card)
	defer h.Release()
	client := piv.NewClient(piv.WithLogger(logger))

	// --- 1. Application selection ---
	aid := cfg.ApplicationID()
	fmt.Printf(">> SELECT %s\n", aid)

	var props piv.ApplicationProperties
	st := client.SelectApplication(h, aid, &props)
	fmt.Printf("   Status: %s\n", st)
	if st != piv.StatusOK {
		return nil
	}

	if apt, err := props.Template(); err != nil {
		logger.WithError(err).Warn("application property template does not decode")
	} else {
		fmt.Println(apt.Describe())
	}

	// --- 2. Data objects ---
	var results []result
	for _, oid := range cfg.ObjectIDs() {
		results = append(results, fetch(client, h, oid, logger))
	}

	// --- 3. Summary ---
	printSummary(results)
	return nil
}

func openCard(cfg *config.Config, logger log.Interface) (iso7816.Transmitter, func(), error) {
	if cfg.Simulation.Enabled {
		card, err := simcard.NewPIVCard(
			simcard.WithChunkSize(cfg.Simulation.ChunkSize),
			simcard.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Simulation.VerifyPIN {
			card.VerifyPIN()
		}
		fmt.Println(">> Using simulated PIV card")
		return card, func() {}, nil
	}

	conn, err := reader.Connect(cfg.Reader.Name, cfg.Reader.Index)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf(">> Using reader: %s\n", conn.Reader)

	return conn, func() {
		if err := conn.Close(); err != nil {
			logger.WithError(err).Warn("failed to close reader")
		}
	}, nil
}

type result struct {
	name   string
	status piv.Status
	decode error
}

func fetch(client *piv.Client, h *piv.Handle, oid string, logger log.Interface) result {
	r := result{name: dataobject.Name(oid)}

	obj, err := dataobject.New(oid)
	if err != nil {
		r.status = piv.StatusInvalidOID
		return r
	}

	r.status = client.GetData(h, oid, obj)
	if r.status != piv.StatusOK {
		return r
	}

	r.decode = obj.Decode()
	if r.decode != nil {
		logger.WithError(r.decode).WithField("oid", oid).Warn("data object does not decode")
	}
	fmt.Println()
	fmt.Println(obj.Describe())
	return r
}

func printSummary(results []result) {
	fmt.Println("\n=== SUMMARY ===")
	for _, r := range results {
		decoded := "-"
		switch {
		case r.status == piv.StatusOK && r.decode == nil:
			decoded = "decoded"
		case r.status == piv.StatusOK:
			decoded = "decode failed"
		}
		fmt.Printf("%-50s %-40s %s\n", r.name, r.status, decoded)
	}
}
