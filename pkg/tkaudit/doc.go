// Package tkaudit provides the TetraKlein feasibility audit engine: a
// battery of deterministic checks deciding whether a proof-carrying
// execution architecture (algebraic constraint system, recursive proof
// aggregation, hypercube ledger substrate) is mathematically and
// computationally viable on commodity hardware.
//
// The engine produces feasibility verdicts with explicit bounds, not
// proofs: it implements no prover or verifier for any concrete proof
// system and certifies no cryptographic security.
//
// # Quick Start
//
// Running the full audit:
//
//	cfg := tkaudit.DefaultConfig()
//	pipeline, err := tkaudit.NewPipeline(tkaudit.DefaultGoals(cfg))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	record, aborted, err := pipeline.Run(ctx)
//	if err != nil {
//		log.Fatalf("audit aborted at %s: %v", aborted, err)
//	}
//
//	fmt.Println(record.TerminalLine(""))
//
// Individual checks are usable standalone:
//
//	verdict, err := tkaudit.CheckContraction(0.95, 0.01)
//	report, err := tkaudit.Spectrum(8)
//	params, err := tkaudit.NewSizer().SizeDomain(1024, 8, 128)
//
// This package re-exports the functionality of the internal subpackages
// to maintain a clean, unified API while providing proper separation of
// concerns.
package tkaudit
