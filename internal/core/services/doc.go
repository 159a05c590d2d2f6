// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction cascade lives here: the Orchestrator runs extractors in
// order, the Analyzer turns text into requirements and the Scorer decides
// whether to stop.
package services
