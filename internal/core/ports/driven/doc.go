// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns file bytes into normalised text
//   - StrategyRegistry: Orders extractors for a MIME type
//   - LLMService: Requirement analysis model
//   - ResultStore: Document and extraction result persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PageRenderer: Rasterises PDF pages. Without it, vision only reads images.
//   - TokenCounter: Estimates prompt size for logging.
//   - AIConfigValidator: Pings providers before saving settings.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
