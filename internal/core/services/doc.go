// Package services implements the core use cases behind the driving
// ports: no-guess town resolution, child-place enumeration, and batch
// orchestration over tabular inputs.
//
// Services depend only on domain types and driven ports. All scoring
// and ordering logic here is pure and deterministic; every network
// call happens behind an injected port.
package services
