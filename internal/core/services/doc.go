// Package services implements the driving port interfaces.
// Services contain the preparation logic (fetch, build, partition, merge)
// and orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies; every filesystem,
// audio and network access goes through a driven port.
package services
