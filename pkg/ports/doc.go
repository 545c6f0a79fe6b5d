/*
Package ports defines the driven ports (interfaces) for the triage engine.

These interfaces decouple the routing core from external implementations,
allowing the engine to work with various session backends and AI, translation,
catalog and persistence collaborators.

# Key Interfaces

  - SessionStore: persisting and loading intake sessions.
  - DistributedLocker: distributed locking for concurrent session access
    across replicas.
  - Assistant / Translator: the external text-generation collaborators.
  - MedicineCatalog: read-only medicine lookup used by the aggregator.
  - ReportSink: fire-and-forget persistence of the final summary report.
*/
package ports
