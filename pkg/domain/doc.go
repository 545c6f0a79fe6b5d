/*
Package domain contains the core domain models for the triage engine.

It defines the fundamental entities of the intake state machine: question
nodes and their routing directives, the per-user session record, collected
recommendations, and the clinician-facing summary report. This package is
kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Question: a single node in the intake graph, with localized prompts,
    options and a resolved routing directive.
  - NextLogic: the tagged routing directive attached to a question
    (sequential, jump, section switch, conditional map, or one of the
    symbolic routing kinds).
  - Session: the runtime snapshot of one intake conversation (current
    position, answers, symptom queue, collected recommendations).
  - Report: the canonical-language structured summary handed to the
    reviewing pharmacist.
*/
package domain
