package admsg

import (
	"errors"
	"fmt"
	"time"
)

// ──────────────────────────────────────────────
// Error taxonomy — retrieval degrades, generation fails loudly
// ──────────────────────────────────────────────

// PipelineStage identifies which stage of the pipeline a failure came from.
type PipelineStage string

const (
	StageRetrieval   PipelineStage = "retrieval"
	StageGeneration  PipelineStage = "generation"
	StageValidation  PipelineStage = "validation"
	StagePersistence PipelineStage = "persistence"
)

// PersonaNotFoundError is returned when a request names an unknown persona.
type PersonaNotFoundError struct {
	PersonaID string
}

func (e *PersonaNotFoundError) Error() string {
	return fmt.Sprintf("persona not found: %s", e.PersonaID)
}

// GenerationBackendError wraps a transport or backend failure from the
// generative model. Fatal for the request; safe to retry from outside.
type GenerationBackendError struct {
	Brand     string
	PersonaID string
	Err       error
}

func (e *GenerationBackendError) Error() string {
	return fmt.Sprintf("generation backend failure (brand=%s persona=%s): %v", e.Brand, e.PersonaID, e.Err)
}

func (e *GenerationBackendError) Unwrap() error { return e.Err }

// Stage reports the pipeline stage for caller-side diagnostics.
func (e *GenerationBackendError) Stage() PipelineStage { return StageGeneration }

// GenerationParseError is returned when the backend answers with something
// that does not parse as the requested variations JSON. Raw carries a
// snippet of the offending response.
type GenerationParseError struct {
	Brand     string
	PersonaID string
	Raw       string
	Err       error
}

func (e *GenerationParseError) Error() string {
	return fmt.Sprintf("generation response unparseable (brand=%s persona=%s): %v", e.Brand, e.PersonaID, e.Err)
}

func (e *GenerationParseError) Unwrap() error { return e.Err }

func (e *GenerationParseError) Stage() PipelineStage { return StageGeneration }

// GenerationTimeoutError is returned when the chat call exceeds its deadline.
type GenerationTimeoutError struct {
	Brand     string
	PersonaID string
	Timeout   time.Duration
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %s (brand=%s persona=%s)", e.Timeout, e.Brand, e.PersonaID)
}

func (e *GenerationTimeoutError) Stage() PipelineStage { return StageGeneration }

// PersistError is returned when a generated result cannot be written to disk.
// Distinct from generation errors: the generation itself already succeeded.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist result to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Stage() PipelineStage { return StagePersistence }

// stager is implemented by errors that know their pipeline stage.
type stager interface {
	Stage() PipelineStage
}

// FailureStage reports which pipeline stage produced err, or "" when the
// error carries no stage information.
func FailureStage(err error) PipelineStage {
	var s stager
	if errors.As(err, &s) {
		return s.Stage()
	}
	return ""
}

// IsTransient reports whether err is worth retrying: backend transport
// failures and timeouts are transient, parse failures and bad requests are not.
func IsTransient(err error) bool {
	var backend *GenerationBackendError
	var timeout *GenerationTimeoutError
	return errors.As(err, &backend) || errors.As(err, &timeout)
}

// tagRequest stamps the request's identifying fields onto a typed
// generation error so callers can diagnose without extra context.
func tagRequest(err error, brand, personaID string) error {
	switch e := err.(type) {
	case *GenerationBackendError:
		e.Brand, e.PersonaID = brand, personaID
	case *GenerationParseError:
		e.Brand, e.PersonaID = brand, personaID
	case *GenerationTimeoutError:
		e.Brand, e.PersonaID = brand, personaID
	}
	return err
}
