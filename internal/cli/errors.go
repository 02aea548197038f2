package cli

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dshills/rvconf/internal/derive"
	"github.com/dshills/rvconf/internal/fragment"
	"github.com/dshills/rvconf/internal/manifest"
	"github.com/dshills/rvconf/internal/size"
)

// classify maps a pipeline error to an exit code. Derivation failures are
// checked first since they may wrap input errors raised by a procedure.
func classify(err error) int {
	var (
		derivation *derive.DerivationError
		missing    *derive.MissingCapabilityError
		cycle      *derive.CyclicDependencyError
		conflict   *derive.ConflictError
		parse      *fragment.ParseError
		collision  *fragment.CollisionError
		badScript  *manifest.ParseError
		badSize    *size.MalformedSizeError
	)
	switch {
	case errors.As(err, &derivation), errors.As(err, &missing),
		errors.As(err, &cycle), errors.As(err, &conflict):
		return ExitDerivationError
	case errors.As(err, &parse), errors.As(err, &collision),
		errors.As(err, &badScript), errors.As(err, &badSize):
		return ExitInputError
	default:
		return ExitRuntimeError
	}
}

// fail reports err on stderr, logs its stack at debug level and records the
// matching exit code.
func fail(err error) {
	exitCode = classify(err)
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	log.Debugf("%+v", err)
}
