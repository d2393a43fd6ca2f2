/*package error contains simple functions for reporting foamtonumpy errors and
the error types returned by the conversion loop.
*/
package error

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
)

// External reports an error to stderr and kills the function. It should be used
// when an error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as the
// standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	log.Printf("foamtonumpy exited early with the following error:\n"+format, a...)
	os.Exit(1)
}

// Internal reports an error to stderr along with a stack trace and kills the
// function. It should be used when the error requires a code dive to fix. It
// has the same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	log.Println("foamtonumpy exited early with the following error:")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n\n")
	debug.PrintStack()
	os.Exit(1)
}

// NoMatchingTimes is returned when a time selection doesn't match any of the
// time directories in a case.
type NoMatchingTimes struct {
	// Spec is the selection the user asked for.
	Spec string
	// Available is the number of time directories that were present.
	Available int
}

func (e *NoMatchingTimes) Error() string {
	if e.Available == 0 {
		return "The case doesn't contain any time directories."
	}
	return fmt.Sprintf("The time selection '%s' doesn't match any of the "+
		"%d time directories in the case.", e.Spec, e.Available)
}

// FieldReadError is returned when a field is missing, malformed, or has a
// number of values that doesn't match the mesh.
type FieldReadError struct {
	Field, Time, Path string
	Err               error
}

func (e *FieldReadError) Error() string {
	return fmt.Sprintf("Could not read field '%s' at time %s from %s: %s",
		e.Field, e.Time, e.Path, e.Err.Error())
}

func (e *FieldReadError) Unwrap() error { return e.Err }

// OutputWriteError is returned when an output file can't be created or
// written.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("Could not write output file %s: %s",
		e.Path, e.Err.Error())
}

func (e *OutputWriteError) Unwrap() error { return e.Err }
