// Package debug gates the expensive self-check paths and captures caller
// stacks for synthesis errors.
package debug

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Stack returns a trimmed stack trace of the caller, stopping at the
// synthesis entry point.
func Stack() string {
	var sbb strings.Builder
	WriteStack(&sbb)
	return sbb.String()
}

// WriteStack writes a trimmed stack trace into sbb. Runtime and engine
// frames are skipped unless the debug build tag is set.
func WriteStack(sbb *strings.Builder) {
	// derived from: https://golang.org/pkg/runtime/#example_Frames
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	pc = pc[:n]
	frames := runtime.CallersFrames(pc)
	for {
		frame, more := frames.Next()
		fe := strings.Split(frame.Function, "/")
		function := fe[len(fe)-1]
		file := frame.File

		if !Debug {
			if strings.Contains(function, "runtime.gopanic") {
				continue
			}
			if strings.Contains(file, "plonkish/layouter.go") {
				continue
			}
			file = filepath.Base(file)
		}

		sbb.WriteString(function)
		sbb.WriteByte('\n')
		sbb.WriteByte('\t')
		sbb.WriteString(file)
		sbb.WriteByte(':')
		sbb.WriteString(strconv.Itoa(frame.Line))
		sbb.WriteByte('\n')
		if !more {
			break
		}
		if strings.HasSuffix(function, "SynthesizeStep") {
			break
		}
	}
}
