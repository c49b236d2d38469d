package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Marsevil/radiance-cascades/log"
	scenePkg "github.com/Marsevil/radiance-cascades/scene"
	"github.com/Marsevil/radiance-cascades/types"
)

var logger = log.New("reader")

// Read a scene field definition from a local file or an http/https URL.
func ReadField(pathToScene string) (*scenePkg.Field, error) {
	res, err := newResource(pathToScene)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return newFieldReader().Read(res)
}

type fieldReader struct {
	// The field under construction. Allocated by the mandatory leading
	// "domain" directive.
	field *scenePkg.Field

	// Filter requested before the domain directive was seen.
	filter scenePkg.Filter
}

// Create a new text scene reader.
func newFieldReader() *fieldReader {
	return &fieldReader{
		filter: scenePkg.FilterBilinear,
	}
}

// Read a scene definition.
func (r *fieldReader) Read(res *resource) (*scenePkg.Field, error) {
	logger.Noticef("parsing scene from %s", res.Path())
	start := time.Now()

	scanner := bufio.NewScanner(res)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := r.parseDirective(res.Path(), lineNum, strings.Fields(line)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if r.field == nil {
		return nil, r.emitError(res.Path(), lineNum, `no "domain" directive defined`)
	}

	logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.field, nil
}

func (r *fieldReader) parseDirective(file string, line int, fields []string) error {
	var err error

	switch fields[0] {
	case "domain":
		if r.field != nil {
			return r.emitError(file, line, `duplicate "domain" directive`)
		}
		dims, err := parseFloatArgs(fields, 2)
		if err != nil {
			return r.emitError(file, line, err.Error())
		}
		r.field, err = scenePkg.NewField(int(dims[0]), int(dims[1]), r.filter)
		if err != nil {
			return r.emitError(file, line, err.Error())
		}
		return nil
	case "filter":
		if len(fields) != 2 {
			return r.emitError(file, line, `unsupported syntax for "filter"; expected 1 argument`)
		}
		switch fields[1] {
		case "nearest":
			r.filter = scenePkg.FilterNearest
		case "bilinear":
			r.filter = scenePkg.FilterBilinear
		default:
			return r.emitError(file, line, "unsupported filter type '%s'", fields[1])
		}
		if r.field != nil {
			return r.emitError(file, line, `"filter" must precede the "domain" directive`)
		}
		return nil
	}

	// All remaining directives rasterize into the field.
	if r.field == nil {
		return r.emitError(file, line, `"%s" must follow the "domain" directive`, fields[0])
	}

	switch fields[0] {
	case "circle":
		var args []float32
		if args, err = parseFloatArgs(fields, 7); err == nil {
			r.field.FillCircle(types.XY(args[0], args[1]), args[2], args[3], types.XYZ(args[4], args[5], args[6]))
		}
	case "rect":
		var args []float32
		if args, err = parseFloatArgs(fields, 8); err == nil {
			r.field.FillRect(types.XY(args[0], args[1]), args[2], args[3], args[4], types.XYZ(args[5], args[6], args[7]))
		}
	case "segment":
		var args []float32
		if args, err = parseFloatArgs(fields, 9); err == nil {
			r.field.FillSegment(types.XY(args[0], args[1]), types.XY(args[2], args[3]), args[4], args[5], types.XYZ(args[6], args[7], args[8]))
		}
	case "point":
		var args []float32
		if args, err = parseFloatArgs(fields, 5); err == nil {
			r.field.SetPoint(types.XY(args[0], args[1]), types.XYZ(args[2], args[3], args[4]))
		}
	default:
		err = fmt.Errorf("unsupported directive '%s'", fields[0])
	}

	if err != nil {
		return r.emitError(file, line, err.Error())
	}
	return nil
}

// Generate an error message that includes the file and line where the
// problem was encountered.
func (r *fieldReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return fmt.Errorf("[%s: %d] error: %s", file, line, msg)
}

// Parse the directive arguments as floats.
func parseFloatArgs(fields []string, expArgs int) ([]float32, error) {
	if len(fields)-1 != expArgs {
		return nil, fmt.Errorf("unsupported syntax for \"%s\"; expected %d arguments; got %d", fields[0], expArgs, len(fields)-1)
	}

	out := make([]float32, 0, expArgs)
	for _, fieldArg := range fields[1:] {
		v, err := strconv.ParseFloat(fieldArg, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse '%s' as a number", fieldArg)
		}
		out = append(out, float32(v))
	}
	return out, nil
}
