package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tgis/internal/compiler"
	"github.com/roach88/tgis/internal/ir"
)

// LoadMode controls how errors are handled during dataset loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the datasets loaded from CUE files.
type LoadResult struct {
	Datasets  []ir.Dataset
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during dataset loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDatasets loads and compiles the datasets declared in a CUE package
// directory or a single CUE file.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadDatasets(path string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("datasets path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing datasets path: %v", err)}}
	}

	// Find CUE files and the load arguments
	var cueFiles []string
	cfg := &load.Config{}
	args := []string{"."}
	if info.IsDir() {
		cueFiles, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		cfg.Dir = path
	} else {
		if filepath.Ext(path) == ".cue" {
			cueFiles = []string{path}
		}
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{buildError(err)}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	datasetsVal := value.LookupPath(cue.ParsePath("dataset"))
	if datasetsVal.Exists() {
		iter, iterErr := datasetsVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating datasets: %v", iterErr)})
			return result, errs
		}
		for iter.Next() {
			ds, compileErr := compiler.CompileDataset(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "dataset."+iter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Datasets = append(result.Datasets, *ds)
		}
	}

	// Check if we found anything
	if len(result.Datasets) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no datasets found"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// buildError converts a CUE evaluation error to a LoadError positioned
// at its first reported location.
func buildError(err error) *LoadError {
	loadErr := &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	if list := cueerrors.Errors(err); len(list) > 0 {
		if positions := cueerrors.Positions(list[0]); len(positions) > 0 {
			loadErr.Message = list[0].Error()
			loadErr.Pos = positions[0]
		}
	}
	return loadErr
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path, dataset or sample not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File or store write error
	ErrCodeArgument    = "E008" // Invalid command argument
	ErrCodeParse       = "E009" // Expression or timestamp parse error
	ErrCodeDatabase    = "E010" // Register database missing or unreadable

	// Dataset compile errors
	ErrCodeCUE         = "E120" // CUE evaluation error
	ErrCodeType        = "E121" // Invalid temporal type
	ErrCodeUnit        = "E122" // Invalid or missing unit
	ErrCodeGranularity = "E123" // Invalid granularity
	ErrCodeMaps        = "E124" // Invalid maps list or map entry
	ErrCodeBBox        = "E125" // Invalid bounding box
	ErrCodeSeries      = "E126" // Invalid regular series
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeCUE
	case field == "type":
		return ErrCodeType
	case field == "unit":
		return ErrCodeUnit
	case field == "granularity":
		return ErrCodeGranularity
	case strings.HasPrefix(field, "bbox"):
		return ErrCodeBBox
	case strings.HasPrefix(field, "maps"):
		return ErrCodeMaps
	case strings.HasPrefix(field, "series"):
		return ErrCodeSeries
	default:
		return ErrCodeGeneric
	}
}
