package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskpad/internal/utils"
)

//go:embed task.schema.json
var taskSchemaJSON string

const taskSchemaURL = "https://taskpad.local/schemas/task.schema.json"

var taskSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add task schema: %v", err))
	}
	return compiler.MustCompile(taskSchemaURL)
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // Dotted path to the offending field
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Marshal encodes a task as a compact JSON document.
func Marshal(t Task) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}
	return string(data), nil
}

// Unmarshal validates and decodes a stored task document.
// Schema failures come back as *ValidationError values joined with errors.Join.
func Unmarshal(value string) (Task, error) {
	doc, err := decodeDocument(value)
	if err != nil {
		return Task{}, err
	}
	if err := taskSchema.Validate(doc); err != nil {
		return Task{}, schemaErrors(err)
	}

	var t Task
	if err := json.Unmarshal([]byte(value), &t); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

// decodeDocument parses value into the generic form the schema validator
// expects. Numbers stay json.Number so large ids keep their precision.
func decodeDocument(value string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse task: trailing data after document")
	}
	return doc, nil
}

func schemaErrors(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate task: %w", err)
	}

	var errs []error
	collectSchemaErrors(&errs, ve)
	if len(errs) == 0 {
		return &ValidationError{Err: errors.New(ve.Message)}
	}
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}
